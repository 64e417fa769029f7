package protocol

import (
	"bufio"
	"io"
	"strings"
)

// Fixed response lines of the command protocol.
const (
	ResponseOK   = "OK"
	ResponseNil  = "(nil)"
	ResponsePong = "PONG"
)

// FormatError renders msg as a single protocol error line.
func FormatError(msg string) string {
	return "Error: " + msg
}

// IsError reports whether a response line is an error line.
func IsError(resp string) bool {
	return strings.HasPrefix(resp, "Error: ")
}

// WriteLine writes one response line, terminated by a newline, to w.
func WriteLine(w io.Writer, resp string) error {
	_, err := io.WriteString(w, resp+"\n")
	return err
}

// ReadLine reads one newline-terminated response line from r, stripping the
// terminator. Used by clients consuming the protocol over a connection.
func ReadLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
