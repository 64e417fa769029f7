package core

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/logcask/logcask/internal/protocol"
)

// ServeSession runs the line-oriented command loop against the store,
// reading commands from r and writing one response line per command to w.
// It returns when the client sends EXIT, the input reaches EOF, or a write
// to w fails.
//
// The same loop serves stdin/stdout and a TCP connection; the store is the
// only state, so any number of sequential sessions can be run against it.
func (s *Store) ServeSession(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Lines carry whole values, so the scanner must accept a line as large
	// as the biggest legal record.
	scanner.Buffer(make([]byte, 64*OneKilobyte), s.MaxKeySize+s.MaxValueSize+recordHeaderSize)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, err := protocol.ParseCommand(line)
		if err != nil {
			if werr := protocol.WriteLine(w, protocol.FormatError(err.Error())); werr != nil {
				return werr
			}
			continue
		}

		if cmd.Verb == protocol.VerbExit {
			return nil
		}

		if err := protocol.WriteLine(w, s.respond(cmd)); err != nil {
			return err
		}
	}

	return scanner.Err()
}

func (s *Store) respond(cmd *protocol.Command) string {
	switch cmd.Verb {
	case protocol.VerbPing:
		return protocol.ResponsePong

	case protocol.VerbSet:
		if err := s.Set(cmd.Key, cmd.Val); err != nil {
			return protocol.FormatError(err.Error())
		}
		return protocol.ResponseOK

	case protocol.VerbGet:
		value, found, err := s.Get(cmd.Key)
		if err != nil {
			return protocol.FormatError(err.Error())
		}
		if !found {
			return protocol.ResponseNil
		}
		return value

	case protocol.VerbExists:
		if s.Exists(cmd.Key) {
			return "true"
		}
		return "false"

	case protocol.VerbCount:
		return fmt.Sprintf("%d", s.Count())

	case protocol.VerbKeys:
		keys := s.Keys()
		if len(keys) == 0 {
			return protocol.ResponseNil
		}
		return strings.Join(keys, " ")

	default:
		return protocol.FormatError(fmt.Sprintf("Unknown command '%s'", cmd.Verb))
	}
}
