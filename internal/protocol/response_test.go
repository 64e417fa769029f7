package protocol_test

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/logcask/logcask/internal/protocol"
)

func TestWriteReadLineRoundTrip(t *testing.T) {
	tests := []string{
		protocol.ResponseOK,
		protocol.ResponseNil,
		protocol.ResponsePong,
		"plain value",
		"value  with   spaces",
		protocol.FormatError("something broke"),
	}

	for _, resp := range tests {
		var buf bytes.Buffer
		if err := protocol.WriteLine(&buf, resp); err != nil {
			t.Fatalf("WriteLine(%q) failed: %v", resp, err)
		}

		got, err := protocol.ReadLine(bufio.NewReader(&buf))
		if err != nil {
			t.Fatalf("ReadLine failed: %v", err)
		}
		if got != resp {
			t.Fatalf("round trip mismatch: got %q want %q", got, resp)
		}
	}
}

func TestReadLineStripsCarriageReturn(t *testing.T) {
	got, err := protocol.ReadLine(bufio.NewReader(strings.NewReader("OK\r\n")))
	if err != nil {
		t.Fatal(err)
	}
	if got != "OK" {
		t.Fatalf("got %q", got)
	}
}

func TestReadLineErrorsOnUnterminatedInput(t *testing.T) {
	if _, err := protocol.ReadLine(bufio.NewReader(strings.NewReader("partial"))); err == nil {
		t.Fatal("expected error on input without a line terminator")
	}
}

func TestIsError(t *testing.T) {
	if !protocol.IsError(protocol.FormatError("boom")) {
		t.Fatal("FormatError output not recognized as an error line")
	}
	if protocol.IsError("Errors happen") || protocol.IsError(protocol.ResponseOK) {
		t.Fatal("non-error line misclassified")
	}
}
