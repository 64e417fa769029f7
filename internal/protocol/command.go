package protocol

import (
	"fmt"
	"strings"
	"unicode"
)

// Verbs accepted by the command protocol. Matching is case-insensitive on
// the verb only; keys and values are taken verbatim.
const (
	VerbSet    = "SET"
	VerbGet    = "GET"
	VerbExit   = "EXIT"
	VerbPing   = "PING"
	VerbExists = "EXISTS"
	VerbCount  = "COUNT"
	VerbKeys   = "KEYS"
)

// Command represents one decoded line of the command protocol.
//
// A Command consists of an upper-cased verb, an optional key, and an
// optional value. The meaning of Key and Val depends on the verb. For SET,
// Val is everything after the key up to the end of the line, with embedded
// spaces preserved.
type Command struct {
	Verb string // Upper-cased verb (e.g. "GET", "SET")
	Key  string // Key argument (may be empty)
	Val  string // Value argument (may be empty)
}

// splitCommand splits a line into at most three tokens: verb, key, and the
// remainder of the line. Runs of whitespace separate the first two tokens;
// the remainder keeps its internal spacing but loses leading whitespace.
func splitCommand(line string) (verb, key, rest string) {
	line = strings.TrimSpace(line)

	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return line, "", ""
	}
	verb = line[:i]

	r := strings.TrimLeftFunc(line[i:], unicode.IsSpace)
	j := strings.IndexFunc(r, unicode.IsSpace)
	if j < 0 {
		return verb, r, ""
	}

	return verb, r[:j], strings.TrimLeftFunc(r[j:], unicode.IsSpace)
}

// ParseCommand decodes one non-blank input line into a Command.
//
// The verb is upper-cased before arity checking, so "set", "Set" and "SET"
// are equivalent. Unknown verbs are not an error here; dispatch decides
// what to do with them. Arity errors carry the message the adapter prints
// after its "Error: " prefix.
func ParseCommand(line string) (*Command, error) {
	verb, key, rest := splitCommand(line)

	cmd := &Command{
		Verb: strings.ToUpper(verb),
		Key:  key,
		Val:  rest,
	}

	switch cmd.Verb {
	case VerbSet:
		if cmd.Key == "" || cmd.Val == "" {
			return nil, fmt.Errorf("SET requires key and value")
		}
	case VerbGet, VerbExists:
		if cmd.Key == "" {
			return nil, fmt.Errorf("%s requires key", cmd.Verb)
		}
	}

	return cmd, nil
}
