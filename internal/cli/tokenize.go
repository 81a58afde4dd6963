package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// token is one whitespace-separated word of a command line. Quoted marks
// words that contained a double-quoted section, which always yields a string
// value.
type token struct {
	text   string
	quoted bool
}

// tokenize splits a command line on whitespace, honouring double-quoted
// sections with Go escape sequences: add-field Person note "two words".
func tokenize(line string) ([]token, error) {
	var (
		tokens  []token
		current strings.Builder
		inWord  bool
		quoted  bool
	)
	flush := func() {
		if inWord {
			tokens = append(tokens, token{text: current.String(), quoted: quoted})
		}
		current.Reset()
		inWord, quoted = false, false
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			end := closingQuote(line, i)
			if end < 0 {
				return nil, fmt.Errorf("unterminated quote at column %d", i+1)
			}
			s, err := strconv.Unquote(line[i : end+1])
			if err != nil {
				return nil, fmt.Errorf("bad quoted string at column %d: %w", i+1, err)
			}
			current.WriteString(s)
			inWord, quoted = true, true
			i = end
		case c == ' ' || c == '\t':
			flush()
		default:
			current.WriteByte(c)
			inWord = true
		}
	}
	flush()
	return tokens, nil
}

func closingQuote(line string, start int) int {
	for i := start + 1; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

// parseValue turns an unquoted word into a bool, integer, finite float or
// nil (null) where it reads as one, and a string otherwise. Words such as NaN
// and Inf stay strings.
func parseValue(t token) any {
	if t.quoted {
		return t.text
	}
	switch t.text {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if i, err := strconv.ParseInt(t.text, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(t.text, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return t.text
}
