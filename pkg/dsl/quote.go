package dsl

import (
	"fmt"
	"strings"
)

// syntaxChars are characters that force a name to be quoted on output.
const syntaxChars = "(){},\""

// splitFields splits a statement line into fields, honoring double-quoted
// tokens with backslash escapes. Quoted tokens may contain whitespace and
// syntax characters.
func splitFields(line string) ([]string, error) {
	var fields []string
	var cur strings.Builder
	inQuote := false
	hasToken := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inQuote && c == '\\' && i+1 < len(line):
			i++
			cur.WriteByte(line[i])
		case c == '"':
			inQuote = !inQuote
			hasToken = true
		case !inQuote && (c == ' ' || c == '\t'):
			if hasToken {
				fields = append(fields, cur.String())
				cur.Reset()
				hasToken = false
			}
		default:
			cur.WriteByte(c)
			hasToken = true
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated quoted name")
	}
	if hasToken {
		fields = append(fields, cur.String())
	}
	return fields, nil
}

// quoteName renders a name for output, quoting it when it contains
// whitespace or syntax-significant characters.
func quoteName(name string) string {
	if name == "" {
		return `""`
	}
	if !strings.ContainsAny(name, " \t"+syntaxChars) {
		return name
	}
	escaped := strings.ReplaceAll(name, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}
