package querysql

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Placeholders returns the named placeholders referenced by template in
// first-seen order. Each entry keeps its prefix (":id", "@id", "$id"), so the
// result has one entry per distinct SQLite bind parameter.
//
// String literals, quoted identifiers and comments are skipped.
func Placeholders(template string) ([]string, error) {
	var found []string
	seen := make(map[string]bool)

	for i := 0; i < len(template); {
		c := template[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			// Doubled quotes ('it''s') close and reopen, which scans the same.
			end := strings.IndexByte(template[i+1:], c)
			if end < 0 {
				return nil, fmt.Errorf("unterminated %c quote at offset %d", c, i)
			}
			i += end + 2
		case c == '[':
			end := strings.IndexByte(template[i+1:], ']')
			if end < 0 {
				return nil, fmt.Errorf("unterminated [ identifier at offset %d", i)
			}
			i += end + 2
		case c == '-' && peek(template, i+1) == '-':
			end := strings.IndexByte(template[i:], '\n')
			if end < 0 {
				i = len(template)
			} else {
				i += end + 1
			}
		case c == '/' && peek(template, i+1) == '*':
			end := strings.Index(template[i+2:], "*/")
			if end < 0 {
				return nil, fmt.Errorf("unterminated block comment at offset %d", i)
			}
			i += end + 4
		case c == '?':
			return nil, fmt.Errorf("positional placeholder at offset %d: only named placeholders are supported", i)
		case c == ':' && peek(template, i+1) == ':':
			i += 2
		case c == ':' || c == '@' || c == '$':
			j := i + 1
			for j < len(template) && isIdentByte(template[j]) {
				j++
			}
			if j == i+1 {
				i++
				continue
			}
			token := template[i:j]
			if err := checkParamName(token[1:]); err != nil {
				return nil, fmt.Errorf("placeholder %q at offset %d: %w", token, i, err)
			}
			if !seen[token] {
				seen[token] = true
				found = append(found, token)
			}
			i = j
		default:
			i++
		}
	}

	return found, nil
}

// ParamName strips the SQLite prefix from a placeholder token.
func ParamName(placeholder string) string {
	if placeholder == "" {
		return ""
	}
	return placeholder[1:]
}

func peek(s string, i int) byte {
	if i >= len(s) {
		return 0
	}
	return s[i]
}

// isIdentByte matches SQLite's parameter name bytes: ASCII letters, digits,
// underscore and any byte of a multi-byte UTF-8 sequence.
func isIdentByte(b byte) bool {
	switch {
	case b == '_':
		return true
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	default:
		return b >= utf8.RuneSelf
	}
}

// checkParamName rejects names SQLite accepts but database/sql cannot bind
// by name, which requires a leading letter.
func checkParamName(name string) error {
	if !utf8.ValidString(name) {
		return fmt.Errorf("name is not valid UTF-8")
	}
	r, _ := utf8.DecodeRuneInString(name)
	if !unicode.IsLetter(r) {
		return fmt.Errorf("name must begin with a letter")
	}
	return nil
}
