package syntax

import (
	"fmt"
	"strings"
)

// ImportDecl is a synthesized named import declaration:
//
//	import { Names... } from "From";
type ImportDecl struct {
	Names []string
	From  string
}

func (*ImportDecl) item() {}

// String prints the declaration. The specifier is always emitted as a
// double-quoted string literal.
func (d *ImportDecl) String() string {
	return "import { " + strings.Join(d.Names, ", ") + " } from " + QuoteString(d.From) + ";"
}

// QuoteString returns s as a double-quoted JavaScript string literal.
func QuoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\u2028', '\u2029':
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\x%02x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// UnquoteString decodes the text of a JavaScript string literal, including
// its surrounding quotes. Escapes beyond the common single-character ones
// and \xHH / \uHHHH are kept as written.
func UnquoteString(lit string) string {
	if len(lit) >= 2 && (lit[0] == '"' || lit[0] == '\'') && lit[len(lit)-1] == lit[0] {
		lit = lit[1 : len(lit)-1]
	}
	if !strings.ContainsRune(lit, '\\') {
		return lit
	}

	var b strings.Builder
	for i := 0; i < len(lit); i++ {
		c := lit[i]
		if c != '\\' || i+1 == len(lit) {
			b.WriteByte(c)
			continue
		}
		i++
		switch lit[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '0':
			b.WriteByte(0)
		case 'x':
			if r, ok := hexRune(lit, i+1, 2); ok {
				b.WriteRune(r)
				i += 2
				continue
			}
			b.WriteString(`\x`)
		case 'u':
			if r, ok := hexRune(lit, i+1, 4); ok {
				b.WriteRune(r)
				i += 4
				continue
			}
			b.WriteString(`\u`)
		case '\n':
			// line continuation
		default:
			b.WriteByte(lit[i])
		}
	}
	return b.String()
}

func hexRune(s string, at, n int) (rune, bool) {
	if at+n > len(s) {
		return 0, false
	}
	var r rune
	for _, c := range s[at : at+n] {
		switch {
		case c >= '0' && c <= '9':
			r = r<<4 | (c - '0')
		case c >= 'a' && c <= 'f':
			r = r<<4 | (c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			r = r<<4 | (c - 'A' + 10)
		default:
			return 0, false
		}
	}
	return r, true
}
