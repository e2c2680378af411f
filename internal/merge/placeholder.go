package merge

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
)

const (
	leftDelim  = "${"
	rightDelim = "}"
)

// Action keywords of text/template. Actions starting with one of these are
// passed through as written.
var keywords = map[string]bool{
	"if": true, "else": true, "end": true, "range": true, "with": true,
	"define": true, "template": true, "block": true, "break": true, "continue": true,
}

var literals = map[string]bool{"nil": true, "true": true, "false": true}

var (
	// a bare field path alone in the first command: nombre, cliente.nombre | upper
	fieldPath  = regexp.MustCompile(`^([\p{L}_][\p{L}\p{N}_]*)((?:\.[\p{L}_][\p{L}\p{N}_]*)*)\s*(\|[\s\S]*)?$`)
	assignment = regexp.MustCompile(`^\$[\p{L}\p{N}_]*\s*(?:,\s*\$[\p{L}\p{N}_]*\s*)?:?=`)
)

// Typographic double quotes delimit strings; single ones are apostrophes
// and stay legal inside string literals.
var quoteReplacer = strings.NewReplacer(
	"“", `"`, "”", `"`, "„", `"`,
	"‘", "'", "’", "'",
	" ", " ",
)

// rewritePlaceholders turns the ${...} placeholders of an XML document into
// actions text/template understands when parsed with leftDelim/rightDelim.
//
// Word processors split placeholders across formatting runs, so markup found
// inside a placeholder is moved right after it. Moving keeps the element
// nesting of the surrounding XML intact.
func rewritePlaceholders(src string) (string, error) {
	var out strings.Builder
	out.Grow(len(src))

	offset := 0
	for {
		start := strings.Index(src[offset:], leftDelim)
		if start < 0 {
			out.WriteString(src[offset:])
			return out.String(), nil
		}
		start += offset
		out.WriteString(src[offset:start])

		expr, tags, n, err := scanAction(src[start+len(leftDelim):])
		if err != nil {
			return "", fmt.Errorf("%w: placeholder at offset %d: %v", ErrTemplate, start, err)
		}

		out.WriteString(leftDelim)
		out.WriteString(rewriteAction(expr))
		out.WriteString(rightDelim)
		out.WriteString(tags)

		offset = start + len(leftDelim) + n
	}
}

// scanAction reads s up to the right delimiter that closes a placeholder.
// It returns the action text, the markup found inside it and the number of
// bytes consumed including the delimiter.
func scanAction(s string) (expr, tags string, n int, err error) {
	var b, moved strings.Builder
	var quote byte

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '<':
			end := strings.IndexByte(s[i:], '>')
			if end < 0 {
				return "", "", 0, errors.New("unterminated markup")
			}
			moved.WriteString(s[i : i+end+1])
			i += end
		case quote != 0:
			b.WriteByte(c)
			if c == '\\' && quote != '`' && i+1 < len(s) && s[i+1] != '<' {
				i++
				b.WriteByte(s[i])
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '`':
			quote = c
			b.WriteByte(c)
		case c == '}':
			return normalizeExpr(b.String()), moved.String(), i + 1, nil
		default:
			b.WriteByte(c)
		}
	}
	return "", "", 0, errors.New("missing closing brace")
}

func normalizeExpr(expr string) string {
	return quoteReplacer.Replace(html.UnescapeString(expr))
}

// rewriteAction prefixes bare field paths with the dot and pipes output
// actions through xml so values cannot break the document markup.
func rewriteAction(expr string) string {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" || strings.HasPrefix(trimmed, "/*") || strings.HasPrefix(trimmed, "-") {
		return expr
	}
	if keywords[firstWord(trimmed)] || assignment.MatchString(trimmed) {
		return expr
	}

	if m := fieldPath.FindStringSubmatch(trimmed); m != nil && !literals[m[1]] && !keywords[m[1]] {
		trimmed = "." + trimmed
	}
	return trimmed + " | xml"
}

func firstWord(s string) string {
	end := strings.IndexAny(s, " \t\r\n|()")
	if end < 0 {
		return s
	}
	return s[:end]
}
