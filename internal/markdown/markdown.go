// Package markdown converts agent output for chat delivery: markdown to the
// HTML subset Telegram accepts, markdown to plain text, and splitting into
// size-bounded chunks.
package markdown

import (
	"strings"
	"unicode"
)

// Format is the markup a chunk is sent with.
type Format string

const (
	HTML  Format = "html"
	Plain Format = "plain"
)

const fence = "```"

// ToHTML converts markdown to Telegram HTML. Text outside markup is escaped.
// An unclosed code fence runs to the end of the input.
func ToHTML(md string) string {
	return convert(md, true)
}

// Strip removes markdown markup and keeps the text. Link targets are kept
// in parentheses after the link text.
func Strip(md string) string {
	return convert(md, false)
}

func convert(md string, html bool) string {
	if md == "" {
		return ""
	}

	var out, code strings.Builder
	inFence := false
	lines := strings.Split(md, "\n")

	flushCode := func() {
		body := strings.TrimSuffix(code.String(), "\n")
		if html {
			out.WriteString("<pre><code>")
			out.WriteString(escape(body))
			out.WriteString("</code></pre>")
		} else {
			out.WriteString(body)
		}
		code.Reset()
	}

	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), fence) {
			if inFence {
				flushCode()
			}
			inFence = !inFence
			if !inFence && i < len(lines)-1 {
				out.WriteByte('\n')
			}
			continue
		}

		if inFence {
			code.WriteString(line)
			code.WriteByte('\n')
			continue
		}

		out.WriteString(convertLine(line, html))
		if i < len(lines)-1 {
			out.WriteByte('\n')
		}
	}

	if inFence {
		flushCode()
	}
	return out.String()
}

// convertLine handles headings and inline markup of one line outside a
// code fence.
func convertLine(line string, html bool) string {
	trimmed := strings.TrimLeft(line, " ")
	if level := headingLevel(trimmed); level > 0 {
		text := inline(strings.TrimSpace(trimmed[level:]), html)
		if html {
			return "<b>" + text + "</b>"
		}
		return text
	}
	return inline(line, html)
}

func headingLevel(line string) int {
	n := 0
	for n < len(line) && n < 6 && line[n] == '#' {
		n++
	}
	if n == 0 || n >= len(line) || line[n] != ' ' {
		return 0
	}
	return n
}

// inline converts one line. Backtick spans are copied verbatim (escaped in
// HTML mode); everything else gets span and link conversion.
func inline(line string, html bool) string {
	var out strings.Builder
	parts := strings.Split(line, "`")
	closed := len(parts)%2 == 1

	for i, part := range parts {
		isCode := i%2 == 1 && (closed || i < len(parts)-1)
		switch {
		case isCode && html:
			out.WriteString("<code>" + escape(part) + "</code>")
		case isCode:
			out.WriteString(part)
		default:
			if i%2 == 1 {
				// dangling backtick
				out.WriteByte('`')
			}
			out.WriteString(spans(part, html))
		}
	}
	return out.String()
}

type span struct {
	marker string
	tag    string
}

var spanOrder = []span{
	{"**", "b"},
	{"__", "u"},
	{"~~", "s"},
	{"*", "i"},
	{"_", "i"},
}

func spans(text string, html bool) string {
	if html {
		text = escape(text)
	}
	text = links(text, html)
	for _, s := range spanOrder {
		text = pairs(text, s.marker, s.tag, html)
	}
	return text
}

// pairs replaces marker-delimited runs with the tag. A run must not start or
// end with a space, and single-character markers inside a word (snake_case,
// 2*3*4) are left alone.
func pairs(text, marker, tag string, html bool) string {
	var out strings.Builder
	rest := text

	for {
		open := findMarker(rest, marker, true)
		if open < 0 {
			break
		}
		afterOpen := rest[open+len(marker):]
		shut := findMarker(afterOpen, marker, false)
		if shut <= 0 {
			break
		}

		out.WriteString(rest[:open])
		content := afterOpen[:shut]
		if html {
			out.WriteString("<" + tag + ">" + content + "</" + tag + ">")
		} else {
			out.WriteString(content)
		}
		rest = afterOpen[shut+len(marker):]
	}

	out.WriteString(rest)
	return out.String()
}

func findMarker(s, marker string, opening bool) int {
	from := 0
	for {
		idx := strings.Index(s[from:], marker)
		if idx < 0 {
			return -1
		}
		idx += from
		if validMarker(s, idx, marker, opening) {
			return idx
		}
		from = idx + len(marker)
	}
}

func validMarker(s string, idx int, marker string, opening bool) bool {
	end := idx + len(marker)
	if opening {
		if end >= len(s) || s[end] == ' ' {
			return false
		}
		if len(marker) == 1 && idx > 0 && isWordByte(s[idx-1]) {
			return false
		}
		return true
	}
	if idx == 0 || s[idx-1] == ' ' {
		return false
	}
	if len(marker) == 1 && end < len(s) && isWordByte(s[end]) {
		return false
	}
	return true
}

func isWordByte(b byte) bool {
	return b < 0x80 && (unicode.IsLetter(rune(b)) || unicode.IsDigit(rune(b)))
}

// links converts [text](url).
func links(text string, html bool) string {
	var out strings.Builder
	rest := text

	for {
		open := strings.IndexByte(rest, '[')
		if open < 0 {
			break
		}
		mid := strings.Index(rest[open:], "](")
		if mid < 0 {
			break
		}
		mid += open
		end := strings.IndexByte(rest[mid:], ')')
		if end < 0 {
			break
		}
		end += mid

		label := rest[open+1 : mid]
		url := rest[mid+2 : end]
		out.WriteString(rest[:open])
		if html {
			out.WriteString(`<a href="` + strings.ReplaceAll(url, `"`, "&quot;") + `">` + label + "</a>")
		} else {
			out.WriteString(label + " (" + url + ")")
		}
		rest = rest[end+1:]
	}

	out.WriteString(rest)
	return out.String()
}

func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}
