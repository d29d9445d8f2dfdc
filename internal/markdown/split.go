package markdown

import (
	"strings"
	"unicode/utf8"
)

// Split cuts text into chunks of at most limit runes, breaking on line
// boundaries. A line longer than limit is cut on rune boundaries. A chunk
// that ends inside a code fence is closed and the fence is reopened in the
// next chunk, so every chunk converts on its own.
func Split(text string, limit int) []string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	const (
		reopen  = fence + "\n"
		closing = "\n" + fence
	)
	reserve := len(reopen) + len(closing)
	if limit <= 2*reserve {
		reserve = 0
	}

	var (
		chunks  []string
		cur     strings.Builder
		curLen  int
		base    int
		inFence bool
	)

	flush := func() {
		chunk := strings.TrimRight(cur.String(), "\n")
		cur.Reset()
		curLen, base = 0, 0

		continued := inFence && reserve > 0
		if continued {
			chunk += closing
		}
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
		if continued {
			cur.WriteString(reopen)
			curLen = len(reopen)
			base = curLen
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		toggles := strings.HasPrefix(strings.TrimSpace(line), fence)
		budget := limit
		if inFence || toggles {
			budget = limit - reserve
		}
		n := utf8.RuneCountInString(line)

		if curLen+n > budget && curLen > base {
			flush()
		}

		for curLen+n > budget {
			head, tail := splitRunes(line, budget-curLen)
			cur.WriteString(head)
			curLen += utf8.RuneCountInString(head)
			flush()
			line = tail
			n = utf8.RuneCountInString(line)
		}

		cur.WriteString(line)
		curLen += n

		if toggles {
			inFence = !inFence
		}
	}

	inFence = false
	flush()
	return chunks
}

func splitRunes(s string, n int) (string, string) {
	i := 0
	for idx := range s {
		if i == n {
			return s[:idx], s[idx:]
		}
		i++
	}
	return s, ""
}
