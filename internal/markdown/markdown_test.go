package markdown

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "all good", "all good"},
		{"bold", "**done**", "<b>done</b>"},
		{"italic star", "an *important* note", "an <i>important</i> note"},
		{"italic underscore", "an _important_ note", "an <i>important</i> note"},
		{"underline", "__under__", "<u>under</u>"},
		{"strike", "~~old~~ new", "<s>old</s> new"},
		{"snake case untouched", "run make_check_all now", "run make_check_all now"},
		{"arithmetic untouched", "2 * 3 * 4", "2 * 3 * 4"},
		{"escapes html", "a < b && c > d", "a &lt; b &amp;&amp; c &gt; d"},
		{"inline code", "run `go test ./...` now", "run <code>go test ./...</code> now"},
		{"inline code escaped", "`<b>`", "<code>&lt;b&gt;</code>"},
		{"dangling backtick", "it`s", "it`s"},
		{"link", "see [docs](https://example.com/a?b=1&c=2)", `see <a href="https://example.com/a?b=1&amp;c=2">docs</a>`},
		{"heading", "## Report", "<b>Report</b>"},
		{"hashtag is not heading", "#general", "#general"},
		{
			name: "code fence",
			in:   "before\n```go\nif a < b {\n}\n```\nafter",
			want: "before\n<pre><code>if a &lt; b {\n}</code></pre>\nafter",
		},
		{
			name: "unclosed fence",
			in:   "```\nx := 1",
			want: "<pre><code>x := 1</code></pre>",
		},
		{"multi line", "- **a**\n- b", "- <b>a</b>\n- b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToHTML(tt.in))
		})
	}
}

func TestStrip(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"**done** and *more*", "done and more"},
		{"# Title\nbody", "Title\nbody"},
		{"see [docs](https://x.dev)", "see docs (https://x.dev)"},
		{"```\na < b\n```", "a < b"},
		{"`code` & text", "code & text"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Strip(tt.in), tt.in)
	}
}

func TestSplit_ShortText(t *testing.T) {
	assert.Equal(t, []string{"hello"}, Split("hello\n\n", 4096))
	assert.Nil(t, Split("\n", 4096))
	assert.Equal(t, []string{"abc"}, Split("abc", 0))
}

func TestSplit_OnLineBoundaries(t *testing.T) {
	text := "line one\nline two\nline three"
	chunks := Split(text, 18)

	assert.Equal(t, []string{"line one\nline two", "line three"}, chunks)
}

func TestSplit_LongLineCutOnRunes(t *testing.T) {
	text := strings.Repeat("й", 25)
	chunks := Split(text, 10)

	assert.Len(t, chunks, 3)
	assert.Equal(t, text, strings.Join(chunks, ""))
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 10)
		assert.True(t, utf8.ValidString(c))
	}
}

func TestSplit_ReopensCodeFence(t *testing.T) {
	var b strings.Builder
	b.WriteString("intro\n```\n")
	for range 10 {
		b.WriteString("0123456789\n")
	}
	b.WriteString("```\noutro")

	chunks := Split(b.String(), 40)

	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 40, c)
		assert.Equal(t, 0, strings.Count(c, fence)%2, "unbalanced fence in %q", c)
	}
	assert.Equal(t, "outro", strings.TrimSpace(chunks[len(chunks)-1][strings.LastIndex(chunks[len(chunks)-1], "\n")+1:]))
}

func TestProperty_SplitRespectsLimit(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		limit := rapid.IntRange(1, 64).Draw(rt, "limit")
		lines := rapid.SliceOfN(rapid.StringMatching("(```)?[a-zé ]{0,40}"), 1, 30).Draw(rt, "lines")
		text := strings.Join(lines, "\n")

		for _, c := range Split(text, limit) {
			if utf8.RuneCountInString(c) > limit {
				rt.Fatalf("chunk of %d runes exceeds %d: %q", utf8.RuneCountInString(c), limit, c)
			}
			if strings.TrimSpace(c) == "" {
				rt.Fatalf("empty chunk")
			}
		}
	})
}

func TestProperty_SplitKeepsPlainText(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		limit := rapid.IntRange(20, 64).Draw(rt, "limit")
		lines := rapid.SliceOfN(rapid.StringMatching("[a-z][a-z ]{0,18}"), 1, 30).Draw(rt, "lines")
		text := strings.Join(lines, "\n")

		joined := strings.Join(Split(text, limit), "\n")
		if joined != text {
			rt.Fatalf("split lost text:\n%q\n%q", text, joined)
		}
	})
}
