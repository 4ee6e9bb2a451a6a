package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func render(t *testing.T, r Renderer, in string) string {
	t.Helper()
	out, err := r.Render([]byte(in))
	require.NoError(t, err)
	return string(out)
}

func TestGoldmark_BoxContainer(t *testing.T) {
	in := "::: box This is a title\nHere is some content\n:::\n\nAfter.\n"
	out := render(t, NewGoldmark(), in)

	require.Contains(t, out, `<div class="card"><div class="card-block">`)
	require.Contains(t, out, `<h4 class="card-title">This is a title</h4>`)
	require.Contains(t, out, `<p class="card-text">Here is some content</p>`)
	require.Contains(t, out, "</div></div>")
	require.Contains(t, out, "<p>After.</p>")
}

func TestGoldmark_BoxRequiresTitleKeyword(t *testing.T) {
	out := render(t, NewGoldmark(), "::: note\ntext\n:::\n")
	require.NotContains(t, out, "card")
}

func TestGoldmark_Math(t *testing.T) {
	out := render(t, NewGoldmark(), "Euler: $e^{i\\pi} + 1 = 0$ and $$a_1 * b_2$$\n")
	require.Contains(t, out, `\(e^{i\pi} + 1 = 0\)`)
	require.Contains(t, out, `\[a_1 * b_2\]`)
	require.NotContains(t, out, "<em>")
}

func TestGoldmark_TypographerAndHTML(t *testing.T) {
	out := render(t, NewGoldmark(), "\"quoted\" text\n\n<div class=\"raw\">kept</div>\n")
	require.Contains(t, out, "&ldquo;quoted&rdquo;")
	require.Contains(t, out, `<div class="raw">kept</div>`)
}

func TestGoldmark_HeadingIDs(t *testing.T) {
	out := render(t, NewGoldmark(), "## Lock free queues\n")
	require.Contains(t, out, `<h2 id="lock-free-queues">Lock free queues</h2>`)
}

func TestBlackfriday(t *testing.T) {
	out := render(t, NewBlackfriday(), "Some *text* -- with a dash\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.Contains(t, out, "<em>text</em>")
	require.Contains(t, out, "<table>")
}

func TestNew(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)
	require.IsType(t, &goldmarkRenderer{}, r)

	r, err = New("Blackfriday")
	require.NoError(t, err)
	require.IsType(t, &blackfridayRenderer{}, r)

	_, err = New("markdown-it")
	require.Error(t, err)
}
