package htmlcheck

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSite(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

func rules(issues []Issue) []string {
	var out []string
	for _, i := range issues {
		out = append(out, i.Rule)
	}
	return out
}

const goodPage = `<!DOCTYPE html>
<html>
<head><title>Home</title><link rel="stylesheet" href="/assets/site.css"></head>
<body>
<img src="/a.png" alt="A"><br>
<p id="intro">Hi</p>
</body>
</html>
`

func TestLintHTML_Clean(t *testing.T) {
	require.Empty(t, LintHTML("index.html", []byte(goodPage)))
}

func TestLintHTML_Rules(t *testing.T) {
	page := `<html>
<head><title> </title></head>
<body>
<div id="x"><span id="x">a</div>
<img src="">
<p class="a" class="b">b</p>
</em>
</body>
</html>
`
	issues := LintHTML("bad.html", []byte(page))
	require.ElementsMatch(t, []string{
		RuleDoctypeFirst,
		RuleTitleRequire,
		RuleIDUnique,
		RuleTagPair, // <span> never closed
		RuleSrcNotEmpty,
		RuleAltRequire,
		RuleAttrNoDuplication,
		RuleTagPair, // </em> without start
	}, rules(issues))

	for _, i := range issues {
		if i.Rule == RuleIDUnique {
			require.Equal(t, 4, i.Line)
			require.Contains(t, i.Message, "[ x ]")
		}
	}
}

func TestLintHTML_MissingTitle(t *testing.T) {
	issues := LintHTML("a.html", []byte("<!DOCTYPE html><html><head></head><body></body></html>"))
	require.Equal(t, []string{RuleTitleRequire}, rules(issues))
}

func TestLint_Dir(t *testing.T) {
	dir := writeSite(t, map[string]string{
		"index.html":        goodPage,
		"blog/index.html":   "<p>no doctype</p>",
		"assets/inner.html": "<p>skipped</p>",
	})
	pages, err := Pages(dir, []string{"assets/**"})
	require.NoError(t, err)
	require.Equal(t, []string{"blog/index.html", "index.html"}, pages)

	issues, err := Lint(dir, pages)
	require.NoError(t, err)
	require.NotEmpty(t, issues)
	for _, i := range issues {
		require.Equal(t, "blog/index.html", i.File)
	}
}

func TestValidator(t *testing.T) {
	var gotType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "json", r.URL.Query().Get("out"))
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		_, _ = io.WriteString(w, `{"messages": [
			{"type": "error", "lastLine": 3, "message": "Stray end tag div."},
			{"type": "info", "subType": "warning", "lastLine": 1, "message": "Consider adding a lang attribute."},
			{"type": "non-document-error", "subType": "io", "message": "ignored"}
		]}`)
	}))
	defer srv.Close()

	dir := writeSite(t, map[string]string{"index.html": goodPage})
	v := NewValidator(srv.URL + "/?out=json")
	issues, err := v.ValidateDir(context.Background(), dir, []string{"index.html"})
	require.NoError(t, err)

	require.Equal(t, "text/html; charset=utf-8", gotType)
	require.Equal(t, goodPage, gotBody)
	require.Equal(t, []Issue{{File: "index.html", Line: 3, Rule: "nu-error", Message: "Stray end tag div."}}, issues)
	require.Equal(t, "index.html:3: Stray end tag div. [nu-error]", issues[0].String())
}

func TestValidator_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewValidator(srv.URL).Validate(context.Background(), "a.html", []byte(goodPage))
	require.ErrorContains(t, err, "429")
}

func TestLinkChecker(t *testing.T) {
	dir := writeSite(t, map[string]string{
		"index.html": `<a href="/blog/">Blog</a>
<a href="about/">About</a>
<a href="https://seanbowman.me/about/#me">Abs</a>
<a href="https://example.com/missing">External</a>
<a href="mailto:me@example.com">Mail</a>
<a href="#top">Top</a>
<a href="/papers/thesis.pdf">Thesis</a>
<script src="/assets/missing.js"></script>
<link rel="stylesheet" href="/assets/site.css">`,
		"about/index.html":     `<a href="../blog/post/">Post</a><img src="/img/gone.png" alt="">`,
		"blog/index.html":      `<a href="post/">Post</a><a href="/nope/">Nope</a>`,
		"blog/post/index.html": `<a href="/">Home</a>`,
		"assets/site.css":      "body {}",
	})

	report, err := NewLinkChecker(dir, "seanbowman.me").Check()
	require.NoError(t, err)

	// "/", "/blog/", "/about/", "/assets/site.css", "/blog/post/"
	require.Equal(t, 5, report.Checked)
	require.ElementsMatch(t, []BadLink{
		{URL: "/nope/", Referrer: "/blog/"},
		{URL: "/img/gone.png", Referrer: "/about/"},
	}, report.Bad)
	require.Equal(t, "Bad link: /nope/ from /blog/", BadLink{URL: "/nope/", Referrer: "/blog/"}.String())
}
