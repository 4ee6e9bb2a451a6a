package htmlcheck

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// BadLink is a link whose target does not exist in the built site.
type BadLink struct {
	URL      string
	Referrer string
}

func (b BadLink) String() string {
	return fmt.Sprintf("Bad link: %v from %v", b.URL, b.Referrer)
}

// LinkReport is the outcome of a crawl.
type LinkReport struct {
	Checked int
	Bad     []BadLink
}

// LinkChecker crawls a built site on disk the way a crawler would crawl it
// served, starting at the root page and following every internal link.
type LinkChecker struct {
	Dir string
	// Hosts are treated as the site itself, e.g. the host of the site URL.
	Hosts []string
	// Skip are extensions that are neither fetched nor counted.
	Skip []string
}

func NewLinkChecker(dir string, hosts ...string) *LinkChecker {
	return &LinkChecker{Dir: dir, Hosts: hosts, Skip: []string{".pdf", ".js"}}
}

type link struct {
	tag, attr, url string
}

// Check crawls from "/". Every URL is fetched once; a missing target is
// reported with the first page that linked to it.
func (c *LinkChecker) Check() (LinkReport, error) {
	var report LinkReport
	root, _ := url.Parse("/")
	queue := []*url.URL{root}
	referrers := map[string]string{"/": ""}
	seen := map[string]bool{"/": true}

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]

		file, ok := c.resolve(u.Path)
		if !ok {
			report.Bad = append(report.Bad, BadLink{URL: u.String(), Referrer: referrers[u.String()]})
			continue
		}
		report.Checked++
		if filepath.Ext(file) != ".html" {
			continue
		}

		content, err := os.ReadFile(file)
		if err != nil {
			return report, err
		}
		links, err := extractLinks(content)
		if err != nil {
			return report, fmt.Errorf("%v: %w", u.Path, err)
		}
		for _, l := range links {
			target, ok := c.internal(u, l.url)
			if !ok {
				continue
			}
			key := target.String()
			if seen[key] {
				continue
			}
			seen[key] = true
			referrers[key] = u.String()
			queue = append(queue, target)
		}
	}

	slog.Debug("Crawled site", "dir", c.Dir, "checked", report.Checked, "bad", len(report.Bad))
	return report, nil
}

// internal resolves href against the page URL. External, special and
// skipped links return false.
func (c *LinkChecker) internal(page *url.URL, href string) (*url.URL, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return nil, false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return nil, false
	}
	if ref.Scheme != "" && ref.Scheme != "http" && ref.Scheme != "https" {
		return nil, false
	}
	if ref.Host != "" && !c.isSiteHost(ref.Host) {
		return nil, false
	}

	target := page.ResolveReference(ref)
	lower := strings.ToLower(target.Path)
	for _, ext := range c.Skip {
		if strings.HasSuffix(lower, ext) {
			return nil, false
		}
	}
	return &url.URL{Path: target.Path}, true
}

func (c *LinkChecker) isSiteHost(host string) bool {
	for _, h := range c.Hosts {
		if strings.EqualFold(h, host) {
			return true
		}
	}
	return false
}

// resolve maps a URL path to a file the way a static file server does:
// directories serve their index.html.
func (c *LinkChecker) resolve(p string) (string, bool) {
	clean := path.Clean("/" + p)
	file := filepath.Join(c.Dir, filepath.FromSlash(clean))
	info, err := os.Stat(file)
	if err != nil {
		return "", false
	}
	if info.IsDir() {
		file = filepath.Join(file, "index.html")
		if _, err := os.Stat(file); err != nil {
			return "", false
		}
	}
	return file, true
}

func extractLinks(content []byte) ([]link, error) {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	var links []link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			attr := ""
			switch n.Data {
			case "a", "link":
				attr = "href"
			case "img", "script", "source", "video", "audio":
				attr = "src"
			}
			if v := getAttr(n, attr); attr != "" && v != "" {
				links = append(links, link{tag: n.Data, attr: attr, url: v})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
