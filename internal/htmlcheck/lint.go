package htmlcheck

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// Rules run by Lint.
const (
	RuleDoctypeFirst      = "doctype-first"
	RuleTitleRequire      = "title-require"
	RuleIDUnique          = "id-unique"
	RuleTagPair           = "tag-pair"
	RuleSrcNotEmpty       = "src-not-empty"
	RuleAttrNoDuplication = "attr-no-duplication"
	RuleAltRequire        = "alt-require"
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// srcAttrs names the attribute that must not be empty, per tag.
var srcAttrs = map[string]string{
	"img": "src", "script": "src", "embed": "src", "iframe": "src",
	"audio": "src", "video": "src", "source": "src", "track": "src",
	"link": "href",
}

// Lint runs the local rules over pages below dir.
func Lint(dir string, pages []string) ([]Issue, error) {
	var issues []Issue
	for _, p := range pages {
		content, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(p)))
		if err != nil {
			return nil, err
		}
		issues = append(issues, LintHTML(p, content)...)
	}
	sortIssues(issues)
	return issues, nil
}

type openTag struct {
	name string
	line int
}

// LintHTML checks a single page. The tokenizer is used instead of the
// parser so that the markup is seen as written.
func LintHTML(name string, content []byte) []Issue {
	var (
		issues   []Issue
		stack    []openTag
		ids      = make(map[string]int)
		line     = 1
		seenTag  bool
		inTitle  bool
		hasTitle bool
		titleLen int
	)
	report := func(l int, rule, format string, args ...any) {
		issues = append(issues, Issue{File: name, Line: l, Rule: rule, Message: fmt.Sprintf(format, args...)})
	}

	z := html.NewTokenizer(bytes.NewReader(content))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				report(line, RuleTagPair, "unparsable markup: %v", z.Err())
			}
			break
		}
		start := line
		raw := z.Raw()
		line += bytes.Count(raw, []byte("\n"))

		switch tt {
		case html.DoctypeToken:
			if seenTag {
				report(start, RuleDoctypeFirst, "Doctype must be declared first.")
			}
			seenTag = true
		case html.TextToken:
			if inTitle {
				titleLen += len(strings.TrimSpace(string(raw)))
			}
			if len(bytes.TrimSpace(raw)) > 0 && !seenTag {
				report(start, RuleDoctypeFirst, "Doctype must be declared first.")
				seenTag = true
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			nameBytes, hasAttr := z.TagName()
			tag := string(nameBytes)
			if !seenTag {
				report(start, RuleDoctypeFirst, "Doctype must be declared first.")
				seenTag = true
			}

			attrs := make(map[string]string)
			for hasAttr {
				var k, v []byte
				k, v, hasAttr = z.TagAttr()
				key := string(k)
				if _, dup := attrs[key]; dup {
					report(start, RuleAttrNoDuplication, "Duplicate of attribute name [ %v ] was found.", key)
					continue
				}
				attrs[key] = string(v)
			}
			lintTag(tag, attrs, start, ids, report)

			if tag == "title" {
				hasTitle = true
				inTitle = tt == html.StartTagToken
				titleLen = 0
			}
			if tt == html.StartTagToken && !voidElements[tag] {
				stack = append(stack, openTag{name: tag, line: start})
			}
		case html.EndTagToken:
			nameBytes, _ := z.TagName()
			tag := string(nameBytes)
			if tag == "title" && inTitle {
				inTitle = false
				if titleLen == 0 {
					report(start, RuleTitleRequire, "<title></title> must not be empty.")
				}
			}
			if voidElements[tag] {
				continue
			}
			stack = closeTag(stack, tag, start, report)
		}
	}

	for i := len(stack) - 1; i >= 0; i-- {
		report(stack[i].line, RuleTagPair, "Tag must be paired, missing: [ </%v> ], start tag match failed [ <%v> ] on line %d.", stack[i].name, stack[i].name, stack[i].line)
	}
	if !hasTitle {
		report(0, RuleTitleRequire, "<title> must be present in <head> tag.")
	}
	return issues
}

func lintTag(tag string, attrs map[string]string, line int, ids map[string]int, report func(int, string, string, ...any)) {
	if id, ok := attrs["id"]; ok {
		if first, dup := ids[id]; dup {
			report(line, RuleIDUnique, "The id value [ %v ] must be unique, first used on line %d.", id, first)
		} else {
			ids[id] = line
		}
	}

	if attr, ok := srcAttrs[tag]; ok {
		if v, present := attrs[attr]; present && strings.TrimSpace(v) == "" {
			report(line, RuleSrcNotEmpty, "The attribute [ %v ] of the tag [ %v ] must have a value.", attr, tag)
		}
	}

	switch tag {
	case "img":
		if _, ok := attrs["alt"]; !ok {
			report(line, RuleAltRequire, "An alt attribute must be present on <img> elements.")
		}
	case "area":
		if _, href := attrs["href"]; href {
			if _, ok := attrs["alt"]; !ok {
				report(line, RuleAltRequire, "An alt attribute must be present on <area> elements with href.")
			}
		}
	case "input":
		if attrs["type"] == "image" {
			if _, ok := attrs["alt"]; !ok {
				report(line, RuleAltRequire, "An alt attribute must be present on <input type=\"image\"> elements.")
			}
		}
	}
}

// closeTag pops the stack to the matching start tag. Start tags skipped on
// the way were never closed.
func closeTag(stack []openTag, tag string, line int, report func(int, string, string, ...any)) []openTag {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].name != tag {
			continue
		}
		for j := len(stack) - 1; j > i; j-- {
			report(stack[j].line, RuleTagPair, "Tag must be paired, missing: [ </%v> ], start tag match failed [ <%v> ] on line %d.", stack[j].name, stack[j].name, stack[j].line)
		}
		return stack[:i]
	}
	report(line, RuleTagPair, "Tag must be paired, no start tag: [ </%v> ]", tag)
	return stack
}
