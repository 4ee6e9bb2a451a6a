package plugins

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/thomas11/blogsmith/internal/smith"
)

// PageInfo is the "pagination" metadata of a generated list page.
type PageInfo struct {
	// Num counts from 1, Index from 0.
	Num   int
	Index int
	// Pages are all pages of the set, in order.
	Pages []*smith.File
	// Files are the entries shown on this page.
	Files    []*smith.File
	First    *smith.File
	Last     *smith.File
	Previous *smith.File
	Next     *smith.File
}

type pageSet struct {
	perPage int
	layout  string
	// pathFor returns where page num goes.
	pathFor func(num int) string
	meta    map[string]any
}

// build splits entries into pages and adds them to files. A set with no
// entries still gets one empty page.
func (ps pageSet) build(files smith.Files, entries []*smith.File) ([]*smith.File, error) {
	perPage := ps.perPage
	if perPage <= 0 {
		perPage = max(len(entries), 1)
	}
	count := max((len(entries)+perPage-1)/perPage, 1)

	pages := make([]*smith.File, count)
	infos := make([]*PageInfo, count)
	for i := range pages {
		lo := min(i*perPage, len(entries))
		hi := min(lo+perPage, len(entries))

		p := smith.NewFile(ps.pathFor(i+1), nil)
		for k, v := range ps.meta {
			p.Meta[k] = v
		}
		if ps.layout != "" {
			p.Meta["layout"] = ps.layout
		}
		infos[i] = &PageInfo{Num: i + 1, Index: i, Files: entries[lo:hi:hi]}
		p.Meta["pagination"] = infos[i]
		pages[i] = p
	}

	for i, info := range infos {
		info.Pages = pages
		info.First = pages[0]
		info.Last = pages[count-1]
		if i > 0 {
			info.Previous = pages[i-1]
		}
		if i < count-1 {
			info.Next = pages[i+1]
		}
	}

	for _, p := range pages {
		if _, exists := files[p.Path]; exists {
			return nil, fmt.Errorf("page %v already exists", p.Path)
		}
		files.Add(p)
	}
	return pages, nil
}

func fillNum(pattern string, num int) string {
	return strings.ReplaceAll(pattern, ":num", strconv.Itoa(num))
}
