package plugins

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thomas11/blogsmith/internal/smith"
)

func dated(path, date string) *smith.File {
	f := smith.NewFile(path, []byte("<p>"+path+"</p>"))
	f.Meta["date"] = date
	return f
}

func withCollection(s *smith.Smith, name string, members ...*smith.File) {
	s.Metadata["collections"] = map[string][]*smith.File{name: members}
	s.Metadata[name] = members
}

func TestTags(t *testing.T) {
	files := smith.Files{}
	a := dated("blog/a.html", "2016-01-01")
	a.Meta["tags"] = "Go, C++ Concurrency"
	b := dated("blog/b.html", "2016-02-01")
	b.Meta["tags"] = []any{"Go"}
	files.Add(a)
	files.Add(b)
	files.Add(smith.NewFile("about.html", nil))
	s := smith.New("src", "dst")

	run(t, Tags(TagOptions{Layout: "tag.html"}), files, s)

	require.Equal(t, []Tag{{Name: "Go", Slug: "go"}, {Name: "C++ Concurrency", Slug: "c-plus-plus-concurrency"}}, a.Meta["tags"])
	require.Equal(t, []Tag{{Name: "Go", Slug: "go"}}, b.Meta["tags"])
	require.NotContains(t, files["about.html"].Meta, "tags")

	page := files["tags/go/index.html"]
	require.NotNil(t, page)
	require.Equal(t, "Go", page.Meta["tag"])
	require.Equal(t, "go", page.Meta["tag_slug"])
	require.Equal(t, "tag.html", page.Meta["layout"])
	info := page.Meta["pagination"].(*PageInfo)
	require.Equal(t, []*smith.File{a, b}, info.Files)
	require.Contains(t, files, "tags/c-plus-plus-concurrency/index.html")

	byTag := s.Metadata["tags"].(map[string][]*smith.File)
	require.Len(t, byTag["Go"], 2)
	require.Len(t, byTag["C++ Concurrency"], 1)
}

func TestTags_Paginated(t *testing.T) {
	files := smith.Files{}
	for _, p := range []string{"a.html", "b.html", "c.html"} {
		f := smith.NewFile(p, nil)
		f.Meta["tags"] = "math"
		files.Add(f)
	}
	s := smith.New("src", "dst")

	run(t, Tags(TagOptions{PerPage: 2, Reverse: true, SortBy: "path", SkipMetadata: true}), files, s)

	first := files["tags/math/index.html"].Meta["pagination"].(*PageInfo)
	second := files["tags/math/2/index.html"].Meta["pagination"].(*PageInfo)
	require.Len(t, first.Pages, 2)
	require.Equal(t, "c.html", first.Files[0].Path)
	require.Equal(t, "b.html", first.Files[1].Path)
	require.Equal(t, "a.html", second.Files[0].Path)
	require.Same(t, files["tags/math/2/index.html"], first.Next)
	require.Same(t, files["tags/math/index.html"], second.Previous)
	require.NotContains(t, s.Metadata, "tags")
}

func TestTags_SlugCollision(t *testing.T) {
	files := smith.Files{}
	a := smith.NewFile("blog/a.html", nil)
	a.Meta["tags"] = "C++, C, Go"
	b := smith.NewFile("blog/b.html", nil)
	b.Meta["tags"] = "go"
	files.Add(a)
	files.Add(b)

	run(t, Tags(TagOptions{}), files, smith.New("s", "d"))

	require.Equal(t, []Tag{{Name: "C++", Slug: "c-plus-plus"}, {Name: "C", Slug: "c"}, {Name: "Go", Slug: "go"}}, a.Meta["tags"])
	require.Equal(t, []Tag{{Name: "go", Slug: "go-2"}}, b.Meta["tags"])
	for _, p := range []string{"tags/c-plus-plus/index.html", "tags/c/index.html", "tags/go/index.html", "tags/go-2/index.html"} {
		require.Contains(t, files, p)
	}
	require.Equal(t, "go", files["tags/go-2/index.html"].Meta["tag"])
}

func TestPagination(t *testing.T) {
	files := smith.Files{}
	posts := []*smith.File{dated("blog/c.html", "2016-03-01"), dated("blog/b.html", "2016-02-01"), dated("blog/a.html", "2016-01-01")}
	for _, p := range posts {
		files.Add(p)
	}
	s := smith.New("src", "dst")
	withCollection(s, "blog", posts...)

	run(t, Pagination(map[string]PaginationOptions{
		"collections.blog": {
			PerPage:      2,
			Layout:       "blog.html",
			First:        "index.html",
			Path:         "blog/page/:num/index.html",
			PageMetadata: map[string]any{"title": "Blog"},
		},
	}), files, s)

	home := files["index.html"]
	require.NotNil(t, home)
	require.Equal(t, "blog.html", home.Meta["layout"])
	require.Equal(t, "Blog", home.Meta["title"])

	info := home.Meta["pagination"].(*PageInfo)
	require.Equal(t, 1, info.Num)
	require.Equal(t, 0, info.Index)
	require.Equal(t, posts[:2], info.Files)
	require.Same(t, files["blog/page/2/index.html"], info.Next)
	require.Same(t, files["blog/page/2/index.html"], info.Last)
	require.Nil(t, info.Previous)

	last := files["blog/page/2/index.html"].Meta["pagination"].(*PageInfo)
	require.Equal(t, 2, last.Num)
	require.Equal(t, posts[2:], last.Files)
	require.Same(t, home, last.First)

	require.Contains(t, files, "blog/page/1/index.html")
}

func TestPagination_NoPageOne(t *testing.T) {
	files := smith.Files{}
	s := smith.New("src", "dst")
	withCollection(s, "cpp", dated("series/x.html", "2016-01-01"))

	run(t, Pagination(map[string]PaginationOptions{
		"cpp": {PerPage: 5, First: "series/index.html", Path: "series/page/:num/index.html", NoPageOne: true},
	}), files, s)

	require.Contains(t, files, "series/index.html")
	require.NotContains(t, files, "series/page/1/index.html")
}

func TestPagination_EmptyCollectionGetsOnePage(t *testing.T) {
	files := smith.Files{}
	s := smith.New("src", "dst")
	withCollection(s, "blog")

	run(t, Pagination(map[string]PaginationOptions{"blog": {PerPage: 3, Path: "blog/:num/index.html"}}), files, s)

	require.Len(t, files, 1)
	info := files["blog/1/index.html"].Meta["pagination"].(*PageInfo)
	require.Empty(t, info.Files)
}

func TestPagination_Errors(t *testing.T) {
	s := smith.New("src", "dst")
	err := Pagination(map[string]PaginationOptions{"blog": {Path: "p/:num.html"}})(context.Background(), smith.Files{}, s)
	require.ErrorIs(t, err, ErrCollectionNotFound)

	withCollection(s, "blog", dated("a.html", "2016-01-01"))
	files := smith.Files{}
	files.Add(smith.NewFile("index.html", nil))
	err = Pagination(map[string]PaginationOptions{"blog": {First: "index.html", Path: "p/:num.html"}})(context.Background(), files, s)
	require.ErrorContains(t, err, "already exists")
}

func TestPermalinks(t *testing.T) {
	files := smith.Files{}
	post := smith.NewFile("blog/post.html", nil)
	post.Meta["title"] = "Lock Free Queues"
	post.Meta["date"] = "2016-04-01"
	part := smith.NewFile("series/cpp/part-1.html", nil)
	part.Meta["title"] = "Threads"
	part.Meta["series_name"] = "cpp"
	part.Meta["collection"] = []string{"blog", "cpp_concurrency"}
	untitled := smith.NewFile("notes/untitled.html", nil)
	feed := smith.NewFile("blog.html", nil)
	feed.Meta["permalink"] = false
	for _, f := range []*smith.File{post, part, untitled, feed,
		smith.NewFile("blog/index.html", nil),
		smith.NewFile("css/site.css", nil),
	} {
		files.Add(f)
	}

	run(t, Permalinks(PermalinkOptions{
		Pattern: "blog/:date/:title",
		Linksets: []Linkset{{
			Match:   map[string]string{"collection": "cpp_concurrency"},
			Pattern: "blog/:series_name/:title",
		}},
	}), files, nil)

	require.Same(t, post, files["blog/2016/04/01/lock-free-queues/index.html"])
	require.Equal(t, "blog/2016/04/01/lock-free-queues", post.Meta["path"])
	require.Equal(t, "blog/2016/04/01/lock-free-queues/index.html", post.Path)

	require.Same(t, part, files["blog/cpp/threads/index.html"])
	require.Same(t, untitled, files["notes/untitled/index.html"])
	require.Equal(t, "blog", files["blog/index.html"].Meta["path"])

	require.Same(t, feed, files["blog.html"])
	require.Contains(t, files, "css/site.css")
	require.Len(t, files, 6)
}

func TestPermalinks_Duplicate(t *testing.T) {
	files := smith.Files{}
	for _, p := range []string{"a.html", "b.html"} {
		f := smith.NewFile(p, nil)
		f.Meta["title"] = "Same"
		files.Add(f)
	}
	err := Permalinks(PermalinkOptions{Pattern: ":title"})(context.Background(), files, nil)
	require.ErrorIs(t, err, ErrDuplicatePermalink)
	require.Len(t, files, 2)
}

func TestFeed(t *testing.T) {
	files := smith.Files{}
	first := dated("blog/first/index.html", "2016-01-10")
	first.Meta["title"] = "First"
	first.Meta["path"] = "blog/first"
	first.Meta["excerpt"] = "<p>Short.</p>"
	first.Meta["description"] = "The first post"
	first.Meta["tags"] = []Tag{{Name: "Go", Slug: "go"}}
	second := dated("blog/second/index.html", "2016-02-10")
	second.Meta["title"] = "Second"
	second.Meta["path"] = "blog/second"
	second.Meta["tags"] = "Go, Math"
	second.Meta["description"] = "The second post"
	s := smith.New("src", "dst")
	withCollection(s, "blog", second, first)

	run(t, Feed(FeedOptions{
		Collection: "blog",
		SiteURL:    "https://seanbowman.me",
		Title:      "Software! Math! Data!",
		Author:     "Sean Bowman",
		TagPath:    "blog/tags/:tag.xml",
	}), files, s)

	feed := files["feed.xml"]
	require.NotNil(t, feed)
	require.Equal(t, false, feed.Meta["permalink"])
	xml := string(feed.Contents)
	require.Contains(t, xml, "Software! Math! Data!")
	require.Contains(t, xml, "https://seanbowman.me/blog/first/")
	require.Contains(t, xml, "Second")

	require.Contains(t, files, "blog/tags/go.xml")
	require.Contains(t, string(files["blog/tags/math.xml"].Contents), "Second")
	require.NotContains(t, string(files["blog/tags/math.xml"].Contents), "https://seanbowman.me/blog/first/")
}

func TestFeed_MissingCollection(t *testing.T) {
	err := Feed(FeedOptions{Collection: "blog"})(context.Background(), smith.Files{}, smith.New("s", "d"))
	require.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestTags_Frequent(t *testing.T) {
	files := smith.Files{}
	for i, tc := range []struct{ date, tags string }{
		{"2016-01-01", "go, math"},
		{"2016-02-01", "go, data"},
		{"2016-03-01", "math, data"},
		{"2016-04-01", "go, rust"},
	} {
		f := dated(fmt.Sprintf("p%d.html", i), tc.date)
		f.Meta["tags"] = tc.tags
		files.Add(f)
	}
	s := smith.New("src", "dst")

	run(t, Tags(TagOptions{Frequent: 3, MinPosts: 2}), files, s)

	// go: 3 files; data and math tie on count and newest file.
	require.Equal(t, []Tag{
		{Name: "go", Slug: "go"},
		{Name: "data", Slug: "data"},
		{Name: "math", Slug: "math"},
	}, s.Metadata["frequent_tags"])

	run(t, Tags(TagOptions{Frequent: 5, MinPosts: 3}), smith.Files{}, s)
	require.Empty(t, s.Metadata["frequent_tags"])
}
