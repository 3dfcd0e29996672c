package site

import (
	"bytes"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/squaremeter/squarelog/internal/errors"
)

// Post is one markdown journal entry with its parsed frontmatter.
type Post struct {
	Slug        string
	Filename    string
	Title       string
	Date        string // YYYY-MM-DD
	CoverImage  string
	SightingIDs []string
	Content     template.HTML
}

var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough),
)

// LoadPosts reads every markdown file in the posts directory, newest first by
// filename. Files are named {date}-{slug}.md or just {date}.md, so the
// reverse filename sort is a reverse date sort. A missing directory means no
// posts.
func LoadPosts(postsDir string) ([]Post, error) {
	entries, err := os.ReadDir(postsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.New(err).
			Component("site").
			Category(errors.CategoryFileIO).
			Context("dir", postsDir).
			Build()
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".md") {
			names = append(names, entry.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	posts := make([]Post, 0, len(names))
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(postsDir, name))
		if err != nil {
			return nil, errors.New(err).
				Component("site").
				Category(errors.CategoryFileIO).
				Context("file", name).
				Build()
		}

		slug := strings.TrimSuffix(name, ".md")
		frontmatter, body := splitFrontmatter(string(raw))

		var rendered bytes.Buffer
		if err := markdownRenderer.Convert([]byte(body), &rendered); err != nil {
			return nil, errors.New(err).
				Component("site").
				Category(errors.CategoryFileParsing).
				Context("file", name).
				Build()
		}

		post := Post{
			Slug:       slug,
			Filename:   name,
			Title:      frontmatter["title"],
			Date:       frontmatter["date"],
			CoverImage: frontmatter["cover_image"],
			Content:    template.HTML(rendered.String()),
		}
		if post.Title == "" {
			post.Title = slug
		}
		if post.Date == "" {
			post.Date = slug
		}
		if list, ok := frontmatter["sightings"]; ok && list != "" {
			post.SightingIDs = splitFrontmatterList(list)
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// splitFrontmatter separates a leading "---" frontmatter block from the body.
// Values are single-line "key: value" pairs; quotes are stripped and list
// values keep their bracket syntax for splitFrontmatterList.
func splitFrontmatter(content string) (map[string]string, string) {
	frontmatter := make(map[string]string)
	if !strings.HasPrefix(content, "---") {
		return frontmatter, content
	}

	parts := strings.SplitN(content, "---", 3)
	if len(parts) < 3 {
		return frontmatter, content
	}

	for _, line := range strings.Split(strings.TrimSpace(parts[1]), "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		frontmatter[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"'`)
	}
	return frontmatter, strings.TrimSpace(parts[2])
}

func splitFrontmatterList(value string) []string {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") {
		value = value[1 : len(value)-1]
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.Trim(strings.TrimSpace(item), `"'`)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
