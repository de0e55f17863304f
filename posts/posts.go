package posts

import (
	"strings"
	"time"
)

const excerptLength = 150

type Post struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Excerpt  string    `json:"excerpt,omitempty"`
	Author   string    `json:"author"`
	Date     time.Time `json:"date"`
	Tags     []string  `json:"tags"`
	Category string    `json:"category,omitempty"`
}

// Post fixture data
var fixtures = []Post{
	{
		ID:    "1",
		Title: "Welcome to My Blog",
		Content: "This is the first post on my personal blog. Here I will write about " +
			"web development, the tools I use every day and the things I learn along the way.",
		Author:   "Admin",
		Date:     time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		Tags:     []string{"welcome", "introduction"},
		Category: "General",
	},
	{
		ID:    "2",
		Title: "Getting Started with Web Development",
		Content: "Web development can look overwhelming at first. Start with HTML for structure, " +
			"add CSS for presentation and finally JavaScript for behaviour. Build small " +
			"projects, read other people's code and ship often.",
		Author:   "Admin",
		Date:     time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC),
		Tags:     []string{"web development", "html", "css", "javascript"},
		Category: "Tutorial",
	},
}

// Static returns the fixed post list. Every call returns a fresh copy so callers
// can't alter what the next caller sees.
func Static() []Post {
	list := make([]Post, len(fixtures))
	for i, p := range fixtures {
		p.Tags = append([]string(nil), p.Tags...)
		if p.Excerpt == "" {
			p.Excerpt = DeriveExcerpt(p.Content)
		}
		list[i] = p
	}
	return list
}

func DeriveExcerpt(content string) string {
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if len(runes) <= excerptLength {
		return content
	}
	return strings.TrimSpace(string(runes[:excerptLength])) + "..."
}

// Prepend puts p in front of list without touching the backing array of list.
func Prepend(list []Post, p Post) []Post {
	out := make([]Post, 0, len(list)+1)
	out = append(out, p)
	return append(out, list...)
}

// RemoveByID drops every post whose ID equals id and reports whether anything
// was removed.
func RemoveByID(list []Post, id string) ([]Post, bool) {
	out := make([]Post, 0, len(list))
	removed := false
	for _, p := range list {
		if p.ID == id {
			removed = true
			continue
		}
		out = append(out, p)
	}
	return out, removed
}

func FindByID(list []Post, id string) (Post, bool) {
	for _, p := range list {
		if p.ID == id {
			return p, true
		}
	}
	return Post{}, false
}

// ParseTags splits a comma separated tag list, trimming blanks and dropping
// duplicates while keeping the first-seen order.
func ParseTags(raw string) []string {
	seen := make(map[string]bool)
	tags := []string{}
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	return tags
}
