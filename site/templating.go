package site

import (
	"net/http"

	"blog/logging"
	"blog/posts"
	"blog/templates"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/gosimple/slug"
	g "github.com/maragudk/gomponents"
)

const dateLayout = "January 2, 2006"

func parseMarkdown(markdownStr string) string {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(markdownStr))

	// post content comes from visitors; raw HTML in it is dropped
	htmlFlags := html.CommonFlags | html.HrefTargetBlank | html.SkipHTML | html.Safelink
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})

	return string(markdown.Render(doc, renderer))
}

// postAnchor is the element id a post is rendered under. The post id is kept
// in it so two posts with the same title still get distinct anchors.
func postAnchor(p posts.Post) string {
	s := slug.Make(p.Title)
	if s == "" {
		return "post-" + slug.Make(p.ID)
	}
	return s + "-" + slug.Make(p.ID)
}

func postViews(list []posts.Post) []templates.PostView {
	views := make([]templates.PostView, 0, len(list))
	for _, p := range list {
		views = append(views, templates.PostView{
			ID:       p.ID,
			Slug:     postAnchor(p),
			Title:    p.Title,
			Body:     parseMarkdown(p.Content),
			Author:   p.Author,
			Date:     p.Date.Format(dateLayout),
			Tags:     p.Tags,
			Category: p.Category,
		})
	}
	return views
}

func renderPage(w http.ResponseWriter, r *http.Request, page g.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(w); err != nil {
		logging.FromContext(r.Context()).Errorw("page render failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
