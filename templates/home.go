package templates

import (
	"strings"

	g "github.com/maragudk/gomponents"
	. "github.com/maragudk/gomponents/html"
)

// PostView is a post ready for display. Body is already rendered HTML.
type PostView struct {
	ID       string
	Slug     string
	Title    string
	Body     string
	Author   string
	Date     string
	Tags     []string
	Category string
}

// PostFormValues fills the shared create/edit form. An empty EditingID means
// the form creates a new post.
type PostFormValues struct {
	EditingID string
	Title     string
	Content   string
	Tags      []string
	Category  string
}

type Notice struct {
	Kind    string
	Message string
}

type HomeProps struct {
	Layout   LayoutProps
	Notice   Notice
	LoggedIn bool
	Form     PostFormValues
	Posts    []PostView
}

func HomePage(props HomeProps) g.Node {
	return Layout(props.Layout,
		NoticeComponent(props.Notice),
		g.If(!props.LoggedIn, LoginFormComponent()),
		g.If(props.LoggedIn, PostFormComponent(props.Form)),
		PostListComponent(props.Posts, props.LoggedIn),
	)
}

func NoticeComponent(n Notice) g.Node {
	if n.Message == "" {
		return nil
	}
	kind := n.Kind
	if kind != "error" {
		kind = "success"
	}
	return Div(Class("notice "+kind), g.Attr("role", "status"), g.Text(n.Message))
}

func LoginFormComponent() g.Node {
	return Div(Class("card"), ID("login"),
		H2(g.Text("Login")),
		g.El("form", Class("stacked"), Method("post"), Action("/login"),
			Input(Type("text"), Name("username"), Placeholder("Username"), Required()),
			Input(Type("password"), Name("password"), Placeholder("Password"), Required()),
			Button(Type("submit"), Class("primary"), g.Text("Login")),
		),
	)
}

func PostFormComponent(f PostFormValues) g.Node {
	editing := f.EditingID != ""

	heading, submit := "New post", "Create post"
	if editing {
		heading, submit = "Edit post", "Update post"
	}

	return Div(Class("card"), ID("post-form"),
		H2(g.Text(heading)),
		g.El("form", Class("stacked"), Method("post"), Action("/posts"),
			Input(Type("text"), Name("title"), Placeholder("Title"), Value(f.Title), Required()),
			Textarea(Name("content"), Placeholder("Write in markdown"), Required(), g.Text(f.Content)),
			Input(Type("text"), Name("tags"), Placeholder("Tags, comma separated"), Value(strings.Join(f.Tags, ", "))),
			Input(Type("text"), Name("category"), Placeholder("Category"), Value(f.Category)),
			Div(Class("post-actions"),
				Button(Type("submit"), Class("primary"), g.Text(submit)),
			),
		),
		g.If(editing,
			g.El("form", Class("inline"), Method("post"), Action("/posts/cancel"),
				Button(Type("submit"), g.Text("Cancel")),
			)),
	)
}

func PostListComponent(list []PostView, loggedIn bool) g.Node {
	if len(list) == 0 {
		return Div(Class("card"), P(g.Text("No posts yet.")))
	}

	nodes := make([]g.Node, 0, len(list))
	for _, p := range list {
		nodes = append(nodes, PostComponent(p, loggedIn))
	}
	return Div(Class("posts"), g.Group(nodes))
}

func PostComponent(p PostView, loggedIn bool) g.Node {
	tags := make([]g.Node, 0, len(p.Tags))
	for _, t := range p.Tags {
		tags = append(tags, Li(Class("badge"), g.Text(t)))
	}

	return g.El("article", Class("card"), ID(p.Slug),
		H2(A(Href("#"+p.Slug), g.Text(p.Title))),
		P(Class("post-meta"),
			g.Textf("By %s on ", p.Author),
			g.El("time", g.Text(p.Date)),
			g.If(p.Category != "", g.Textf(" in %s", p.Category)),
		),
		Div(Class("post-body"), g.Raw(p.Body)),
		g.If(len(tags) > 0, Ul(Class("post-tags"), g.Group(tags))),
		g.If(loggedIn,
			Div(Class("post-actions"),
				A(Href("/posts/"+p.ID+"/edit"), g.Text("Edit")),
				g.El("form", Class("inline"), Method("post"), Action("/posts/"+p.ID+"/delete"),
					Button(Type("submit"), g.Text("Delete")),
				),
			)),
	)
}
