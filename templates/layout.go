package templates

import (
	g "github.com/maragudk/gomponents"
	. "github.com/maragudk/gomponents/html"
)

type LayoutProps struct {
	Title       string
	SiteName    string
	CurrentUser string
	Theme       string
	Environment string
	DemoMode    bool
}

func NavbarComponent(props LayoutProps) g.Node {
	return Nav(Class("nav"),
		Div(Class("nav-left"),
			Div(Class("brand"), A(Href("/"), g.Text(props.SiteName))),
		),
		Div(Class("nav-right"),
			g.If(props.DemoMode, g.El("span", Class("badge"), g.Text("Demo mode"))),
			ThemeToggleComponent(props.Theme),
			g.If(props.CurrentUser != "",
				Div(Class("row"),
					g.El("span", g.Textf("Logged in as %s", props.CurrentUser)),
					g.El("form", Class("inline"), Method("post"), Action("/logout"),
						Button(Type("submit"), g.Text("Logout")),
					),
				)),
		),
	)
}

func ThemeToggleComponent(theme string) g.Node {
	label := "Dark theme"
	if theme == "dark" {
		label = "Light theme"
	}
	return g.El("form", Class("inline"), Method("post"), Action("/theme"),
		Button(Type("submit"), ID("theme-toggle"), g.Text(label)),
	)
}

func FooterComponent(props LayoutProps) g.Node {
	return Footer(Class("footer"),
		g.El("small", g.Textf("%s · %s environment", props.SiteName, props.Environment)),
	)
}

func Layout(props LayoutProps, children ...g.Node) g.Node {
	theme := props.Theme
	if theme == "" {
		theme = "light"
	}

	return Doctype(
		HTML(
			Lang("en"),
			g.Attr("data-theme", theme),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
				Link(Rel("stylesheet"), Href("/assets/css/main.css")),
				TitleEl(g.Text(props.Title)),
			),
			Body(
				Div(Class("container"),
					NavbarComponent(props),
					Main(
						g.Group(children),
					),
				),
				FooterComponent(props),
			),
		),
	)
}
