package ui

import (
	gomponents "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"
)

type navItem struct {
	Label string
	Href  string
	Key   string
}

var navItems = []navItem{
	{Label: "Dashboard", Href: "/", Key: "home"},
	{Label: "Tables", Href: "/tables", Key: "tables"},
	{Label: "Queries", Href: "/queries", Key: "queries"},
	{Label: "Analysis", Href: "/analysis", Key: "analysis"},
	{Label: "History", Href: "/history", Key: "history"},
}

func appPage(title, active, userLabel string, body ...gomponents.Node) gomponents.Node {
	return appPageWithHead(title, active, userLabel, nil, body...)
}

func appPageWithHead(title, active, userLabel string, headExtra gomponents.Node, body ...gomponents.Node) gomponents.Node {
	nav := make([]gomponents.Node, 0, len(navItems))
	for _, item := range navItems {
		className := ""
		if item.Key == active {
			className = "active"
		}
		nav = append(nav, html.A(html.Href(item.Href), html.Class(className), gomponents.Text(item.Label)))
	}

	if userLabel == "" {
		userLabel = "unknown"
	}

	return html.HTML(
		html.Lang("en"),
		html.Head(
			html.Meta(html.Charset("utf-8")),
			html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
			html.TitleEl(gomponents.Text(title+" | Data Dashboard")),
			html.Link(html.Rel("stylesheet"), html.Href("/static/app.css")),
			headExtra,
		),
		html.Body(
			html.Main(
				html.Class("layout"),
				html.Div(
					html.Class("topbar"),
					html.Div(
						html.Strong(gomponents.Text("Data Dashboard")),
						html.P(html.Class("muted"), gomponents.Text("Upload, query and analyze your data")),
					),
					html.Div(
						html.P(html.Class("muted"), gomponents.Text("Signed in as "+userLabel)),
						html.Form(
							html.Method("post"),
							html.Action("/logout"),
							html.Button(html.Type("submit"), html.Class("secondary"), gomponents.Text("Sign out")),
						),
					),
				),
				html.Nav(html.Class("nav"), gomponents.Group(nav)),
				html.H1(html.Class("page-title"), gomponents.Text(title)),
				gomponents.Group(body),
			),
		),
	)
}

func errorBanner(message string) gomponents.Node {
	if message == "" {
		return nil
	}
	return html.Div(html.Class("banner error"), gomponents.Text(message))
}

func noticeBanner(message string) gomponents.Node {
	if message == "" {
		return nil
	}
	return html.Div(html.Class("banner notice"), gomponents.Text(message))
}
