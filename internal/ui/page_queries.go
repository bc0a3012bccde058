package ui

import (
	"maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"dashboard-gateway/internal/backend"
	"dashboard-gateway/internal/tableview"
)

func queriesPage(user string, saved []backend.SavedQuery, errMsg string) gomponents.Node {
	var savedBlock gomponents.Node
	if len(saved) == 0 {
		savedBlock = html.P(html.Class("muted"), gomponents.Text("No saved queries yet."))
	} else {
		rows := make([]gomponents.Node, 0, len(saved))
		for _, q := range saved {
			rows = append(rows, html.Tr(
				html.Td(html.A(html.Href("/queries/"+q.ID), gomponents.Text(q.Query))),
				html.Td(html.Code(gomponents.Text(q.SQL))),
				html.Td(gomponents.Text(tableview.FormatCell("created_at", orDash(q.CreatedAt)))),
				html.Td(
					html.Form(
						html.Method("post"),
						html.Action("/queries/"+q.ID+"/delete"),
						html.Button(html.Type("submit"), html.Class("secondary danger"), gomponents.Text("Delete")),
					),
				),
			))
		}
		savedBlock = html.Table(
			html.THead(html.Tr(html.Th(gomponents.Text("Query")), html.Th(gomponents.Text("SQL")), html.Th(gomponents.Text("Created")), html.Th(gomponents.Text("")))),
			html.TBody(gomponents.Group(rows)),
		)
	}

	return appPage("Queries", "queries", user,
		errorBanner(errMsg),
		html.Div(
			html.Class("panel"),
			html.H2(gomponents.Text("Ask a question")),
			html.P(html.Class("muted"), gomponents.Text("Plain English is translated to SQL and run against your tables.")),
			html.Form(
				html.Method("post"),
				html.Action("/queries"),
				html.Class("query-form"),
				html.Textarea(html.Name("query"), html.Placeholder("e.g. total sales by region last quarter"), html.Required()),
				html.Button(html.Type("submit"), gomponents.Text("Run")),
			),
		),
		html.Div(
			html.Class("panel"),
			html.H2(gomponents.Text("Saved queries")),
			savedBlock,
		),
	)
}

func queryResultPage(user string, query backend.SavedQuery, view tableview.View, state tableview.State, cfg tableview.Config, errMsg string) gomponents.Node {
	title := query.Query
	if title == "" {
		title = "Query results"
	}
	body := []gomponents.Node{errorBanner(errMsg)}
	if query.SQL != "" {
		body = append(body, html.P(html.Class("muted"), html.Code(gomponents.Text(query.SQL))))
	}
	if view.Total == 0 && len(view.Columns) == 0 {
		body = append(body, html.P(html.Class("muted"), gomponents.Text("The query returned no rows.")))
	} else {
		body = append(body, dataTable("/queries/"+query.ID, view, state, cfg))
	}
	return appPage(title, "queries", user, gomponents.Group(body))
}
