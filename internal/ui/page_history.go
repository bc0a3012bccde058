package ui

import (
	"maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"dashboard-gateway/internal/analysis"
	"dashboard-gateway/internal/backend"
	"dashboard-gateway/internal/tableview"
)

func historyPage(user string, entries []backend.HistoryEntry, errMsg string) gomponents.Node {
	var body gomponents.Node
	if len(entries) == 0 {
		body = html.P(html.Class("muted"), gomponents.Text("No past analyses."))
	} else {
		rows := make([]gomponents.Node, 0, len(entries))
		for _, entry := range entries {
			request := entry.Request
			if request == "" {
				request = entry.ID
			}
			rows = append(rows, html.Tr(
				html.Td(html.A(html.Href("/history/"+entry.ID), gomponents.Text(request))),
				html.Td(html.Span(html.Class("status status-"+entry.Status), gomponents.Text(orUnknown(entry.Status)))),
				html.Td(gomponents.Text(tableview.FormatCell("created_at", orDash(entry.CreatedAt)))),
				html.Td(
					html.Form(
						html.Method("post"),
						html.Action("/history/"+entry.ID+"/delete"),
						html.Button(html.Type("submit"), html.Class("secondary danger"), gomponents.Text("Delete")),
					),
				),
			))
		}
		body = html.Table(
			html.THead(html.Tr(html.Th(gomponents.Text("Request")), html.Th(gomponents.Text("Status")), html.Th(gomponents.Text("Created")), html.Th(gomponents.Text("")))),
			html.TBody(gomponents.Group(rows)),
		)
	}

	return appPage("History", "history", user,
		errorBanner(errMsg),
		body,
	)
}

func historyDetailPage(user, id string, result analysis.Result, errMsg string) gomponents.Node {
	return appPage("Analysis "+id, "history", user,
		errorBanner(errMsg),
		html.Div(html.Class("panel"), resultSections(result)),
	)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
