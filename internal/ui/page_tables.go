package ui

import (
	"fmt"

	"maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"dashboard-gateway/internal/backend"
	"dashboard-gateway/internal/tableview"
)

func dashboardPage(user string, tables []backend.TableInfo, errMsg, notice string) gomponents.Node {
	return appPage("Dashboard", "home", user,
		errorBanner(errMsg),
		noticeBanner(notice),
		html.Div(
			html.Class("panel"),
			html.H2(gomponents.Text("Upload data")),
			html.P(html.Class("muted"), gomponents.Text("CSV files up to 25MB. Each upload becomes a queryable table.")),
			html.Form(
				html.Method("post"),
				html.Action("/upload"),
				html.EncType("multipart/form-data"),
				html.Class("upload-form"),
				html.Input(html.Type("file"), html.Name("file"), html.Accept(".csv"), html.Required()),
				html.Button(html.Type("submit"), gomponents.Text("Upload")),
			),
		),
		html.Div(
			html.Class("panel"),
			html.H2(gomponents.Text("Your tables")),
			tableList(tables),
		),
	)
}

func tablesPage(user string, tables []backend.TableInfo, errMsg string) gomponents.Node {
	return appPage("Tables", "tables", user,
		errorBanner(errMsg),
		tableList(tables),
	)
}

func tableList(tables []backend.TableInfo) gomponents.Node {
	if len(tables) == 0 {
		return html.P(html.Class("muted"), gomponents.Text("No tables yet. Upload a CSV to get started."))
	}
	rows := make([]gomponents.Node, 0, len(tables))
	for _, tbl := range tables {
		rows = append(rows, html.Tr(
			html.Td(html.A(html.Href("/tables/"+tbl.Name), gomponents.Text(tbl.Name))),
			html.Td(gomponents.Text(fmt.Sprintf("%d", tbl.RowCount))),
			html.Td(gomponents.Text(tableview.FormatCell("created_at", orDash(tbl.CreatedAt)))),
			html.Td(
				html.Form(
					html.Method("post"),
					html.Action("/tables/"+tbl.Name+"/delete"),
					html.Button(html.Type("submit"), html.Class("secondary danger"), gomponents.Text("Delete")),
				),
			),
		))
	}
	return html.Table(
		html.THead(html.Tr(html.Th(gomponents.Text("Table")), html.Th(gomponents.Text("Rows")), html.Th(gomponents.Text("Created")), html.Th(gomponents.Text("")))),
		html.TBody(gomponents.Group(rows)),
	)
}

func tableDetailPage(user, name string, view tableview.View, state tableview.State, cfg tableview.Config, errMsg string) gomponents.Node {
	return appPage("Table: "+name, "tables", user,
		errorBanner(errMsg),
		dataTable("/tables/"+name, view, state, cfg),
	)
}

func orDash(s string) any {
	if s == "" {
		return nil
	}
	return s
}
