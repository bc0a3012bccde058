package ui

import (
	"fmt"
	"strconv"

	"maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"dashboard-gateway/internal/tableview"
)

// dataTable renders one derived table view plus its controls. Every control
// is a link or a GET form back to basePath, so the whole table state lives in
// the URL.
func dataTable(basePath string, view tableview.View, state tableview.State, cfg tableview.Config) gomponents.Node {
	return html.Div(
		html.Class("data-table"),
		tableControls(basePath, view, state, cfg),
		tableGrid(basePath, view, state, cfg),
		tablePager(basePath, view, state, cfg),
	)
}

func tableControls(basePath string, view tableview.View, state tableview.State, cfg tableview.Config) gomponents.Node {
	sizeOptions := cfg.PageSizeOptions
	if len(sizeOptions) == 0 {
		sizeOptions = tableview.DefaultConfig().PageSizeOptions
	}
	options := make([]gomponents.Node, 0, len(sizeOptions))
	for _, opt := range sizeOptions {
		attrs := []gomponents.Node{html.Value(strconv.Itoa(opt)), gomponents.Text(strconv.Itoa(opt))}
		if opt == view.PageSize {
			attrs = append(attrs, html.Selected())
		}
		options = append(options, html.Option(attrs...))
	}

	controls := []gomponents.Node{
		html.Input(html.Type("search"), html.Name("q"), html.Value(state.Search), html.Placeholder("Search all columns")),
		html.Select(html.Name("size"), gomponents.Group(options)),
		html.Button(html.Type("submit"), gomponents.Text("Apply")),
		html.Span(html.Class("muted"), gomponents.Text(fmt.Sprintf("%d rows", view.Total))),
	}
	// Sort and page survive the round trip. A changed search term still
	// restarts at page one: q0 echoes the term this form was rendered with,
	// and the state parser resets the page when the two differ.
	controls = append(controls, html.Input(html.Type("hidden"), html.Name("q0"), html.Value(state.Search)))
	if view.Page > 1 {
		controls = append(controls, html.Input(html.Type("hidden"), html.Name("page"), html.Value(strconv.Itoa(view.Page))))
	}
	if state.SortKey != "" {
		controls = append(controls, html.Input(html.Type("hidden"), html.Name("sort"), html.Value(state.SortKey)))
		if state.SortDesc {
			controls = append(controls, html.Input(html.Type("hidden"), html.Name("dir"), html.Value("desc")))
		}
	}

	return html.Form(html.Method("get"), html.Action(basePath), html.Class("table-controls"), gomponents.Group(controls))
}

func tableGrid(basePath string, view tableview.View, state tableview.State, cfg tableview.Config) gomponents.Node {
	headers := make([]gomponents.Node, 0, len(view.Columns))
	filters := make([]gomponents.Node, 0, len(view.Columns))
	for _, col := range view.Columns {
		headers = append(headers, html.Th(sortLink(basePath, col, state, cfg)))
		filters = append(filters, html.Td(
			html.Form(
				html.Method("get"),
				html.Action(basePath),
				html.Input(
					html.Type("text"),
					html.Name("f_"+col),
					html.Value(state.Filters[col]),
					html.Placeholder("Filter"),
					html.Class("column-filter"),
				),
				gomponents.Group(hiddenStateExcept(state, cfg, col)),
			),
		))
	}

	rows := make([]gomponents.Node, 0, len(view.Rows))
	for _, rec := range view.Rows {
		cells := make([]gomponents.Node, 0, len(view.Columns))
		for _, col := range view.Columns {
			cells = append(cells, html.Td(gomponents.Text(tableview.FormatCell(col, rec[col]))))
		}
		rows = append(rows, html.Tr(gomponents.Group(cells)))
	}
	if len(rows) == 0 {
		rows = append(rows, html.Tr(html.Td(
			gomponents.Attr("colspan", strconv.Itoa(max(len(view.Columns), 1))),
			html.Class("muted"),
			gomponents.Text("No matching rows"),
		)))
	}

	return html.Table(
		html.THead(html.Tr(gomponents.Group(headers)), html.Tr(html.Class("filter-row"), gomponents.Group(filters))),
		html.TBody(gomponents.Group(rows)),
	)
}

// sortLink toggles the sort on a column: unsorted to ascending to descending.
// The current page rides along; the view derivation clamps it if the new
// order leaves it out of range.
func sortLink(basePath, col string, state tableview.State, cfg tableview.Config) gomponents.Node {
	next := state
	label := tableview.FormatColumn(col)
	switch {
	case state.SortKey != col:
		next.SortKey = col
		next.SortDesc = false
	case !state.SortDesc:
		next.SortDesc = true
		label += " ▲"
	default:
		next.SortKey = ""
		next.SortDesc = false
		label += " ▼"
	}
	return html.A(html.Href(stateHref(basePath, next, cfg)), gomponents.Text(label))
}

func tablePager(basePath string, view tableview.View, state tableview.State, cfg tableview.Config) gomponents.Node {
	if view.PageCount <= 1 {
		return nil
	}
	prev := state
	prev.Page = view.Page - 1
	next := state
	next.Page = view.Page + 1

	parts := []gomponents.Node{}
	if view.Page > 1 {
		parts = append(parts, html.A(html.Href(stateHref(basePath, prev, cfg)), gomponents.Text("Previous")))
	}
	parts = append(parts, html.Span(html.Class("muted"),
		gomponents.Text(fmt.Sprintf("Page %d of %d", view.Page, view.PageCount))))
	if view.Page < view.PageCount {
		parts = append(parts, html.A(html.Href(stateHref(basePath, next, cfg)), gomponents.Text("Next")))
	}
	return html.Div(html.Class("pager"), gomponents.Group(parts))
}

// hiddenStateExcept carries the rest of the table state through a filter
// form, minus the page number: a changed filter restarts at page one.
func hiddenStateExcept(state tableview.State, cfg tableview.Config, skipFilter string) []gomponents.Node {
	reset := state
	reset.Page = 1
	values := reset.Encode(cfg)
	values.Del("f_" + skipFilter)

	var fields []gomponents.Node
	for key, vals := range values {
		for _, v := range vals {
			fields = append(fields, html.Input(html.Type("hidden"), html.Name(key), html.Value(v)))
		}
	}
	return fields
}

func stateHref(basePath string, state tableview.State, cfg tableview.Config) string {
	values := state.Encode(cfg)
	if len(values) == 0 {
		return basePath
	}
	return basePath + "?" + values.Encode()
}
