package ui

import (
	"encoding/json"
	"fmt"
	"strings"

	"maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"dashboard-gateway/internal/analysis"
	"dashboard-gateway/internal/backend"
)

func analysisPage(user string, saved []backend.SavedQuery, job *analysis.Job, errMsg string) gomponents.Node {
	var head gomponents.Node
	if job != nil && !job.Terminal() {
		// Re-render while the job is in flight; the poll loop runs server
		// side and this page only reads its latest snapshot.
		head = html.Meta(gomponents.Attr("http-equiv", "refresh"), html.Content("2"))
	}

	body := []gomponents.Node{
		errorBanner(errMsg),
		analysisForm(saved, job),
	}
	if job != nil {
		body = append(body, jobPanel(*job))
	}

	return appPageWithHead("Analysis", "analysis", user, head, body...)
}

func analysisForm(saved []backend.SavedQuery, job *analysis.Job) gomponents.Node {
	inFlight := job != nil && !job.Terminal()

	checkboxes := make([]gomponents.Node, 0, len(saved))
	for _, q := range saved {
		checkboxes = append(checkboxes, html.Label(
			html.Class("checkbox"),
			html.Input(html.Type("checkbox"), html.Name("query_ids"), html.Value(q.ID)),
			gomponents.Text(q.Query),
		))
	}
	var scope gomponents.Node
	if len(checkboxes) > 0 {
		scope = html.Div(
			html.Class("query-scope"),
			html.P(html.Class("muted"), gomponents.Text("Optionally scope the analysis to saved queries:")),
			gomponents.Group(checkboxes),
		)
	}

	submit := html.Button(html.Type("submit"), gomponents.Text("Analyze"))
	if inFlight {
		submit = html.Button(html.Type("submit"), html.Disabled(), gomponents.Text("Analyzing..."))
	}

	return html.Div(
		html.Class("panel"),
		html.H2(gomponents.Text("Request an analysis")),
		html.Form(
			html.Method("post"),
			html.Action("/analysis"),
			html.Class("analysis-form"),
			html.Textarea(
				html.Name("analysis_request"),
				html.Placeholder("What would you like to know about your data?"),
				html.Required(),
			),
			scope,
			submit,
		),
	)
}

func jobPanel(job analysis.Job) gomponents.Node {
	switch job.Status {
	case analysis.StatusPending:
		return html.Div(
			html.Class("panel job"),
			html.H2(gomponents.Text("Analysis in progress")),
			html.P(html.Class("muted"), gomponents.Text(fmt.Sprintf("Checked %d times. This page refreshes automatically.", job.Attempts))),
			html.Form(
				html.Method("post"),
				html.Action("/analysis/cancel"),
				html.Button(html.Type("submit"), html.Class("secondary"), gomponents.Text("Cancel")),
			),
		)
	case analysis.StatusCompleted:
		if job.Result == nil {
			return html.Div(html.Class("panel job"), html.P(html.Class("muted"), gomponents.Text("The analysis finished without results.")))
		}
		return html.Div(
			html.Class("panel job"),
			html.H2(gomponents.Text("Results")),
			resultSections(*job.Result),
		)
	case analysis.StatusCancelled:
		return html.Div(html.Class("panel job"), html.P(html.Class("muted"), gomponents.Text("Analysis cancelled.")))
	default:
		message := job.ErrorMessage
		if message == "" {
			message = "Analysis failed."
		}
		return html.Div(html.Class("panel job"), errorBanner(message))
	}
}

func resultSections(result analysis.Result) gomponents.Node {
	if result.Error != "" {
		return errorBanner(result.Error)
	}
	if !result.HasSections() {
		return html.P(html.Class("muted"), gomponents.Text("No renderable sections in this result."))
	}

	sections := []gomponents.Node{
		itemSection("Summary", result.Summary),
		itemSection("Insights", result.Insights),
		itemSection("Findings", result.Findings),
		itemSection("Trends", result.Trends),
		itemSection("Recommendations", result.Recommendations),
		itemSection("Anomalies", result.Anomalies),
		itemSection("Correlations", result.Correlations),
	}
	for _, extra := range result.Extra {
		sections = append(sections, itemSection(extra.Title, extra.Items))
	}
	if result.Visualization != nil {
		if encoded, err := json.MarshalIndent(result.Visualization, "", "  "); err == nil {
			sections = append(sections, html.Div(
				html.Class("section"),
				html.H3(gomponents.Text("Visualization")),
				html.Pre(html.Code(gomponents.Text(string(encoded)))),
			))
		}
	}
	if result.Metadata != nil {
		sections = append(sections, metadataFooter(*result.Metadata))
	}
	return gomponents.Group(sections)
}

func itemSection(title string, items []analysis.Item) gomponents.Node {
	if len(items) == 0 {
		return nil
	}
	entries := make([]gomponents.Node, 0, len(items))
	for _, item := range items {
		if item.Title != "" {
			entries = append(entries, html.Li(html.Strong(gomponents.Text(item.Title+": ")), gomponents.Text(item.Description)))
		} else {
			entries = append(entries, html.Li(gomponents.Text(item.Description)))
		}
	}
	return html.Div(
		html.Class("section"),
		html.H3(gomponents.Text(title)),
		html.Ul(gomponents.Group(entries)),
	)
}

func metadataFooter(meta analysis.Metadata) gomponents.Node {
	parts := []string{}
	if meta.AnalysisType != "" {
		parts = append(parts, "Type: "+meta.AnalysisType)
	}
	if meta.ProcessingTime != "" {
		parts = append(parts, "Processed in "+meta.ProcessingTime)
	}
	if meta.RecordCount > 0 {
		parts = append(parts, fmt.Sprintf("%d records", meta.RecordCount))
	}
	if len(meta.DataSources) > 0 {
		parts = append(parts, "Sources: "+strings.Join(meta.DataSources, ", "))
	}
	if meta.Timestamp != "" {
		parts = append(parts, meta.Timestamp)
	}
	if len(parts) == 0 {
		return nil
	}
	return html.P(html.Class("muted metadata"), gomponents.Text(strings.Join(parts, " · ")))
}
