package tableview

import (
	"net/url"
	"reflect"
	"testing"
)

func sampleRecords() []Record {
	return []Record{
		{"product": "Widget", "units": float64(3), "region": "west"},
		{"product": "Gadget", "units": float64(12), "region": "east"},
		{"product": "Widget Pro", "units": float64(7), "region": "west"},
		{"product": "Sprocket", "units": float64(12), "region": "north"},
	}
}

func TestApplyIdentity(t *testing.T) {
	records := sampleRecords()
	view := Apply(records, nil, State{Page: 1}, DefaultConfig())

	if view.Total != len(records) {
		t.Fatalf("total = %d, want %d", view.Total, len(records))
	}
	if len(view.Rows) != len(records) {
		t.Fatalf("rows = %d, want all records on one page", len(view.Rows))
	}
	// With no sort the arrival order is preserved.
	if view.Rows[0]["product"] != "Widget" || view.Rows[3]["product"] != "Sprocket" {
		t.Fatalf("arrival order not preserved: %v", view.Rows)
	}
}

func TestColumnsFromFirstRecord(t *testing.T) {
	view := Apply(sampleRecords(), nil, State{Page: 1}, DefaultConfig())
	want := []string{"product", "region", "units"}
	if !reflect.DeepEqual(view.Columns, want) {
		t.Fatalf("columns = %v, want %v", view.Columns, want)
	}
}

func TestColumnsExplicitWins(t *testing.T) {
	explicit := []string{"units", "product"}
	view := Apply(sampleRecords(), explicit, State{Page: 1}, DefaultConfig())
	if !reflect.DeepEqual(view.Columns, explicit) {
		t.Fatalf("columns = %v, want explicit %v", view.Columns, explicit)
	}
}

func TestSearchIsCaseInsensitiveSubstring(t *testing.T) {
	view := Apply(sampleRecords(), nil, State{Search: "gad", Page: 1}, DefaultConfig())
	if view.Total != 1 || view.Rows[0]["product"] != "Gadget" {
		t.Fatalf("search gad matched %v", view.Rows)
	}
}

func TestFiltersAreANDed(t *testing.T) {
	state := State{
		Filters: map[string]string{"region": "west", "product": "pro"},
		Page:    1,
	}
	view := Apply(sampleRecords(), nil, state, DefaultConfig())
	if view.Total != 1 || view.Rows[0]["product"] != "Widget Pro" {
		t.Fatalf("AND filters matched %v", view.Rows)
	}
}

func TestNumericSortNotLexicographic(t *testing.T) {
	view := Apply(sampleRecords(), nil, State{SortKey: "units", Page: 1}, DefaultConfig())
	got := make([]float64, 0, len(view.Rows))
	for _, r := range view.Rows {
		got = append(got, r["units"].(float64))
	}
	want := []float64{3, 7, 12, 12}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("numeric sort order = %v, want %v", got, want)
	}
}

func TestNumericStringsSortNumerically(t *testing.T) {
	records := []Record{
		{"amount": "100"},
		{"amount": "20"},
		{"amount": float64(150)},
	}
	view := Apply(records, nil, State{SortKey: "amount", Page: 1}, DefaultConfig())
	got := []any{view.Rows[0]["amount"], view.Rows[1]["amount"], view.Rows[2]["amount"]}
	want := []any{"20", "100", float64(150)}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("mixed numeric sort = %v, want %v", got, want)
	}
}

func TestStringSortIsCaseSensitive(t *testing.T) {
	records := []Record{
		{"name": "apple"},
		{"name": "Banana"},
	}
	view := Apply(records, nil, State{SortKey: "name", Page: 1}, DefaultConfig())
	// Byte order puts uppercase before lowercase.
	if view.Rows[0]["name"] != "Banana" || view.Rows[1]["name"] != "apple" {
		t.Fatalf("ascending string sort = %v, want Banana before apple", view.Rows)
	}
}

func TestSortIsStableForEqualKeys(t *testing.T) {
	view := Apply(sampleRecords(), nil, State{SortKey: "units", Page: 1}, DefaultConfig())
	// Gadget arrived before Sprocket; both have 12 units.
	if view.Rows[2]["product"] != "Gadget" || view.Rows[3]["product"] != "Sprocket" {
		t.Fatalf("equal keys reordered: %v", view.Rows)
	}
}

func TestDescendingSort(t *testing.T) {
	view := Apply(sampleRecords(), nil, State{SortKey: "units", SortDesc: true, Page: 1}, DefaultConfig())
	if view.Rows[0]["units"].(float64) != 12 || view.Rows[3]["units"].(float64) != 3 {
		t.Fatalf("descending order = %v", view.Rows)
	}
}

func TestPagesReassembleWithoutLossOrOverlap(t *testing.T) {
	records := make([]Record, 23)
	for i := range records {
		records[i] = Record{"n": float64(i)}
	}
	cfg := DefaultConfig()
	state := State{SortKey: "n", PageSize: 10}

	var seen []float64
	for page := 1; ; page++ {
		state.Page = page
		view := Apply(records, nil, state, cfg)
		for _, r := range view.Rows {
			seen = append(seen, r["n"].(float64))
		}
		if page >= view.PageCount {
			break
		}
	}

	if len(seen) != 23 {
		t.Fatalf("reassembled %d rows, want 23", len(seen))
	}
	for i, v := range seen {
		if v != float64(i) {
			t.Fatalf("row %d = %v, pages overlap or skip", i, v)
		}
	}
}

func TestPageClampedToLastPage(t *testing.T) {
	view := Apply(sampleRecords(), nil, State{Page: 99}, DefaultConfig())
	if view.Page != 1 {
		t.Fatalf("page = %d, want clamp to 1", view.Page)
	}
	if len(view.Rows) != 4 {
		t.Fatalf("clamped page lost rows: %v", view.Rows)
	}
}

func TestUnknownPageSizeFallsBackToDefault(t *testing.T) {
	view := Apply(sampleRecords(), nil, State{Page: 1, PageSize: 7}, DefaultConfig())
	if view.PageSize != 10 {
		t.Fatalf("page size = %d, want default 10", view.PageSize)
	}
}

func TestParseStateRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	in := url.Values{}
	in.Set("q", "widget")
	in.Set("sort", "units")
	in.Set("dir", "desc")
	in.Set("page", "3")
	in.Set("size", "25")
	in.Set("f_region", "west")

	state := ParseState(in, cfg)
	if state.Search != "widget" || state.SortKey != "units" || !state.SortDesc {
		t.Fatalf("parsed state = %+v", state)
	}
	if state.Page != 3 || state.PageSize != 25 {
		t.Fatalf("parsed paging = %+v", state)
	}
	if state.Filters["region"] != "west" {
		t.Fatalf("parsed filters = %+v", state.Filters)
	}

	out := state.Encode(cfg)
	if !reflect.DeepEqual(ParseState(out, cfg), state) {
		t.Fatalf("encode/parse not a round trip: %v vs %+v", out, state)
	}
}

func TestParseStateResetsPageOnSearchChange(t *testing.T) {
	cfg := DefaultConfig()
	in := url.Values{}
	in.Set("q", "gadget")
	in.Set("q0", "widget")
	in.Set("page", "3")

	if state := ParseState(in, cfg); state.Page != 1 {
		t.Fatalf("changed search kept page %d, want 1", state.Page)
	}

	// Same term resubmitted, e.g. a page-size change, keeps the page.
	in.Set("q0", "gadget")
	if state := ParseState(in, cfg); state.Page != 3 {
		t.Fatalf("unchanged search moved to page %d, want 3", state.Page)
	}

	// Links carry no echo and never reset.
	in.Del("q0")
	if state := ParseState(in, cfg); state.Page != 3 {
		t.Fatalf("echo-less query moved to page %d, want 3", state.Page)
	}
}

func TestApplyIsPure(t *testing.T) {
	records := sampleRecords()
	state := State{Search: "w", SortKey: "units", Page: 1}
	cfg := DefaultConfig()

	first := Apply(records, nil, state, cfg)
	second := Apply(records, nil, state, cfg)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same input produced different views:\n%+v\n%+v", first, second)
	}
	// Source order must survive a sorted view.
	if records[0]["product"] != "Widget" || records[1]["product"] != "Gadget" {
		t.Fatalf("apply mutated its input: %v", records)
	}
}
