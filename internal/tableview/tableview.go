package tableview

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Record is one row of backend data. Rows arrive as decoded JSON objects;
// the engine never mutates them.
type Record map[string]any

// Config is the per-surface table policy.
type Config struct {
	PageSizeOptions []int
	DefaultPageSize int
	Compact         bool
}

// DefaultConfig matches the standard table surfaces.
func DefaultConfig() Config {
	return Config{
		PageSizeOptions: []int{10, 25, 50, 100},
		DefaultPageSize: 10,
	}
}

// State is the full presentation state of one table. It lives in the URL
// query string, so every view is linkable and survives a reload.
type State struct {
	Search   string
	Filters  map[string]string
	SortKey  string
	SortDesc bool
	Page     int
	PageSize int
}

// View is the derived output: one page of rows plus the numbers the controls
// need. Derivation is pure; the same records and state always produce the
// same view.
type View struct {
	Columns   []string
	Rows      []Record
	Total     int
	Page      int
	PageCount int
	PageSize  int
}

// Columns derives the column set. An explicit backend-provided list wins;
// otherwise the first record defines the columns, sorted for a stable order.
func Columns(records []Record, explicit []string) []string {
	if len(explicit) > 0 {
		return explicit
	}
	if len(records) == 0 {
		return nil
	}
	cols := make([]string, 0, len(records[0]))
	for k := range records[0] {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// Apply runs the fixed pipeline: search, then per-column filters, then sort,
// then pagination. Each later stage sees only the previous stage's output.
func Apply(records []Record, explicit []string, state State, cfg Config) View {
	cols := Columns(records, explicit)

	rows := searchRows(records, state.Search)
	rows = filterRows(rows, state.Filters)
	rows = sortRows(rows, state.SortKey, state.SortDesc)

	size := clampPageSize(state.PageSize, cfg)
	total := len(rows)
	pageCount := (total + size - 1) / size
	if pageCount < 1 {
		pageCount = 1
	}
	page := state.Page
	if page < 1 {
		page = 1
	}
	if page > pageCount {
		page = pageCount
	}

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return View{
		Columns:   cols,
		Rows:      rows[start:end],
		Total:     total,
		Page:      page,
		PageCount: pageCount,
		PageSize:  size,
	}
}

// searchRows keeps rows where any cell contains the term, case-insensitively.
func searchRows(records []Record, term string) []Record {
	term = strings.TrimSpace(term)
	if term == "" {
		return records
	}
	needle := strings.ToLower(term)
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		for _, v := range rec {
			if strings.Contains(strings.ToLower(cellString(v)), needle) {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}

// filterRows keeps rows matching every active column filter.
func filterRows(records []Record, filters map[string]string) []Record {
	active := make(map[string]string, len(filters))
	for col, term := range filters {
		if t := strings.TrimSpace(term); t != "" {
			active[col] = strings.ToLower(t)
		}
	}
	if len(active) == 0 {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		keep := true
		for col, term := range active {
			if !strings.Contains(strings.ToLower(cellString(rec[col])), term) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, rec)
		}
	}
	return out
}

// sortRows orders rows by one column. When both values parse as numbers the
// comparison is numeric, otherwise lexicographic on the raw strings. The sort
// is stable so equal keys keep their arrival order.
func sortRows(records []Record, key string, desc bool) []Record {
	if key == "" {
		return records
	}
	out := make([]Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return cellLess(out[j][key], out[i][key])
		}
		return cellLess(out[i][key], out[j][key])
	})
	return out
}

func cellLess(a, b any) bool {
	af, aok := cellNumber(a)
	bf, bok := cellNumber(b)
	if aok && bok {
		return af < bf
	}
	return cellString(a) < cellString(b)
}

func cellNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil && strings.TrimSpace(n) != ""
	}
	return 0, false
}

func cellString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func clampPageSize(size int, cfg Config) int {
	options := cfg.PageSizeOptions
	if len(options) == 0 {
		options = DefaultConfig().PageSizeOptions
	}
	for _, opt := range options {
		if size == opt {
			return size
		}
	}
	if cfg.DefaultPageSize > 0 {
		return cfg.DefaultPageSize
	}
	return DefaultConfig().DefaultPageSize
}

// ParseState reads table state from a query string. Column filters use the
// "f_" prefix, e.g. f_region=west.
func ParseState(values url.Values, cfg Config) State {
	state := State{
		Search:   values.Get("q"),
		SortKey:  values.Get("sort"),
		SortDesc: values.Get("dir") == "desc",
		PageSize: cfg.DefaultPageSize,
		Filters:  map[string]string{},
	}
	if p, err := strconv.Atoi(values.Get("page")); err == nil && p > 0 {
		state.Page = p
	} else {
		state.Page = 1
	}
	// A changed search term restarts from the first page; sort and page-size
	// changes only clamp. The controls form echoes the term it was rendered
	// with as q0 so a change is detectable across the stateless round trip.
	if prev, ok := values["q0"]; ok && len(prev) > 0 && prev[0] != state.Search {
		state.Page = 1
	}
	if s, err := strconv.Atoi(values.Get("size")); err == nil && s > 0 {
		state.PageSize = s
	}
	for key, vals := range values {
		if !strings.HasPrefix(key, "f_") || len(vals) == 0 {
			continue
		}
		if col := strings.TrimPrefix(key, "f_"); col != "" && vals[0] != "" {
			state.Filters[col] = vals[0]
		}
	}
	return state
}

// Encode renders the state back into query parameters, dropping defaults so
// links stay short.
func (s State) Encode(cfg Config) url.Values {
	values := url.Values{}
	if s.Search != "" {
		values.Set("q", s.Search)
	}
	if s.SortKey != "" {
		values.Set("sort", s.SortKey)
		if s.SortDesc {
			values.Set("dir", "desc")
		}
	}
	if s.Page > 1 {
		values.Set("page", strconv.Itoa(s.Page))
	}
	if s.PageSize > 0 && s.PageSize != cfg.DefaultPageSize {
		values.Set("size", strconv.Itoa(s.PageSize))
	}
	for col, term := range s.Filters {
		if term != "" {
			values.Set("f_"+col, term)
		}
	}
	return values
}
