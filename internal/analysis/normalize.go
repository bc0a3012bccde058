package analysis

import (
	"fmt"
	"sort"
	"strings"
)

// Item is one rendered entry of a result section.
type Item struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description"`
}

// Section is a generically rendered result section for fields the client does
// not recognize. The backend's result schema is not fully fixed; unknown data
// is preserved rather than dropped.
type Section struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Items []Item `json:"items"`
}

// Metadata carries processing details attached to a result.
type Metadata struct {
	ProcessingTime string   `json:"processing_time,omitempty"`
	Timestamp      string   `json:"timestamp,omitempty"`
	AnalysisType   string   `json:"analysis_type,omitempty"`
	RecordCount    int      `json:"record_count,omitempty"`
	DataSources    []string `json:"data_sources,omitempty"`
}

// Result is the canonical display model for an analysis result, whatever
// shape the backend wrapped it in. Absent sections mean "nothing to render".
type Result struct {
	Error           string         `json:"error,omitempty"`
	Visualization   map[string]any `json:"visualization,omitempty"`
	Insights        []Item         `json:"insights,omitempty"`
	Trends          []Item         `json:"trends,omitempty"`
	Findings        []Item         `json:"findings,omitempty"`
	Recommendations []Item         `json:"recommendations,omitempty"`
	Summary         []Item         `json:"summary,omitempty"`
	Anomalies       []Item         `json:"anomalies,omitempty"`
	Correlations    []Item         `json:"correlations,omitempty"`
	Metadata        *Metadata      `json:"metadata,omitempty"`
	Extra           []Section      `json:"extra,omitempty"`
}

// HasSections reports whether anything beyond an error is renderable.
func (r Result) HasSections() bool {
	return r.Visualization != nil || len(r.Insights) > 0 || len(r.Trends) > 0 ||
		len(r.Findings) > 0 || len(r.Recommendations) > 0 || len(r.Summary) > 0 ||
		len(r.Anomalies) > 0 || len(r.Correlations) > 0 || len(r.Extra) > 0
}

var recognizedSections = map[string]struct{}{
	"visualization":   {},
	"insights":        {},
	"trends":          {},
	"findings":        {},
	"recommendations": {},
	"summary":         {},
	"anomalies":       {},
	"correlations":    {},
	"metadata":        {},
	"error":           {},
}

// Envelope keys stripped before generic passthrough; they describe the job,
// not the result.
var envelopeKeys = map[string]struct{}{
	"success": {},
	"status":  {},
	"message": {},
}

// Normalize reshapes one of the backend's observed result formats into the
// canonical Result. Shape detection runs in priority order: dashboard, then
// analysis.results, then results, then the payload itself. Pure and
// idempotent over the same input.
func Normalize(raw map[string]any) Result {
	obj := resultObject(raw)

	var result Result
	if msg, ok := obj["error"].(string); ok && msg != "" {
		result.Error = msg
		return result
	}

	result.Insights = itemList(obj["insights"])
	result.Trends = itemList(obj["trends"])
	result.Findings = itemList(obj["findings"])
	result.Recommendations = itemList(obj["recommendations"])
	result.Summary = itemList(obj["summary"])
	result.Anomalies = itemList(obj["anomalies"])
	result.Correlations = itemList(obj["correlations"])

	if viz, ok := obj["visualization"].(map[string]any); ok {
		result.Visualization = viz
	}
	if meta, ok := obj["metadata"].(map[string]any); ok {
		result.Metadata = parseMetadata(meta)
	}

	// Unrecognized fields are preserved and rendered generically under their
	// own key, title-cased.
	var extra []Section
	for key, value := range obj {
		if _, known := recognizedSections[key]; known {
			continue
		}
		if _, envelope := envelopeKeys[key]; envelope {
			continue
		}
		items := itemList(value)
		if len(items) == 0 {
			continue
		}
		extra = append(extra, Section{Key: key, Title: TitleForKey(key), Items: items})
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].Key < extra[j].Key })
	result.Extra = extra

	return result
}

// resultObject locates the result body inside the response envelope.
func resultObject(raw map[string]any) map[string]any {
	if dashboard, ok := raw["dashboard"].(map[string]any); ok {
		return dashboard
	}
	if analysis, ok := raw["analysis"].(map[string]any); ok {
		if results, ok := analysis["results"].(map[string]any); ok {
			return results
		}
	}
	if results, ok := raw["results"].(map[string]any); ok {
		return results
	}
	return raw
}

// itemList coerces a section value into display items. Sections arrive as
// arrays of {title, description} objects, arrays of strings, plain strings,
// or keyed objects.
func itemList(value any) []Item {
	switch v := value.(type) {
	case nil:
		return nil
	case []any:
		items := make([]Item, 0, len(v))
		for _, entry := range v {
			items = append(items, toItem(entry))
		}
		return items
	case string:
		if v == "" {
			return nil
		}
		return []Item{{Description: v}}
	case map[string]any:
		if len(v) == 0 {
			return nil
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		items := make([]Item, 0, len(keys))
		for _, k := range keys {
			item := toItem(v[k])
			if item.Title == "" {
				item.Title = TitleForKey(k)
			}
			items = append(items, item)
		}
		return items
	case bool, float64, int:
		return []Item{{Description: fmt.Sprintf("%v", v)}}
	default:
		return []Item{{Description: fmt.Sprintf("%v", v)}}
	}
}

func toItem(entry any) Item {
	switch v := entry.(type) {
	case map[string]any:
		item := Item{}
		if title, ok := v["title"].(string); ok {
			item.Title = title
		}
		if desc, ok := v["description"].(string); ok {
			item.Description = desc
		} else if text, ok := v["text"].(string); ok {
			item.Description = text
		} else {
			item.Description = fmt.Sprintf("%v", v)
		}
		if source, ok := v["source"].(string); ok && item.Title == "" {
			item.Title = source
		}
		return item
	case string:
		return Item{Description: v}
	default:
		return Item{Description: fmt.Sprintf("%v", v)}
	}
}

func parseMetadata(meta map[string]any) *Metadata {
	out := &Metadata{}
	if v, ok := meta["processing_time"].(string); ok {
		out.ProcessingTime = v
	}
	if v, ok := meta["timestamp"].(string); ok {
		out.Timestamp = v
	}
	if v, ok := meta["analysis_type"].(string); ok {
		out.AnalysisType = v
	}
	if v, ok := meta["record_count"].(float64); ok {
		out.RecordCount = int(v)
	}
	if sources, ok := meta["data_sources"].([]any); ok {
		for _, s := range sources {
			if str, ok := s.(string); ok {
				out.DataSources = append(out.DataSources, str)
			}
		}
	}
	return out
}

// TitleForKey turns a snake_case payload key into a display heading.
func TitleForKey(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '_' || r == ' ' })
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
