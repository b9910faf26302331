package extract

import (
	"strings"

	"github.com/nlquery/orchestrator/internal/wfstate"
)

// Canonical is the canonical extracted record spec.md §4.8 names, built by
// walking the workflow's final state.
type Canonical struct {
	SQLQuery         string
	QueryResult      []map[string]any
	EChartsConfig    map[string]any
	ChartData        []map[string]any
	Insights         []wfstate.Insight
	Recommendations  []wfstate.Recommendation
	Narration        string
	ExecutiveSummary string
	Success          bool
}

const minNarrationLen = 50

// Meaningful implements spec.md §8 invariant 8: a result is meaningful iff
// at least one of {sql_query, query_result with >=1 row, non-empty chart
// spec, non-empty insights list, narration >=50 chars} is present. This
// OR-logic is deliberate — a user benefits from SQL alone or a chart alone.
func Meaningful(c Canonical) bool {
	if strings.TrimSpace(c.SQLQuery) != "" {
		return true
	}
	if len(c.QueryResult) > 0 {
		return true
	}
	if len(c.EChartsConfig) > 0 {
		return true
	}
	if len(c.Insights) > 0 {
		return true
	}
	if len(strings.TrimSpace(c.Narration)) >= minNarrationLen {
		return true
	}
	return false
}

// FromState builds a Canonical record from the final workflow state,
// following the extraction order spec.md §4.8 specifies: top-level state
// fields first, since by the time extraction runs the reducer has already
// folded every node's contribution into State. Success is set by Meaningful.
func FromState(s wfstate.State) Canonical {
	c := Canonical{
		EChartsConfig:    s.EChartsConfig,
		Insights:         NormalizeInsights(s.Insights),
		Recommendations:  s.Recommendations,
		ExecutiveSummary: s.ExecutiveSummary,
		Narration:        s.Narration,
	}
	if s.SQLQuery != nil {
		c.SQLQuery = *s.SQLQuery
	}
	c.QueryResult = s.QueryResult
	c.ChartData = s.QueryResult
	c.Success = Meaningful(c)
	return c
}

// NormalizeInsights implements spec.md §4.7's normalization rule: any bare
// string in a heterogeneous insights collection becomes a full Insight
// record. Since wfstate.State.Insights is already typed, this function's
// real job lives at the node boundary where raw model output (a mix of
// strings and objects) is first decoded; it is exposed here so that
// boundary and FromState share one normalization path.
func NormalizeInsights(insights []wfstate.Insight) []wfstate.Insight {
	out := make([]wfstate.Insight, 0, len(insights))
	for i, in := range insights {
		if in.Title == "" && in.Description == "" {
			continue
		}
		if in.Type == "" {
			in.Type = "general"
		}
		if in.Title == "" {
			in.Title = titleForIndex(i)
		}
		if in.Confidence == 0 {
			in.Confidence = 0.7
		}
		if in.Impact == "" {
			in.Impact = wfstate.ImpactMedium
		}
		out = append(out, in)
	}
	return out
}

func titleForIndex(i int) string {
	return "Insight " + itoa(i+1)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	if neg {
		b = append([]byte{'-'}, b...)
	}
	return string(b)
}

// NormalizeRawInsight converts one element of a heterogeneous model-returned
// insights array (a bare string or a partially-shaped map) into a typed
// Insight, per spec.md §4.7.
func NormalizeRawInsight(raw any, index int) wfstate.Insight {
	switch v := raw.(type) {
	case string:
		return wfstate.Insight{
			Type:        "general",
			Title:       titleForIndex(index),
			Description: v,
			Confidence:  0.7,
			Impact:      wfstate.ImpactMedium,
		}
	case map[string]any:
		ins := wfstate.Insight{
			Type:        str(v["type"], "general"),
			Title:       str(v["title"], titleForIndex(index)),
			Description: str(v["description"], ""),
			Confidence:  0.7,
			Impact:      wfstate.ImpactMedium,
		}
		if conf, ok := v["confidence"].(float64); ok {
			ins.Confidence = conf
		}
		if impact, ok := v["impact"].(string); ok && impact != "" {
			ins.Impact = wfstate.Impact(impact)
		}
		return ins
	default:
		return wfstate.Insight{Type: "general", Title: titleForIndex(index), Confidence: 0.7, Impact: wfstate.ImpactMedium}
	}
}

func str(v any, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}
