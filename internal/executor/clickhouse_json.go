package executor

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// parseClickHouseJSON decodes ClickHouse's FORMAT JSON response shape:
// {"meta": [{"name": "...", "type": "..."}], "data": [{...}, ...], "rows": N}
func parseClickHouseJSON(raw []byte) ([]map[string]any, []string, error) {
	if !gjson.ValidBytes(raw) {
		return nil, nil, fmt.Errorf("clickhouse: invalid JSON response")
	}
	parsed := gjson.ParseBytes(raw)

	var columns []string
	parsed.Get("meta").ForEach(func(_, v gjson.Result) bool {
		columns = append(columns, v.Get("name").String())
		return true
	})

	var data []map[string]any
	parsed.Get("data").ForEach(func(_, row gjson.Result) bool {
		m := make(map[string]any, len(columns))
		row.ForEach(func(k, v gjson.Result) bool {
			m[k.String()] = v.Value()
			return true
		})
		data = append(data, m)
		return true
	})

	return data, columns, nil
}
