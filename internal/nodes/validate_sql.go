package nodes

import (
	"context"
	"strings"

	"github.com/nlquery/orchestrator/graph"
	"github.com/nlquery/orchestrator/internal/datasource"
	"github.com/nlquery/orchestrator/internal/sqlguard"
	"github.com/nlquery/orchestrator/internal/wfstate"
)

// Stage values for the edge following ValidateSQL, mirrored from
// _validate_condition's three return strings.
const (
	StageValid    = "valid"
	StageInvalid  = "invalid"
	StageCritical = "critical"
)

// ValidateSQL runs the programmatic checks spec.md §4.4 requires before a
// query is allowed to execute: read-only enforcement, syntax pre-check,
// and schema grounding, grounded on multi_engine_query_service.py's
// validation helpers and _validate_condition's routing rules.
type ValidateSQL struct {
	Sources datasource.Service
}

func (v ValidateSQL) Run(ctx context.Context, s wfstate.State) graph.NodeResult[wfstate.State] {
	delta := wfstate.State{}

	if s.CriticalFailure {
		delta.CurrentStage = StageCritical
		return graph.NodeResult[wfstate.State]{Delta: delta}
	}

	if s.SQLQuery == nil || strings.TrimSpace(*s.SQLQuery) == "" {
		delta.Error = "validate_sql: no SQL query to validate"
		delta.CurrentStage = StageInvalid
		return graph.NodeResult[wfstate.State]{Delta: delta}
	}

	sqlText := *s.SQLQuery

	if err := sqlguard.CheckReadOnly(sqlText); err != nil {
		delta.Error = "validate_sql: " + err.Error()
		delta.CurrentStage = StageInvalid
		return graph.NodeResult[wfstate.State]{Delta: delta}
	}

	if err := sqlguard.CheckSyntax(sqlText); err != nil {
		delta.Error = "validate_sql: syntax error: " + err.Error()
		delta.CurrentStage = StageInvalid
		return graph.NodeResult[wfstate.State]{Delta: delta}
	}

	if s.DataSourceID != nil {
		if desc, err := v.Sources.GetByID(ctx, *s.DataSourceID); err == nil && len(desc.Schema) > 0 {
			if err := sqlguard.CheckSchemaGrounding(sqlText, sqlguard.Schema(desc.Schema)); err != nil {
				delta.Error = "validate_sql: " + err.Error()
				delta.CurrentStage = StageInvalid
				return graph.NodeResult[wfstate.State]{Delta: delta}
			}
		}
	}

	delta.CurrentStage = StageValid
	return graph.NodeResult[wfstate.State]{Delta: delta}
}
