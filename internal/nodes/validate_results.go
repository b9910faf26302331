package nodes

import (
	"context"
	"strings"

	"github.com/nlquery/orchestrator/graph"
	"github.com/nlquery/orchestrator/internal/wfstate"
)

// Stage values for the edge following ValidateResults, mirrored from
// _post_validation_condition's five return strings.
const (
	StageUnified    = "unified"
	StageRetryQuery = "retry_query"
	// StageError and StageCritical are shared with other nodes.
)

const maxExecutionRetries = 2

// ValidateResults decides, after execution, whether the workflow proceeds
// to chart/insight generation, retries execution, or fails — grounded on
// _post_validation_condition.
type ValidateResults struct{}

func (ValidateResults) Run(ctx context.Context, s wfstate.State) graph.NodeResult[wfstate.State] {
	delta := wfstate.State{}

	if s.CriticalFailure {
		delta.CurrentStage = StageCritical
		return graph.NodeResult[wfstate.State]{Delta: delta}
	}

	if s.Error != "" && containsAnyFold(s.Error, "connection", "auth", "permission") {
		delta.CurrentStage = StageCritical
		return graph.NodeResult[wfstate.State]{Delta: delta}
	}

	if len(s.QueryResult) > 0 {
		delta.CurrentStage = StageUnified
		return graph.NodeResult[wfstate.State]{Delta: delta}
	}

	if s.QueryExecutionRetryCount >= maxExecutionRetries {
		delta.Error = "Query executed but returned no results after multiple retries"
		delta.CurrentStage = StageError
		return graph.NodeResult[wfstate.State]{Delta: delta}
	}

	if s.SQLQuery != nil && s.QueryExecutionRetryCount < maxExecutionRetries {
		delta.QueryExecutionRetryCount = s.QueryExecutionRetryCount + 1
		delta.RetryCount = s.RetryCount + 1
		delta.CurrentStage = StageRetryQuery
		return graph.NodeResult[wfstate.State]{Delta: delta}
	}

	if s.SQLQuery == nil {
		delta.Error = "No SQL query available for execution"
	} else {
		delta.Error = "Query executed but returned no results after retries"
	}
	delta.CurrentStage = StageError
	return graph.NodeResult[wfstate.State]{Delta: delta}
}

func containsAnyFold(s string, subs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}
