package nodes

import (
	"context"

	"github.com/nlquery/orchestrator/graph"
	"github.com/nlquery/orchestrator/internal/wfstate"
)

// Stage values for the edge following ErrorRecovery, mirrored from
// _error_recovery_condition's four return strings.
const (
	StageRetry = "retry"
	StageFail  = "fail"
	// StageContinue reuses generate_insights directly; StageConversational
	// is shared with Route.
	StageContinue = "continue"
)

const maxErrorRecoveryAttempts = 2
const maxRetryAttempts = 2

// ErrorRecovery decides whether the workflow retries SQL generation,
// continues with partial results, bails out to the conversational
// dead-end, or fails outright — grounded on _error_recovery_condition,
// including its loop-prevention counters.
type ErrorRecovery struct{}

func (ErrorRecovery) Run(ctx context.Context, s wfstate.State) graph.NodeResult[wfstate.State] {
	delta := wfstate.State{}

	if s.DataSourceID == nil {
		if s.Message == "" {
			delta.Message = s.Query
		}
		delta.CurrentStage = StageConversational
		return graph.NodeResult[wfstate.State]{Delta: delta}
	}

	if s.ErrorRecoveryCount >= maxErrorRecoveryAttempts {
		delta.CurrentStage = StageFail
		return graph.NodeResult[wfstate.State]{Delta: delta}
	}
	delta.ErrorRecoveryCount = s.ErrorRecoveryCount + 1

	if s.RetryCount < maxRetryAttempts && s.SQLQuery == nil {
		delta.RetryCount = s.RetryCount + 1
		delta.CurrentStage = StageRetry
		return graph.NodeResult[wfstate.State]{Delta: delta}
	}

	if len(s.QueryResult) > 0 {
		delta.CurrentStage = StageContinue
		return graph.NodeResult[wfstate.State]{Delta: delta}
	}

	if s.SQLQuery != nil && s.RetryCount < maxRetryAttempts {
		delta.RetryCount = s.RetryCount + 1
		// The original routes this branch through "retry" too, which the
		// edge table sends to nl2sql rather than back to execute_query —
		// a second attempt at SQL generation rather than a bare re-execute.
		delta.CurrentStage = StageRetry
		return graph.NodeResult[wfstate.State]{Delta: delta}
	}

	delta.CurrentStage = StageFail
	return graph.NodeResult[wfstate.State]{Delta: delta}
}
