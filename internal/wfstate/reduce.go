package wfstate

// Reduce merges a partial delta produced by a node into the accumulated
// state. It follows the graph.Reducer contract: deterministic, pure, and
// safe to apply repeatedly during replay.
//
// Field-by-field policy:
//   - identity/input fields: replace when delta sets a non-zero value.
//   - SQLQuery/DataSourceID/QueryExecutionError: replace only when delta's
//     pointer is non-nil, so a node that doesn't touch the field can't
//     accidentally clear it.
//   - NodeHistory: append-only, never truncated or reordered.
//   - counters (RetryCount, ErrorRecoveryCount, QueryExecutionRetryCount):
//     once CriticalFailure is latched, frozen; otherwise last-write-wins
//     (nodes set the counter to its intended next value, not a delta to add).
//   - CriticalFailure: once true, stays true (terminal latch).
//   - ProgressPercentage: replace, but never decrease below prev unless the
//     delta's CurrentStage is "error_recovery".
//   - ExecutionMetadata: shallow-merged key by key.
func Reduce(prev, delta State) State {
	next := prev

	if delta.StateVersion != "" {
		next.StateVersion = delta.StateVersion
	}
	if delta.ConversationID != "" {
		next.ConversationID = delta.ConversationID
	}
	if delta.UserID != "" {
		next.UserID = delta.UserID
	}
	if delta.OrganizationID != "" {
		next.OrganizationID = delta.OrganizationID
	}
	if delta.ProjectID != "" {
		next.ProjectID = delta.ProjectID
	}
	if delta.Query != "" {
		next.Query = delta.Query
	}
	if delta.DataSourceID != nil {
		next.DataSourceID = delta.DataSourceID
	}
	if delta.AnalysisMode != "" {
		next.AnalysisMode = delta.AnalysisMode
	}

	if delta.SQLQuery != nil {
		next.SQLQuery = delta.SQLQuery
	}
	if delta.QueryExecutionError != nil {
		next.QueryExecutionError = delta.QueryExecutionError
	}

	if delta.QueryResult != nil {
		next.QueryResult = delta.QueryResult
	}
	if delta.QueryResultColumns != nil {
		next.QueryResultColumns = delta.QueryResultColumns
	}
	if delta.QueryResultRowCount != 0 {
		next.QueryResultRowCount = delta.QueryResultRowCount
	}

	if delta.EChartsConfig != nil {
		next.EChartsConfig = delta.EChartsConfig
	}
	if delta.ChartType != "" {
		next.ChartType = delta.ChartType
	}
	if delta.ChartTitle != "" {
		next.ChartTitle = delta.ChartTitle
	}

	if delta.Insights != nil {
		next.Insights = delta.Insights
	}
	if delta.Recommendations != nil {
		next.Recommendations = delta.Recommendations
	}
	if delta.ExecutiveSummary != "" {
		next.ExecutiveSummary = delta.ExecutiveSummary
	}

	if delta.Message != "" {
		next.Message = delta.Message
	}
	if delta.Narration != "" {
		next.Narration = delta.Narration
	}
	if delta.Analysis != "" {
		next.Analysis = delta.Analysis
	}

	if delta.CurrentStage != "" {
		next.CurrentStage = delta.CurrentStage
	}

	// Counters and the critical-failure latch are frozen once tripped.
	if !prev.CriticalFailure {
		if delta.RetryCount != 0 {
			next.RetryCount = delta.RetryCount
		}
		if delta.ErrorRecoveryCount != 0 {
			next.ErrorRecoveryCount = delta.ErrorRecoveryCount
		}
		if delta.QueryExecutionRetryCount != 0 {
			next.QueryExecutionRetryCount = delta.QueryExecutionRetryCount
		}
	}
	if delta.CriticalFailure {
		next.CriticalFailure = true
	}
	if delta.WorkflowComplete {
		next.WorkflowComplete = true
	}

	if len(delta.NodeHistory) > 0 {
		next.NodeHistory = append(append([]NodeHistoryEntry{}, prev.NodeHistory...), delta.NodeHistory...)
	}

	if delta.ProgressPercentage != 0 {
		if delta.CurrentStage == "error_recovery" || delta.ProgressPercentage >= prev.ProgressPercentage {
			next.ProgressPercentage = delta.ProgressPercentage
		}
	}
	if delta.ProgressMessage != "" {
		next.ProgressMessage = delta.ProgressMessage
	}
	if delta.Error != "" {
		next.Error = delta.Error
	}

	if len(delta.ConversationHistory) > 0 {
		next.ConversationHistory = delta.ConversationHistory
	}

	if len(delta.ExecutionMetadata) > 0 {
		merged := map[string]any{}
		for k, v := range prev.ExecutionMetadata {
			merged[k] = v
		}
		for k, v := range delta.ExecutionMetadata {
			merged[k] = v
		}
		next.ExecutionMetadata = merged
	}

	return next
}
