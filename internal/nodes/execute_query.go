package nodes

import (
	"context"

	"github.com/nlquery/orchestrator/graph"
	"github.com/nlquery/orchestrator/internal/datasource"
	"github.com/nlquery/orchestrator/internal/executor"
	"github.com/nlquery/orchestrator/internal/wfstate"
)

// ExecuteQuery dispatches the validated SQL to the Multi-Engine Query
// Executor and folds the result (or classified error) back into state.
type ExecuteQuery struct {
	Sources datasource.Service
	Exec    *executor.Executor
}

func (e ExecuteQuery) Run(ctx context.Context, s wfstate.State) graph.NodeResult[wfstate.State] {
	delta := wfstate.State{}

	if s.SQLQuery == nil {
		delta.Error = "execute_query: no SQL query available for execution"
		return graph.NodeResult[wfstate.State]{Delta: delta}
	}
	if s.DataSourceID == nil {
		delta.Error = "execute_query: no data source selected"
		return graph.NodeResult[wfstate.State]{Delta: delta}
	}

	desc, err := e.Sources.GetByID(ctx, *s.DataSourceID)
	if err != nil {
		delta.Error = "execute_query: " + err.Error()
		delta.QueryExecutionError = &wfstate.ExecutionError{Kind: "engine_unavailable", Message: err.Error()}
		return graph.NodeResult[wfstate.State]{Delta: delta}
	}

	sqlText := *s.SQLQuery
	result := e.Exec.Execute(ctx, executor.Request{
		SQLText:  sqlText,
		Source:   desc,
		ReadOnly: true,
		Shape:    executor.ShapeOf(sqlText),
		OrgID:    s.OrganizationID,
		ProjectID: s.ProjectID,
	})

	if !result.Success {
		msg := "unknown execution failure"
		kind := string(executor.ErrPermanent)
		if result.Error != nil {
			msg = result.Error.Message
			kind = string(result.Error.Kind)
		}
		delta.Error = "execute_query: " + msg
		delta.QueryExecutionError = &wfstate.ExecutionError{Kind: kind, Message: msg}
		return graph.NodeResult[wfstate.State]{Delta: delta}
	}

	delta.QueryResult = result.Data
	delta.QueryResultColumns = result.Columns
	delta.QueryResultRowCount = result.RowCount
	return graph.NodeResult[wfstate.State]{Delta: delta}
}
