package nodes

import (
	"context"

	"github.com/nlquery/orchestrator/graph"
	"github.com/nlquery/orchestrator/internal/datasource"
	"github.com/nlquery/orchestrator/internal/dialect"
	"github.com/nlquery/orchestrator/internal/llm"
	"github.com/nlquery/orchestrator/internal/nl2sql"
	"github.com/nlquery/orchestrator/internal/sqlguard"
	"github.com/nlquery/orchestrator/internal/wfstate"
)

// NL2SQL turns the user's question into a SQL query for the selected data
// source, grounded on nl2sql_agent.py's generation call.
type NL2SQL struct {
	Gen     llm.Generator
	Sources datasource.Service
}

func (n NL2SQL) Run(ctx context.Context, s wfstate.State) graph.NodeResult[wfstate.State] {
	delta := wfstate.State{}

	if s.DataSourceID == nil {
		delta.Error = "nl2sql: no data source selected"
		return graph.NodeResult[wfstate.State]{Delta: delta}
	}

	desc, err := n.Sources.GetByID(ctx, *s.DataSourceID)
	if err != nil {
		delta.Error = "nl2sql: " + err.Error()
		return graph.NodeResult[wfstate.State]{Delta: delta}
	}

	priorSQL := ""
	if s.SQLQuery != nil {
		priorSQL = *s.SQLQuery
	}

	resp := nl2sql.Generate(ctx, n.Gen, nl2sql.Request{
		Query:      s.Query,
		Schema:     sqlguard.Schema(desc.Schema),
		PriorSQL:   priorSQL,
		Adapter:    dialect.ForSubKind(desc.SubKind),
		SourceKind: string(desc.Kind),
	})

	if !resp.Success {
		delta.Error = "nl2sql: " + resp.Error
		return graph.NodeResult[wfstate.State]{Delta: delta}
	}

	delta.SQLQuery = &resp.SQLQuery
	return graph.NodeResult[wfstate.State]{Delta: delta}
}
