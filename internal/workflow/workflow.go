// Package workflow wires the orchestrator's nodes into a graph.Engine and
// exposes the run entry points spec.md §6 describes. The Connect() table in
// Build mirrors the original system's add_conditional_edges calls in
// langgraph_orchestrator.py 1:1, in the same registration order, since
// graph.Engine evaluates edges first-match-wins.
package workflow

import (
	"github.com/nlquery/orchestrator/graph"
	"github.com/nlquery/orchestrator/graph/emit"
	"github.com/nlquery/orchestrator/graph/store"
	"github.com/nlquery/orchestrator/internal/datasource"
	"github.com/nlquery/orchestrator/internal/executor"
	"github.com/nlquery/orchestrator/internal/llm"
	"github.com/nlquery/orchestrator/internal/nodes"
	"github.com/nlquery/orchestrator/internal/wfstate"
)

// Node IDs, mirrored verbatim from langgraph_orchestrator.py's add_node calls.
const (
	NodeRoute            = "route_query"
	NodeNL2SQL           = "nl2sql"
	NodeValidateSQL      = "validate_sql"
	NodeExecuteQuery     = "execute_query"
	NodeValidateResults  = "validate_results"
	NodeGenerateChart    = "generate_chart"
	NodeGenerateInsights = "generate_insights"
	NodeUnified          = "unified_chart_insights"
	NodeErrorRecovery    = "error_recovery"
	NodeCriticalFailure  = "critical_failure"
	NodeConversationEnd  = "conversational_end"
	NodeDeepFileAnalysis = "deep_file_analysis"
)

// Deps bundles the collaborators nodes need to run one turn. Conversation
// memory is not a node dependency: Runner.Execute and Runner.Stream load
// prior turns into State.ConversationHistory before the graph starts and persist the new
// turn after it ends, so nodes never see the memory store directly.
type Deps struct {
	Gen     llm.Generator
	Sources datasource.Service
	Exec    *executor.Executor
}

// Options configures the underlying graph.Engine.
type Options struct {
	Engine graph.Options
	Store  store.Store[wfstate.State]
	Emit   emit.Emitter
}

// Build wires every node and edge and returns a ready-to-run engine, along
// with the StreamHub the engine's events flow through. Pass opts.Emit for
// durable observability (logging, buffering, whatever an operator wants);
// the returned StreamHub wraps it so Runner.Stream can also subscribe to a
// single run's events without disturbing that base emitter. The edge
// registration order below is load-bearing: graph.Engine.evaluateEdges
// returns the first matching edge, exactly like the original's ordered
// add_conditional_edges mapping.
func Build(deps Deps, opts Options) (*graph.Engine[wfstate.State], *StreamHub, error) {
	st := opts.Store
	if st == nil {
		st = store.NewMemStore[wfstate.State]()
	}
	hub := NewStreamHub(opts.Emit)

	eng := graph.New[wfstate.State](wfstate.Reduce, st, hub, opts.Engine)

	type namedNode struct {
		id   string
		node graph.Node[wfstate.State]
	}
	allNodes := []namedNode{
		{NodeRoute, nodes.Route{}},
		{NodeNL2SQL, nodes.NL2SQL{Gen: deps.Gen, Sources: deps.Sources}},
		{NodeValidateSQL, nodes.ValidateSQL{Sources: deps.Sources}},
		{NodeExecuteQuery, nodes.ExecuteQuery{Sources: deps.Sources, Exec: deps.Exec}},
		{NodeValidateResults, nodes.ValidateResults{}},
		{NodeGenerateChart, nodes.GenerateChart{Gen: deps.Gen}},
		{NodeGenerateInsights, nodes.GenerateInsights{Gen: deps.Gen}},
		{NodeUnified, nodes.UnifiedChartInsights{Gen: deps.Gen}},
		{NodeErrorRecovery, nodes.ErrorRecovery{}},
		{NodeCriticalFailure, nodes.CriticalFailure{}},
		{NodeConversationEnd, nodes.ConversationalEnd{}},
		{NodeDeepFileAnalysis, nodes.DeepFileAnalysis{Gen: deps.Gen, Sources: deps.Sources, Exec: deps.Exec}},
	}
	for _, n := range allNodes {
		if err := eng.Add(n.id, historyNode{id: n.id, inner: n.node}); err != nil {
			return nil, nil, err
		}
	}

	if err := eng.StartAt(NodeRoute); err != nil {
		return nil, nil, err
	}

	if err := connectEdges(eng); err != nil {
		return nil, nil, err
	}

	return eng, hub, nil
}

func stageIs(stage string) graph.Predicate[wfstate.State] {
	return func(s wfstate.State) bool { return s.CurrentStage == stage }
}

func connectEdges(eng *graph.Engine[wfstate.State]) error {
	edges := []struct {
		from, to string
		when     graph.Predicate[wfstate.State]
	}{
		// route_query's conditional edges, in _route_condition's exact order.
		{NodeRoute, NodeDeepFileAnalysis, stageIs(nodes.StageDeepFileAnalysis)},
		{NodeRoute, NodeConversationEnd, stageIs(nodes.StageConversational)},
		{NodeRoute, NodeErrorRecovery, stageIs(nodes.StageError)},
		{NodeRoute, NodeNL2SQL, stageIs(nodes.StageNL2SQL)},
		{NodeRoute, NodeNL2SQL, nil}, // default: need SQL generation

		// nl2sql -> validate_sql is unconditional.
		{NodeNL2SQL, NodeValidateSQL, nil},

		// validate_sql's conditional edges, in _validate_condition's order.
		{NodeValidateSQL, NodeCriticalFailure, stageIs(nodes.StageCritical)},
		{NodeValidateSQL, NodeExecuteQuery, stageIs(nodes.StageValid)},
		{NodeValidateSQL, NodeErrorRecovery, stageIs(nodes.StageInvalid)},

		// execute_query -> validate_results is unconditional.
		{NodeExecuteQuery, NodeValidateResults, nil},

		// validate_results' conditional edges, in _post_validation_condition's order.
		{NodeValidateResults, NodeCriticalFailure, stageIs(nodes.StageCritical)},
		{NodeValidateResults, NodeUnified, stageIs(nodes.StageUnified)},
		{NodeValidateResults, NodeExecuteQuery, stageIs(nodes.StageRetryQuery)},
		{NodeValidateResults, NodeErrorRecovery, stageIs(nodes.StageError)},

		// generate_chart -> generate_insights is unconditional.
		{NodeGenerateChart, NodeGenerateInsights, nil},

		// unified_chart_insights' conditional edges (its "success" case sets
		// Route.Terminal itself; there is no Connect entry for it).
		{NodeUnified, NodeGenerateChart, stageIs(nodes.StageFallbackChart)},
		{NodeUnified, NodeGenerateInsights, stageIs(nodes.StageFallbackInsights)},
		{NodeUnified, NodeErrorRecovery, stageIs(nodes.StageError)},

		// error_recovery's conditional edges, in _error_recovery_condition's order.
		{NodeErrorRecovery, NodeNL2SQL, stageIs(nodes.StageRetry)},
		{NodeErrorRecovery, NodeGenerateInsights, stageIs(nodes.StageContinue)},
		{NodeErrorRecovery, NodeConversationEnd, stageIs(nodes.StageConversational)},
		{NodeErrorRecovery, NodeCriticalFailure, stageIs(nodes.StageFail)},
	}

	for _, e := range edges {
		if err := eng.Connect(e.from, e.to, e.when); err != nil {
			return err
		}
	}
	return nil
}
