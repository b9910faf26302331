// Command orchestrator runs a single natural-language query turn through
// the workflow graph and prints the finalized result as JSON. It exists to
// exercise the wiring end to end; a real deployment would drive
// internal/workflow.Runner from an HTTP or RPC handler instead of a CLI.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/nlquery/orchestrator/graph/emit"
	"github.com/nlquery/orchestrator/graph/model"
	"github.com/nlquery/orchestrator/graph/model/anthropic"
	"github.com/nlquery/orchestrator/graph/model/google"
	"github.com/nlquery/orchestrator/graph/model/openai"
	"github.com/nlquery/orchestrator/internal/cache"
	"github.com/nlquery/orchestrator/internal/config"
	"github.com/nlquery/orchestrator/internal/datasource"
	"github.com/nlquery/orchestrator/internal/executor"
	"github.com/nlquery/orchestrator/internal/llm"
	"github.com/nlquery/orchestrator/internal/memory"
	"github.com/nlquery/orchestrator/internal/wfstate"
	"github.com/nlquery/orchestrator/internal/workflow"
)

func main() {
	query := flag.String("query", "", "natural language question to ask")
	conversationID := flag.String("conversation", "", "conversation id (random when empty)")
	dataSourceID := flag.String("data-source", "", "registered data source id; omitted routes to the conversational branch")
	deep := flag.Bool("deep", false, "use deep file analysis mode")
	stream := flag.Bool("stream", false, "print progress deltas as they occur instead of waiting for the final result")
	flag.Parse()

	if strings.TrimSpace(*query) == "" {
		log.Fatal("orchestrator: -query is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("orchestrator: %v", err)
	}

	gen := buildGenerator(cfg)
	sources := buildSources()
	exec := buildExecutor(cfg)
	mem := buildMemory(cfg)

	eng, hub, err := workflow.Build(
		workflow.Deps{Gen: gen, Sources: sources, Exec: exec},
		workflow.Options{Emit: buildEmitter(cfg)},
	)
	if err != nil {
		log.Fatalf("orchestrator: build graph: %v", err)
	}

	convID := *conversationID
	if convID == "" {
		convID = uuid.NewString()
	}

	mode := wfstate.ModeStandard
	if *deep {
		mode = wfstate.ModeDeep
	}

	var dsPtr *string
	if strings.TrimSpace(*dataSourceID) != "" {
		dsPtr = dataSourceID
	}

	initial := wfstate.New(convID, "cli-user", "cli-org", "cli-project", *query, dsPtr, mode)

	runner := workflow.Runner{Engine: eng, Events: hub, Memory: mem, History: cfg.Memory.HistoryTurns}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if *stream {
		events, err := runner.Stream(context.Background(), uuid.NewString(), initial)
		if err != nil {
			log.Fatalf("orchestrator: %v", err)
		}
		for ev := range events {
			if err := enc.Encode(ev); err != nil {
				log.Fatalf("orchestrator: encode event: %v", err)
			}
		}
		return
	}

	result, err := runner.Execute(context.Background(), uuid.NewString(), initial)
	if err != nil {
		log.Fatalf("orchestrator: %v", err)
	}
	if err := enc.Encode(result); err != nil {
		log.Fatalf("orchestrator: encode result: %v", err)
	}
}

func buildGenerator(cfg *config.Config) llm.Generator {
	var m model.ChatModel
	switch strings.ToLower(cfg.Model.Provider) {
	case "openai":
		m = openai.NewChatModel(cfg.Model.OpenAIKey, cfg.Model.OpenAIModel)
	case "google":
		m = google.NewChatModel(cfg.Model.GoogleKey, cfg.Model.GoogleModel)
	default:
		m = anthropic.NewChatModel(cfg.Model.AnthropicKey, cfg.Model.AnthropicModel)
	}
	return llm.NewChatModelGenerator(m)
}

func buildSources() datasource.Service {
	// A real deployment backs this with a database-driven Service
	// implementation; the CLI only ever exercises whatever is registered
	// here, which is nothing until an operator extends it.
	return datasource.NewStaticService()
}

func buildExecutor(cfg *config.Config) *executor.Executor {
	engines := []executor.Engine{
		executor.NewEmbedded(),
		executor.NewDataFrame(executor.NewEmbedded()),
	}
	if cfg.Executor.AggregationURL != "" {
		engines = append(engines, executor.NewAggregation(cfg.Executor.AggregationURL, cfg.Executor.AggregationKey))
	}
	if cfg.Executor.BigDataURL != "" {
		url := cfg.Executor.BigDataURL
		engines = append(engines, executor.NewBigData(func() (string, error) { return url, nil }))
	}
	engines = append(engines, executor.NewDirectSQL())

	var scoped cache.Scoped[executor.Result] = cache.NoopScoped[executor.Result]{}
	lru := cache.NewLocalLRU[executor.Result](cfg.Cache.LocalLRUSize)

	return executor.New(engines, scoped, lru).
		WithThresholds(executor.SelectionThresholds{
			AggregationFloor: cfg.Executor.AggregationFloor,
			BigDataFloor:     cfg.Executor.BigDataFloor,
		}).
		WithSamplePolicy(executor.SamplePolicy{
			Threshold: cfg.Executor.SampleThreshold,
			Head:      cfg.Executor.SampleHead,
			Tail:      cfg.Executor.SampleTail,
		})
}

func buildMemory(cfg *config.Config) memory.Store {
	store, err := memory.NewSQLiteStore(cfg.Memory.SQLitePath)
	if err != nil {
		log.Fatalf("orchestrator: open memory store: %v", err)
	}
	return store
}

func buildEmitter(cfg *config.Config) emit.Emitter {
	switch strings.ToLower(cfg.Observability.EmitMode) {
	case "log":
		return emit.NewLogEmitter(os.Stderr, cfg.Observability.LogFormat == "json")
	case "buffered":
		return emit.NewBufferedEmitter()
	case "otel":
		return emit.NewOTelEmitter(otel.Tracer("nlquery-orchestrator"))
	default:
		return emit.NewNullEmitter()
	}
}
