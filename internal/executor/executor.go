// Package executor implements the Multi-Engine Query Executor: engine
// selection, dialect rewriting, read-only enforcement, result
// normalization, sampling, and the two-tier cache in front of execution.
package executor

import (
	"context"
	"fmt"

	"github.com/nlquery/orchestrator/internal/cache"
	"github.com/nlquery/orchestrator/internal/dialect"
)

// SourceKind mirrors the Data-Source Descriptor's kind field.
type SourceKind string

const (
	SourceFile      SourceKind = "file"
	SourceDatabase  SourceKind = "database"
	SourceWarehouse SourceKind = "warehouse"
	SourceAPI       SourceKind = "api"
)

// EngineTag names one of the five concrete engines.
type EngineTag string

const (
	EngineEmbedded    EngineTag = "embedded_analytic"
	EngineAggregation EngineTag = "aggregation_model"
	EngineBigData     EngineTag = "big_data"
	EngineDirectSQL   EngineTag = "direct_sql"
	EngineDataFrame   EngineTag = "data_frame"
)

// Descriptor is the Data-Source Descriptor of spec.md §3. Its lifetime is
// one request; the executor never caches ConnectionInfo.
type Descriptor struct {
	ID             string
	Kind           SourceKind
	SubKind        string
	ConnectionInfo map[string]any
	Schema         map[string][]string
	InlineSample   []map[string]any
}

// Request is the Engine Request contract of spec.md §3.
type Request struct {
	SQLText        string
	Source         Descriptor
	DialectHint    string
	ReadOnly       bool
	OptimizationFlag string
	EngineOverride   EngineTag

	// DataSize is the declared or estimated row count used for engine
	// selection; zero means "unknown, assume small".
	DataSize int64

	// Shape describes what the SQL does, used by engine selection.
	Shape QueryShape

	OrgID, ProjectID string
}

// QueryShape captures the structural signals engine selection needs.
type QueryShape struct {
	HasJoins          bool
	HasAggregations   bool
	HasSubqueries     bool
	HasWindowFuncs    bool
}

// Result is the Engine Result contract of spec.md §3.
type Result struct {
	Success         bool
	Data            []map[string]any
	Columns         []string
	RowCount        int
	EngineUsed      EngineTag
	ExecutionTimeMS int64
	Cached          bool
	IsSampled       bool
	Error           *Error
}

// ErrorKind classifies an executor failure per spec.md §4.5/§7.
type ErrorKind string

const (
	ErrTransient       ErrorKind = "execution_transient"
	ErrPermanent       ErrorKind = "execution_permanent"
	ErrSyntactic       ErrorKind = "syntactic_sql"
	ErrEngineUnavail   ErrorKind = "engine_unavailable"
)

// Error is a classified executor failure.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return string(e.Kind) + ": " + e.Message }

// Engine is the uniform execution backend contract spec.md §9 names.
type Engine interface {
	Tag() EngineTag
	Execute(ctx context.Context, req Request) Result
	// Ping reports whether the engine is currently reachable. Engines with
	// no remote dependency (Embedded) always return nil.
	Ping(ctx context.Context) error
}

// SelectionThresholds makes the row-count boundaries spec.md §9's open
// question calls out a configuration value rather than a constant.
type SelectionThresholds struct {
	AggregationFloor int64 // default 1,000,000
	BigDataFloor     int64 // default 100,000,000
}

// DefaultThresholds returns spec.md §4.5's stated defaults.
func DefaultThresholds() SelectionThresholds {
	return SelectionThresholds{AggregationFloor: 1_000_000, BigDataFloor: 100_000_000}
}

// SamplePolicy configures the oversized-result sampling strategy, exposed
// as configuration per spec.md §9's open question.
type SamplePolicy struct {
	Threshold int
	Head      int
	Tail      int
}

// DefaultSamplePolicy is spec.md §4.5's fixed 500+500 head/tail split for
// result sets over 1000 rows.
func DefaultSamplePolicy() SamplePolicy {
	return SamplePolicy{Threshold: 1000, Head: 500, Tail: 500}
}

// Executor is the façade described in spec.md §4.5: it selects an engine,
// rewrites SQL through the chosen dialect adapter, consults the two cache
// tiers, dispatches, and normalizes/samples the result.
type Executor struct {
	engines     map[EngineTag]Engine
	thresholds  SelectionThresholds
	sample      SamplePolicy
	scoped      cache.Scoped[Result]
	lru         cache.LRU[Result]
	monitor     *PerformanceMonitor
}

// New builds an Executor over the given engines and cache tiers.
func New(engines []Engine, scoped cache.Scoped[Result], lru cache.LRU[Result]) *Executor {
	m := make(map[EngineTag]Engine, len(engines))
	for _, e := range engines {
		m[e.Tag()] = e
	}
	return &Executor{
		engines:    m,
		thresholds: DefaultThresholds(),
		sample:     DefaultSamplePolicy(),
		scoped:     scoped,
		lru:        lru,
		monitor:    NewPerformanceMonitor(),
	}
}

// WithThresholds overrides the engine-selection row-count boundaries.
func (e *Executor) WithThresholds(t SelectionThresholds) *Executor {
	e.thresholds = t
	return e
}

// WithSamplePolicy overrides the oversized-result sampling strategy.
func (e *Executor) WithSamplePolicy(p SamplePolicy) *Executor {
	e.sample = p
	return e
}

// Execute runs one request end to end: engine selection, dialect rewrite,
// cache lookup, dispatch, sampling, and cache population.
func (e *Executor) Execute(ctx context.Context, req Request) Result {
	tag := e.selectEngine(req)

	adapter := dialect.ForSubKind(req.Source.SubKind)
	rewritten := adapter.Rewrite(req.SQLText)

	key := cache.ContentKey(req.OrgID, req.ProjectID, req.Source.ID, string(tag), req.OptimizationFlag, rewritten)

	if e.scoped != nil {
		if cached, ok := e.scoped.Get(ctx, key); ok {
			cached.Cached = true
			return cached
		}
	}
	if e.lru != nil {
		if cached, ok := e.lru.Get(key); ok {
			cached.Cached = true
			return cached
		}
	}

	eng, ok := e.engines[tag]
	if !ok {
		return Result{Success: false, Error: &Error{Kind: ErrEngineUnavail, Message: fmt.Sprintf("no engine registered for %s", tag)}}
	}

	if err := eng.Ping(ctx); err != nil {
		if fallback, ok := e.fallbackFor(tag, req); ok {
			eng = e.engines[fallback]
			tag = fallback
		} else {
			return Result{Success: false, Error: &Error{Kind: ErrEngineUnavail, Message: err.Error()}}
		}
	}

	req.SQLText = rewritten
	result := eng.Execute(ctx, req)
	result.EngineUsed = tag
	e.monitor.Record(tag, result.ExecutionTimeMS)

	if result.Success {
		result = sample(result, e.sample)
		if e.scoped != nil {
			e.scoped.Set(ctx, key, result, cache.DefaultQueryTTL)
		}
		if e.lru != nil {
			e.lru.Add(key, result)
		}
	}

	return result
}

// fallbackFor returns a legal alternative engine for the source kind when
// the selected engine is unreachable, per spec.md §7's engine_unavailable
// handling ("Executor picks an alternative if one is legal for the source
// kind").
func (e *Executor) fallbackFor(tag EngineTag, req Request) (EngineTag, bool) {
	if tag == EngineAggregation && req.Source.Kind != SourceFile {
		if _, ok := e.engines[EngineEmbedded]; ok {
			return EngineEmbedded, true
		}
	}
	return "", false
}

func sample(r Result, policy SamplePolicy) Result {
	if len(r.Data) <= policy.Threshold {
		return r
	}
	head := r.Data[:policy.Head]
	tail := r.Data[len(r.Data)-policy.Tail:]
	sampled := make([]map[string]any, 0, policy.Head+policy.Tail)
	sampled = append(sampled, head...)
	sampled = append(sampled, tail...)
	r.Data = sampled
	r.IsSampled = true
	// RowCount must stay the engine-reported count, not len(Data).
	return r
}
