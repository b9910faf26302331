package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/nlquery/orchestrator/graph/emit"
	"github.com/nlquery/orchestrator/internal/wfstate"
)

// StreamHub fans every event the engine emits out to both the base emitter
// an operator configured (logging, buffering, whatever workflow.Options.Emit
// names) and any run-scoped subscribers — the "multi-emit" pattern
// emit.Emitter's doc comment describes. Runner.Stream is the only subscriber;
// Runner.Execute never calls Subscribe, so a plain run pays no fan-out cost
// beyond a map lookup that always misses.
type StreamHub struct {
	base emit.Emitter

	mu   sync.Mutex
	subs map[string][]chan emit.Event
}

// NewStreamHub wraps base, falling back to a null emitter when base is nil.
func NewStreamHub(base emit.Emitter) *StreamHub {
	if base == nil {
		base = emit.NewNullEmitter()
	}
	return &StreamHub{base: base, subs: map[string][]chan emit.Event{}}
}

func (h *StreamHub) Emit(event emit.Event) {
	h.base.Emit(event)

	h.mu.Lock()
	subs := h.subs[event.RunID]
	var chans []chan emit.Event
	if len(subs) > 0 {
		chans = append(chans, subs...)
	}
	h.mu.Unlock()

	for _, ch := range chans {
		select {
		case ch <- event:
		default:
			// A slow or absent reader must never stall the workflow; the
			// event is simply dropped from the stream.
		}
	}
}

func (h *StreamHub) EmitBatch(ctx context.Context, events []emit.Event) error {
	for _, e := range events {
		h.Emit(e)
	}
	return h.base.EmitBatch(ctx, events)
}

func (h *StreamHub) Flush(ctx context.Context) error {
	return h.base.Flush(ctx)
}

// Subscribe registers a buffered channel that receives every event carrying
// runID until unsubscribe is called. unsubscribe closes the channel.
func (h *StreamHub) Subscribe(runID string) (<-chan emit.Event, func()) {
	ch := make(chan emit.Event, 64)

	h.mu.Lock()
	h.subs[runID] = append(h.subs[runID], ch)
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		list := h.subs[runID]
		for i, c := range list {
			if c == ch {
				h.subs[runID] = append(list[:i], list[i+1:]...)
				break
			}
		}
		if len(h.subs[runID]) == 0 {
			delete(h.subs, runID)
		}
		close(ch)
	}
	return ch, unsubscribe
}

// StreamEvent is one delta of a streamed run, matching spec.md §6's
// stream_workflow shape: {type, progress:{percentage, message, stage},
// partial_results, timestamp}, with exactly one terminal delta per run.
type StreamEvent struct {
	Type           string // "progress", "complete", or "error"
	Percentage     float64
	Message        string
	Stage          string
	PartialResults PartialResults
	Timestamp      time.Time

	// Result is set only on the terminal delta when Type == "complete".
	Result *FinalResult
	// Error is set only on the terminal delta when Type == "error".
	Error string
}

// PartialResults is the subset of in-flight state a streaming client can
// safely render before the run completes: presence booleans and counts
// rather than full payloads, per spec.md §4's observability note.
type PartialResults struct {
	SQLQuery          string `json:"sql_query,omitempty"`
	QueryResultRows   int    `json:"query_result_row_count"`
	HasChart          bool   `json:"has_chart"`
	HasInsights       bool   `json:"has_insights"`
	CurrentStage      string `json:"current_stage"`
	RetryCount        int    `json:"retry_count"`
	ErrorRecoveryCount int   `json:"error_recovery_count"`
}

func partialResultsOf(s wfstate.State) PartialResults {
	p := PartialResults{
		QueryResultRows:    s.QueryResultRowCount,
		HasChart:           s.EChartsConfig != nil,
		HasInsights:        len(s.Insights) > 0,
		CurrentStage:       s.CurrentStage,
		RetryCount:         s.RetryCount,
		ErrorRecoveryCount: s.ErrorRecoveryCount,
	}
	if s.SQLQuery != nil {
		p.SQLQuery = *s.SQLQuery
	}
	return p
}

// Stream runs the workflow exactly as Execute does — dedup check, history
// load, the graph run, turn persistence — but instead of blocking for the
// final result it returns a channel of progress deltas as the graph's nodes
// complete, terminated by exactly one delta carrying Type "complete" or
// "error". The caller must drain the channel to completion; Stream closes it
// once the terminal delta has been sent.
//
// Stream requires Runner.Events (the StreamHub workflow.Build returns
// alongside the engine); without it there is nothing to subscribe to and
// Stream reports that as an error rather than silently degrading to a
// channel that only ever yields the terminal delta.
func (r Runner) Stream(ctx context.Context, runID string, initial wfstate.State) (<-chan StreamEvent, error) {
	if r.Events == nil {
		return nil, errStreamingNotConfigured
	}

	if r.Memory != nil {
		dup, err := r.Memory.RecentlyAnswered(ctx, initial.ConversationID, initial.Query)
		if err != nil {
			return nil, err
		}
		if dup {
			out := make(chan StreamEvent, 1)
			out <- StreamEvent{
				Type:      "complete",
				Stage:     "complete",
				Result:    &FinalResult{ConversationID: initial.ConversationID, Duplicate: true},
				Timestamp: time.Now(),
			}
			close(out)
			return out, nil
		}

		n := r.History
		if n <= 0 {
			n = DefaultHistoryTurns
		}
		turns, err := r.Memory.LoadLastN(ctx, initial.ConversationID, n)
		if err != nil {
			return nil, err
		}
		initial.ConversationHistory = turns

		if err := r.Memory.SaveUser(ctx, initial.ConversationID, initial.Query); err != nil {
			return nil, err
		}
	}

	events, unsubscribe := r.Events.Subscribe(runID)
	out := make(chan StreamEvent)

	go func() {
		defer close(out)
		defer unsubscribe()

		done := make(chan struct{})
		var final wfstate.State
		var runErr error

		go func() {
			defer close(done)
			final, runErr = r.Engine.Run(ctx, runID, initial)
		}()

		running := initial
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					continue
				}
				if ev.Msg != "node_end" {
					continue
				}
				delta, ok := ev.Meta["delta"].(wfstate.State)
				if !ok {
					continue
				}
				running = wfstate.Reduce(running, delta)
				out <- StreamEvent{
					Type:           "progress",
					Percentage:     running.ProgressPercentage,
					Message:        running.ProgressMessage,
					Stage:          running.CurrentStage,
					PartialResults: partialResultsOf(running),
					Timestamp:      time.Now(),
				}
			case <-done:
				if runErr != nil {
					out <- StreamEvent{
						Type:      "error",
						Stage:     running.CurrentStage,
						Error:     runErr.Error(),
						Timestamp: time.Now(),
					}
					return
				}

				result := Finalize(final)
				if r.Memory != nil {
					reply := result.Narration
					if reply == "" {
						reply = result.ExecutiveSummary
					}
					if reply == "" && result.Error != "" {
						reply = result.Error
					}
					if reply != "" {
						_ = r.Memory.SaveAI(ctx, initial.ConversationID, reply)
					}
				}

				out <- StreamEvent{
					Type:           "complete",
					Percentage:     100,
					Stage:          "complete",
					PartialResults: partialResultsOf(final),
					Result:         &result,
					Timestamp:      time.Now(),
				}
				return
			}
		}
	}()

	return out, nil
}

var errStreamingNotConfigured = streamingNotConfiguredError{}

type streamingNotConfiguredError struct{}

func (streamingNotConfiguredError) Error() string {
	return "workflow: Runner.Events is nil; build the engine with workflow.Build and pass its StreamHub to enable Stream"
}
