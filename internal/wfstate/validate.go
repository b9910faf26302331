package wfstate

import "fmt"

// ErrUnknownStateVersion is returned by Validate when a state carries a
// state_version this build doesn't understand.
type ErrUnknownStateVersion struct {
	Got string
}

func (e *ErrUnknownStateVersion) Error() string {
	return fmt.Sprintf("wfstate: unknown state_version %q, want %q", e.Got, StateVersion)
}

// Validate checks the invariants spec.md §3 and §8 place on State. Neither
// the graph engine nor internal/workflow calls it; it runs only where a
// caller invokes it directly.
func Validate(s State) error {
	if s.StateVersion != StateVersion {
		return &ErrUnknownStateVersion{Got: s.StateVersion}
	}

	if s.CriticalFailure {
		// Counters are frozen; nothing further to check here, the latch
		// itself is enforced by Reduce.
		return nil
	}

	if len(s.QueryResult) > 0 {
		if len(s.QueryResultColumns) == 0 {
			return fmt.Errorf("wfstate: query_result non-empty but query_result_columns is empty")
		}
		first := s.QueryResult[0]
		if len(first) != len(s.QueryResultColumns) {
			return fmt.Errorf("wfstate: query_result_columns length %d does not match first row's %d keys", len(s.QueryResultColumns), len(first))
		}
		for _, col := range s.QueryResultColumns {
			if _, ok := first[col]; !ok {
				return fmt.Errorf("wfstate: column %q declared but absent from first result row", col)
			}
		}
		if s.QueryResultRowCount < len(s.QueryResult) {
			return fmt.Errorf("wfstate: query_result_row_count %d smaller than returned rows %d", s.QueryResultRowCount, len(s.QueryResult))
		}
	}

	total := s.RetryCount + s.ErrorRecoveryCount + s.QueryExecutionRetryCount
	if total > 6 {
		return fmt.Errorf("wfstate: combined retry counters %d exceed cap of 6", total)
	}

	if s.ProgressPercentage < 0 || s.ProgressPercentage > 100 {
		return fmt.Errorf("wfstate: progress_percentage %v out of [0,100]", s.ProgressPercentage)
	}

	return nil
}

// CounterExceeded reports whether any of the three independent retry
// counters has reached its per-counter cap of 2, per spec.md §8 invariant 3.
func CounterExceeded(s State) bool {
	const cap = 2
	return s.RetryCount >= cap || s.ErrorRecoveryCount >= cap || s.QueryExecutionRetryCount >= cap
}
