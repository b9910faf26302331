// Package memory implements conversation memory: the per-conversation
// turn log the router and nl2sql nodes consult for follow-up context, and
// the duplicate-submission window described in spec.md §4.11.
package memory

import (
	"context"
	"time"

	"github.com/nlquery/orchestrator/internal/wfstate"
)

// Store is the conversation memory contract of spec.md §6.
type Store interface {
	LoadLastN(ctx context.Context, conversationID string, n int) ([]wfstate.Turn, error)
	SaveUser(ctx context.Context, conversationID, content string) error
	SaveAI(ctx context.Context, conversationID, content string) error
	// RecentlyAnswered reports whether an equivalent question was already
	// answered for this conversation within the dedup window, per
	// spec.md §4.11.
	RecentlyAnswered(ctx context.Context, conversationID, query string) (bool, error)
}

// DedupWindow is the interval within which an identical (conversation,
// query) pair is treated as a duplicate submission rather than a fresh
// turn, per spec.md §4.11.
const DedupWindow = 30 * time.Second
