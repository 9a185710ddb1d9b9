// Package cursor persists the synchronization watermark: the highest change
// marker whose record, and every record before it, made it into the search
// index.
package cursor

import "context"

type Store interface {
	// Load returns the saved watermark, or 0 when none has been saved yet.
	Load(ctx context.Context) (int64, error)
	Save(ctx context.Context, marker int64) error
	// Reset clears the watermark so the next sync replays everything.
	Reset(ctx context.Context) error
}
