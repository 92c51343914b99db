// Package mirror replicates committed expenses to an external read-only
// destination. The database stays the source of truth; a mirror failure is
// reported but never rolls an expense back.
package mirror

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one committed expense in the shape the mirror destination expects.
type Record struct {
	Date       time.Time
	FullName   string
	Amount     decimal.Decimal
	Category   string
	Purpose    string
	RecordedAt time.Time
}

// Sink appends committed expenses somewhere outside the primary database.
type Sink interface {
	Append(ctx context.Context, rec Record) error
}

// NopSink discards every record. Used when mirroring is disabled.
type NopSink struct{}

func (NopSink) Append(context.Context, Record) error { return nil }
