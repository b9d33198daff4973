package memory

import (
	"context"

	"github.com/sasha-s/go-deadlock"

	interfaces "github.com/sheikh-saqib/account-balance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/account-balance-ledger/internal/models"
)

// Log is the in-memory audit sink: an append-only slice of mutation
// records. Safe for concurrent appenders; reads hand out copies.
type Log struct {
	mu      deadlock.Mutex
	records []models.MutationRecord
}

func NewLog() *Log {
	return &Log{
		records: make([]models.MutationRecord, 0),
	}
}

// Append adds a record. There is no update or delete.
func (l *Log) Append(ctx context.Context, record models.MutationRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, record)
	return nil
}

// Records returns a copy of every record appended so far.
func (l *Log) Records() []models.MutationRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	copied := make([]models.MutationRecord, len(l.records))
	copy(copied, l.records)
	return copied
}

// ByCorrelation returns the records sharing a correlation id, e.g. the
// two halves of a transfer.
func (l *Log) ByCorrelation(correlationID string) []models.MutationRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	var matched []models.MutationRecord
	for _, record := range l.records {
		if record.CorrelationID == correlationID {
			matched = append(matched, record)
		}
	}
	return matched
}

var _ interfaces.AuditLog = (*Log)(nil)
