package postgres

import (
	"context"
	"database/sql"

	interfaces "github.com/sheikh-saqib/account-balance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/account-balance-ledger/internal/models"
)

// Log is the durable audit sink on postgres. Rows are only ever
// inserted — there is no update or delete path, matching the append-only
// contract.
//
// Schema:
//
//	CREATE TABLE mutation_records (
//	    id             TEXT PRIMARY KEY,
//	    correlation_id TEXT NOT NULL,
//	    kind           TEXT NOT NULL,
//	    account_id     TEXT NOT NULL,
//	    amount         NUMERIC NOT NULL,
//	    new_balance    NUMERIC NOT NULL,
//	    outcome        TEXT NOT NULL,
//	    reason         TEXT NOT NULL DEFAULT '',
//	    created_at     TIMESTAMPTZ NOT NULL
//	);
type Log struct {
	db *sql.DB
}

func NewLog(db *sql.DB) *Log {
	return &Log{
		db: db,
	}
}

func (l *Log) Append(ctx context.Context, record models.MutationRecord) error {
	const query = `INSERT INTO mutation_records (id, correlation_id, kind, account_id, amount, new_balance, outcome, reason, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := l.db.ExecContext(ctx, query,
		record.ID,
		record.CorrelationID,
		string(record.Kind),
		record.AccountKey,
		record.Amount,
		record.NewBalance,
		string(record.Outcome),
		record.Reason,
		record.CreatedAt,
	)
	return err
}

var _ interfaces.AuditLog = (*Log)(nil)
