// Package audit records every economic mutation as an append-only transaction.
//
// Recording is best effort: a failure is logged and counted but never surfaces to the
// caller, whose mutation has already been committed.
package audit

import (
	"context"
	"time"

	"chat_economy/internal/metrics"
	"chat_economy/internal/models"
	"chat_economy/internal/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store is the part of the ledger store the audit logger needs.
type Store interface {
	AppendTransactions(ctx context.Context, records ...models.Transaction) error
}

// Logger writes audit records to the store and, when configured, to an Archive.
type Logger struct {
	store   Store
	archive *Archive
	log     *logger.Logger
	now     func() time.Time
}

// NewLogger creates a Logger. archive may be nil.
func NewLogger(store Store, archive *Archive, log *logger.Logger) *Logger {
	return &Logger{store: store, archive: archive, log: log, now: time.Now}
}

// NewCorrelationID returns an id linking the records of one two-sided mutation.
func NewCorrelationID() string {
	return uuid.NewString()
}

// Record stamps missing ids and timestamps and writes the records.
func (l *Logger) Record(ctx context.Context, records ...models.Transaction) {
	if len(records) == 0 {
		return
	}

	now := l.now().UTC()
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = uuid.NewString()
		}
		if records[i].CreatedAt.IsZero() {
			records[i].CreatedAt = now
		}
	}

	if err := l.store.AppendTransactions(ctx, records...); err != nil {
		metrics.AuditFailuresTotal.Add(float64(len(records)))
		for _, r := range records {
			l.log.Error("failed to record audit transaction",
				zap.String("account_id", r.AccountID),
				zap.String("action", r.Action),
				zap.String("transaction_id", r.ID),
				zap.Error(err))
		}
	}

	if l.archive == nil {
		return
	}
	for _, r := range records {
		if err := l.archive.Write(r); err != nil {
			metrics.AuditFailuresTotal.Inc()
			l.log.Warn("failed to archive audit transaction",
				zap.String("transaction_id", r.ID),
				zap.Error(err))
		}
	}
}

// Close closes the archive, if any.
func (l *Logger) Close() error {
	if l.archive == nil {
		return nil
	}
	return l.archive.Close()
}
