package logging

import (
	"time"

	"github.com/ppiankov/clinvar-tsv/internal/cache"
	"go.uber.org/zap"
)

// Warner logs warnings about input values once per distinct value per window.
// A release contains millions of records and the same odd label tends to
// repeat in thousands of them.
type Warner struct {
	log  *zap.Logger
	seen *cache.Seen
}

// NewWarner creates a Warner. A window of zero reports each value once per run.
func NewWarner(log *zap.Logger, window time.Duration) *Warner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Warner{
		log:  log,
		seen: cache.NewSeen(window),
	}
}

// Warn logs msg unless the same kind/value pair was reported within the window.
// It returns true when the warning was emitted.
func (w *Warner) Warn(kind, value, msg string, fields ...zap.Field) bool {
	if !w.seen.First(cache.Key(kind, value)) {
		return false
	}
	w.log.Warn(msg, append(fields, zap.String(kind, value))...)
	return true
}
