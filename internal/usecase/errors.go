package usecase

import "github.com/cockroachdb/errors"

// Fatal cycle errors. Each one aborts the run and rolls the transaction back.
var (
	ErrSchemaMismatch       = errors.New("schema mismatch")
	ErrLockUnavailable      = errors.New("import lock unavailable")
	ErrHealthBelowThreshold = errors.New("health score below threshold")
	ErrDurableStateLost     = errors.New("durable user state lost")
)

// IsFatal reports whether err belongs to the fatal cycle taxonomy.
func IsFatal(err error) bool {
	return errors.IsAny(err, ErrSchemaMismatch, ErrLockUnavailable, ErrHealthBelowThreshold, ErrDurableStateLost)
}

// ErrRecordSkipped marks a record-level failure. The cycle continues without the record.
var ErrRecordSkipped = errors.New("record skipped")

func skipRecord(format string, args ...any) error {
	return errors.Wrapf(ErrRecordSkipped, format, args...)
}
