package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// busyPolicy bounds how long a write waits on a locked database. A render
// and a send can touch the ledger at the same time.
type busyPolicy struct {
	attempts int
	first    time.Duration
	ceiling  time.Duration
}

var writePolicy = busyPolicy{attempts: 5, first: 10 * time.Millisecond, ceiling: 200 * time.Millisecond}

// sqliteBusy is the SQLITE_BUSY primary result code.
const sqliteBusy = 5

func isBusy(err error) bool {
	var coded interface{ Code() int }
	if errors.As(err, &coded) {
		// Extended codes keep the primary code in the low byte.
		return coded.Code()&0xff == sqliteBusy
	}
	return err != nil && strings.Contains(err.Error(), "database is locked")
}

// do runs op until it succeeds, fails with a non-busy error, or the attempts
// run out. The wait doubles after each busy attempt up to the ceiling.
func (p busyPolicy) do(ctx context.Context, op func() error) error {
	wait := p.first
	for attempt := 1; ; attempt++ {
		err := op()
		if err == nil || !isBusy(err) || attempt >= p.attempts {
			return err
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		wait = min(wait*2, p.ceiling)
	}
}

// exec runs a ledger write under writePolicy and prefixes failures with label.
func (s *Store) exec(ctx context.Context, label, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	err := writePolicy.do(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	return res, nil
}
