package history

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type codedError int

func (e codedError) Error() string { return "sqlite error" }
func (e codedError) Code() int     { return int(e) }

var fastPolicy = busyPolicy{attempts: 3, first: time.Millisecond, ceiling: 2 * time.Millisecond}

func TestBusyPolicyRetriesBusyErrors(t *testing.T) {
	calls := 0
	err := fastPolicy.do(context.Background(), func() error {
		calls++
		if calls < 3 {
			// SQLITE_BUSY_SNAPSHOT carries the busy code in its low byte.
			return codedError(517)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestBusyPolicyStopsOnOtherErrors(t *testing.T) {
	calls := 0
	constraint := codedError(19)
	err := fastPolicy.do(context.Background(), func() error {
		calls++
		return constraint
	})
	if !errors.Is(err, constraint) || calls != 1 {
		t.Fatalf("expected one attempt returning the constraint error, got %d calls, err %v", calls, err)
	}
}

func TestBusyPolicyGivesUpAfterAttempts(t *testing.T) {
	calls := 0
	err := fastPolicy.do(context.Background(), func() error {
		calls++
		return errors.New("database is locked")
	})
	if err == nil || calls != fastPolicy.attempts {
		t.Fatalf("expected %d attempts and an error, got %d calls, err %v", fastPolicy.attempts, calls, err)
	}
}

func TestBusyPolicyHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := busyPolicy{attempts: 5, first: time.Hour, ceiling: time.Hour}.do(ctx, func() error {
		return codedError(sqliteBusy)
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExecLabelsFailures(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	_, err = store.exec(context.Background(), "insert bogus", "INSERT INTO missing_table VALUES (1)")
	if err == nil {
		t.Fatal("expected error for missing table")
	}
	if !strings.HasPrefix(err.Error(), "insert bogus: ") {
		t.Fatalf("expected labelled error, got %q", err)
	}
}

func TestOpenEnablesForeignKeys(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	var enabled int
	if err := store.db.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		t.Fatalf("read pragma: %v", err)
	}
	if enabled != 1 {
		t.Fatalf("foreign_keys = %d, want 1", enabled)
	}
}
