package history

import (
	"context"
	"fmt"
	"time"

	"github.com/bbanting/canvasgradecheck/internal/contracts"
)

// Store persists dated snapshots.
// Load returns an empty History when nothing was persisted yet.
// PutSnapshot replaces the snapshot for date and leaves other dates untouched.
// ⭐ SSOT: 성적 이력 저장소 인터페이스
type Store interface {
	Load(ctx context.Context) (History, error)
	PutSnapshot(ctx context.Context, date string, snap Snapshot) error
}

// AppendToday writes the roster's current state under now's calendar date.
// Calling it twice on the same day keeps only the second snapshot.
func AppendToday(ctx context.Context, store Store, students []*contracts.Student, now time.Time) (string, error) {
	date := now.Format(DateLayout)

	if err := store.PutSnapshot(ctx, date, NewSnapshot(students)); err != nil {
		return "", fmt.Errorf("append history %s: %w", date, err)
	}
	return date, nil
}
