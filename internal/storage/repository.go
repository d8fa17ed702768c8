package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sandeepkv93/daytasks/internal/model"
)

var (
	ErrNotFound    = errors.New("storage: not found")
	ErrCorrupt     = errors.New("storage: corrupt store file")
	ErrPersistence = errors.New("storage: persist failed")
	ErrInvalidKey  = errors.New("storage: invalid bucket key")
)

// Repository is the task store contract. Every mutation is durable before it returns;
// a failed write leaves the store as it was and reports ErrPersistence.
type Repository interface {
	Append(ctx context.Context, userID, date, text string) ([]model.Task, error)
	Toggle(ctx context.Context, userID, date string, index int) ([]model.Task, error)
	DayBucket(ctx context.Context, userID, date string) ([]model.Task, error)
	WeekBuckets(ctx context.Context, userID, monday string) ([]model.DayBucket, error)

	Export(ctx context.Context) (model.Snapshot, error)
	Import(ctx context.Context, snap model.Snapshot) error
	Close() error
}

func checkKey(userID, date string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: empty user id", ErrInvalidKey)
	}
	if _, err := model.ParseDate(date); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return nil
}

// collectWeek keeps the order of dates and drops days without tasks.
func collectWeek(dates []string, bucket func(date string) []model.Task) []model.DayBucket {
	out := make([]model.DayBucket, 0, len(dates))
	for _, date := range dates {
		tasks := bucket(date)
		if len(tasks) == 0 {
			continue
		}
		out = append(out, model.DayBucket{Date: date, Tasks: model.CloneTasks(tasks)})
	}
	return out
}

func persistErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}
