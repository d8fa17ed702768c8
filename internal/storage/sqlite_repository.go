package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sandeepkv93/daytasks/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// OpenSQLite opens the database at path and applies the embedded migrations.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection serializes writers, and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) Append(ctx context.Context, userID, date, text string) ([]model.Task, error) {
	if err := checkKey(userID, date); err != nil {
		return nil, err
	}
	task, err := model.NewTask(text)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, persistErr(err)
	}
	defer func() { _ = tx.Rollback() }()

	var next int
	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(position) + 1, 0) FROM tasks WHERE user_id = ? AND day = ?`,
		userID, date,
	).Scan(&next); err != nil {
		return nil, persistErr(err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO tasks (user_id, day, position, text, completed, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		userID, date, next, task.Text, boolInt(task.Completed), mustTime(time.Now()),
	); err != nil {
		return nil, persistErr(err)
	}
	tasks, err := listBucket(ctx, tx, userID, date)
	if err != nil {
		return nil, persistErr(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, persistErr(err)
	}
	return tasks, nil
}

func (r *SQLiteRepository) Toggle(ctx context.Context, userID, date string, index int) ([]model.Task, error) {
	if index < 0 {
		return nil, fmt.Errorf("%w: task %d on %s", ErrNotFound, index, date)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, persistErr(err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE tasks SET completed = 1 - completed
		WHERE user_id = ? AND day = ? AND position = ?`,
		userID, date, index,
	)
	if err != nil {
		return nil, persistErr(err)
	}
	if err := checkRowsAffected(res); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: task %d on %s", ErrNotFound, index, date)
		}
		return nil, persistErr(err)
	}
	tasks, err := listBucket(ctx, tx, userID, date)
	if err != nil {
		return nil, persistErr(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, persistErr(err)
	}
	return tasks, nil
}

func (r *SQLiteRepository) DayBucket(ctx context.Context, userID, date string) ([]model.Task, error) {
	return listBucket(ctx, r.db, userID, date)
}

func (r *SQLiteRepository) WeekBuckets(ctx context.Context, userID, monday string) ([]model.DayBucket, error) {
	dates, err := model.WeekDates(monday)
	if err != nil {
		return nil, err
	}
	args := make([]any, 0, len(dates)+1)
	args = append(args, userID)
	for _, d := range dates {
		args = append(args, d)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(dates)), ", ")
	rows, err := r.db.QueryContext(ctx, `
		SELECT day, text, completed FROM tasks
		WHERE user_id = ? AND day IN (`+placeholders+`)
		ORDER BY day, position`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	grouped := make(map[string][]model.Task)
	for rows.Next() {
		var day string
		task, scanErr := scanTask(rows, &day)
		if scanErr != nil {
			return nil, scanErr
		}
		grouped[day] = append(grouped[day], task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return collectWeek(dates, func(date string) []model.Task { return grouped[date] }), nil
}

func (r *SQLiteRepository) Export(ctx context.Context) (model.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, day, text, completed FROM tasks
		ORDER BY user_id, day, position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := model.Snapshot{}
	for rows.Next() {
		var user, day string
		task, scanErr := scanTask(rows, &user, &day)
		if scanErr != nil {
			return nil, scanErr
		}
		if out[user] == nil {
			out[user] = model.UserStore{}
		}
		out[user][day] = append(out[user][day], task)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) Import(ctx context.Context, snap model.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return persistErr(err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return persistErr(err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (user_id, day, position, text, completed, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return persistErr(err)
	}
	defer stmt.Close()

	now := mustTime(time.Now())
	for user, days := range snap {
		for day, tasks := range days {
			for i, task := range tasks {
				if _, err := stmt.ExecContext(ctx, user, day, i, task.Text, boolInt(task.Completed), now); err != nil {
					return persistErr(fmt.Errorf("import %s/%s#%d: %w", user, day, i, err))
				}
			}
		}
	}
	return persistErr(tx.Commit())
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listBucket(ctx context.Context, q queryer, userID, date string) ([]model.Task, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT text, completed FROM tasks
		WHERE user_id = ? AND day = ?
		ORDER BY position ASC`, userID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

type scanner interface {
	Scan(dest ...any) error
}

// scanTask reads the leading key columns into keys, then text and completed.
func scanTask(s scanner, keys ...*string) (model.Task, error) {
	var out model.Task
	var completed int
	dest := make([]any, 0, len(keys)+2)
	for _, k := range keys {
		dest = append(dest, k)
	}
	dest = append(dest, &out.Text, &completed)
	if err := s.Scan(dest...); err != nil {
		return model.Task{}, err
	}
	out.Completed = completed == 1
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
