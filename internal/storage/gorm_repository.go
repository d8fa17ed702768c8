package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sandeepkv93/daytasks/internal/model"
)

const (
	DialectSQLite = "sqlite"
	DialectMySQL  = "mysql"
)

// TaskRecord is one task row; (user, day, position) addresses it within its bucket.
type TaskRecord struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"size:64;not null;uniqueIndex:idx_day_task,priority:1"`
	Day       string `gorm:"size:10;not null;uniqueIndex:idx_day_task,priority:2"`
	Position  int    `gorm:"not null;uniqueIndex:idx_day_task,priority:3"`
	Text      string `gorm:"type:text;not null"`
	Completed bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (TaskRecord) TableName() string { return "day_tasks" }

type GormRepository struct {
	db *gorm.DB
}

func OpenGorm(dialect, dsn string) (*GormRepository, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("storage: empty gorm dsn")
	}
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "", DialectSQLite:
		dialector = sqlite.Open(dsn)
	case DialectMySQL:
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("storage: unsupported gorm dialect %q", dialect)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open gorm %s: %w", dialect, err)
	}
	return NewGormRepository(db)
}

func NewGormRepository(db *gorm.DB) (*GormRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil gorm db")
	}
	if err := db.AutoMigrate(&TaskRecord{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormRepository{db: db}, nil
}

func (r *GormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *GormRepository) Append(ctx context.Context, userID, date, text string) ([]model.Task, error) {
	if err := checkKey(userID, date); err != nil {
		return nil, err
	}
	task, err := model.NewTask(text)
	if err != nil {
		return nil, err
	}
	var out []model.Task
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next int
		if err := tx.Model(&TaskRecord{}).
			Where("user_id = ? AND day = ?", userID, date).
			Select("COALESCE(MAX(position) + 1, 0)").
			Scan(&next).Error; err != nil {
			return err
		}
		rec := TaskRecord{UserID: userID, Day: date, Position: next, Text: task.Text}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		var listErr error
		out, listErr = gormBucket(tx, userID, date)
		return listErr
	})
	if err != nil {
		return nil, persistErr(err)
	}
	return out, nil
}

func (r *GormRepository) Toggle(ctx context.Context, userID, date string, index int) ([]model.Task, error) {
	if index < 0 {
		return nil, fmt.Errorf("%w: task %d on %s", ErrNotFound, index, date)
	}
	var out []model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&TaskRecord{}).
			Where("user_id = ? AND day = ? AND position = ?", userID, date, index).
			Update("completed", gorm.Expr("NOT completed"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		var listErr error
		out, listErr = gormBucket(tx, userID, date)
		return listErr
	})
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: task %d on %s", ErrNotFound, index, date)
	}
	if err != nil {
		return nil, persistErr(err)
	}
	return out, nil
}

func (r *GormRepository) DayBucket(ctx context.Context, userID, date string) ([]model.Task, error) {
	return gormBucket(r.db.WithContext(ctx), userID, date)
}

func (r *GormRepository) WeekBuckets(ctx context.Context, userID, monday string) ([]model.DayBucket, error) {
	dates, err := model.WeekDates(monday)
	if err != nil {
		return nil, err
	}
	var recs []TaskRecord
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND day IN ?", userID, dates).
		Order("day, position").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	grouped := make(map[string][]model.Task)
	for _, rec := range recs {
		grouped[rec.Day] = append(grouped[rec.Day], rec.task())
	}
	return collectWeek(dates, func(date string) []model.Task { return grouped[date] }), nil
}

func (r *GormRepository) Export(ctx context.Context) (model.Snapshot, error) {
	var recs []TaskRecord
	if err := r.db.WithContext(ctx).Order("user_id, day, position").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := model.Snapshot{}
	for _, rec := range recs {
		if out[rec.UserID] == nil {
			out[rec.UserID] = model.UserStore{}
		}
		out[rec.UserID][rec.Day] = append(out[rec.UserID][rec.Day], rec.task())
	}
	return out, nil
}

func (r *GormRepository) Import(ctx context.Context, snap model.Snapshot) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&TaskRecord{}).Error; err != nil {
			return err
		}
		recs := make([]TaskRecord, 0)
		for user, days := range snap {
			for day, tasks := range days {
				for i, task := range tasks {
					recs = append(recs, TaskRecord{UserID: user, Day: day, Position: i, Text: task.Text, Completed: task.Completed})
				}
			}
		}
		if len(recs) == 0 {
			return nil
		}
		return tx.CreateInBatches(recs, 200).Error
	})
	return persistErr(err)
}

func gormBucket(db *gorm.DB, userID, date string) ([]model.Task, error) {
	var recs []TaskRecord
	if err := db.Where("user_id = ? AND day = ?", userID, date).Order("position").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]model.Task, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.task())
	}
	return out, nil
}

func (rec TaskRecord) task() model.Task {
	return model.Task{Text: rec.Text, Completed: rec.Completed}
}
