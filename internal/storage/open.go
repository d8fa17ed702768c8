package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
	DriverGorm   = "gorm"
)

type Options struct {
	Driver  string
	Path    string
	Dialect string
	DSN     string
}

var ErrNoLocation = errors.New("storage: no location for store")

// Validate reports ErrNoLocation when the backend has nowhere durable to write.
// sqlite treats an empty path as a private temporary database.
func (o Options) Validate() error {
	switch strings.ToLower(strings.TrimSpace(o.Driver)) {
	case "", DriverJSON, DriverSQLite:
		if strings.TrimSpace(o.Path) == "" {
			return fmt.Errorf("%w: %s driver needs a path", ErrNoLocation, o.driverName())
		}
	case DriverGorm:
		if strings.TrimSpace(o.DSN) == "" && strings.TrimSpace(o.Path) == "" {
			return fmt.Errorf("%w: gorm driver needs a dsn or a path", ErrNoLocation)
		}
	default:
		return fmt.Errorf("storage: unknown driver %q", o.Driver)
	}
	return nil
}

func (o Options) driverName() string {
	if d := strings.TrimSpace(o.Driver); d != "" {
		return d
	}
	return DriverJSON
}

// Open returns the backend named by opts.Driver. An empty driver means the JSON file store.
func Open(ctx context.Context, opts Options) (Repository, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", DriverJSON:
		return OpenJSON(opts.Path)
	case DriverSQLite:
		return OpenSQLite(opts.Path)
	case DriverGorm:
		dsn := opts.DSN
		if strings.TrimSpace(dsn) == "" {
			dsn = opts.Path
		}
		return OpenGorm(opts.Dialect, dsn)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", opts.Driver)
	}
}
