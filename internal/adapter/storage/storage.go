package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/niksmo/storefront/internal/core/port"
)

// Keys of the client state.
const (
	BasketKey = "basket"
	UserKey   = "user"
	TokenKey  = "token"
)

const (
	DriverMemory = "memory"
	DriverBadger = "badger"
	DriverSQL    = "sql"
)

var ErrUnknownDriver = errors.New("unknown storage driver")

// A Store is a [port.KVStore] that holds resources until closed.
type Store interface {
	port.KVStore
	Close()
}

type Config struct {
	Driver     string
	BadgerPath string
	SQLDSN     string
}

// Open returns the store selected by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	const op = "storage.Open"

	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case "", DriverMemory:
		s = NewMemoryStore()
	case DriverBadger:
		bc := DefaultBadgerConfig()
		bc.Path = cfg.BadgerPath
		s, err = OpenBadgerStore(bc)
	case DriverSQL:
		s, err = NewSQLStore(ctx, cfg.SQLDSN)
	default:
		err = fmt.Errorf("%q: %w", cfg.Driver, ErrUnknownDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}
