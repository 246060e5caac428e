package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var (
	_ port.BasketRepository  = (*BasketRepository)(nil)
	_ port.SessionRepository = (*SessionRepository)(nil)
)

// BasketRepository stores the whole basket as JSON under [BasketKey].
type BasketRepository struct {
	kv port.KVStore
}

func NewBasketRepository(kv port.KVStore) BasketRepository {
	return BasketRepository{kv}
}

// LoadBasket returns an empty basket when nothing is stored.
func (r BasketRepository) LoadBasket(ctx context.Context) (domain.Basket, error) {
	const op = "BasketRepository.LoadBasket"

	raw, ok, err := r.kv.Get(ctx, BasketKey)
	if err != nil {
		return domain.Basket{}, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return domain.Basket{}.Clear(), nil
	}

	var rec basketRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return domain.Basket{}, fmt.Errorf("%s: %w: %w", op, errMalformedBasket, err)
	}
	if rec.Items == nil {
		return domain.Basket{}, fmt.Errorf("%s: %w: no items", op, errMalformedBasket)
	}
	return rec.toDomain(), nil
}

func (r BasketRepository) SaveBasket(ctx context.Context, b domain.Basket) error {
	const op = "BasketRepository.SaveBasket"

	data, err := json.Marshal(newBasketRecord(b))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := r.kv.Set(ctx, BasketKey, string(data)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SessionRepository stores the user under [UserKey] and its token
// under [TokenKey]. A session exists only when both are present.
type SessionRepository struct {
	kv port.KVStore
}

func NewSessionRepository(kv port.KVStore) SessionRepository {
	return SessionRepository{kv}
}

func (r SessionRepository) LoadSession(
	ctx context.Context,
) (domain.Session, bool, error) {
	const op = "SessionRepository.LoadSession"

	rawUser, okUser, err := r.kv.Get(ctx, UserKey)
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("%s: %w", op, err)
	}
	token, okToken, err := r.kv.Get(ctx, TokenKey)
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("%s: %w", op, err)
	}
	if !okUser || !okToken || rawUser == "" || token == "" {
		return domain.Session{}, false, nil
	}

	var rec userRecord
	if err := json.Unmarshal([]byte(rawUser), &rec); err != nil {
		return domain.Session{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return domain.Session{User: rec.toDomain(), Token: token}, true, nil
}

func (r SessionRepository) SaveSession(ctx context.Context, s domain.Session) error {
	const op = "SessionRepository.SaveSession"

	data, err := json.Marshal(newUserRecord(s.User))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := r.kv.Set(ctx, UserKey, string(data)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := r.kv.Set(ctx, TokenKey, s.Token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r SessionRepository) ClearSession(ctx context.Context) error {
	const op = "SessionRepository.ClearSession"

	if err := r.kv.Delete(ctx, UserKey); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := r.kv.Delete(ctx, TokenKey); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
