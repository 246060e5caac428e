package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/shopspring/decimal"
)

var _ port.Authenticator = (*Sessions)(nil)

// DefaultBudget is granted to newly registered users.
var DefaultBudget = decimal.NewFromInt(10000)

type SessionsOpt func(*Sessions)

func DefaultBudgetOpt(budget decimal.Decimal) SessionsOpt {
	return func(s *Sessions) {
		s.defaultBudget = budget
	}
}

func IDGeneratorOpt(fn func() string) SessionsOpt {
	return func(s *Sessions) {
		s.newID = fn
	}
}

func SessionsClockOpt(fn func() time.Time) SessionsOpt {
	return func(s *Sessions) {
		s.now = fn
	}
}

// Sessions holds the authenticated user and its budget.
type Sessions struct {
	mu            sync.Mutex
	session       *domain.Session
	repo          port.SessionRepository
	users         port.UserDirectory
	defaultBudget decimal.Decimal
	newID         func() string
	now           func() time.Time
}

func NewSessions(
	repo port.SessionRepository, users port.UserDirectory, opts ...SessionsOpt,
) *Sessions {
	s := &Sessions{
		repo:          repo,
		users:         users,
		defaultBudget: DefaultBudget,
		newID:         uuid.NewString,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load restores a persisted session. A missing or unreadable one
// leaves the client logged out.
func (s *Sessions) Load(ctx context.Context) {
	const op = "Sessions.Load"
	log := slog.With("op", op)

	if s.repo == nil {
		return
	}

	session, ok, err := s.repo.LoadSession(ctx)
	if err != nil {
		log.Warn("starting without session", "err", err)
		return
	}
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = &session
	log.Info("session restored", "userID", session.User.ID)
}

func (s *Sessions) Current() (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return domain.User{}, false
	}
	return s.session.User, true
}

func (s *Sessions) Login(
	ctx context.Context, form domain.LoginForm,
) (domain.User, error) {
	const op = "Sessions.Login"

	if err := form.Validate(); err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	i := slices.IndexFunc(users, func(u domain.User) bool {
		return u.Email == form.Email && u.Password == form.Password
	})
	if i < 0 {
		return domain.User{}, fmt.Errorf("%s: %w", op, domain.ErrInvalidCredentials)
	}
	user := users[i]

	s.mu.Lock()
	defer s.mu.Unlock()
	session := domain.NewSession(user)
	s.session = &session
	s.persist(ctx, op)

	slog.Info("logged in", "op", op, "userID", user.ID)
	return user, nil
}

// Register creates a user in the directory. It does not log the user in.
func (s *Sessions) Register(
	ctx context.Context, form domain.RegisterForm,
) (domain.User, error) {
	const op = "Sessions.Register"

	if err := form.Validate(); err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	for _, u := range users {
		if u.Email == form.Email {
			return domain.User{}, fmt.Errorf("%s: %w", op, domain.ErrEmailTaken)
		}
		if u.Phone == form.Phone {
			return domain.User{}, fmt.Errorf("%s: %w", op, domain.ErrPhoneTaken)
		}
	}

	user := domain.User{
		ID:        s.newID(),
		FullName:  form.FullName,
		Email:     form.Email,
		Phone:     form.Phone,
		Password:  form.Password,
		Budget:    s.defaultBudget,
		CreatedAt: s.now().UTC(),
	}

	created, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	slog.Info("user registered", "op", op, "userID", created.ID)
	return created, nil
}

func (s *Sessions) Logout(ctx context.Context) {
	const op = "Sessions.Logout"
	log := slog.With("op", op)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return
	}
	userID := s.session.User.ID
	s.session = nil

	if s.repo != nil {
		if err := s.repo.ClearSession(ctx); err != nil {
			err = fmt.Errorf("%s: %w: %w", op, domain.ErrStoragePersistence, err)
			log.Error("failed to clear stored session", "err", err)
		}
	}
	log.Info("logged out", "userID", userID)
}

// SetBudget overwrites the budget of the current user.
func (s *Sessions) SetBudget(
	ctx context.Context, amount decimal.Decimal,
) (domain.User, error) {
	const op = "Sessions.SetBudget"

	if amount.IsNegative() {
		return domain.User{}, fmt.Errorf("%s: %w", op, domain.ErrInvalidAmount)
	}
	return s.updateBudget(ctx, op, func(decimal.Decimal) decimal.Decimal {
		return amount
	})
}

func (s *Sessions) IncreaseBudget(
	ctx context.Context, amount decimal.Decimal,
) (domain.User, error) {
	const op = "Sessions.IncreaseBudget"

	if !amount.IsPositive() {
		return domain.User{}, fmt.Errorf("%s: %w", op, domain.ErrInvalidAmount)
	}
	return s.updateBudget(ctx, op, func(b decimal.Decimal) decimal.Decimal {
		return b.Add(amount)
	})
}

func (s *Sessions) updateBudget(
	ctx context.Context,
	op string,
	fn func(decimal.Decimal) decimal.Decimal,
) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, domain.ErrUnauthenticated)
	}

	prev := s.session.User.Budget
	s.session.User.Budget = fn(prev)
	s.persist(ctx, op)

	slog.Info("budget updated",
		"op", op,
		"userID", s.session.User.ID,
		"previous", prev.StringFixed(2),
		"budget", s.session.User.Budget.StringFixed(2),
	)
	return s.session.User, nil
}

// debit hands a copy of the current user, nil when logged out, to
// evaluate and stores the budget it returns. Nothing changes when
// evaluate fails.
func (s *Sessions) debit(
	ctx context.Context,
	evaluate func(*domain.User) (decimal.Decimal, error),
) error {
	const op = "Sessions.debit"

	s.mu.Lock()
	defer s.mu.Unlock()

	var user *domain.User
	if s.session != nil {
		u := s.session.User
		user = &u
	}

	budget, err := evaluate(user)
	if err != nil {
		return err
	}

	s.session.User.Budget = budget
	s.persist(ctx, op)
	return nil
}

// persist must be called with mu held.
func (s *Sessions) persist(ctx context.Context, op string) {
	if s.repo == nil || s.session == nil {
		return
	}
	if err := s.repo.SaveSession(ctx, *s.session); err != nil {
		err = fmt.Errorf("%s: %w: %w", op, domain.ErrStoragePersistence, err)
		slog.Error("session kept in memory only", "op", op, "err", err)
	}
}
