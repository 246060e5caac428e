package restapi

import (
	"context"
	"fmt"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/shopspring/decimal"
)

var _ port.UserDirectory = (*UsersClient)(nil)

type userDTO struct {
	ID        string  `json:"id"`
	FullName  string  `json:"fullName"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	Password  string  `json:"password"`
	Budget    float64 `json:"budget"`
	CreatedAt string  `json:"createdAt"`
}

func newUserDTO(u domain.User) userDTO {
	return userDTO{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Phone:     u.Phone,
		Password:  u.Password,
		Budget:    u.Budget.InexactFloat64(),
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// toDomain leaves CreatedAt zero when the stored value is not RFC 3339.
func (u userDTO) toDomain() domain.User {
	createdAt, _ := time.Parse(time.RFC3339Nano, u.CreatedAt)
	return domain.User{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Phone:     u.Phone,
		Password:  u.Password,
		Budget:    decimal.NewFromFloat(u.Budget),
		CreatedAt: createdAt,
	}
}

// UsersClient talks to the json-server users collection.
type UsersClient struct {
	cl *Client
}

func NewUsersClient(cl *Client) UsersClient {
	return UsersClient{cl}
}

func (c UsersClient) ListUsers(ctx context.Context) ([]domain.User, error) {
	const op = "UsersClient.ListUsers"

	var dtos []userDTO
	if _, err := c.cl.getJSON(ctx, "/users", &dtos); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	users := make([]domain.User, len(dtos))
	for i, dto := range dtos {
		users[i] = dto.toDomain()
	}
	return users, nil
}

func (c UsersClient) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	const op = "UsersClient.CreateUser"

	var created userDTO
	if err := c.cl.postJSON(ctx, "/users", newUserDTO(u), &created); err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}
	if created.ID == "" {
		return u, nil
	}
	return created.toDomain(), nil
}
