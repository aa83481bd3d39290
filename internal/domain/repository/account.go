package repository

import (
	"context"

	"github.com/polkiloo/orderdesk/internal/domain/model"
)

// AccountRepository describes persistence operations for admin and customer accounts.
type AccountRepository interface {
	Create(ctx context.Context, account model.Account) (*model.Account, error)
	GetByLogin(ctx context.Context, login string) (*model.Account, error)
	GetByID(ctx context.Context, id int64) (*model.Account, error)
}
