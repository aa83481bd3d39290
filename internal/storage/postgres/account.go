package postgres

import (
	"context"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/domain/model"
)

type accountRepository struct {
	storage *Storage
}

const accountColumns = `id, login, password_hash, role, name, email, mobile, created_at`

func (r *accountRepository) Create(ctx context.Context, account model.Account) (*model.Account, error) {
	const query = `INSERT INTO accounts (login, password_hash, role, name, email, mobile)
                   VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	err := r.storage.pool.QueryRow(ctx, query,
		account.Login, account.PasswordHash, account.Role, account.Name, account.Email, account.Mobile,
	).Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		if uniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) GetByLogin(ctx context.Context, login string) (*model.Account, error) {
	return r.get(ctx, `SELECT `+accountColumns+` FROM accounts WHERE login=$1`, login)
}

func (r *accountRepository) GetByID(ctx context.Context, id int64) (*model.Account, error) {
	return r.get(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id=$1`, id)
}

func (r *accountRepository) get(ctx context.Context, query string, arg any) (*model.Account, error) {
	var a model.Account
	err := r.storage.pool.QueryRow(ctx, query, arg).Scan(&a.ID, &a.Login, &a.PasswordHash, &a.Role, &a.Name, &a.Email, &a.Mobile, &a.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}
