package usecase

import (
	"context"
	"errors"
	"strings"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/domain/repository"
	pkgAuth "github.com/polkiloo/orderdesk/internal/pkg/auth"
)

// Registration describes a new account.
type Registration struct {
	Login    string
	Password string
	Name     string
	Email    string
	Mobile   string
}

// AuthUseCase handles account lifecycle and token management.
type AuthUseCase struct {
	accounts repository.AccountRepository
	hasher   pkgAuth.PasswordHasher
	tokens   pkgAuth.Strategy
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(accounts repository.AccountRepository, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy) *AuthUseCase {
	return &AuthUseCase{accounts: accounts, hasher: hasher, tokens: strategy}
}

// RegisterCustomer creates a customer account and returns auth token.
func (u *AuthUseCase) RegisterCustomer(ctx context.Context, reg Registration) (*model.Account, string, error) {
	acc, err := u.create(ctx, reg, model.RoleCustomer)
	if err != nil {
		return nil, "", err
	}
	token, err := u.issue(acc)
	if err != nil {
		return nil, "", err
	}
	return acc, token, nil
}

// CreateAdmin creates another admin account.
func (u *AuthUseCase) CreateAdmin(ctx context.Context, reg Registration) (*model.Account, error) {
	return u.create(ctx, reg, model.RoleAdmin)
}

// EnsureAdmin creates the bootstrap admin unless the login is already taken.
func (u *AuthUseCase) EnsureAdmin(ctx context.Context, login, password string) error {
	if strings.TrimSpace(login) == "" {
		return nil
	}
	_, err := u.create(ctx, Registration{Login: login, Password: password, Name: login}, model.RoleAdmin)
	if errors.Is(err, domainErrors.ErrAlreadyExists) {
		return nil
	}
	return err
}

// Authenticate validates credentials of an account holding role and returns auth token.
func (u *AuthUseCase) Authenticate(ctx context.Context, role model.Role, login, password string) (*model.Account, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	acc, err := u.accounts.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}
	if acc.Role != role {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	if err := u.hasher.Compare(acc.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	token, err := u.issue(acc)
	if err != nil {
		return nil, "", err
	}

	return acc, token, nil
}

// ParseToken extracts the session from provided token.
func (u *AuthUseCase) ParseToken(token string) (model.Session, error) {
	if token == "" {
		return model.Session{}, pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}

// GetByID fetches account by identifier.
func (u *AuthUseCase) GetByID(ctx context.Context, id int64) (*model.Account, error) {
	return u.accounts.GetByID(ctx, id)
}

func (u *AuthUseCase) create(ctx context.Context, reg Registration, role model.Role) (*model.Account, error) {
	login := strings.TrimSpace(reg.Login)
	if login == "" || reg.Password == "" {
		return nil, domainErrors.ErrInvalidCredentials
	}

	hash, err := u.hasher.Hash(reg.Password)
	if err != nil {
		return nil, err
	}

	return u.accounts.Create(ctx, model.Account{
		Login:        login,
		PasswordHash: hash,
		Role:         role,
		Name:         strings.TrimSpace(reg.Name),
		Email:        strings.TrimSpace(reg.Email),
		Mobile:       strings.TrimSpace(reg.Mobile),
	})
}

func (u *AuthUseCase) issue(acc *model.Account) (string, error) {
	return u.tokens.IssueToken(model.Session{AccountID: acc.ID, Role: acc.Role})
}
