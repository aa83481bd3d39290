package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/domain/model"
	pkgAuth "github.com/polkiloo/orderdesk/internal/pkg/auth"
	testhelpers "github.com/polkiloo/orderdesk/internal/test"
)

func newAuthUseCase(repo *testhelpers.AccountRepositoryStub) *AuthUseCase {
	return NewAuthUseCase(repo, testhelpers.HasherStub{}, testhelpers.StrategyStub{})
}

func TestAuthUseCaseRegisterCustomer(t *testing.T) {
	repo := testhelpers.NewAccountRepositoryStub()
	uc := newAuthUseCase(repo)

	ctx := context.Background()
	acc, token, err := uc.RegisterCustomer(ctx, Registration{Login: "  alice ", Password: "password", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if acc.ID == 0 || acc.Role != model.RoleCustomer {
		t.Fatalf("unexpected account %+v", acc)
	}
	if token != "customer-1" {
		t.Fatalf("unexpected token %q", token)
	}
	stored, err := repo.GetByLogin(ctx, "alice")
	if err != nil {
		t.Fatalf("expected account in repository: %v", err)
	}
	if stored.PasswordHash != "hash:password" {
		t.Fatalf("password hash not stored: %v", stored.PasswordHash)
	}
}

func TestAuthUseCaseRegisterDuplicate(t *testing.T) {
	uc := newAuthUseCase(testhelpers.NewAccountRepositoryStub())

	ctx := context.Background()
	if _, _, err := uc.RegisterCustomer(ctx, Registration{Login: "bob", Password: "secret"}); err != nil {
		t.Fatalf("unexpected error on first register: %v", err)
	}
	if _, _, err := uc.RegisterCustomer(ctx, Registration{Login: "bob", Password: "secret"}); err != domainErrors.ErrAlreadyExists {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestAuthUseCaseRegisterValidation(t *testing.T) {
	uc := newAuthUseCase(testhelpers.NewAccountRepositoryStub())
	if _, _, err := uc.RegisterCustomer(context.Background(), Registration{Password: "password"}); err != domainErrors.ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials error, got %v", err)
	}
	if _, err := uc.CreateAdmin(context.Background(), Registration{Login: "user"}); err != domainErrors.ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials error, got %v", err)
	}
}

func TestAuthUseCaseRegisterHasherError(t *testing.T) {
	uc := NewAuthUseCase(testhelpers.NewAccountRepositoryStub(), testhelpers.HasherStub{HashFn: func(string) (string, error) {
		return "", fmt.Errorf("hash error")
	}}, testhelpers.StrategyStub{})
	if _, _, err := uc.RegisterCustomer(context.Background(), Registration{Login: "user", Password: "pass"}); err == nil {
		t.Fatal("expected hashing error")
	}
}

func TestAuthUseCaseRegisterIssueTokenError(t *testing.T) {
	strategy := testhelpers.StrategyStub{IssueFn: func(model.Session) (string, error) {
		return "", fmt.Errorf("cannot issue token")
	}}
	uc := NewAuthUseCase(testhelpers.NewAccountRepositoryStub(), testhelpers.HasherStub{}, strategy)
	if _, _, err := uc.RegisterCustomer(context.Background(), Registration{Login: "user", Password: "pass"}); err == nil {
		t.Fatal("expected token issuing error")
	}
}

func TestAuthUseCaseAuthenticateChecksRole(t *testing.T) {
	repo := testhelpers.NewAccountRepositoryStub()
	uc := newAuthUseCase(repo)
	ctx := context.Background()

	if _, err := uc.CreateAdmin(ctx, Registration{Login: "root", Password: "123456"}); err != nil {
		t.Fatalf("create admin failed: %v", err)
	}

	if _, _, err := uc.Authenticate(ctx, model.RoleCustomer, "root", "123456"); err != domainErrors.ErrInvalidCredentials {
		t.Fatalf("expected admin to be refused on customer login, got %v", err)
	}
	if _, _, err := uc.Authenticate(ctx, model.RoleAdmin, "root", "bad"); err != domainErrors.ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials error, got %v", err)
	}
	if _, _, err := uc.Authenticate(ctx, model.RoleAdmin, "absent", "123456"); err != domainErrors.ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials for unknown login, got %v", err)
	}
	if _, _, err := uc.Authenticate(ctx, model.RoleAdmin, "", "123456"); err != domainErrors.ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials for empty login, got %v", err)
	}

	acc, token, err := uc.Authenticate(ctx, model.RoleAdmin, " root ", "123456")
	if err != nil {
		t.Fatalf("authenticate returned error: %v", err)
	}
	if acc.Role != model.RoleAdmin || token != "admin-1" {
		t.Fatalf("unexpected result %+v %q", acc, token)
	}
}

func TestAuthUseCaseAuthenticateRepositoryError(t *testing.T) {
	repo := testhelpers.NewAccountRepositoryStub()
	repo.Err = fmt.Errorf("storage unavailable")
	uc := newAuthUseCase(repo)
	if _, _, err := uc.Authenticate(context.Background(), model.RoleAdmin, "user", "pass"); err == nil || err.Error() != "storage unavailable" {
		t.Fatalf("expected repository error, got %v", err)
	}
}

func TestAuthUseCaseEnsureAdminIsIdempotent(t *testing.T) {
	repo := testhelpers.NewAccountRepositoryStub()
	uc := newAuthUseCase(repo)
	ctx := context.Background()

	if err := uc.EnsureAdmin(ctx, "root", "pw"); err != nil {
		t.Fatalf("first ensure failed: %v", err)
	}
	if err := uc.EnsureAdmin(ctx, "root", "pw"); err != nil {
		t.Fatalf("second ensure failed: %v", err)
	}
	if err := uc.EnsureAdmin(ctx, "", ""); err != nil {
		t.Fatalf("empty bootstrap should be skipped: %v", err)
	}
	if len(repo.ByID) != 1 {
		t.Fatalf("expected exactly one admin, got %d", len(repo.ByID))
	}
}

func TestAuthUseCaseParseToken(t *testing.T) {
	uc := newAuthUseCase(testhelpers.NewAccountRepositoryStub())

	session, err := uc.ParseToken("admin-42")
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if session.AccountID != 42 || !session.IsAdmin() {
		t.Fatalf("unexpected session %+v", session)
	}

	if _, err := uc.ParseToken("bad-token"); !errors.Is(err, pkgAuth.ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
	if _, err := uc.ParseToken(""); !errors.Is(err, pkgAuth.ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestAuthUseCaseGetByID(t *testing.T) {
	uc := newAuthUseCase(testhelpers.NewAccountRepositoryStub())
	acc, _, err := uc.RegisterCustomer(context.Background(), Registration{Login: "dave", Password: "pwd"})
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	fetched, err := uc.GetByID(context.Background(), acc.ID)
	if err != nil {
		t.Fatalf("get by id returned error: %v", err)
	}
	if fetched.Login != "dave" {
		t.Fatalf("unexpected login %q", fetched.Login)
	}
	if _, err := uc.GetByID(context.Background(), 99); err != domainErrors.ErrNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
