package test

import (
	"context"
	"errors"
	"fmt"

	"github.com/polkiloo/orderdesk/internal/domain/model"
	pkgAuth "github.com/polkiloo/orderdesk/internal/pkg/auth"
)

// HasherStub provides deterministic hashing for tests.
type HasherStub struct {
	HashFn    func(string) (string, error)
	CompareFn func(string, string) error
}

// Hash returns a predictable hash for the supplied secret.
func (h HasherStub) Hash(secret string) (string, error) {
	if h.HashFn != nil {
		return h.HashFn(secret)
	}
	return "hash:" + secret, nil
}

// Compare validates secret against stored hash.
func (h HasherStub) Compare(hash string, secret string) error {
	if h.CompareFn != nil {
		return h.CompareFn(hash, secret)
	}
	if hash != "hash:"+secret {
		return errors.New("mismatch")
	}
	return nil
}

// StrategyStub issues and parses "role-id" tokens unless overridden.
type StrategyStub struct {
	IssueFn func(model.Session) (string, error)
	ParseFn func(string) (model.Session, error)
	NameVal string
}

// IssueToken returns deterministic tokens for tests.
func (s StrategyStub) IssueToken(session model.Session) (string, error) {
	if s.IssueFn != nil {
		return s.IssueFn(session)
	}
	return fmt.Sprintf("%s-%d", session.Role, session.AccountID), nil
}

// ParseToken parses tokens produced by IssueToken.
func (s StrategyStub) ParseToken(token string) (model.Session, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	var id int64
	if _, err := fmt.Sscanf(token, "admin-%d", &id); err == nil {
		return model.Session{AccountID: id, Role: model.RoleAdmin}, nil
	}
	if _, err := fmt.Sscanf(token, "customer-%d", &id); err == nil {
		return model.Session{AccountID: id, Role: model.RoleCustomer}, nil
	}
	return model.Session{}, pkgAuth.ErrInvalidToken
}

// Name returns the strategy identifier used in tests.
func (s StrategyStub) Name() string {
	if s.NameVal != "" {
		return s.NameVal
	}
	return "stub"
}

// TokenParserStub implements middleware token parsing contract.
type TokenParserStub struct {
	Session model.Session
	Err     error
	ParseFn func(string) (model.Session, error)
}

// ParseToken either delegates to override or returns predefined result.
func (s TokenParserStub) ParseToken(token string) (model.Session, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	if s.Err != nil {
		return model.Session{}, s.Err
	}
	return s.Session, nil
}

var _ pkgAuth.PasswordHasher = HasherStub{}
var _ pkgAuth.Strategy = StrategyStub{}

// AdminSeederStub records bootstrap admin requests.
type AdminSeederStub struct {
	Logins []string
	Err    error
}

// EnsureAdmin records the login and returns the configured error.
func (s *AdminSeederStub) EnsureAdmin(ctx context.Context, login, password string) error {
	s.Logins = append(s.Logins, login)
	return s.Err
}
