package auth

import (
	"time"

	"github.com/polkiloo/orderdesk/internal/domain/model"
)

// Strategy issues bearer tokens for sessions and parses them back.
type Strategy interface {
	IssueToken(session model.Session) (string, error)
	ParseToken(token string) (model.Session, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}
