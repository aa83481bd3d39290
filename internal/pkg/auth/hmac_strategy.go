package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/polkiloo/orderdesk/internal/domain/model"
)

var ErrInvalidToken = errors.New("invalid auth token")

// HMACStrategy implements auth token creation/verification using HMAC signatures.
// The signed payload is "role:accountID:expiresUnix".
type HMACStrategy struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewHMACStrategy builds HMACStrategy with provided secret and options.
func NewHMACStrategy(secret string, opts Options) *HMACStrategy {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &HMACStrategy{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// IssueToken generates signed auth token for the session.
func (s *HMACStrategy) IssueToken(session model.Session) (string, error) {
	if session.AccountID <= 0 || (session.Role != model.RoleAdmin && session.Role != model.RoleCustomer) {
		return "", ErrInvalidToken
	}
	expires := s.now().Add(s.ttl).Unix()
	payload := fmt.Sprintf("%s:%d:%d", session.Role, session.AccountID, expires)
	token := payload + ":" + s.sign(payload)
	return base64.RawURLEncoding.EncodeToString([]byte(token)), nil
}

// ParseToken validates token and returns the encoded session.
func (s *HMACStrategy) ParseToken(token string) (model.Session, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return model.Session{}, ErrInvalidToken
	}

	parts := strings.Split(string(raw), ":")
	if len(parts) != 4 {
		return model.Session{}, ErrInvalidToken
	}

	payload := strings.Join(parts[:3], ":")
	if !hmac.Equal([]byte(s.sign(payload)), []byte(parts[3])) {
		return model.Session{}, ErrInvalidToken
	}

	role := model.Role(parts[0])
	if role != model.RoleAdmin && role != model.RoleCustomer {
		return model.Session{}, ErrInvalidToken
	}

	accountID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return model.Session{}, ErrInvalidToken
	}

	expires, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return model.Session{}, ErrInvalidToken
	}

	if time.Unix(expires, 0).Before(s.now()) {
		return model.Session{}, ErrInvalidToken
	}

	return model.Session{AccountID: accountID, Role: role}, nil
}

func (s *HMACStrategy) Name() string {
	return "hmac"
}

func (s *HMACStrategy) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
