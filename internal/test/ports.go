package test

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/domain/model"
)

// OTPStoreStub issues a fixed code per key and consumes it on successful verification.
type OTPStoreStub struct {
	Code      string
	Codes     map[string]string
	IssueErr  error
	VerifyErr error
	RevokeErr error
	Revoked   []string
	mu        sync.Mutex
}

// NewOTPStoreStub returns a store that always issues code.
func NewOTPStoreStub(code string) *OTPStoreStub {
	return &OTPStoreStub{Code: code, Codes: make(map[string]string)}
}

func (s *OTPStoreStub) Issue(ctx context.Context, key string) (string, error) {
	if s.IssueErr != nil {
		return "", s.IssueErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Codes == nil {
		s.Codes = make(map[string]string)
	}
	s.Codes[key] = s.Code
	return s.Code, nil
}

func (s *OTPStoreStub) Verify(ctx context.Context, key, code string) error {
	if s.VerifyErr != nil {
		return s.VerifyErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.Codes[key]
	if !ok {
		return domainErrors.ErrOTPExpired
	}
	if stored != code {
		return domainErrors.ErrOTPInvalid
	}
	delete(s.Codes, key)
	return nil
}

func (s *OTPStoreStub) Revoke(ctx context.Context, key string) error {
	if s.RevokeErr != nil {
		return s.RevokeErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Codes, key)
	s.Revoked = append(s.Revoked, key)
	return nil
}

// MailerStub records sent mail.
type MailerStub struct {
	Sent []model.Mail
	Err  error
}

func (s *MailerStub) Send(ctx context.Context, mail model.Mail) error {
	if s.Err != nil {
		return s.Err
	}
	s.Sent = append(s.Sent, mail)
	return nil
}

// SMS is a recorded text message.
type SMS struct {
	Mobile string
	Text   string
}

// SMSSenderStub records sent text messages.
type SMSSenderStub struct {
	Sent []SMS
	Err  error
}

func (s *SMSSenderStub) SendSMS(ctx context.Context, mobile, text string) error {
	if s.Err != nil {
		return s.Err
	}
	s.Sent = append(s.Sent, SMS{Mobile: mobile, Text: text})
	return nil
}

// RateProviderStub returns a fixed rate and counts lookups.
type RateProviderStub struct {
	Value decimal.Decimal
	Err   error
	Calls int
}

func (s *RateProviderStub) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	s.Calls++
	if s.Err != nil {
		return decimal.Zero, s.Err
	}
	return s.Value, nil
}

// ObserverStub records observed transitions as "entity:status".
type ObserverStub struct {
	Seen []string
}

func (s *ObserverStub) ObserveTransition(entity, status string) {
	s.Seen = append(s.Seen, entity+":"+status)
}
