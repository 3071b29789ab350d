// Package otp issues and verifies one-time login codes bound to a phone number.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTTL is how long an issued code stays valid.
const DefaultTTL = 10 * time.Minute

const (
	codeMin = 100000
	codeMax = 999999
)

var (
	ErrSessionNotFound = errors.New("otp session not found")
	ErrPhoneMismatch   = errors.New("phone number does not match otp session")
	ErrExpired         = errors.New("otp has expired")
	ErrCodeMismatch    = errors.New("invalid otp code")
	ErrDelivery        = errors.New("failed to deliver otp")
)

// Session is a stored, not yet verified code.
type Session struct {
	ID        string    `json:"session_id"`
	Phone     string    `json:"phone_number"`
	CodeHash  string    `json:"code_hash"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionStore persists sessions. Save must make the new session the current
// one for its phone; Get must not return a session that has been superseded.
// Consume removes the current session atomically and returns
// ErrSessionNotFound to every caller but the one that removed it.
type SessionStore interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Consume(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// Sender delivers a code to a phone.
type Sender interface {
	SendOTP(ctx context.Context, phone, code string) error
}

// Manager issues and verifies codes.
type Manager struct {
	store    SessionStore
	sender   Sender
	ttl      time.Duration
	hashCost int
	now      func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.ttl = ttl }
}

// WithHashCost sets the bcrypt cost used for stored codes.
func WithHashCost(cost int) Option {
	return func(m *Manager) { m.hashCost = cost }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a new Manager.
func NewManager(store SessionStore, sender Sender, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		sender:   sender,
		ttl:      DefaultTTL,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TTL returns how long issued codes stay valid.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue creates a session for phone, sends the code and returns the session id.
// A previous session for the same phone is superseded.
func (m *Manager) Issue(ctx context.Context, phone string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), m.hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash otp: %w", err)
	}

	now := m.now()
	session := &Session{
		ID:        uuid.New().String(),
		Phone:     phone,
		CodeHash:  string(hash),
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Save(ctx, session); err != nil {
		return "", fmt.Errorf("failed to store otp session: %w", err)
	}

	if err := m.sender.SendOTP(ctx, phone, code); err != nil {
		if delErr := m.store.Delete(ctx, session.ID); delErr != nil {
			return "", fmt.Errorf("%w: %v (cleanup failed: %v)", ErrDelivery, err, delErr)
		}
		return "", fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return session.ID, nil
}

// Verify checks code against the session. A wrong code leaves the session in
// place; a correct one consumes it, so concurrent calls with the right code
// succeed at most once.
func (m *Manager) Verify(ctx context.Context, sessionID, phone, code string) error {
	session, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Phone != phone {
		return ErrPhoneMismatch
	}
	if !m.now().Before(session.ExpiresAt) {
		return ErrExpired
	}
	if bcrypt.CompareHashAndPassword([]byte(session.CodeHash), []byte(code)) != nil {
		return ErrCodeMismatch
	}
	// Only the caller that removes the session gets through.
	if err := m.store.Consume(ctx, sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to consume otp session: %w", err)
	}
	return nil
}

// ExpiresAt reports when sessionID stops being valid.
func (m *Manager) ExpiresAt(ctx context.Context, sessionID string) (time.Time, error) {
	session, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return time.Time{}, err
	}
	return session.ExpiresAt, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}
