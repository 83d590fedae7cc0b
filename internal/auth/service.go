package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"
)

var (
	ErrNoSession      = errors.New("session required")
	ErrSessionInvalid = errors.New("invalid session")
	ErrSessionExpired = errors.New("session expired")
)

// Session is one authenticated login: the bearer token handed to API
// clients plus the CSRF pairing token browser clients echo back on
// writes. Only the bearer token is persisted.
type Session struct {
	Token     string
	CSRFToken string
	UserID    int64
	ExpiresAt time.Time
}

// Service manages login sessions in the user_tokens table.
type Service struct {
	db  *sql.DB
	ttl time.Duration
}

func NewService(db *sql.DB, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{db: db, ttl: ttl}
}

// StartSession mints the token pair for a fresh login.
func (s *Service) StartSession(ctx context.Context, userID int64) (*Session, error) {
	if userID <= 0 {
		return nil, errors.New("invalid user id")
	}
	csrf, err := randomToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	expiresAt := now.Add(s.ttl)
	for attempt := 0; attempt < 5; attempt++ {
		token, err := randomToken()
		if err != nil {
			return nil, err
		}
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO user_tokens (token, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
			token, userID, now, expiresAt,
		)
		if err == nil {
			return &Session{Token: token, CSRFToken: csrf, UserID: userID, ExpiresAt: expiresAt}, nil
		}
	}
	return nil, errors.New("could not start session")
}

// Resolve maps a bearer token back to its user. Expired sessions are
// deleted on sight.
func (s *Service) Resolve(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, ErrNoSession
	}
	var userID int64
	var expires time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, expires_at FROM user_tokens WHERE token = ?`, token,
	).Scan(&userID, &expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrSessionInvalid
		}
		return 0, fmt.Errorf("lookup session: %w", err)
	}
	if time.Now().UTC().After(expires) {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM user_tokens WHERE token = ?`, token)
		return 0, ErrSessionExpired
	}
	return userID, nil
}

// EndSession logs out a single token.
func (s *Service) EndSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM user_tokens WHERE token = ?`, token); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// EndUserSessions logs the user out everywhere, used on account delete.
func (s *Service) EndUserSessions(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM user_tokens WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("end user sessions: %w", err)
	}
	return nil
}

// PurgeExpired deletes sessions past their expiry, returning how many
// were dropped.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM user_tokens WHERE expires_at < ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// StartPurgeLoop purges expired sessions on the interval until ctx is
// cancelled.
func (s *Service) StartPurgeLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := s.PurgeExpired(ctx); err != nil {
					log.Printf("session purge: %v", err)
				} else if n > 0 {
					log.Printf("session purge: dropped %d expired sessions", n)
				}
			}
		}
	}()
}

// TTL reports the configured session lifetime.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
