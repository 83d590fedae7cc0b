package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"travelcopilot/internal/config"
	"travelcopilot/internal/storage"
)

func TestSessionLifecycle(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()
	insertUser(t, db, 1)

	svc := NewService(db, time.Hour)
	session, err := svc.StartSession(context.Background(), 1)
	if err != nil {
		t.Fatalf("StartSession error: %v", err)
	}
	if session.Token == "" || session.CSRFToken == "" {
		t.Fatalf("incomplete session: %+v", session)
	}
	if session.Token == session.CSRFToken {
		t.Fatalf("bearer and csrf tokens must differ")
	}

	userID, err := svc.Resolve(context.Background(), session.Token)
	if err != nil || userID != 1 {
		t.Fatalf("Resolve failed: id=%d err=%v", userID, err)
	}
	if err := svc.EndSession(context.Background(), session.Token); err != nil {
		t.Fatalf("EndSession error: %v", err)
	}
	if _, err := svc.Resolve(context.Background(), session.Token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid after logout, got %v", err)
	}

	second, err := svc.StartSession(context.Background(), 1)
	if err != nil {
		t.Fatalf("StartSession error: %v", err)
	}
	if err := svc.EndUserSessions(context.Background(), 1); err != nil {
		t.Fatalf("EndUserSessions error: %v", err)
	}
	if _, err := svc.Resolve(context.Background(), second.Token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid after revoke all, got %v", err)
	}
}

func TestResolveMissingToken(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	svc := NewService(db, time.Hour)
	if _, err := svc.Resolve(context.Background(), ""); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestResolveExpiredSession(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()
	insertUser(t, db, 2)

	svc := NewService(db, 10*time.Millisecond)
	session, err := svc.StartSession(context.Background(), 2)
	if err != nil {
		t.Fatalf("StartSession error: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := svc.Resolve(context.Background(), session.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	// ensure token removed
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM user_tokens WHERE token = ?`, session.Token).Scan(&count); err != nil {
		t.Fatalf("query tokens: %v", err)
	}
	if count != 0 {
		t.Fatalf("expired session not purged")
	}
}

func TestPurgeExpired(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()
	insertUser(t, db, 3)
	insertUser(t, db, 4)

	svc := NewService(db, time.Hour)
	stale, err := svc.StartSession(context.Background(), 3)
	if err != nil {
		t.Fatalf("StartSession error: %v", err)
	}
	fresh, err := svc.StartSession(context.Background(), 4)
	if err != nil {
		t.Fatalf("StartSession error: %v", err)
	}
	past := time.Now().UTC().Add(-time.Minute)
	if _, err := db.Exec(`UPDATE user_tokens SET expires_at = ? WHERE token = ?`, past, stale.Token); err != nil {
		t.Fatalf("backdate session: %v", err)
	}

	n, err := svc.PurgeExpired(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("PurgeExpired = %d, %v", n, err)
	}
	if _, err := svc.Resolve(context.Background(), fresh.Token); err != nil {
		t.Fatalf("fresh session should survive purge: %v", err)
	}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	cfg := &config.Config{
		Databases: map[string]config.DatabaseConfig{
			"sqlite3": {
				DSN: ":memory:",
			},
		},
	}
	db, err := storage.Open("sqlite3", cfg)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := storage.Migrate(db, "sqlite3"); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	return db
}

func insertUser(t *testing.T, db *sql.DB, id int64) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO users (id, username, password_hash, created_at) VALUES (?, ?, '', ?)`,
		id, "user_"+time.Now().Format("150405.000000"), time.Now().UTC())
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
}
