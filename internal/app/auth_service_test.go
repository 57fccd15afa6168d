package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"peco-service/internal/app"
	"peco-service/internal/domain"
	"peco-service/internal/infra/memory"
	"peco-service/internal/logging"
)

func newAuth(clock *fakeClock) (*app.AuthService, *memory.KVStore) {
	kv := memory.NewKVStore()
	return app.NewAuthService(kv, "test-secret", 24*time.Hour, logging.Discard()).WithClock(clock.Now), kv
}

func TestLoginAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	auth, _ := newAuth(clock)

	rec, err := auth.Login(ctx, app.LoginRequest{Name: "Simran", Email: "Simran@example.com"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Role != domain.RoleStudent || rec.Token == "" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Expiry != clock.Now().Add(24*time.Hour).UnixMilli() {
		t.Fatalf("expected 24h expiry, got %d", rec.Expiry)
	}

	got, err := auth.Authenticate(ctx, rec.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.User.ID != rec.User.ID || got.User.Name != "Simran" {
		t.Fatalf("unexpected user %+v", got.User)
	}

	again, _ := auth.Login(ctx, app.LoginRequest{Name: "Simran K", Email: "simran@example.com"})
	if again.User.ID != rec.User.ID {
		t.Fatalf("expected stable user id across logins")
	}
}

func TestLoginValidation(t *testing.T) {
	auth, _ := newAuth(newFakeClock())
	cases := []app.LoginRequest{
		{},
		{Name: "x", Email: "not-an-email"},
		{Name: "x", Role: "root"},
	}
	for _, req := range cases {
		if _, err := auth.Login(context.Background(), req); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected invalid input for %+v, got %v", req, err)
		}
	}
}

func TestExpiredAuthIsDiscarded(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	auth, kv := newAuth(clock)

	rec, _ := auth.Login(ctx, app.LoginRequest{Name: "Arjun", Role: domain.RoleAdmin})
	clock.Advance(25 * time.Hour)

	if _, err := auth.Restore(ctx, rec.User.ID); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	var stored domain.AuthRecord
	if found, _ := kv.Load(ctx, domain.UserKey(rec.User.ID, domain.KeyAuth), &stored); found {
		t.Fatalf("expected expired record removed")
	}
	if _, err := auth.Authenticate(ctx, rec.Token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected expired token rejected, got %v", err)
	}
}

func TestMalformedAuthIsDiscarded(t *testing.T) {
	ctx := context.Background()
	auth, kv := newAuth(newFakeClock())
	key := domain.UserKey("u1", domain.KeyAuth)
	kv.SetRaw(key, []byte(`{"token": 42`))

	if _, err := auth.Restore(ctx, "u1"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	var stored domain.AuthRecord
	if found, _ := kv.Load(ctx, key, &stored); found {
		t.Fatalf("expected malformed record removed")
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuth(newFakeClock())
	rec, _ := auth.Login(ctx, app.LoginRequest{Name: "Harpreet"})

	if err := auth.Logout(ctx, rec.User.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := auth.Authenticate(ctx, rec.Token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected token rejected after logout, got %v", err)
	}
	if _, err := auth.Authenticate(ctx, "garbage"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected garbage token rejected, got %v", err)
	}
}
