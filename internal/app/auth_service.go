package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"peco-service/internal/domain"
)

const defaultAuthTTL = 24 * time.Hour

// LoginRequest is the demo login: no password, a name, and the requested role.
type LoginRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"omitempty,email"`
	Role  string `json:"role" validate:"omitempty,oneof=student admin"`
}

// Claims carried by issued tokens.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService issues tokens and keeps the stored auth record per user.
type AuthService struct {
	store    Store
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
	validate *Validator
	log      logrus.FieldLogger
}

func NewAuthService(store Store, secret string, ttl time.Duration, log logrus.FieldLogger) *AuthService {
	if ttl <= 0 {
		ttl = defaultAuthTTL
	}
	return &AuthService{
		store:    store,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
		validate: NewValidator(),
		log:      log,
	}
}

// WithClock swaps the time source, for tests.
func (a *AuthService) WithClock(now func() time.Time) *AuthService {
	a.now = now
	return a
}

// Login issues a token and stores the auth record. The user id is derived from the email (or
// name) so repeat logins keep their progress.
func (a *AuthService) Login(ctx context.Context, req LoginRequest) (domain.AuthRecord, error) {
	if err := a.validate.Struct(req); err != nil {
		return domain.AuthRecord{}, err
	}
	role := req.Role
	if role == "" {
		role = domain.RoleStudent
	}
	identity := strings.ToLower(strings.TrimSpace(req.Email))
	if identity == "" {
		identity = strings.ToLower(strings.TrimSpace(req.Name))
	}
	user := domain.User{
		ID:    uuid.NewSHA1(uuid.NameSpaceURL, []byte("peco:"+identity)).String(),
		Name:  req.Name,
		Email: req.Email,
	}

	now := a.now()
	expiry := now.Add(a.ttl)
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "peco",
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return domain.AuthRecord{}, fmt.Errorf("sign token: %w", err)
	}

	rec := domain.AuthRecord{
		Token:  token,
		Role:   role,
		Expiry: expiry.UnixMilli(),
		User:   user,
	}
	if err := a.store.Save(ctx, domain.UserKey(user.ID, domain.KeyAuth), rec); err != nil {
		return domain.AuthRecord{}, fmt.Errorf("save auth: %w", err)
	}
	a.log.WithFields(logrus.Fields{"user": user.ID, "role": role}).Info("user logged in")
	return rec, nil
}

// Restore returns the stored auth record. Malformed or expired records are removed and the
// user is treated as logged out.
func (a *AuthService) Restore(ctx context.Context, userID string) (domain.AuthRecord, error) {
	key := domain.UserKey(userID, domain.KeyAuth)
	var rec domain.AuthRecord
	found, err := a.store.Load(ctx, key, &rec)
	if errors.Is(err, domain.ErrMalformedRecord) {
		a.discard(ctx, key, "malformed")
		return domain.AuthRecord{}, domain.ErrUnauthenticated
	}
	if err != nil {
		return domain.AuthRecord{}, err
	}
	if !found {
		return domain.AuthRecord{}, domain.ErrUnauthenticated
	}
	if rec.Token == "" || rec.Expiry <= a.now().UnixMilli() {
		a.discard(ctx, key, "expired")
		return domain.AuthRecord{}, domain.ErrUnauthenticated
	}
	return rec, nil
}

// Authenticate verifies a bearer token and that it is still the user's current login.
func (a *AuthService) Authenticate(ctx context.Context, token string) (domain.AuthRecord, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil || !parsed.Valid {
		return domain.AuthRecord{}, domain.ErrUnauthenticated
	}
	rec, err := a.Restore(ctx, claims.Subject)
	if err != nil {
		return domain.AuthRecord{}, err
	}
	if rec.Token != token {
		return domain.AuthRecord{}, domain.ErrUnauthenticated
	}
	return rec, nil
}

// Logout forgets the stored record, invalidating the token.
func (a *AuthService) Logout(ctx context.Context, userID string) error {
	return a.store.Delete(ctx, domain.UserKey(userID, domain.KeyAuth))
}

func (a *AuthService) discard(ctx context.Context, key, reason string) {
	if err := a.store.Delete(ctx, key); err != nil {
		a.log.WithError(err).Warn("discard auth record failed")
		return
	}
	a.log.WithField("reason", reason).Debug("auth record discarded")
}
