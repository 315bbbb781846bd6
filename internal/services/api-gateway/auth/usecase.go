package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/NordCoder/Marketus/internal/apperr"
	domainauth "github.com/NordCoder/Marketus/internal/domain/auth"
	"github.com/NordCoder/Marketus/internal/domain/user"
	"github.com/NordCoder/Marketus/internal/obs"
	pg "github.com/NordCoder/Marketus/internal/repository/postgres"
)

type Config struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Usecase composes the hasher, the token service and the session store
// into the four user-facing auth flows.
type Usecase struct {
	users    user.Repo
	sessions domainauth.SessionRepo
	tokens   *TokenService
	hasher   *Hasher
	events   EventPublisher
	log      *zap.Logger
	cfg      Config
}

func NewUsecase(users user.Repo, sessions domainauth.SessionRepo, tokens *TokenService, hasher *Hasher, events EventPublisher, log *zap.Logger, cfg Config) *Usecase {
	if events == nil {
		events = NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		hasher:   hasher,
		events:   events,
		log:      log,
		cfg:      cfg,
	}
}

// Register creates the account and opens its first session.
func (u *Usecase) Register(ctx context.Context, username, password string) (access, refresh string, err error) {
	defer func() { obs.CountAuthOp("register", err) }()

	if _, err := u.users.GetByUsername(ctx, username); err == nil {
		return "", "", apperr.New(apperr.InvalidCredentials, "Username already exists")
	} else if !errors.Is(err, pg.ErrNotFound) {
		return "", "", err
	}

	digest, err := u.hasher.Hash(ctx, password)
	if err != nil {
		return "", "", fmt.Errorf("hash password: %w", err)
	}

	newUser := &user.User{Username: username, HashedPassword: digest, Role: user.DefaultRole}
	if err := u.users.Create(ctx, newUser); err != nil {
		if errors.Is(err, pg.ErrConflict) {
			// Lost the race against a concurrent registration.
			return "", "", apperr.New(apperr.InvalidCredentials, "Username already exists")
		}
		return "", "", err
	}

	access, refresh, err = u.openSession(ctx, newUser)
	if err != nil {
		return "", "", err
	}

	u.log.Info("user registered", zap.Int64("user_id", newUser.ID))
	u.events.Publish(ctx, AuthEvent{Type: "registered", UserID: newUser.ID, Username: username, At: time.Now().UTC()})
	return access, refresh, nil
}

// Login authenticates and replaces every prior session for the user.
// Unknown username and bad password yield the same error so the failing
// factor is not leaked.
func (u *Usecase) Login(ctx context.Context, username, password string) (access, refresh string, err error) {
	defer func() { obs.CountAuthOp("login", err) }()

	rec, err := u.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return "", "", apperr.New(apperr.InvalidCredentials, "Invalid username or password")
		}
		return "", "", err
	}
	ok, err := u.hasher.Verify(ctx, password, rec.HashedPassword)
	if err != nil {
		return "", "", fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return "", "", apperr.New(apperr.InvalidCredentials, "Invalid username or password")
	}

	if err := u.sessions.RevokeAll(ctx, rec.ID); err != nil {
		return "", "", err
	}

	access, refresh, err = u.openSession(ctx, rec)
	if err != nil {
		return "", "", err
	}

	u.log.Info("user logged in", zap.Int64("user_id", rec.ID))
	u.events.Publish(ctx, AuthEvent{Type: "logged_in", UserID: rec.ID, Username: username, At: time.Now().UTC()})
	return access, refresh, nil
}

// Refresh rotates the presented session. The store-level rotation is a
// single atomic consume-and-insert, so a given refresh token is usable
// at most once even under concurrent submission.
func (u *Usecase) Refresh(ctx context.Context, raw string) (access, refresh string, err error) {
	defer func() { obs.CountAuthOp("refresh", err) }()

	if raw == "" {
		return "", "", apperr.New(apperr.Unauthorized, "Refresh token missing")
	}

	newToken, err := NewRefreshToken()
	if err != nil {
		return "", "", err
	}

	sess, err := u.sessions.Rotate(ctx, raw, newToken, u.cfg.RefreshTTL)
	if err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return "", "", apperr.New(apperr.Unauthorized, "Invalid or expired refresh token")
		}
		return "", "", err
	}

	rec, err := u.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			_ = u.sessions.Revoke(ctx, sess.Token)
			return "", "", apperr.New(apperr.Unauthorized, "User not found")
		}
		return "", "", err
	}

	access, err = u.tokens.IssueAccess(rec)
	if err != nil {
		return "", "", err
	}

	u.log.Info("access token refreshed", zap.Int64("user_id", rec.ID))
	u.events.Publish(ctx, AuthEvent{Type: "refreshed", UserID: rec.ID, At: time.Now().UTC()})
	return access, sess.Token, nil
}

// Logout revokes the presented session. Revoking an already-gone token
// still succeeds; only a missing cookie is an error.
func (u *Usecase) Logout(ctx context.Context, raw string) (err error) {
	defer func() { obs.CountAuthOp("logout", err) }()

	if raw == "" {
		return apperr.New(apperr.Unauthorized, "Refresh token missing")
	}
	if err := u.sessions.Revoke(ctx, raw); err != nil {
		return err
	}

	u.log.Info("user logged out")
	u.events.Publish(ctx, AuthEvent{Type: "logged_out", At: time.Now().UTC()})
	return nil
}

// VerifyAccess exposes identity verification for the proxy layer.
func (u *Usecase) VerifyAccess(token string) (*domainauth.AccessClaims, error) {
	return u.tokens.VerifyAccess(token)
}

func (u *Usecase) openSession(ctx context.Context, rec *user.User) (access, refresh string, err error) {
	access, err = u.tokens.IssueAccess(rec)
	if err != nil {
		return "", "", err
	}
	refresh, err = NewRefreshToken()
	if err != nil {
		return "", "", err
	}
	if _, err := u.sessions.Store(ctx, rec.ID, refresh, u.cfg.RefreshTTL); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}
