package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/numberskills/nsadmin/internal/session"
)

// ErrNoActiveAccount is returned when a token is requested before anyone has
// signed in.
var ErrNoActiveAccount = errors.New("no active account - run `nsadmin login` to authenticate")

// Provider supplies bearer tokens for outbound API calls. Callers depend only
// on this interface, never on the shape of the cached session, so any identity
// backend (device flow, service credential, test fake) can sit behind it.
type Provider interface {
	Token(ctx context.Context) (string, error)
}

// Authenticator performs the identity-provider exchanges on behalf of a
// CachedProvider: a non-interactive refresh and an interactive challenge.
type Authenticator interface {
	// Refresh redeems a cached refresh credential. It must never prompt.
	Refresh(ctx context.Context, refreshToken string) (*session.Session, error)
	// Interactive runs a user-facing sign-in flow and blocks until it
	// completes or fails.
	Interactive(ctx context.Context) (*session.Session, error)
}

// renewWindow is how close to expiry a cached access token is still treated
// as valid. Renewing slightly early avoids handing out tokens that expire
// mid-request.
const renewWindow = 30 * time.Second

// CachedProvider is the default Provider: it prefers the cached access token,
// falls back to a silent refresh, and escalates to the Authenticator's
// interactive challenge only when the silent path fails.
type CachedProvider struct {
	store *session.Store
	auth  Authenticator
	log   logrus.FieldLogger
}

// NewProvider creates a CachedProvider over the given session store and
// authenticator.
func NewProvider(store *session.Store, auth Authenticator) *CachedProvider {
	return &CachedProvider{
		store: store,
		auth:  auth,
		log:   logrus.WithField("component", "identity"),
	}
}

// Token returns a currently-valid bearer token for the signed-in account.
//
// The interactive fallback may block on user input; callers must treat this
// call as possibly slow. No retry is attempted here - if both the silent and
// interactive paths fail, the underlying error is propagated.
func (p *CachedProvider) Token(ctx context.Context) (string, error) {
	sess, err := p.store.Load()
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return "", ErrNoActiveAccount
	}

	if sess.Token != "" && !sess.IsExpired(renewWindow) {
		return sess.Token, nil
	}

	renewed, silentErr := p.refresh(ctx, sess)
	if silentErr == nil {
		return renewed.Token, nil
	}
	p.log.WithError(silentErr).Debug("silent renewal failed, escalating to interactive sign-in")

	fresh, err := p.auth.Interactive(ctx)
	if err != nil {
		return "", fmt.Errorf("interactive sign-in failed after silent renewal error (%v): %w", silentErr, err)
	}
	if err := p.persist(fresh, sess); err != nil {
		return "", err
	}
	return fresh.Token, nil
}

// SignIn runs the interactive challenge unconditionally and persists the
// resulting session. Used by the login command.
func (p *CachedProvider) SignIn(ctx context.Context) (*session.Session, error) {
	sess, err := p.auth.Interactive(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.persist(sess, nil); err != nil {
		return nil, err
	}
	return sess, nil
}

func (p *CachedProvider) refresh(ctx context.Context, sess *session.Session) (*session.Session, error) {
	if sess.RefreshToken == "" {
		return nil, errors.New("no refresh credential cached")
	}

	renewed, err := p.auth.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		return nil, err
	}
	if err := p.persist(renewed, sess); err != nil {
		return nil, err
	}
	return renewed, nil
}

// persist writes the session to disk, carrying forward fields the identity
// provider does not own (account identity when the renewal response omits it,
// prior refresh credential, UI preferences).
func (p *CachedProvider) persist(sess, prev *session.Session) error {
	if prev != nil {
		if sess.Account == (session.Account{}) {
			sess.Account = prev.Account
		}
		if sess.RefreshToken == "" {
			sess.RefreshToken = prev.RefreshToken
		}
		sess.APIBaseURL = prev.APIBaseURL
		sess.OutputFormat = prev.OutputFormat
		if sess.Scopes == nil {
			sess.Scopes = prev.Scopes
		}
	}
	if err := p.store.Save(sess); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}
