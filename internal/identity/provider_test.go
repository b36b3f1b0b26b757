package identity

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numberskills/nsadmin/internal/session"
)

type fakeAuthenticator struct {
	refreshCalls     int
	interactiveCalls int

	refreshSession     *session.Session
	refreshErr         error
	interactiveSession *session.Session
	interactiveErr     error
}

func (f *fakeAuthenticator) Refresh(ctx context.Context, refreshToken string) (*session.Session, error) {
	f.refreshCalls++
	return f.refreshSession, f.refreshErr
}

func (f *fakeAuthenticator) Interactive(ctx context.Context) (*session.Session, error) {
	f.interactiveCalls++
	return f.interactiveSession, f.interactiveErr
}

func newTestStore(t *testing.T) *session.Store {
	t.Helper()
	return session.NewStore(filepath.Join(t.TempDir(), "session.json"))
}

func TestTokenNoActiveAccount(t *testing.T) {
	auth := &fakeAuthenticator{}
	provider := NewProvider(newTestStore(t), auth)

	_, err := provider.Token(context.Background())
	require.ErrorIs(t, err, ErrNoActiveAccount)

	// An absent session never triggers an identity-provider exchange.
	assert.Zero(t, auth.refreshCalls)
	assert.Zero(t, auth.interactiveCalls)
}

func TestTokenUsesCachedToken(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(&session.Session{
		Token:         "cached",
		ExpiresAtUnix: time.Now().Add(time.Hour).Unix(),
	}))

	auth := &fakeAuthenticator{}
	provider := NewProvider(store, auth)

	token, err := provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cached", token)
	assert.Zero(t, auth.refreshCalls)
	assert.Zero(t, auth.interactiveCalls)
}

func TestTokenSilentRenewal(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(&session.Session{
		Token:         "stale",
		RefreshToken:  "refresh-cred",
		ExpiresAtUnix: time.Now().Add(-time.Minute).Unix(),
		Account:       session.Account{Email: "admin@example.com"},
	}))

	auth := &fakeAuthenticator{
		refreshSession: &session.Session{
			Token:         "renewed",
			ExpiresAtUnix: time.Now().Add(time.Hour).Unix(),
		},
	}
	provider := NewProvider(store, auth)

	token, err := provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "renewed", token)
	assert.Equal(t, 1, auth.refreshCalls)
	assert.Zero(t, auth.interactiveCalls)

	// The renewed session is persisted and carries the account forward.
	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "renewed", persisted.Token)
	assert.Equal(t, "admin@example.com", persisted.Account.Email)
	assert.Equal(t, "refresh-cred", persisted.RefreshToken)
}

func TestTokenInteractiveFallback(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(&session.Session{
		Token:         "stale",
		RefreshToken:  "refresh-cred",
		ExpiresAtUnix: time.Now().Add(-time.Minute).Unix(),
	}))

	auth := &fakeAuthenticator{
		refreshErr: errors.New("refresh grant rejected"),
		interactiveSession: &session.Session{
			Token:         "fresh",
			RefreshToken:  "new-refresh",
			ExpiresAtUnix: time.Now().Add(time.Hour).Unix(),
		},
	}
	provider := NewProvider(store, auth)

	token, err := provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)
	assert.Equal(t, 1, auth.refreshCalls)
	assert.Equal(t, 1, auth.interactiveCalls)
}

func TestTokenNoRefreshCredentialFallsBackToInteractive(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(&session.Session{
		Token:         "stale",
		ExpiresAtUnix: time.Now().Add(-time.Minute).Unix(),
	}))

	auth := &fakeAuthenticator{
		interactiveSession: &session.Session{
			Token:         "fresh",
			ExpiresAtUnix: time.Now().Add(time.Hour).Unix(),
		},
	}
	provider := NewProvider(store, auth)

	token, err := provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)
	assert.Zero(t, auth.refreshCalls)
	assert.Equal(t, 1, auth.interactiveCalls)
}

func TestTokenBothPathsFail(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(&session.Session{
		Token:         "stale",
		RefreshToken:  "refresh-cred",
		ExpiresAtUnix: time.Now().Add(-time.Minute).Unix(),
	}))

	auth := &fakeAuthenticator{
		refreshErr:     errors.New("refresh grant rejected"),
		interactiveErr: errors.New("user closed the browser"),
	}
	provider := NewProvider(store, auth)

	_, err := provider.Token(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user closed the browser")
	assert.Contains(t, err.Error(), "refresh grant rejected")
	assert.Equal(t, 1, auth.interactiveCalls)
}

func TestTokenRenewsInsideWindow(t *testing.T) {
	store := newTestStore(t)
	// Token technically valid but expiring within the renewal window.
	require.NoError(t, store.Save(&session.Session{
		Token:         "nearly-stale",
		RefreshToken:  "refresh-cred",
		ExpiresAtUnix: time.Now().Add(10 * time.Second).Unix(),
	}))

	auth := &fakeAuthenticator{
		refreshSession: &session.Session{
			Token:         "renewed",
			ExpiresAtUnix: time.Now().Add(time.Hour).Unix(),
		},
	}
	provider := NewProvider(store, auth)

	token, err := provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "renewed", token)
	assert.Equal(t, 1, auth.refreshCalls)
}

func TestSignInPersistsSession(t *testing.T) {
	store := newTestStore(t)
	auth := &fakeAuthenticator{
		interactiveSession: &session.Session{
			Token:         "fresh",
			ExpiresAtUnix: time.Now().Add(time.Hour).Unix(),
			Account:       session.Account{Name: "Admin"},
		},
	}
	provider := NewProvider(store, auth)

	sess, err := provider.SignIn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", sess.Token)

	persisted, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, "fresh", persisted.Token)
	assert.Equal(t, "Admin", persisted.Account.Name)
}
