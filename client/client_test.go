package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingNavigator struct {
	paths []string
}

func (n *recordingNavigator) Reload(_ context.Context, path string) error {
	n.paths = append(n.paths, path)
	return nil
}

func testHTTPClient(t *testing.T, timeout time.Duration) *http.Client {
	t.Helper()
	tr := &http.Transport{}
	t.Cleanup(tr.CloseIdleConnections)
	return &http.Client{Transport: tr, Timeout: timeout}
}

func staticToken(token string) TokenStore {
	return TokenFunc(func() (string, bool, error) {
		return token, token != "", nil
	})
}

func newTestClient(t *testing.T, srv *httptest.Server, tokens TokenStore, nav Navigator, timeout time.Duration) *Client {
	t.Helper()
	quiet := zerolog.Nop()
	c, err := New(Options{
		BaseURL:    srv.URL,
		Path:       "/about/",
		HTTPClient: testHTTPClient(t, timeout),
		Tokens:     tokens,
		Navigator:  nav,
		Logger:     &quiet,
	})
	require.NoError(t, err)
	return c
}

func TestLoginSendsBearerTokenWhenStored(t *testing.T) {
	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Values("Authorization"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"preview":true}`))
	}))
	t.Cleanup(srv.Close)

	nav := &recordingNavigator{}
	c := newTestClient(t, srv, staticToken("abc"), nav, 0)

	require.NoError(t, c.Login(context.Background()))
	assert.Equal(t, []string{"Bearer abc"}, gotAuth.Load())
}

func TestLoginOmitsAuthorizationWithoutToken(t *testing.T) {
	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Values("Authorization"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"preview":true}`))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv, staticToken(""), &recordingNavigator{}, 0)

	require.NoError(t, c.Login(context.Background()))
	assert.Empty(t, gotAuth.Load())
}

func TestLoginSuccessReloadsOnceWithNoOtherRequests(t *testing.T) {
	var requests atomic.Int32
	var path atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		path.Store(r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"preview":true}`))
	}))
	t.Cleanup(srv.Close)

	nav := &recordingNavigator{}
	c := newTestClient(t, srv, staticToken("abc"), nav, 0)

	require.NoError(t, c.Login(context.Background()))
	assert.Equal(t, int32(1), requests.Load())
	assert.Equal(t, "/api/preview", path.Load())
	assert.Equal(t, []string{"/about/"}, nav.paths)
}

func TestLoginFailureReturnsServerMessageWithoutReload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"denied"}`))
	}))
	t.Cleanup(srv.Close)

	nav := &recordingNavigator{}
	c := newTestClient(t, srv, staticToken("abc"), nav, 0)

	err := c.Login(context.Background())
	require.Error(t, err)
	assert.Equal(t, "denied", err.Error())

	var loginErr *LoginError
	require.True(t, errors.As(err, &loginErr))
	assert.Equal(t, http.StatusForbidden, loginErr.Status)
	assert.Empty(t, nav.paths)
}

func TestLoginRejectsNonJSONBody(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"success status", http.StatusOK},
		{"error status", http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("<html>upstream error</html>"))
			}))
			t.Cleanup(srv.Close)

			nav := &recordingNavigator{}
			c := newTestClient(t, srv, staticToken("abc"), nav, 0)

			err := c.Login(context.Background())
			require.Error(t, err)
			var loginErr *LoginError
			assert.False(t, errors.As(err, &loginErr))
			assert.Empty(t, nav.paths)
		})
	}
}

func TestLoginNetworkFailureIsReturned(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	nav := &recordingNavigator{}
	c := newTestClient(t, srv, staticToken("abc"), nav, 0)

	err := c.Login(context.Background())
	require.Error(t, err)
	assert.Empty(t, nav.paths)
}

func TestLoginTokenStoreError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	boom := errors.New("storage unavailable")
	tokens := TokenFunc(func() (string, bool, error) { return "", false, boom })
	c := newTestClient(t, srv, tokens, &recordingNavigator{}, 0)

	assert.ErrorIs(t, c.Login(context.Background()), boom)
}

func TestLogoutAlwaysReloadsOnce(t *testing.T) {
	tests := []struct {
		name    string
		handler func(release <-chan struct{}) http.HandlerFunc
		timeout time.Duration
	}{
		{
			name: "success",
			handler: func(<-chan struct{}) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
			},
		},
		{
			name: "server error",
			handler: func(<-chan struct{}) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) }
			},
		},
		{
			name: "timeout",
			handler: func(release <-chan struct{}) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					select {
					case <-release:
					case <-r.Context().Done():
					}
				}
			},
			timeout: 50 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			release := make(chan struct{})
			srv := httptest.NewServer(tt.handler(release))
			t.Cleanup(srv.Close)
			t.Cleanup(func() { close(release) })

			nav := &recordingNavigator{}
			c := newTestClient(t, srv, staticToken(""), nav, tt.timeout)

			require.NoError(t, c.Logout(context.Background()))
			assert.Equal(t, []string{"/about/"}, nav.paths)
		})
	}
}

func TestLogoutUnreachableServerStillReloads(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	nav := &recordingNavigator{}
	c := newTestClient(t, srv, staticToken(""), nav, 0)

	require.NoError(t, c.Logout(context.Background()))
	assert.Len(t, nav.paths, 1)
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(Options{BaseURL: "/relative", Tokens: staticToken(""), Navigator: &recordingNavigator{}})
	assert.Error(t, err)

	_, err = New(Options{BaseURL: "http://example.com", Navigator: &recordingNavigator{}})
	assert.Error(t, err)

	_, err = New(Options{BaseURL: "http://example.com", Tokens: staticToken("")})
	assert.Error(t, err)
}

func TestFileTokenStoreRoundTrip(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "storage", "local.json"))

	_, ok, err := store.Token()
	require.NoError(t, err)
	assert.False(t, ok, "missing file is the anonymous state")

	require.NoError(t, store.SetToken("abc"))
	token, ok, err := store.Token()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	require.NoError(t, store.SetToken(""))
	_, ok, err = store.Token()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHTTPNavigatorRecordsEditMode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Edit-Mode", "true")
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	nav, err := NewHTTPNavigator(srv.URL, testHTTPClient(t, 0))
	require.NoError(t, err)

	require.NoError(t, nav.Reload(context.Background(), "/"))
	assert.True(t, nav.EditMode)
	assert.Equal(t, http.StatusOK, nav.Status)
}
