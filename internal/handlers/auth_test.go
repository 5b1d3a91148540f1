package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"oauth-relay/internal/models"
	"oauth-relay/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHost = "http://relay.test"

type fakeProvider struct {
	tokens        *models.TokenSet
	err           error
	exchangeCalls int
	refreshCalls  int
	lastCode      string
	lastRefresh   string
}

func (p *fakeProvider) AuthCodeURL(req models.AuthorizationRequest) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", req.ClientID)
	q.Set("scope", req.Scope)
	q.Set("redirect_uri", req.RedirectURI)
	q.Set("state", string(req.State))
	return "https://accounts.example.com/authorize?" + q.Encode()
}

func (p *fakeProvider) ExchangeCode(ctx context.Context, code string) (*models.TokenSet, error) {
	p.exchangeCalls++
	p.lastCode = code
	return p.tokens, p.err
}

func (p *fakeProvider) RefreshAccessToken(ctx context.Context, refreshToken string) (*models.TokenSet, error) {
	p.refreshCalls++
	p.lastRefresh = refreshToken
	return p.tokens, p.err
}

func (p *fakeProvider) RedirectURI() string {
	return testHost + "/callback"
}

func testCookieOptions() CookieOptions {
	return CookieOptions{
		StateName:     "spotify_auth_state",
		StateMaxAge:   10 * time.Minute,
		RefreshName:   "refresh_token",
		RefreshMaxAge: 30 * 24 * time.Hour,
		Domain:        "localhost",
	}
}

func newTestRouter(provider services.ProviderService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	authService := services.NewAuthService(services.NewStateService(), provider, "client-id", "")
	h := NewAuthHandler(authService, testCookieOptions(), testHost)

	r := gin.New()
	r.GET("/login", h.Login)
	r.GET("/callback", h.Callback)
	r.POST("/token", h.Token)
	return r
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// login виконує /login і повертає state з cookie
func login(t *testing.T, r *gin.Engine, query string) (*httptest.ResponseRecorder, string) {
	t.Helper()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login"+query, nil))

	stateCookie := findCookie(rec, "spotify_auth_state")
	require.NotNil(t, stateCookie, "login must set the state cookie")
	return rec, stateCookie.Value
}

func callback(r *gin.Engine, query, cookieState string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/callback"+query, nil)
	if cookieState != "" {
		req.AddCookie(&http.Cookie{Name: "spotify_auth_state", Value: cookieState})
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func tamper(state string) string {
	replacement := byte('A')
	if state[0] == 'A' {
		replacement = 'B'
	}
	return string(replacement) + state[1:]
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantScope string
	}{
		{name: "default scope", query: "", wantScope: services.DefaultScope},
		{name: "scope from query", query: "?scope=" + url.QueryEscape("user-read-email streaming"), wantScope: "user-read-email streaming"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&fakeProvider{})
			rec, state := login(t, r, tt.query)

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Len(t, state, services.StateLength)

			location, err := url.Parse(rec.Header().Get("Location"))
			require.NoError(t, err)
			q := location.Query()
			assert.Equal(t, "code", q.Get("response_type"))
			assert.Equal(t, "client-id", q.Get("client_id"))
			assert.Equal(t, tt.wantScope, q.Get("scope"))
			assert.Equal(t, testHost+"/callback", q.Get("redirect_uri"))
			assert.Equal(t, state, q.Get("state"))

			stateCookie := findCookie(rec, "spotify_auth_state")
			assert.Equal(t, 600, stateCookie.MaxAge)
			assert.True(t, stateCookie.HttpOnly)
		})
	}
}

func TestLogin_FreshStatePerAttempt(t *testing.T) {
	r := newTestRouter(&fakeProvider{})
	_, first := login(t, r, "")
	_, second := login(t, r, "")
	assert.NotEqual(t, first, second)
}

func TestCallback_Success(t *testing.T) {
	provider := &fakeProvider{tokens: &models.TokenSet{AccessToken: "A", RefreshToken: "R", ExpiresIn: 3600}}
	r := newTestRouter(provider)
	_, state := login(t, r, "")

	rec := callback(r, "?code=auth-code&state="+state, state)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, testHost+"/?refresh_token=R&access_token=A&expires_in=3600", rec.Header().Get("Location"))
	assert.Equal(t, 1, provider.exchangeCalls)
	assert.Equal(t, "auth-code", provider.lastCode)

	refreshCookie := findCookie(rec, "refresh_token")
	require.NotNil(t, refreshCookie)
	assert.Equal(t, "R", refreshCookie.Value)
	assert.Equal(t, 30*24*3600, refreshCookie.MaxAge)
	assert.Equal(t, "localhost", refreshCookie.Domain)

	stateCookie := findCookie(rec, "spotify_auth_state")
	require.NotNil(t, stateCookie, "state cookie must be cleared")
	assert.Empty(t, stateCookie.Value)
	assert.Less(t, stateCookie.MaxAge, 0)
}

func TestCallback_ExpiresInOmittedByProvider(t *testing.T) {
	provider := &fakeProvider{tokens: &models.TokenSet{AccessToken: "A", RefreshToken: "R"}}
	r := newTestRouter(provider)
	_, state := login(t, r, "")

	rec := callback(r, "?code=auth-code&state="+state, state)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, testHost+"/?refresh_token=R&access_token=A&expires_in=", rec.Header().Get("Location"))
}

func TestCallback_StateRejected(t *testing.T) {
	tests := []struct {
		name        string
		queryState  func(state string) string
		cookieState func(state string) string
	}{
		{
			name:        "single character changed",
			queryState:  tamper,
			cookieState: func(s string) string { return s },
		},
		{
			name:        "missing state parameter",
			queryState:  func(string) string { return "" },
			cookieState: func(s string) string { return s },
		},
		{
			name:        "missing cookie",
			queryState:  func(s string) string { return s },
			cookieState: func(string) string { return "" },
		},
		{
			name:        "state from another login",
			queryState:  func(string) string { return "ZZZZZZZZZZZZZZZZ" },
			cookieState: func(s string) string { return s },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{tokens: &models.TokenSet{AccessToken: "A", RefreshToken: "R", ExpiresIn: 3600}}
			r := newTestRouter(provider)
			_, state := login(t, r, "")

			query := "?code=auth-code"
			if qs := tt.queryState(state); qs != "" {
				query += "&state=" + qs
			}
			rec := callback(r, query, tt.cookieState(state))

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, "State mismatch", rec.Body.String())
			assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
			assert.Zero(t, provider.exchangeCalls, "provider must not be called on state mismatch")
			assert.Nil(t, findCookie(rec, "refresh_token"))
		})
	}
}

func TestCallback_ProviderFailure(t *testing.T) {
	provider := &fakeProvider{err: &services.ProviderExchangeError{Grant: "authorization_code", StatusCode: 400, Err: errors.New("invalid_grant")}}
	r := newTestRouter(provider)
	_, state := login(t, r, "")

	rec := callback(r, "?code=bad&state="+state, state)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Wrong token", rec.Body.String())
	assert.Equal(t, 1, provider.exchangeCalls)

	// State вже використано, навіть якщо обмін не вдався
	stateCookie := findCookie(rec, "spotify_auth_state")
	require.NotNil(t, stateCookie)
	assert.Less(t, stateCookie.MaxAge, 0)
}

func TestCallback_ProviderDenied(t *testing.T) {
	provider := &fakeProvider{}
	r := newTestRouter(provider)
	_, state := login(t, r, "")

	rec := callback(r, "?error=access_denied&state="+state, state)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Zero(t, provider.exchangeCalls)
}

func TestToken(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		provider     *fakeProvider
		wantJSON     string
		wantRefreshs int
	}{
		{
			name:     "empty body",
			body:     "",
			provider: &fakeProvider{},
			wantJSON: `{"access_token":"","expires_in":""}`,
		},
		{
			name:     "missing refresh token",
			body:     `{}`,
			provider: &fakeProvider{},
			wantJSON: `{"access_token":"","expires_in":""}`,
		},
		{
			name:     "invalid json",
			body:     `{"refresh_token":`,
			provider: &fakeProvider{},
			wantJSON: `{"access_token":"","expires_in":""}`,
		},
		{
			name:         "refreshed",
			body:         `{"refresh_token":"R"}`,
			provider:     &fakeProvider{tokens: &models.TokenSet{AccessToken: "A2", ExpiresIn: 3600}},
			wantJSON:     `{"access_token":"A2","expires_in":3600}`,
			wantRefreshs: 1,
		},
		{
			name:         "refreshed without expires_in",
			body:         `{"refresh_token":"R"}`,
			provider:     &fakeProvider{tokens: &models.TokenSet{AccessToken: "A2"}},
			wantJSON:     `{"access_token":"A2","expires_in":""}`,
			wantRefreshs: 1,
		},
		{
			name:         "provider rejected",
			body:         `{"refresh_token":"revoked"}`,
			provider:     &fakeProvider{err: &services.ProviderExchangeError{Grant: "refresh_token", StatusCode: 400, Err: errors.New("invalid_grant")}},
			wantJSON:     `{"access_token":"","expires_in":""}`,
			wantRefreshs: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(tt.provider)

			req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, tt.wantJSON, rec.Body.String())
			assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json"))
			assert.Equal(t, tt.wantRefreshs, tt.provider.refreshCalls)
		})
	}
}

func TestToken_NoBody(t *testing.T) {
	provider := &fakeProvider{}
	r := newTestRouter(provider)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/token", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"access_token":"","expires_in":""}`, rec.Body.String())
	assert.Zero(t, provider.refreshCalls)
}

func TestMaskValue(t *testing.T) {
	assert.Equal(t, "", maskValue(""))
	assert.Equal(t, "abcd", maskValue("abcd"))
	assert.Equal(t, "abcd...", maskValue("abcdefgh"))
}
