package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"oauth-relay/internal/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const (
	grantAuthorizationCode = "authorization_code"
	grantRefreshToken      = "refresh_token"
)

// ProviderService інтерфейс для роботи з OAuth2 провайдером
type ProviderService interface {
	AuthCodeURL(req models.AuthorizationRequest) string
	ExchangeCode(ctx context.Context, code string) (*models.TokenSet, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (*models.TokenSet, error)
	RedirectURI() string
}

// ProviderOptions містить налаштування провайдера
type ProviderOptions struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	RedirectURI  string
	Timeout      time.Duration
}

// oauthProviderService реалізація ProviderService поверх golang.org/x/oauth2
type oauthProviderService struct {
	config     oauth2.Config
	httpClient *http.Client
}

// NewProviderService створює новий Provider сервіс.
// Облікові дані клієнта передаються у заголовку Authorization як base64(client_id:client_secret)
// без URL-кодування, яке застосовує oauth2.AuthStyleInHeader.
func NewProviderService(opts ProviderOptions) ProviderService {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	return &oauthProviderService{
		config: oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.RedirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:   opts.AuthURL,
				TokenURL:  opts.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &basicAuthTransport{
				clientID:     opts.ClientID,
				clientSecret: opts.ClientSecret,
				base:         http.DefaultTransport,
			},
		},
	}
}

// RedirectURI повертає redirect_uri, однаковий для авторизації та обміну коду
func (p *oauthProviderService) RedirectURI() string {
	return p.config.RedirectURL
}

// AuthCodeURL формує URL сторінки згоди провайдера
func (p *oauthProviderService) AuthCodeURL(req models.AuthorizationRequest) string {
	return p.config.AuthCodeURL(string(req.State), oauth2.SetAuthURLParam("scope", req.Scope))
}

// ExchangeCode обмінює authorization code на токени
func (p *oauthProviderService) ExchangeCode(ctx context.Context, code string) (*models.TokenSet, error) {
	logrus.WithFields(logrus.Fields{
		"redirect_uri": p.config.RedirectURL,
		"token_url":    p.config.Endpoint.TokenURL,
	}).Info("Exchanging authorization code for tokens")

	token, err := p.config.Exchange(p.clientContext(ctx), code)
	if err != nil {
		return nil, exchangeError(grantAuthorizationCode, err)
	}

	return tokenSetFromOAuth2(token), nil
}

// RefreshAccessToken отримує новий access token за refresh token
func (p *oauthProviderService) RefreshAccessToken(ctx context.Context, refreshToken string) (*models.TokenSet, error) {
	logrus.WithField("token_url", p.config.Endpoint.TokenURL).Info("Refreshing access token")

	source := p.config.TokenSource(p.clientContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, exchangeError(grantRefreshToken, err)
	}

	return tokenSetFromOAuth2(token), nil
}

// clientContext передає oauth2 HTTP клієнт з таймаутом
func (p *oauthProviderService) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

func exchangeError(grant string, err error) error {
	exchangeErr := &ProviderExchangeError{Grant: grant, Err: err}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		exchangeErr.StatusCode = retrieveErr.Response.StatusCode
	}

	return exchangeErr
}

func tokenSetFromOAuth2(token *oauth2.Token) *models.TokenSet {
	expiresIn := token.ExpiresIn
	if expiresIn == 0 && !token.Expiry.IsZero() {
		expiresIn = int64(time.Until(token.Expiry).Round(time.Second).Seconds())
	}

	return &models.TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    expiresIn,
	}
}

// basicAuthTransport переносить облікові дані клієнта з тіла запиту в заголовок Authorization
type basicAuthTransport struct {
	clientID     string
	clientSecret string
	base         http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read token request body: %w", err)
		}
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse token request body: %w", err)
	}
	form.Del("client_id")
	form.Del("client_secret")
	encoded := form.Encode()

	out := req.Clone(req.Context())
	out.Body = io.NopCloser(strings.NewReader(encoded))
	out.ContentLength = int64(len(encoded))
	out.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(encoded)), nil
	}
	out.SetBasicAuth(t.clientID, t.clientSecret)

	return t.base.RoundTrip(out)
}
