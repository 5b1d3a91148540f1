package services

import (
	"context"
	"fmt"

	"oauth-relay/internal/models"

	"github.com/sirupsen/logrus"
)

// DefaultScope запитується, якщо клієнт не передав scope
const DefaultScope = "user-read-playback-state"

// AuthService інтерфейс для OAuth2 authorization code flow
type AuthService interface {
	BeginLogin(scope string) (*models.LoginRedirect, error)
	VerifyCallback(req models.CallbackRequest, storedState string) error
	CompleteCallback(ctx context.Context, req models.CallbackRequest) (*models.TokenSet, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (*models.TokenSet, error)
}

// authService реалізація AuthService
type authService struct {
	stateService    StateService
	providerService ProviderService
	clientID        string
	defaultScope    string
}

// NewAuthService створює новий AuthService
func NewAuthService(stateService StateService, providerService ProviderService, clientID, defaultScope string) AuthService {
	if defaultScope == "" {
		defaultScope = DefaultScope
	}

	return &authService{
		stateService:    stateService,
		providerService: providerService,
		clientID:        clientID,
		defaultScope:    defaultScope,
	}
}

// BeginLogin генерує state і формує URL авторизації у провайдера
func (s *authService) BeginLogin(scope string) (*models.LoginRedirect, error) {
	if scope == "" {
		scope = s.defaultScope
	}

	state, err := s.stateService.NewLoginState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate login state: %w", err)
	}

	authReq := models.AuthorizationRequest{
		ClientID:    s.clientID,
		Scope:       scope,
		RedirectURI: s.providerService.RedirectURI(),
		State:       state,
	}

	logrus.WithFields(logrus.Fields{
		"scope":        authReq.Scope,
		"redirect_uri": authReq.RedirectURI,
	}).Info("Login initiated")

	return &models.LoginRedirect{
		AuthURL: s.providerService.AuthCodeURL(authReq),
		State:   state,
	}, nil
}

// VerifyCallback перевіряє state з callback проти значення з cookie
func (s *authService) VerifyCallback(req models.CallbackRequest, storedState string) error {
	return s.stateService.VerifyState(req.State, storedState)
}

// CompleteCallback обмінює code на токени. State має бути вже перевірений.
func (s *authService) CompleteCallback(ctx context.Context, req models.CallbackRequest) (*models.TokenSet, error) {
	if req.Error != "" {
		logrus.WithFields(logrus.Fields{
			"error":       req.Error,
			"description": req.ErrorDescription,
		}).Warn("OAuth provider returned error")
		return nil, fmt.Errorf("%w: %s", ErrAuthorizationDenied, req.Error)
	}

	tokens, err := s.providerService.ExchangeCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	logrus.WithField("expires_in", tokens.ExpiresIn).Info("Authorization code exchanged successfully")
	return tokens, nil
}

// RefreshAccessToken оновлює access token
func (s *authService) RefreshAccessToken(ctx context.Context, refreshToken string) (*models.TokenSet, error) {
	if refreshToken == "" {
		return nil, ErrMissingRefreshToken
	}

	tokens, err := s.providerService.RefreshAccessToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	logrus.WithField("expires_in", tokens.ExpiresIn).Info("Access token refreshed successfully")
	return tokens, nil
}
