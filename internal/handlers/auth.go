package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"oauth-relay/internal/models"
	"oauth-relay/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	stateMismatchMessage = "State mismatch"
	wrongTokenMessage    = "Wrong token"
	loginFailedMessage   = "Failed to initiate login"
)

// CookieOptions містить налаштування cookie для state та refresh token
type CookieOptions struct {
	StateName     string
	StateMaxAge   time.Duration
	RefreshName   string
	RefreshMaxAge time.Duration
	// Domain застосовується лише до cookie з refresh token
	Domain string
	Secure bool
}

// AuthHandler містить handlers для OAuth2 authorization code flow
type AuthHandler struct {
	authService services.AuthService
	cookies     CookieOptions
	publicURL   string
}

// NewAuthHandler створює новий AuthHandler
func NewAuthHandler(authService services.AuthService, cookies CookieOptions, publicURL string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookies:     cookies,
		publicURL:   publicURL,
	}
}

// Login ініціює OAuth2 Authorization Code Flow
// @Summary Login
// @Description Генерує state, зберігає його в cookie і перенаправляє на сторінку згоди провайдера
// @Tags auth
// @Param scope query string false "Scope, що запитується у провайдера"
// @Success 302 "Redirect to provider consent page"
// @Failure 500 {string} string
// @Router /login [get]
func (h *AuthHandler) Login(c *gin.Context) {
	logrus.Info("🔐 Login request")

	redirect, err := h.authService.BeginLogin(c.Query("scope"))
	if err != nil {
		logrus.WithError(err).Error("Failed to initiate login")
		c.String(http.StatusInternalServerError, loginFailedMessage)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		h.cookies.StateName,
		string(redirect.State),
		int(h.cookies.StateMaxAge.Seconds()),
		"/",
		"",
		h.cookies.Secure,
		true,
	)

	c.Redirect(http.StatusFound, redirect.AuthURL)
}

// Callback обробляє callback від провайдера
// @Summary OAuth2 Callback
// @Description Перевіряє state, обмінює code на токени і перенаправляє браузер на host з токенами
// @Tags auth
// @Param code query string true "Authorization Code"
// @Param state query string true "State"
// @Success 302 "Redirect to host with refresh_token, access_token and expires_in"
// @Failure 500 {string} string
// @Router /callback [get]
func (h *AuthHandler) Callback(c *gin.Context) {
	logrus.Info("🔄 OAuth callback")

	var req models.CallbackRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		logrus.WithError(err).Warn("Failed to parse callback query")
	}

	storedState, _ := c.Cookie(h.cookies.StateName)

	if err := h.authService.VerifyCallback(req, storedState); err != nil {
		logrus.WithFields(logrus.Fields{
			"state":        req.State,
			"stored_state": storedState,
			"cookies":      cookieValues(c),
		}).Warn("State mismatch")
		c.String(http.StatusInternalServerError, stateMismatchMessage)
		return
	}

	// State одноразовий
	h.clearStateCookie(c)

	tokens, err := h.authService.CompleteCallback(exchangeContext(c), req)
	if err != nil {
		logrus.WithError(err).Error("Failed to exchange authorization code")
		c.String(http.StatusInternalServerError, wrongTokenMessage)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		h.cookies.RefreshName,
		tokens.RefreshToken,
		int(h.cookies.RefreshMaxAge.Seconds()),
		"/",
		h.cookies.Domain,
		h.cookies.Secure,
		false,
	)

	c.Redirect(http.StatusFound, h.tokenRedirectURL(tokens))
}

// Token оновлює access token використовуючи refresh token
// @Summary Refresh Token
// @Description Оновлює access token. При будь-якій невдачі повертає порожні значення зі статусом 200
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.TokenRefreshRequest false "Refresh Token"
// @Success 200 {object} models.TokenRefreshResponse
// @Router /token [post]
func (h *AuthHandler) Token(c *gin.Context) {
	logrus.Info("🔄 Token refresh")

	var req models.TokenRefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Debug("Token refresh request without valid JSON body")
	}

	tokens, err := h.authService.RefreshAccessToken(exchangeContext(c), req.RefreshToken)
	if err != nil {
		if errors.Is(err, services.ErrMissingRefreshToken) {
			logrus.Debug("Token refresh requested without refresh token")
		} else {
			logrus.WithError(err).Warn("Failed to refresh access token")
		}
		c.JSON(http.StatusOK, models.EmptyTokenRefreshResponse())
		return
	}

	resp := models.TokenRefreshResponse{AccessToken: tokens.AccessToken, ExpiresIn: ""}
	if tokens.ExpiresIn > 0 {
		resp.ExpiresIn = tokens.ExpiresIn
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) clearStateCookie(c *gin.Context) {
	c.SetCookie(h.cookies.StateName, "", -1, "/", "", h.cookies.Secure, true)
}

// tokenRedirectURL формує адресу клієнтського додатку з токенами в query.
// Якщо провайдер не повернув expires_in, параметр залишається порожнім.
func (h *AuthHandler) tokenRedirectURL(tokens *models.TokenSet) string {
	expiresIn := ""
	if tokens.ExpiresIn > 0 {
		expiresIn = strconv.FormatInt(tokens.ExpiresIn, 10)
	}

	return fmt.Sprintf("%s/?refresh_token=%s&access_token=%s&expires_in=%s",
		h.publicURL,
		url.QueryEscape(tokens.RefreshToken),
		url.QueryEscape(tokens.AccessToken),
		expiresIn,
	)
}

// exchangeContext відв'язує запит до провайдера від скасування вхідного запиту.
// Тривалість обмежена таймаутом HTTP клієнта провайдера.
func exchangeContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

// cookieValues повертає cookie запиту для логування, значення обрізані
func cookieValues(c *gin.Context) map[string]string {
	values := make(map[string]string)
	for _, cookie := range c.Request.Cookies() {
		values[cookie.Name] = maskValue(cookie.Value)
	}
	return values
}

func maskValue(value string) string {
	if len(value) <= 4 {
		return value
	}
	return value[:4] + "..."
}
