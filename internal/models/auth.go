package models

// LoginState представляє одноразовий nonce, що прив'язує /login до /callback
type LoginState string

// AuthorizationRequest представляє параметри запиту на авторизацію у провайдера.
// Існує лише як query параметри URL, на сервері не зберігається.
type AuthorizationRequest struct {
	ClientID    string
	Scope       string
	RedirectURI string
	State       LoginState
}

// LoginRedirect представляє результат ініціації логіну
type LoginRedirect struct {
	AuthURL string
	State   LoginState
}

// TokenSet представляє токени, отримані від провайдера
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
}

// CallbackRequest представляє параметри callback запиту від провайдера
type CallbackRequest struct {
	Code             string `form:"code"`
	State            string `form:"state"`
	Error            string `form:"error"`
	ErrorDescription string `form:"error_description"`
}

// TokenRefreshRequest представляє запит на оновлення access token
type TokenRefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenRefreshResponse представляє відповідь /token.
// ExpiresIn - число від провайдера або порожній рядок, якщо оновлення не вдалося.
type TokenRefreshResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   any    `json:"expires_in" swaggertype:"integer"`
}

// EmptyTokenRefreshResponse повертає відповідь, яку отримує клієнт при будь-якій невдачі
func EmptyTokenRefreshResponse() TokenRefreshResponse {
	return TokenRefreshResponse{AccessToken: "", ExpiresIn: ""}
}
