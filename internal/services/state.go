package services

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"

	"oauth-relay/internal/models"

	"github.com/sirupsen/logrus"
)

const (
	// StateAlphabet - символи, з яких складається login state
	StateAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// StateLength довжина login state
	StateLength = 16
)

// StateService інтерфейс для роботи з CSRF state параметрами
type StateService interface {
	NewLoginState() (models.LoginState, error)
	VerifyState(queryState, storedState string) error
}

// stateService реалізація StateService.
// State зберігається у cookie клієнта, тому сервіс не має стану.
type stateService struct {
	length int
}

// NewStateService створює новий State сервіс
func NewStateService() StateService {
	return &stateService{length: StateLength}
}

// NewLoginState генерує новий state параметр для CSRF захисту
func (s *stateService) NewLoginState() (models.LoginState, error) {
	state, err := GenerateRandomString(s.length)
	if err != nil {
		return "", err
	}

	logrus.WithField("state", state[:4]+"...").Debug("Generated new login state")

	return models.LoginState(state), nil
}

// VerifyState перевіряє, що state з query співпадає зі збереженим у cookie
func (s *stateService) VerifyState(queryState, storedState string) error {
	if queryState == "" || storedState == "" {
		return ErrStateMismatch
	}
	if subtle.ConstantTimeCompare([]byte(queryState), []byte(storedState)) != 1 {
		return ErrStateMismatch
	}
	return nil
}

// GenerateRandomString генерує рядок заданої довжини з літер та цифр.
// Кожен символ обирається рівномірно і незалежно.
func GenerateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}

	max := big.NewInt(int64(len(StateAlphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random state: %w", err)
		}
		buf[i] = StateAlphabet[n.Int64()]
	}

	return string(buf), nil
}
