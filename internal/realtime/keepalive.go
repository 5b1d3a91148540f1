package realtime

import (
	"context"
	"errors"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// KeepAlive - канал за замовчуванням: тримає з'єднання відкритим і відповідає на "ping".
// Ping/pong control frames gorilla/websocket обробляє сам.
type KeepAlive struct {
	namespace string
}

// NewKeepAlive створює KeepAlive канал для namespace
func NewKeepAlive(namespace string) *KeepAlive {
	return &KeepAlive{namespace: namespace}
}

// Namespace повертає namespace каналу
func (k *KeepAlive) Namespace() string {
	return k.namespace
}

// ServeConn читає повідомлення, доки клієнт не закриє з'єднання
func (k *KeepAlive) ServeConn(ctx context.Context, conn Conn) {
	for {
		if ctx.Err() != nil {
			return
		}

		messageType, msg, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				logrus.WithError(err).Debug("Real-time read failed")
			}
			return
		}

		if messageType == websocket.TextMessage && string(msg) == "ping" {
			if err := conn.WriteMessage(websocket.TextMessage, []byte("pong")); err != nil {
				logrus.WithError(err).Debug("Real-time write failed")
				return
			}
		}
	}
}
