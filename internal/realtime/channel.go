package realtime

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Conn - операції з'єднання, доступні каналу. *websocket.Conn задовольняє цей інтерфейс.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteJSON(v interface{}) error
	RemoteAddr() net.Addr
	Close() error
}

// Channel - real-time канал, що приймає з'єднання з upgrade шляху сервера.
// Протокол каналу визначає реалізація, relay лише передає їй з'єднання.
type Channel interface {
	Namespace() string
	ServeConn(ctx context.Context, conn Conn)
}

// Options містить налаштування websocket upgrade
type Options struct {
	ReadBufferSize  int
	WriteBufferSize int
	// CheckOrigin за замовчуванням дозволяє будь-яке походження, як і CORS relay
	CheckOrigin func(r *http.Request) bool
}

// Attach реєструє канал на GET /<namespace>
func Attach(r gin.IRoutes, ch Channel, opts Options) {
	path := "/" + strings.Trim(ch.Namespace(), "/")
	r.GET(path, Handler(ch, opts))

	logrus.WithField("path", path).Info("📡 Real-time channel attached")
}

// Handler виконує websocket upgrade і віддає з'єднання каналу на весь час його життя
func Handler(ch Channel, opts Options) gin.HandlerFunc {
	checkOrigin := opts.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  opts.ReadBufferSize,
		WriteBufferSize: opts.WriteBufferSize,
		CheckOrigin:     checkOrigin,
	}

	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrader вже записав відповідь з помилкою
			logrus.WithError(err).Warn("Failed to upgrade real-time connection")
			return
		}
		defer conn.Close()

		logrus.WithFields(logrus.Fields{
			"namespace":   ch.Namespace(),
			"remote_addr": conn.RemoteAddr().String(),
		}).Info("Real-time client connected")

		ch.ServeConn(c.Request.Context(), conn)

		logrus.WithField("remote_addr", conn.RemoteAddr().String()).Info("Real-time client disconnected")
	}
}
