// Relay server для контейнерів - читає конфігурацію зі змінних середовища
package main

import (
	"oauth-relay/internal/config"
	"oauth-relay/internal/server"

	"github.com/sirupsen/logrus"
)

func main() {
	// CLIENT_ID, CLIENT_SECRET та HOST обов'язкові, без них процес завершується з кодом 1
	cfg, err := config.LoadFromEnv()
	if err != nil {
		logrus.Fatalf("Error: %v", err)
	}

	if err := server.StartServer(cfg); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}
