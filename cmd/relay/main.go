package main

import (
	"log"
	"os"

	"oauth-relay/internal/build"
	"oauth-relay/internal/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "relay"
	app.Version = build.Version
	app.Usage = "OAuth2 authorization code relay with configuration management"

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
