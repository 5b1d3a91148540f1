package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/urfave/cli/v2"

	"oauth-relay/internal/build"
	"oauth-relay/internal/config"
	"oauth-relay/internal/server"
)

// configureAction генерує конфігурацію з шаблону
func configureAction(c *cli.Context) error {
	mode := c.String("mode")

	templatePath, err := absPath(c.String("template"))
	if err != nil {
		return err
	}
	outputPath, err := absPath(c.String("output"))
	if err != nil {
		return err
	}

	fmt.Printf("🔧 Configuring OAuth relay\n")
	fmt.Printf("Template: %s\n", templatePath)
	fmt.Printf("Output: %s\n", outputPath)
	fmt.Printf("Mode: %s\n", mode)

	if _, err := os.Stat(templatePath); os.IsNotExist(err) {
		return fmt.Errorf("template file does not exist: %s", templatePath)
	}

	if err := config.GenerateConfigFromTemplate(templatePath, outputPath, getConfigVars(mode)); err != nil {
		return fmt.Errorf("failed to generate config: %w", err)
	}

	fmt.Printf("✅ Configuration generated successfully: %s\n", outputPath)
	return nil
}

// serverAction запускає relay
func serverAction(c *cli.Context) error {
	configPath := c.String("config")

	fmt.Printf("🚀 Starting OAuth relay\n")
	fmt.Printf("Version: %s\n", build.Version)

	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		fmt.Printf("Config: %s\n", configPath)
		cfg, err = config.LoadConfig(configPath)
	} else {
		fmt.Printf("Config: environment\n")
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	return server.StartServer(cfg)
}

// versionAction показує інформацію про версію
func versionAction(c *cli.Context) error {
	info := build.Info()

	fmt.Printf("OAuth Relay (%s)\n", info["service"])
	fmt.Printf("Version: %s\n", info["version"])
	fmt.Printf("Git Commit: %s\n", info["git_commit"])
	fmt.Printf("Build Time: %s\n", info["build_time"])

	return nil
}

func absPath(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	workDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return filepath.Join(workDir, path), nil
}

// getConfigVars повертає мапу змінних для конфігурації
func getConfigVars(mode string) map[string]interface{} {
	vars := map[string]interface{}{
		"environment": mode,
		"log_level":   getLogLevelForMode(mode),
		"swagger":     mode != "production",
	}

	setVarFromEnv(vars, "host", "HOST")
	setVarFromEnv(vars, "client_id", "CLIENT_ID")
	if port, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
		vars["port"] = port
	}
	setVarFromEnv(vars, "log_level", "LOG_LEVEL")
	setVarFromEnv(vars, "auth_url", "PROVIDER_AUTH_URL")
	setVarFromEnv(vars, "token_url", "PROVIDER_TOKEN_URL")
	setVarFromEnv(vars, "scope", "DEFAULT_SCOPE")
	setVarFromEnv(vars, "provider_timeout", "PROVIDER_TIMEOUT")
	setVarFromEnv(vars, "cookie_domain", "COOKIE_DOMAIN")

	return vars
}

// setVarFromEnv встановлює змінну з оточення, якщо вона задана
func setVarFromEnv(vars map[string]interface{}, key, envKey string) {
	if envValue := os.Getenv(envKey); envValue != "" {
		vars[key] = envValue
	}
}

// getLogLevelForMode повертає рівень логування для режиму
func getLogLevelForMode(mode string) string {
	switch mode {
	case "production":
		return "warn"
	case "staging":
		return "info"
	default:
		return "debug"
	}
}
