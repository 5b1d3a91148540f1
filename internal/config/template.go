package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// varTag знаходить {{var "name" default_value required}} теги
var varTag = regexp.MustCompile(`\{\{var\s+"([^"]+)"\s+([^\s}]+)\s+(true|false)\s*\}\}`)

// missingValue підставляється замість обов'язкової змінної без значення.
// Такий конфіг не пройде Validate, тому сервер з ним не стартує.
const missingValue = `""`

// generateConfigWithVars генерує конфігурацію з шаблону з використанням змінних
func generateConfigWithVars(templatePath, outputPath string, vars map[string]interface{}) error {
	content, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}

	rendered, missing := renderVarTags(string(content), vars)
	if len(missing) > 0 {
		fmt.Fprintf(os.Stderr, "⚠️  Required values not set: %s\n", strings.Join(missing, ", "))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Конфіг містить client secret
	if err := os.WriteFile(outputPath, []byte(rendered), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// renderVarTags підставляє значення змінних і повертає список обов'язкових змінних без значення
func renderVarTags(content string, vars map[string]interface{}) (string, []string) {
	var missing []string

	rendered := varTag.ReplaceAllStringFunc(content, func(match string) string {
		parts := varTag.FindStringSubmatch(match)
		name, defaultValue, required := parts[1], parts[2], parts[3] == "true"

		if value, ok := vars[name]; ok && value != "" {
			return formatValue(value)
		}

		if required && (defaultValue == "" || defaultValue == `""`) {
			missing = append(missing, name)
			return missingValue
		}

		return formatValue(parseDefaultValue(defaultValue))
	})

	return rendered, missing
}

// formatValue форматує значення для HCL
func formatValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strconv.Quote(v)
	case int, int32, int64:
		return fmt.Sprintf("%d", v)
	case float32, float64:
		return strconv.FormatFloat(toFloat(v), 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return strconv.Quote(fmt.Sprintf("%v", v))
	}
}

func toFloat(v interface{}) float64 {
	switch f := v.(type) {
	case float32:
		return float64(f)
	case float64:
		return f
	}
	return 0
}

// parseDefaultValue парсить дефолтне значення з шаблону
func parseDefaultValue(defaultValue string) interface{} {
	if strings.HasPrefix(defaultValue, `"`) && strings.HasSuffix(defaultValue, `"`) {
		return strings.Trim(defaultValue, `"`)
	}

	if intVal, err := strconv.Atoi(defaultValue); err == nil {
		return intVal
	}

	if boolVal, err := strconv.ParseBool(defaultValue); err == nil {
		return boolVal
	}

	return defaultValue
}
