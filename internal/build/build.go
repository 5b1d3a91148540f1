package build

// Service ім'я сервісу в логах та health відповіді
const Service = "oauth-relay"

var (
	// Version релізу (встановлюється через ldflags)
	Version = "dev"

	// GitCommit хеш коміту (встановлюється через ldflags)
	GitCommit = "unknown"

	// BuildTime час збірки (встановлюється через ldflags)
	BuildTime = "unknown"
)

// Info повертає інформацію про білд
func Info() map[string]string {
	return map[string]string{
		"service":    Service,
		"version":    Version,
		"git_commit": GitCommit,
		"build_time": BuildTime,
	}
}
