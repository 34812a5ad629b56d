package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Trading Journal Configuration

[database]
# SQLite database file (defaults to journal.db in this directory)
# path = "/path/to/journal.db"

[logging]
# Log level: debug, info, warn, error
level = "info"
# Log to stderr
console = true
# Log to a rotating file
file = true
# Rotation: size in MB, number of backups, age in days
max_size = 100
max_backups = 7
max_age = 30

[server]
# Address the HTTP API listens on
http_addr = "127.0.0.1:8080"
read_timeout = "15s"
write_timeout = "30s"
shutdown_timeout = "10s"

[analytics]
# Time zone used to decide "today" and daily boundaries
timezone = "UTC"
# Days of daily performance shown on the dashboard
dashboard_days = 30
# Recent trades shown on the dashboard
recent_trades_limit = 5
# Example trades listed per mistake
mistake_recent_limit = 5

[ui]
# Enable colored output
color_enabled = true
# Date format
date_format = "02-Jan-2006"
`

// TemplatePath returns the path of config.toml inside configDir.
func TemplatePath(configDir string) string {
	return filepath.Join(configDir, "config.toml")
}

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := TemplatePath(configDir)
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}
