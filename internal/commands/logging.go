package commands

import (
	"strings"

	"github.com/goliatone/go-lore/internal/logging"
	"github.com/goliatone/go-lore/pkg/interfaces"
)

// CommandLogger returns the logger for one command module with the fields
// every command entry carries.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	return logging.WithFields(logging.CommandLogger(provider), map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
