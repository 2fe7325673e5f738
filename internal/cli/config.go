package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/kyleseneker/fanomon/internal/mask"
)

// Config holds optional monitor settings loaded from a JSON file. Listed
// event names replace the built-in default starting mask; directories are
// watched in addition to the ones given on the command line. The +e/-e
// directives still apply on top.
type Config struct {
	Events      []string `json:"events"`
	Directories []string `json:"directories"`
}

// LoadConfig reads, parses, and validates a monitor configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %q: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %q: %w", path, err)
	}

	for i, name := range cfg.Events {
		name = strings.TrimSpace(name)
		if mask.Lookup(name) == 0 {
			return nil, fmt.Errorf("config %q: events[%d]: unknown event name %q", path, i, name)
		}
		cfg.Events[i] = name
	}
	for i, dir := range cfg.Directories {
		if strings.TrimSpace(dir) == "" {
			return nil, fmt.Errorf("config %q: directories[%d] is empty", path, i)
		}
	}

	return &cfg, nil
}
