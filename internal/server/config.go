package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the server's full runtime configuration: port, small blind
// and starting money, plus a log level. Each can come from the optional
// HCL file or from its CLI flag.
type Config struct {
	Port       int    `hcl:"port,optional"`
	SmallBlind uint64 `hcl:"small_blind,optional"`
	StartMoney uint64 `hcl:"start_money,optional"`
	LogLevel   string `hcl:"log_level,optional"`
}

// DefaultConfig matches the CLI's own defaults, so a missing or partial
// HCL file still produces a runnable configuration.
func DefaultConfig() Config {
	return Config{
		Port:       8080,
		SmallBlind: 1,
		StartMoney: 1000,
		LogLevel:   "info",
	}
}

// LoadFile overlays an optional HCL config file's fields onto base. A
// missing file is not an error: base is returned unchanged.
func LoadFile(filename string, base Config) (Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return base, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("server: parse config %s: %s", filename, diags.Error())
	}

	cfg := base
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("server: decode config %s: %s", filename, diags.Error())
	}
	return cfg, nil
}

// Validate rejects configurations the round state machine could not run
// safely.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("server: invalid port %d", c.Port)
	}
	if c.SmallBlind == 0 {
		return fmt.Errorf("server: small_blind must be positive")
	}
	if c.StartMoney < 2*c.SmallBlind {
		return fmt.Errorf("server: start_money must cover at least the big blind")
	}
	return nil
}
