package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// ServerConfig is the complete server configuration.
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Game   GameSettings   `hcl:"game,block"`
}

// ServerSettings contains transport-level configuration.
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
}

// GameSettings contains game-level configuration.
type GameSettings struct {
	ScoreFile string   `hcl:"score_file,optional"`
	Admins    []string `hcl:"admins,optional"`
	Seed      int64    `hcl:"seed,optional"` // 0 seeds from the clock
}

// Addr returns the listen address in host:port form.
func (s ServerSettings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Address, s.Port)
}

// DefaultServerConfig returns the default configuration.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8067,
			LogLevel: "info",
		},
		Game: GameSettings{
			ScoreFile: "uno_scores.json",
		},
	}
}

// LoadServerConfig loads configuration from an HCL file, falling back to
// defaults when the file doesn't exist.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := DefaultServerConfig()
	if config.Server.Address == "" {
		config.Server.Address = defaults.Server.Address
	}
	if config.Server.Port == 0 {
		config.Server.Port = defaults.Server.Port
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = defaults.Server.LogLevel
	}
	if config.Game.ScoreFile == "" {
		config.Game.ScoreFile = defaults.Game.ScoreFile
	}
	return &config, nil
}
