// Package config resolves runtime settings from defaults, an optional
// juno.yaml overlay and environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	GameHost    string `yaml:"game_host"`
	GamePort    int    `yaml:"game_port"`
	LLMAPIKey   string `yaml:"llm_api_key"`
	LLMBaseURL  string `yaml:"llm_base_url"`
	LLMModel    string `yaml:"llm_model"`
	Faction     string `yaml:"faction"`
	Language    string `yaml:"language"`
	CommandFile string `yaml:"command_file"`
}

func Default() Config {
	return Config{
		GameHost:    "127.0.0.1",
		GamePort:    7445,
		Faction:     "Soviet",
		Language:    "zh",
		CommandFile: "user_command.txt",
	}
}

// Load builds the effective config. A missing file is not an error; a
// malformed one is. Environment variables win over the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// optional
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg, os.Getenv)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv("GAME_HOST"); v != "" {
		cfg.GameHost = v
	}
	if v := getenv("GAME_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.GamePort = port
		}
	}
	if v := getenv("LLM_API_KEY"); v != "" {
		cfg.LLMAPIKey = v
	}
	if v := getenv("LLM_BASE_URL"); v != "" {
		cfg.LLMBaseURL = v
	}
	if v := getenv("LLM_MODEL"); v != "" {
		cfg.LLMModel = v
	}
	if v := getenv("OPENRA_FACTION"); v != "" {
		cfg.Faction = v
	}
}

func (c Config) validate() error {
	if c.Faction != "Soviet" && c.Faction != "Allies" {
		return fmt.Errorf("faction %q: must be Soviet or Allies", c.Faction)
	}
	if c.GamePort <= 0 || c.GamePort > 65535 {
		return fmt.Errorf("game port %d out of range", c.GamePort)
	}
	return nil
}

// HasLLM reports whether enough model settings are present to talk to an
// endpoint. Without them the strategist runs the fallback doctrine.
func (c Config) HasLLM() bool {
	return c.LLMAPIKey != "" && c.LLMModel != ""
}
