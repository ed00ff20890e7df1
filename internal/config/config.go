// Package config loads benchmark settings from a .env file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/MJE43/cognitive-gauntlet/internal/credentials"
	"github.com/MJE43/cognitive-gauntlet/internal/game"
	"github.com/MJE43/cognitive-gauntlet/internal/openrouter"
)

// Environment variable names.
const (
	EnvAPIKey      = "OPENROUTER_API_KEY"
	EnvBaseURL     = "OPENROUTER_BASE_URL"
	EnvModels      = "GAUNTLET_MODELS"
	EnvModelNames  = "GAUNTLET_MODEL_NAMES"
	EnvMode        = "GAUNTLET_MODE"
	EnvSeed        = "GAUNTLET_SEED"
	EnvMaxTurns    = "GAUNTLET_MAX_TURNS"
	EnvParallel    = "GAUNTLET_PARALLEL"
	EnvTemperature = "GAUNTLET_TEMPERATURE"
	EnvMaxTokens   = "GAUNTLET_MAX_TOKENS"
	EnvLogsDir     = "GAUNTLET_LOGS_DIR"
	EnvDBPath      = "GAUNTLET_DB_PATH"
	EnvREADME      = "GAUNTLET_README"
	EnvListen      = "GAUNTLET_LISTEN"
	EnvScript      = "GAUNTLET_SCRIPT"
	EnvQuestions   = "GAUNTLET_QUESTIONS"
	EnvLogLevel    = "GAUNTLET_LOG_LEVEL"
	EnvProfile     = "GAUNTLET_PROFILE"
)

// ErrNoAPIKey is returned by ResolveAPIKey when neither the environment nor
// the keychain holds a key.
var ErrNoAPIKey = errors.New("config: OPENROUTER_API_KEY is not set and no key is stored")

// Config holds everything the CLI and server need.
type Config struct {
	APIKey  string
	BaseURL string

	Models       []string
	DisplayNames map[string]string

	Mode        game.Mode
	Seed        *uint32
	MaxTurns    int
	Parallel    int
	Temperature float64
	MaxTokens   int

	LogsDir       string
	DBPath        string
	README        string
	Listen        string
	Script        string // JS agent file; replaces OpenRouter when set
	QuestionsPath string // alternative question catalog
	LogLevel      string
	Profile       string // credentials profile
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		BaseURL:      openrouter.DefaultBaseURL,
		DisplayNames: map[string]string{},
		Mode:         game.ModeGauntlet,
		MaxTurns:     game.DefaultMaxTurns,
		Parallel:     1,
		Temperature:  openrouter.DefaultTemperature,
		MaxTokens:    openrouter.DefaultMaxTokens,
		LogsDir:      "logs",
		DBPath:       "gauntlet.db",
		README:       "README.md",
		Listen:       ":8088",
		LogLevel:     "info",
		Profile:      credentials.DefaultProfile,
	}
}

// Load reads the given .env files (".env" when none are named; a missing
// file is not an error) and then the environment.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
	cfg := Default()
	cfg.APIKey = strings.TrimSpace(os.Getenv(EnvAPIKey))
	cfg.BaseURL = getEnvWithDefault(EnvBaseURL, cfg.BaseURL)
	cfg.LogsDir = getEnvWithDefault(EnvLogsDir, cfg.LogsDir)
	cfg.DBPath = getEnvWithDefault(EnvDBPath, cfg.DBPath)
	cfg.README = getEnvWithDefault(EnvREADME, cfg.README)
	cfg.Listen = getEnvWithDefault(EnvListen, cfg.Listen)
	cfg.Script = getEnvWithDefault(EnvScript, "")
	cfg.QuestionsPath = getEnvWithDefault(EnvQuestions, "")
	cfg.LogLevel = getEnvWithDefault(EnvLogLevel, cfg.LogLevel)
	cfg.Profile = getEnvWithDefault(EnvProfile, cfg.Profile)
	cfg.Models = SplitModels(os.Getenv(EnvModels))

	names, err := ParseDisplayNames(os.Getenv(EnvModelNames))
	if err != nil {
		return Config{}, err
	}
	cfg.DisplayNames = names

	if v, ok := lookup(EnvMode); ok {
		cfg.Mode = game.Mode(strings.ToLower(v))
	}
	if v, ok := lookup(EnvSeed); ok {
		seed, err := ParseSeed(v)
		if err != nil {
			return Config{}, err
		}
		cfg.Seed = &seed
	}

	var errs []error
	cfg.MaxTurns = getEnvAsInt(EnvMaxTurns, cfg.MaxTurns, &errs)
	cfg.Parallel = getEnvAsInt(EnvParallel, cfg.Parallel, &errs)
	cfg.MaxTokens = getEnvAsInt(EnvMaxTokens, cfg.MaxTokens, &errs)
	if v, ok := lookup(EnvTemperature); ok {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s must be a number: %w", EnvTemperature, err))
		} else {
			cfg.Temperature = t
		}
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	switch c.Mode {
	case game.ModeSingle, game.ModeGauntlet:
	default:
		return fmt.Errorf("config: %s must be %q or %q, got %q", EnvMode, game.ModeSingle, game.ModeGauntlet, c.Mode)
	}
	if c.MaxTurns < 1 {
		return fmt.Errorf("config: %s must be positive", EnvMaxTurns)
	}
	if c.Parallel < 1 {
		return fmt.Errorf("config: %s must be positive", EnvParallel)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("config: %s must be between 0 and 2", EnvTemperature)
	}
	return nil
}

// ApplyDisplayNames installs the configured names into the OpenRouter
// display-name table.
func (c Config) ApplyDisplayNames() {
	for id, name := range c.DisplayNames {
		openrouter.DisplayNames[id] = name
	}
}

// KeySource looks up a stored API key.
type KeySource interface {
	APIKey(profile string) (string, error)
}

// ResolveAPIKey returns the environment key, else the one stored in src.
func (c Config) ResolveAPIKey(src KeySource) (string, error) {
	if c.APIKey != "" {
		return c.APIKey, nil
	}
	if src == nil {
		return "", ErrNoAPIKey
	}
	key, err := src.APIKey(c.Profile)
	switch {
	case errors.Is(err, credentials.ErrNotFound):
		return "", ErrNoAPIKey
	case err != nil:
		return "", fmt.Errorf("config: read stored key: %w", err)
	}
	return key, nil
}

// SplitModels parses a comma or newline separated model list, dropping
// blanks and duplicates.
func SplitModels(s string) []string {
	var out []string
	seen := map[string]bool{}
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' }) {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// ParseDisplayNames parses "id=Name;id2=Name 2".
func ParseDisplayNames(s string) (map[string]string, error) {
	out := map[string]string{}
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		id, name, ok := strings.Cut(pair, "=")
		id, name = strings.TrimSpace(id), strings.TrimSpace(name)
		if !ok || id == "" || name == "" {
			return nil, fmt.Errorf("config: %s entry %q must look like id=Name", EnvModelNames, pair)
		}
		out[id] = name
	}
	return out, nil
}

// ParseSeed parses a board seed.
func ParseSeed(s string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("config: seed %q must be an unsigned 32-bit integer", s)
	}
	return uint32(n), nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func getEnvWithDefault(key, fallback string) string {
	if v, ok := lookup(key); ok {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int, errs *[]error) int {
	v, ok := lookup(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be an integer: %w", key, err))
		return fallback
	}
	return n
}
