// Package config loads quizdeck settings from defaults, an optional YAML
// file, QUIZDECK_* environment variables and command-line flags, in that
// order of precedence (later wins).
package config

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix marks the environment variables read as configuration.
const EnvPrefix = "QUIZDECK_"

// Config holds every setting of a quizdeck invocation. Directory settings
// that are relative resolve against Root.
type Config struct {
	Root         string `koanf:"root" validate:"required"`
	Categories   string `koanf:"categories" validate:"required"`
	Notes        string `koanf:"notes" validate:"required"`
	Flashcards   string `koanf:"flashcards" validate:"required"`
	Data         string `koanf:"data" validate:"required"`
	Public       string `koanf:"public" validate:"required,startswith=/,ne=/notes,ne=/categories"`
	DB           string `koanf:"db"`
	Repo         string `koanf:"repo"`
	Addr         string `koanf:"addr" validate:"required,hostname_port"`
	LogLevel     string `koanf:"log_level" validate:"oneof=debug info warn error"`
	LogFormat    string `koanf:"log_format" validate:"oneof=text json"`
	HistoryLimit int    `koanf:"history_limit" validate:"min=1"`
}

// Defaults returns the settings used when nothing else is configured.
func Defaults() Config {
	return Config{
		Root:         ".",
		Categories:   "categories",
		Notes:        "notes",
		Flashcards:   "data/flashcards",
		Data:         "data",
		Public:       "/data/flashcards",
		Addr:         ":8080",
		LogLevel:     "info",
		LogFormat:    "text",
		HistoryLimit: 10,
	}
}

// RegisterFlags adds a flag for every setting to fs, using the defaults as
// flag defaults. Flag names use dashes where keys use underscores.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.String("root", d.Root, "content root that relative directories resolve against")
	fs.String("categories", d.Categories, "question bank tree")
	fs.String("notes", d.Notes, "markdown notes tree")
	fs.String("flashcards", d.Flashcards, "flashcard deck tree")
	fs.String("data", d.Data, "directory for the question and notes indexes")
	fs.String("public", d.Public, "URL prefix of deck paths in the catalog")
	fs.String("db", d.DB, "sqlite generation ledger (empty disables it)")
	fs.String("repo", d.Repo, "git URL to clone or pull the notes tree from")
	fs.String("addr", d.Addr, "listen address for serve")
	fs.String("log-level", d.LogLevel, "debug, info, warn or error")
	fs.String("log-format", d.LogFormat, "text or json")
	fs.Int("history-limit", d.HistoryLimit, "number of runs shown by history")
}

// Load layers the configuration sources. configPath may be empty; fs may be
// nil when there are no flags.
func Load(fs *pflag.FlagSet, configPath string) (Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	envKey := func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	if fs != nil {
		flagKey := func(f *pflag.Flag) (string, interface{}) {
			if f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(fs, f)
		}
		if err := k.Load(posflag.ProviderWithFlag(fs, ".", k, flagKey), nil); err != nil {
			return Config{}, fmt.Errorf("load flags: %w", err)
		}
	}

	cfg := Defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.resolve()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every setting.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) resolve() {
	// "/data/flashcards/" and "/data/flashcards" name the same prefix.
	if trimmed := strings.TrimRight(c.Public, "/"); trimmed != "" {
		c.Public = trimmed
	}
	for _, dir := range []*string{&c.Categories, &c.Notes, &c.Flashcards, &c.Data, &c.DB} {
		if *dir == "" || filepath.IsAbs(*dir) {
			continue
		}
		*dir = filepath.Join(c.Root, *dir)
	}
}

// QuestionIndexPath is where the question index is written.
func (c Config) QuestionIndexPath() string {
	return filepath.Join(c.Data, "index.json")
}

// CatalogPath is where the deck catalog is written.
func (c Config) CatalogPath() string {
	return filepath.Join(c.Flashcards, "index.json")
}

// NotesIndexPath is where the notes index is written.
func (c Config) NotesIndexPath() string {
	return filepath.Join(c.Data, "notes_index.json")
}

// Logger builds the logger described by LogLevel and LogFormat.
func (c Config) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
