package config

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/talx-hub/gopher-assist/internal/model"
	"github.com/talx-hub/gopher-assist/internal/serviceerrs"
)

type Config struct {
	RunAddr               string        `env:"RUN_ADDRESS"             envDefault:":5001"`
	UsersFile             string        `env:"USERS_FILE"              envDefault:"./users.json"`
	DatabaseURI           string        `env:"DATABASE_URI"            envDefault:""`
	APIKey                string        `env:"OPENAI_API_KEY"          envDefault:""`
	CompletionURL         string        `env:"COMPLETION_URL"          envDefault:"https://api.openai.com/v1/completions"`
	CompletionModel       string        `env:"COMPLETION_MODEL"        envDefault:"gpt-3.5-turbo-instruct"`
	LogLevel              string        `env:"LOG_LEVEL"               envDefault:"info"`
	CompletionTimeout     time.Duration `env:"COMPLETION_TIMEOUT"      envDefault:"30s"`
	MaxCompletionRequests uint64        `env:"MAX_COMPLETION_REQUESTS" envDefault:"16"`
	MinPasswordEntropy    float64       `env:"MIN_PASSWORD_ENTROPY"    envDefault:"0"`
}

// Validate reports what would make the service unusable. The API key is
// never echoed.
func (c *Config) Validate() error {
	var errs []error
	if c.APIKey == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY is not set"))
	}
	if c.RunAddr == "" {
		errs = append(errs, errors.New("run address is empty"))
	}
	if c.DatabaseURI == "" && c.UsersFile == "" {
		errs = append(errs, errors.New("neither users file nor database URI is set"))
	}
	if c.CompletionTimeout <= 0 {
		errs = append(errs, fmt.Errorf("completion timeout must be positive, got %s",
			c.CompletionTimeout))
	}
	if c.MaxCompletionRequests == 0 {
		errs = append(errs, errors.New("max completion requests must be positive"))
	}
	if c.MinPasswordEntropy < 0 {
		errs = append(errs, fmt.Errorf("min password entropy must not be negative, got %v",
			c.MinPasswordEntropy))
	}
	if len(errs) != 0 {
		return fmt.Errorf("%w: %w", serviceerrs.ErrConfig, errors.Join(errs...))
	}
	return nil
}

type Builder struct {
	cfg *Config
	log *slog.Logger
	err error
}

func NewBuilder(log *slog.Logger) *Builder {
	return &Builder{
		cfg: &Config{},
		log: log,
	}
}

// FromDotEnv loads variables from the given files into the process
// environment. Variables already set win. A missing file is not an error.
func (b *Builder) FromDotEnv(filenames ...string) *Builder {
	for _, name := range filenames {
		err := godotenv.Load(name)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			continue
		}
		b.log.LogAttrs(context.Background(),
			slog.LevelError,
			"failed to load .env file",
			slog.String("file", name),
			slog.Any(model.KeyLoggerError, err),
		)
	}
	return b
}

func (b *Builder) FromEnv() *Builder {
	if err := env.Parse(b.cfg); err != nil {
		b.log.LogAttrs(context.Background(),
			slog.LevelError, "Failed to parse config", slog.Any(model.KeyLoggerError, err))
		b.err = errors.Join(b.err, err)
	}
	return b
}

// FromFlags overrides values with command-line flags. Flags that are not
// given keep what the environment set. A bad value or -h leaves the
// builder failed; see Error.
func (b *Builder) FromFlags(name string, args []string) *Builder {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.StringVar(&b.cfg.RunAddr, "a", b.cfg.RunAddr, "Run address")
	flags.StringVar(&b.cfg.UsersFile, "f", b.cfg.UsersFile, "Users file")
	flags.StringVar(&b.cfg.DatabaseURI, "d", b.cfg.DatabaseURI, "Database URI")
	flags.StringVar(&b.cfg.APIKey, "k", b.cfg.APIKey, "Completion provider API key")
	flags.StringVar(&b.cfg.CompletionURL, "u", b.cfg.CompletionURL, "Completion provider URL")
	flags.StringVar(&b.cfg.CompletionModel, "m", b.cfg.CompletionModel, "Completion model")
	flags.DurationVar(&b.cfg.CompletionTimeout, "t", b.cfg.CompletionTimeout, "Completion timeout")
	flags.Uint64Var(&b.cfg.MaxCompletionRequests, "c", b.cfg.MaxCompletionRequests,
		"Max concurrent completion requests")
	flags.Float64Var(&b.cfg.MinPasswordEntropy, "e", b.cfg.MinPasswordEntropy,
		"Min password entropy, 0 disables the check")
	flags.StringVar(&b.cfg.LogLevel, "l", b.cfg.LogLevel, "Log level")

	if err := flags.Parse(args); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			b.log.LogAttrs(context.Background(),
				slog.LevelError, "Failed to parse flags", slog.Any(model.KeyLoggerError, err))
		}
		b.err = errors.Join(b.err, err)
	}
	return b
}

// Error returns what went wrong while building, wrapped in ErrConfig.
// A help request is reported as flag.ErrHelp.
func (b *Builder) Error() error {
	if b.err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", serviceerrs.ErrConfig, b.err)
}

func (b *Builder) GetConfig() *Config {
	return b.cfg
}
