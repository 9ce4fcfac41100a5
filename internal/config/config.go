package config

import (
	"strings"

	"cpv/internal/domain"
	"cpv/internal/logging"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	terrors "gitlab.com/tozd/go/errors"
)

// EnvPrefix scopes the environment variables that back the flags, for
// example CPV_VERBOSE or CPV_BUFFER_SIZE.
const EnvPrefix = "CPV"

const (
	keyRecursive  = "recursive"
	keyPreserve   = "preserve"
	keyForce      = "force"
	keyVerbose    = "verbose"
	keyDryRun     = "dry-run"
	keyPlain      = "plain"
	keyExclude    = "exclude"
	keyBufferSize = "buffer-size"
	keyLogLevel   = "log-level"
)

type Config struct {
	Source      string
	Destination string
	Recursive   bool
	Preserve    bool
	Force       bool
	Verbose     bool
	DryRun      bool
	Plain       bool
	Excludes    []string
	BufferSize  int
	LogLevel    string
}

// BindFlags registers the cpv flags on flags and binds every one of them into
// v, which also picks up CPV_* environment variables.
func BindFlags(flags *pflag.FlagSet, v *viper.Viper, defaultBufferSize int) error {
	flags.BoolP(keyRecursive, "r", false, "copy directories recursively")
	flags.BoolP(keyPreserve, "p", false, "preserve permissions and modification times")
	flags.BoolP(keyForce, "f", false, "overwrite existing destination files")
	flags.BoolP(keyVerbose, "v", false, "explain what is being done")
	flags.BoolP(keyDryRun, "n", false, "print the copy plan without copying")
	flags.Bool(keyPlain, false, "disable the interactive progress view")
	flags.StringArray(keyExclude, nil, "skip entries matching a glob pattern (repeatable)")
	flags.Int(keyBufferSize, defaultBufferSize, "transfer chunk size in bytes")
	flags.String(keyLogLevel, "info", "log level (debug, info, warn, error)")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return terrors.Errorf("bind flags: %w", err)
	}
	return nil
}

// Load reads the bound values from v and validates them together with the
// positional arguments.
func Load(v *viper.Viper, args []string) (Config, error) {
	if len(args) != 2 {
		return Config{}, terrors.Errorf("expected SOURCE and DESTINATION, got %d argument(s)", len(args))
	}

	cfg := Config{
		Source:      args[0],
		Destination: args[1],
		Recursive:   v.GetBool(keyRecursive),
		Preserve:    v.GetBool(keyPreserve),
		Force:       v.GetBool(keyForce),
		Verbose:     v.GetBool(keyVerbose),
		DryRun:      v.GetBool(keyDryRun),
		Plain:       v.GetBool(keyPlain),
		Excludes:    v.GetStringSlice(keyExclude),
		BufferSize:  v.GetInt(keyBufferSize),
		LogLevel:    strings.ToLower(strings.TrimSpace(v.GetString(keyLogLevel))),
	}

	if cfg.Source == "" || cfg.Destination == "" {
		return Config{}, terrors.New("source and destination must not be empty")
	}
	if cfg.BufferSize <= 0 {
		return Config{}, terrors.Errorf("buffer size must be positive, got %d", cfg.BufferSize)
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, terrors.Errorf("invalid log level %q", cfg.LogLevel)
	}
	for _, pattern := range cfg.Excludes {
		if !doublestar.ValidatePattern(pattern) {
			return Config{}, terrors.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	return cfg, nil
}

func (c Config) Request() domain.CopyRequest {
	return domain.CopyRequest{
		SourcePath:         c.Source,
		DestinationPath:    c.Destination,
		Recursive:          c.Recursive,
		PreserveAttributes: c.Preserve,
		ForceOverwrite:     c.Force,
		Verbose:            c.Verbose,
		Excludes:           c.Excludes,
	}
}
