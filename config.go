package arena

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// EnvPrefix is the environment prefix read by LoadConfig when none is given.
const EnvPrefix = "ARENA"

// Config holds the settings an arena is built from.
type Config struct {
	// BlockSize is the size of the first chunk and the floor for every
	// later one. Values below MinBlockSize are raised to it.
	BlockSize int `envconfig:"BLOCK_SIZE" default:"65536"`

	// Source names the chunk source: "heap" or "mmap".
	Source string `envconfig:"SOURCE" default:"heap"`
}

// LoadConfig reads a Config from the environment, e.g. ARENA_BLOCK_SIZE and
// ARENA_SOURCE for the default prefix.
func LoadConfig(prefix string) (Config, error) {
	if prefix == "" {
		prefix = EnvPrefix
	}
	var c Config
	if err := envconfig.Process(prefix, &c); err != nil {
		return Config{}, errors.Wrap(err, "load arena config")
	}
	return c, nil
}

// NewArenaFromConfig creates an arena described by cfg. Options are applied
// after the configured source, so WithSource overrides cfg.Source.
func NewArenaFromConfig(cfg Config, opts ...Option) (*Arena, error) {
	src, err := SourceByName(cfg.Source)
	if err != nil {
		return nil, err
	}
	return NewArena(cfg.BlockSize, append([]Option{WithSource(src)}, opts...)...)
}
