package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/propforma/propforma/internal/config"
	"github.com/propforma/propforma/pkg/cache"
	"github.com/propforma/propforma/pkg/constants"
	"gopkg.in/yaml.v3"
)

// defaultCacheTTL bounds how long cached analysis results stay valid. Deals
// whose start date defaults to the current month change key monthly anyway.
const defaultCacheTTL = 15 * time.Minute

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address       string               `yaml:"address"`
	MaxBodySize   string               `yaml:"maxBodySize"`
	Cache         CacheConfig          `yaml:"cache,omitempty"`
	Logging       config.LoggingConfig `yaml:"logging,omitempty"`
	bodySizeBytes int64
}

// CacheConfig selects the result-cache backend. The memory backend is
// per-process; redis shares entries across instances.
type CacheConfig struct {
	Backend string `yaml:"backend,omitempty"` // memory (default) or redis
	Address string `yaml:"address,omitempty"` // redis host:port
	TTL     string `yaml:"ttl,omitempty"`     // Go duration, e.g. 15m; 0 never expires
	ttl     time.Duration
}

// LoadConfig loads the server configuration from YAML. If the file does not
// exist, defaults are returned without error.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Address:     constants.DefaultServerAddress,
		MaxBodySize: fmt.Sprintf("%d", constants.DefaultMaxBodyBytes),
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     defaultCacheTTL.String(),
			ttl:     defaultCacheTTL,
		},
		Logging:       config.LoggingConfig{},
		bodySizeBytes: constants.DefaultMaxBodyBytes,
	}
}

// BodySizeBytes returns the configured request body cap in bytes.
func (c *Config) BodySizeBytes() int64 {
	return c.bodySizeBytes
}

// SetBodySizeBytes overrides the configured request body cap.
func (c *Config) SetBodySizeBytes(size int64) {
	if size > 0 {
		c.bodySizeBytes = size
		c.MaxBodySize = fmt.Sprintf("%d", size)
	}
}

// CacheTTL returns the configured lifetime for cached analysis results.
func (c *Config) CacheTTL() time.Duration {
	return c.Cache.ttl
}

// NewCache constructs the configured result-cache backend.
func (c *Config) NewCache() cache.Repository {
	if c.Cache.Backend == "redis" {
		return cache.NewRedis(c.Cache.Address)
	}
	return cache.NewMemory()
}

func (c *Config) normalize() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}

	sizeStr := strings.TrimSpace(c.MaxBodySize)
	if sizeStr == "" {
		c.bodySizeBytes = constants.DefaultMaxBodyBytes
		c.MaxBodySize = fmt.Sprintf("%d", constants.DefaultMaxBodyBytes)
	} else {
		size, err := ParseSize(sizeStr)
		if err != nil {
			return err
		}
		if size <= 0 {
			size = constants.DefaultMaxBodyBytes
		}
		c.bodySizeBytes = size
	}

	switch strings.ToLower(strings.TrimSpace(c.Cache.Backend)) {
	case "", "memory":
		c.Cache.Backend = "memory"
	case "redis":
		c.Cache.Backend = "redis"
		if strings.TrimSpace(c.Cache.Address) == "" {
			c.Cache.Address = "localhost:6379"
		}
	default:
		return fmt.Errorf("unsupported cache backend %q", c.Cache.Backend)
	}

	ttlStr := strings.TrimSpace(c.Cache.TTL)
	if ttlStr == "" {
		c.Cache.ttl = defaultCacheTTL
		c.Cache.TTL = defaultCacheTTL.String()
		return nil
	}
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		return fmt.Errorf("invalid cache ttl %q: %w", c.Cache.TTL, err)
	}
	if ttl < 0 {
		return fmt.Errorf("cache ttl cannot be negative, got %s", ttl)
	}
	c.Cache.ttl = ttl
	return nil
}

// ParseSize converts a human-friendly byte string (e.g., "256K", "10M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxBodyBytes, nil
	}

	upper := strings.ToUpper(trimmed)
	idx := len(upper)
	for idx > 0 && !unicode.IsDigit(rune(upper[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	numPart := strings.TrimSpace(upper[:idx])
	unitPart := strings.TrimSpace(upper[idx:])

	if numPart == "" {
		return 0, fmt.Errorf("invalid size: %s", value)
	}

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	var multiplier int64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	case "G", "GB":
		multiplier = 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	result := n * multiplier
	if result < 0 {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return result, nil
}
