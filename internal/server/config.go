package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/iwvelando/dream-calculator/internal/cache"
	"github.com/iwvelando/dream-calculator/internal/config"
	"github.com/iwvelando/dream-calculator/pkg/constants"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
	CacheBackendNone   = "none"
)

const defaultMemoryCacheEntries = 10000

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address         string               `yaml:"address"`
	MaxBodySize     string               `yaml:"maxBodySize"`
	ShutdownTimeout time.Duration        `yaml:"shutdownTimeout"`
	Logging         config.LoggingConfig `yaml:"logging"`
	CORS            CORSConfig           `yaml:"cors"`
	Cache           CacheConfig          `yaml:"cache"`
	bodySizeBytes   int64
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// CacheConfig selects where calculation reports are memoized.
type CacheConfig struct {
	Backend    string      `yaml:"backend"` // memory, redis, none
	MaxEntries int         `yaml:"maxEntries"`
	Redis      RedisConfig `yaml:"redis"`
}

// RedisConfig holds connection settings for the redis cache backend.
type RedisConfig struct {
	Address    string `yaml:"address"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttlSeconds"`
}

// LoadConfig loads the server configuration from YAML. If the file does not exist,
// defaults are returned without error.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Address:         constants.DefaultServerAddress,
		MaxBodySize:     fmt.Sprintf("%d", constants.DefaultMaxBodySizeBytes),
		ShutdownTimeout: 10 * time.Second,
		Cache: CacheConfig{
			Backend:    CacheBackendMemory,
			MaxEntries: defaultMemoryCacheEntries,
		},
		bodySizeBytes: constants.DefaultMaxBodySizeBytes,
	}

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

// BodySizeBytes returns the configured request body limit in bytes.
func (c *Config) BodySizeBytes() int64 {
	return c.bodySizeBytes
}

// SetBodySizeBytes overrides the configured request body limit.
func (c *Config) SetBodySizeBytes(size int64) {
	if size > 0 {
		c.bodySizeBytes = size
		c.MaxBodySize = fmt.Sprintf("%d", size)
	}
}

func (c *Config) normalize() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}

	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	switch c.Cache.Backend {
	case "":
		c.Cache.Backend = CacheBackendMemory
	case CacheBackendMemory, CacheBackendNone:
	case CacheBackendRedis:
		if c.Cache.Redis.Address == "" {
			return fmt.Errorf("cache backend redis requires cache.redis.address")
		}
	default:
		return fmt.Errorf("unknown cache backend %q, expected memory, redis or none", c.Cache.Backend)
	}
	if c.Cache.MaxEntries <= 0 {
		c.Cache.MaxEntries = defaultMemoryCacheEntries
	}
	if c.Cache.Redis.TTLSeconds <= 0 {
		c.Cache.Redis.TTLSeconds = constants.DefaultCacheTTLSeconds
	}

	sizeStr := strings.TrimSpace(c.MaxBodySize)
	if sizeStr == "" {
		c.bodySizeBytes = constants.DefaultMaxBodySizeBytes
		c.MaxBodySize = fmt.Sprintf("%d", constants.DefaultMaxBodySizeBytes)
		return nil
	}

	bytes, err := ParseSize(sizeStr)
	if err != nil {
		return err
	}
	if bytes <= 0 {
		bytes = constants.DefaultMaxBodySizeBytes
	}
	c.bodySizeBytes = bytes
	return nil
}

// NewCache builds the configured report cache. An unreachable redis server
// falls back to the in-memory cache. The returned close function is never nil.
func (c *Config) NewCache(ctx context.Context, logger *zap.Logger) (cache.Cache, func() error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	noop := func() error { return nil }

	switch c.Cache.Backend {
	case CacheBackendNone:
		return cache.NopCache{}, noop
	case CacheBackendRedis:
		rc := cache.NewRedisCache(cache.RedisOptions{
			Address:  c.Cache.Redis.Address,
			Password: c.Cache.Redis.Password,
			DB:       c.Cache.Redis.DB,
			TTL:      time.Duration(c.Cache.Redis.TTLSeconds) * time.Second,
		})
		if err := rc.Ping(ctx); err != nil {
			logger.Warn("redis cache unavailable, using in-memory cache",
				zap.String("op", "server.NewCache"),
				zap.String("address", c.Cache.Redis.Address),
				zap.Error(err),
			)
			_ = rc.Close()
			break
		}
		logger.Info("using redis cache",
			zap.String("op", "server.NewCache"),
			zap.String("address", c.Cache.Redis.Address),
		)
		return rc, rc.Close
	}
	return cache.NewMemoryCache(c.Cache.MaxEntries), noop
}

// ParseSize converts a human-friendly byte string (e.g., "256K", "10M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxBodySizeBytes, nil
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
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	result := n * multiplier
	if result < 0 {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return result, nil
}
