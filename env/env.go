package env

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

const ConfigFileEnv = "CONFIG_FILE"

type Env struct {
	Server    ServerConfig    `mapstructure:"server"`
	MongoDB   MongoDBConfig   `mapstructure:"mongodb"`
	Books     BooksConfig     `mapstructure:"books"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug | release | test
	BodyLimit       int64         `mapstructure:"body_limit"`
	StaticDir       string        `mapstructure:"static_dir"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	TrustedProxies  []string      `mapstructure:"trusted_proxies"` // IPs or CIDRs allowed to set X-Forwarded-For
}

func (c ServerConfig) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

type MongoDBConfig struct {
	URI            string        `mapstructure:"uri"`
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	DB             string        `mapstructure:"db"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// ConnectionURI returns the configured connection string, or builds one from host, port and credentials.
func (c MongoDBConfig) ConnectionURI() string {

	if c.URI != "" {
		return c.URI
	}

	uri := url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
	}

	if c.User != "" {
		uri.User = url.UserPassword(c.User, c.Password)
	}

	return uri.String()
}

type BooksConfig struct {
	PageSize    int `mapstructure:"page_size"`
	MaxPageSize int `mapstructure:"max_page_size"`
}

type CORSConfig struct {
	Origin           string `mapstructure:"origin"` // comma separated, "*" for any
	AllowCredentials bool   `mapstructure:"allow_credentials"`
}

func (c CORSConfig) Origins() []string {

	var origins []string
	for _, origin := range strings.Split(c.Origin, ",") {

		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin != "" {
			origins = append(origins, origin)
		}
	}

	return origins
}

const (
	MemoryBackend = "memory"
	RedisBackend  = "redis"
)

type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
	Backend  string        `mapstructure:"backend"` // memory | redis
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug | info | warn | error
	Format string `mapstructure:"format"` // text | json
}

var defaults = map[string]any{
	"server.port":             8080,
	"server.mode":             "release",
	"server.body_limit":       16 * 1024,
	"server.static_dir":       "public",
	"server.shutdown_timeout": 10 * time.Second,
	"server.trusted_proxies":  []string{},

	"mongodb.uri":             "",
	"mongodb.host":            "localhost",
	"mongodb.port":            27017,
	"mongodb.user":            "",
	"mongodb.password":        "",
	"mongodb.db":              "book-store",
	"mongodb.connect_timeout": 10 * time.Second,

	"books.page_size":     10,
	"books.max_page_size": 100,

	"cors.origin":            "",
	"cors.allow_credentials": true,

	"rate_limit.enabled":  true,
	"rate_limit.requests": 100,
	"rate_limit.window":   15 * time.Minute,
	"rate_limit.backend":  MemoryBackend,

	"redis.addr":     "localhost:6379",
	"redis.password": "",
	"redis.db":       0,

	"log.level":  "info",
	"log.format": "text",
}

var (
	loadOnce sync.Once
	env      *Env
	envErr   error
)

// GetEnv loads the configuration once per process from the file named by CONFIG_FILE, if any.
func GetEnv() (*Env, error) {

	loadOnce.Do(func() {
		env, envErr = Load(os.Getenv(ConfigFileEnv))
	})

	return env, envErr
}

// Load reads the defaults, then the YAML file when given, then the environment.
// A key such as mongodb.host is overridden by MONGODB_HOST.
func Load(file string) (*Env, error) {

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if file != "" {

		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s failed: %w", file, err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var loaded Env
	if err := v.Unmarshal(&loaded); err != nil {
		return nil, fmt.Errorf("parse config failed: %w", err)
	}

	if err := loaded.validate(); err != nil {
		return nil, err
	}

	return &loaded, nil
}

func (e Env) validate() error {

	if e.Server.Port <= 0 || e.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", e.Server.Port)
	}

	if !slices.Contains([]string{"debug", "release", "test"}, e.Server.Mode) {
		return fmt.Errorf("invalid server mode: %q", e.Server.Mode)
	}

	if e.Server.BodyLimit <= 0 {
		return fmt.Errorf("invalid body limit: %d", e.Server.BodyLimit)
	}

	for _, proxy := range e.Server.TrustedProxies {

		if net.ParseIP(proxy) == nil {
			if _, _, err := net.ParseCIDR(proxy); err != nil {
				return fmt.Errorf("invalid trusted proxy: %q", proxy)
			}
		}
	}

	if e.MongoDB.URI == "" && (e.MongoDB.Port <= 0 || e.MongoDB.Port > 65535) {
		return fmt.Errorf("invalid MongoDB port: %d", e.MongoDB.Port)
	}

	if e.MongoDB.DB == "" {
		return fmt.Errorf("MongoDB database name must not be empty")
	}

	if e.Books.PageSize < 1 {
		return fmt.Errorf("invalid page size: %d", e.Books.PageSize)
	}

	if e.Books.MaxPageSize < e.Books.PageSize {
		return fmt.Errorf("max page size %d must not be less than page size %d", e.Books.MaxPageSize, e.Books.PageSize)
	}

	for _, origin := range e.CORS.Origins() {

		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("CORS origin %q must start with http:// or https://", origin)
		}
	}

	if e.RateLimit.Requests < 1 {
		return fmt.Errorf("invalid rate limit requests: %d", e.RateLimit.Requests)
	}

	if e.RateLimit.Window <= 0 {
		return fmt.Errorf("invalid rate limit window: %s", e.RateLimit.Window)
	}

	if e.RateLimit.Backend != MemoryBackend && e.RateLimit.Backend != RedisBackend {
		return fmt.Errorf("unknown rate limit backend: %q", e.RateLimit.Backend)
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(e.Log.Level)) {
		return fmt.Errorf("invalid log level: %q", e.Log.Level)
	}

	if e.Log.Format != "text" && e.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %q", e.Log.Format)
	}

	return nil
}
