package config

import (
	"errors"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Addr      string
	DBUrl     string
	PublicDir string
	Debug     bool

	BackendURL     string
	BackendAPIKey  string
	BackendTimeout time.Duration

	TokenSecret   string
	TokenTTL      time.Duration
	AdminUser     string
	AdminPassword string

	LogFile       string
	LogMaxSize    int
	LogMaxAge     int
	LogMaxBackups int
}

// Load reads configuration from command line arguments, QMS_* environment
// variables and an optional config file, in decreasing order of precedence.
func Load(args []string) (cfg Config, err error) {
	fs := pflag.NewFlagSet("agriquest", pflag.ContinueOnError)
	fs.String("config", "", "path to a config file (yaml, json or toml)")
	fs.String("host", "0.0.0.0", "listen host name")
	fs.Uint("port", 80, "listen port number")
	fs.String("db-url", "agriquest.sqlite", "path to SQLite3 DB file")
	fs.String("public-dir", "public", "directory holding the web client")
	fs.Bool("debug", false, "log at DEBUG level")
	fs.String("backend-url", "http://localhost:5000/api", "base URL of the questionnaire backend API")
	fs.String("backend-api-key", "", "API key sent to the backend")
	fs.Duration("backend-timeout", 15*time.Second, "timeout of a single backend call")
	fs.String("token-secret", "", "secret key for token encryption and decryption")
	fs.Uint("token-ttl", 120, "token TTL in seconds")
	fs.String("admin-user", "admin", "name of the seeded administrator")
	fs.String("admin-password", "", "password of the seeded administrator; no user is seeded when empty")
	fs.String("log-file", "", "also write logs to this file, rotated")
	fs.Int("log-max-size", 50, "log file size in megabytes before rotation")
	fs.Int("log-max-age", 28, "days to retain rotated log files")
	fs.Int("log-max-backups", 5, "number of rotated log files to keep")

	if err = fs.Parse(args); err != nil {
		return
	}

	v := viper.New()
	if err = v.BindPFlags(fs); err != nil {
		return
	}
	v.SetEnvPrefix("QMS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err = v.ReadInConfig(); err != nil {
			return
		}
	}

	cfg.Addr = net.JoinHostPort(v.GetString("host"), strconv.Itoa(v.GetInt("port")))
	cfg.DBUrl = v.GetString("db-url")
	cfg.PublicDir = v.GetString("public-dir")
	cfg.Debug = v.GetBool("debug")
	cfg.BackendURL = strings.TrimRight(v.GetString("backend-url"), "/")
	cfg.BackendAPIKey = v.GetString("backend-api-key")
	cfg.BackendTimeout = v.GetDuration("backend-timeout")
	cfg.TokenSecret = v.GetString("token-secret")
	cfg.TokenTTL = time.Duration(v.GetInt("token-ttl")) * time.Second
	cfg.AdminUser = v.GetString("admin-user")
	cfg.AdminPassword = v.GetString("admin-password")
	cfg.LogFile = v.GetString("log-file")
	cfg.LogMaxSize = v.GetInt("log-max-size")
	cfg.LogMaxAge = v.GetInt("log-max-age")
	cfg.LogMaxBackups = v.GetInt("log-max-backups")

	err = cfg.validate()
	return
}

func (cfg Config) validate() error {
	if cfg.TokenSecret == "" {
		return errors.New("missing parameter --token-secret")
	}
	if cfg.BackendURL == "" {
		return errors.New("missing parameter --backend-url")
	}
	if cfg.BackendTimeout <= 0 {
		return errors.New("--backend-timeout must be positive")
	}
	return nil
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}
