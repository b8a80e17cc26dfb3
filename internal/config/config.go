package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultListenAddr      = ":8080"
	DefaultFeedURL         = "https://cdn.jsdelivr.net/gh/GCA-Classroom/apod/data.json"
	DefaultShutdownTimeout = 5 * time.Second

	// EnvPath переопределяет путь к файлу конфигурации.
	EnvPath = "APOD_CONFIG"
)

// Config хранит адрес HTTP-сервера, URL ленты APOD и таймауты.
type Config struct {
	ListenAddr      string   `json:"listen_addr"`
	FeedURL         string   `json:"feed_url"`
	FetchTimeout    Duration `json:"fetch_timeout"`
	ShutdownTimeout Duration `json:"shutdown_timeout"`
}

// Duration принимает в JSON строки вида "10s" или "1m30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.Wrap(err, "duration must be a string")
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", s)
	}
	d.Duration = parsed
	return nil
}

// Default возвращает конфигурацию, с которой сервис работает без файла.
// FetchTimeout равен нулю: запрос к ленте ничем не ограничен по времени.
func Default() *Config {
	return &Config{
		ListenAddr:      DefaultListenAddr,
		FeedURL:         DefaultFeedURL,
		ShutdownTimeout: Duration{DefaultShutdownTimeout},
	}
}

// Validate проверяет адрес сервера, URL ленты и таймауты.
func (cfg *Config) Validate() error {
	if cfg.ListenAddr == "" {
		return errors.New("listen address must not be empty")
	}
	if _, err := url.ParseRequestURI(cfg.FeedURL); err != nil {
		return fmt.Errorf("invalid feed URL: %s", cfg.FeedURL)
	}
	if cfg.FetchTimeout.Duration < 0 {
		return errors.New("fetch timeout must be ≥ 0")
	}
	if cfg.ShutdownTimeout.Duration <= 0 {
		return errors.New("shutdown timeout must be > 0")
	}
	return nil
}

// LoadConfig читает JSON-файл по пути path поверх значений Default.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cfg := Default()
	if err := json.NewDecoder(file).Decode(cfg); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return cfg, nil
}

// Load ищет файл по переменной APOD_CONFIG, иначе config.json.
// Отсутствие файла не ошибка: используются значения по умолчанию.
func Load() (*Config, error) {
	path := os.Getenv(EnvPath)
	if path == "" {
		path = "config.json"
	}

	cfg, err := LoadConfig(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = Default(), nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}
