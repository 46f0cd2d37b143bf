package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"alamos-extract/internal/components/telemetry"

	"dario.cat/mergo"
	"github.com/titanous/json5"
	"golang.org/x/net/html/charset"
)

const (
	DefaultFile    = "alamos.json5"
	DefaultBaseUrl = "https://www.hiv.lanl.gov/components/sequence/HIV/"
	// EncodingAuto detects the charset of every page from its bytes.
	EncodingAuto = "auto"
)

type Database struct {
	// path to a local sqlite file
	File string `json:"file"`
	// libsql server url, takes priority over File when set
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

type Config struct {
	BaseUrl            string `json:"base_url"`
	TimeoutSeconds     int    `json:"timeout_seconds"`
	InsecureSkipVerify bool   `json:"insecure_skip_verify"`
	UserAgent          string `json:"user_agent"`
	RetryCount         int    `json:"retry_count"`
	// charset label handed to the html parser, or EncodingAuto
	Encoding string `json:"encoding"`
	// patients of a cluster assembled at once
	Concurrency int `json:"concurrency"`

	Otlp     telemetry.OtlpConfig `json:"otlp"`
	Database Database             `json:"database"`
}

func Default() Config {
	return Config{
		BaseUrl:        DefaultBaseUrl,
		TimeoutSeconds: 60,
		UserAgent:      "alamos-extract/1.0",
		Encoding:       "utf-8",
		Concurrency:    1,
	}
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CharsetHint is the label the html parser is given, empty when the charset
// is detected.
func (c Config) CharsetHint() string {
	if strings.EqualFold(c.Encoding, EncodingAuto) {
		return ""
	}
	return c.Encoding
}

func (c Config) Validate() error {
	if c.BaseUrl == "" {
		return fmt.Errorf("base_url must not be empty")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative, got %d", c.TimeoutSeconds)
	}
	if c.RetryCount < 0 {
		return fmt.Errorf("retry_count must not be negative, got %d", c.RetryCount)
	}
	if hint := c.CharsetHint(); hint != "" {
		if enc, _ := charset.Lookup(hint); enc == nil {
			return fmt.Errorf("encoding %q is not a known charset label, use a label such as utf-8 or %q", c.Encoding, EncodingAuto)
		}
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	return nil
}

// Load reads the config at path (or searches for DefaultFile upwards from the
// cwd when path is empty) on top of Default(). A missing file is not an error.
func Load(path string) (Config, error) {
	var (
		file Config
		err  error
	)
	if path == "" {
		file, err = ReadRecursively[Config](DefaultFile)
	} else {
		file, err = ReadConfig[Config](path)
	}
	if err != nil && !os.IsNotExist(err) {
		return Config{}, err
	}
	if os.IsNotExist(err) && path != "" {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	out := Default()
	err = mergo.Merge(&out, file, mergo.WithOverride)
	if err != nil {
		return Config{}, err
	}
	return out, out.Validate()
}

func splitExt(f string) (string, string) {
	for i := len(f) - 1; i >= 0; i-- {
		if f[i] == '.' {
			return f[0:i], f[i+1:]
		}
	}
	return f, ""
}

// ReadConfig reads a json5 configuration file, `name` should come with a file extension.
// this function will merge the following files, where higher number is more prioritized.
// 1. <name>.<ext>
// 2. <name>.local.<ext>
func ReadConfig[T any](name string) (T, error) {
	var out T
	allNotFound := true

	prefixname, ext := splitExt(filepath.Base(name))

	defaultFile, err := os.ReadFile(name)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(defaultFile) > 0 {
		err = json5.Unmarshal(defaultFile, &out)
		if err != nil {
			return out, fmt.Errorf("%s: %w", name, err)
		}
		allNotFound = false
	}

	localFilepath := filepath.Join(
		filepath.Dir(name),
		fmt.Sprintf("%s.local.%s", prefixname, ext),
	)
	localFile, err := os.ReadFile(localFilepath)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(localFile) > 0 {
		var override T
		err = json5.Unmarshal(localFile, &override)
		if err != nil {
			return out, fmt.Errorf("%s: %w", localFilepath, err)
		}
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Info("merging config with local overrides", "local", localFilepath)
		allNotFound = false
	}

	if allNotFound {
		return out, os.ErrNotExist
	}

	return out, nil
}

// ReadRecursively is ReadConfig but it goes up the filesystem from the cwd
// until the root to find a file matching the name.
func ReadRecursively[T any](name string) (T, error) {
	var defaultOut T

	current, err := os.Getwd()
	if err != nil {
		return defaultOut, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if err == nil {
			return config, nil
		}
		if !os.IsNotExist(err) {
			return defaultOut, err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return defaultOut, os.ErrNotExist
		}
		current = parent
	}
}
