package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t testing.TB, path, contents string) {
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestLoadMergesLocalOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alamos.json5")
	writeFile(t, path, `{
		// comments are allowed
		base_url: "https://example.test/HIV/",
		timeout_seconds: 10,
		retry_count: 2,
		otlp: { traces: { http_endpoint: "http://localhost:4318" } },
	}`)
	writeFile(t, filepath.Join(dir, "alamos.local.json5"), `{
		timeout_seconds: 5,
		insecure_skip_verify: true,
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, "https://example.test/HIV/", cfg.BaseUrl)
	require.Equal(t, 5*time.Second, cfg.Timeout())
	require.Equal(t, 2, cfg.RetryCount)
	require.True(t, cfg.InsecureSkipVerify)
	require.Equal(t, "http://localhost:4318", cfg.Otlp.Traces.HttpEndpoint)
	// untouched fields keep their defaults
	require.Equal(t, "utf-8", cfg.Encoding)
	require.Equal(t, 1, cfg.Concurrency)
}

func TestLoadEncoding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alamos.json5")

	writeFile(t, path, `{ encoding: "auto" }`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "", cfg.CharsetHint())

	writeFile(t, path, `{ encoding: "latin1" }`)
	cfg, err = Load(path)
	require.NoError(t, err)
	require.Equal(t, "latin1", cfg.CharsetHint())

	// an empty value keeps the default
	writeFile(t, path, `{ encoding: "" }`)
	cfg, err = Load(path)
	require.NoError(t, err)
	require.Equal(t, "utf-8", cfg.CharsetHint())

	writeFile(t, path, `{ encoding: "klingon" }`)
	_, err = Load(path)
	require.Error(t, err)
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json5"))
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		mutate func(*Config)
		valid  bool
	}{
		{mutate: func(c *Config) {}, valid: true},
		{mutate: func(c *Config) { c.BaseUrl = "" }, valid: false},
		{mutate: func(c *Config) { c.Concurrency = 0 }, valid: false},
		{mutate: func(c *Config) { c.RetryCount = -1 }, valid: false},
		{mutate: func(c *Config) { c.TimeoutSeconds = -1 }, valid: false},
		{mutate: func(c *Config) { c.Encoding = "AUTO" }, valid: true},
		{mutate: func(c *Config) { c.Encoding = "no-such-charset" }, valid: false},
	}

	for _, test := range testCases {
		cfg := Default()
		test.mutate(&cfg)
		err := cfg.Validate()
		if test.valid {
			require.NoError(t, err)
		} else {
			require.Error(t, err)
		}
	}
}
