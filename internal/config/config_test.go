package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"landing/internal/config"
)

type mapStore map[string][]byte

func (m mapStore) Set(k string, v []byte) error { m[k] = v; return nil }
func (m mapStore) Get(k string) ([]byte, error) { return m[k], nil }
func (m mapStore) Delete(k string) error        { delete(m, k); return nil }

func clearEnv(t *testing.T) {
	for _, k := range []string{"LANDING_DB_DRIVER", "LANDING_DB_DSN", "LANDING_ANALYZER_MODEL", "LANDING_TEMPLATES_DIR", "GEMINI_API_KEY"} {
		t.Setenv(k, "")
	}
	t.Setenv("XDG_DATA_HOME", t.TempDir())
}

func TestLoadConfig_MissingFileGivesDefaults(t *testing.T) {
	clearEnv(t)
	c, err := config.LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	require.Equal(t, "sqlite", c.Storage.Driver)
	require.Equal(t, config.DefaultModel, c.Analyzer.Model)
	require.Equal(t, 2*time.Minute, c.Analyzer.Timeout.Duration)
	require.Equal(t, 5, c.Analyzer.MaxScreenshots)
	require.Equal(t, filepath.Join(c.DataDir, "landing.db"), c.DSN())
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir = "/tmp/landing"

[storage]
driver = "postgres"
dsn = "postgres://localhost/landing"

[analyzer]
timeout = "45s"
max_screenshots = 3

[[watch]]
page_id = "p1"
url = "https://example.com"
schedule = "@daily"
`), 0644))

	t.Setenv("LANDING_ANALYZER_MODEL", "gemini-2.5-pro")
	c, err := config.LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/landing", c.DataDir)
	require.Equal(t, "postgres", c.Storage.Driver)
	require.Equal(t, 45*time.Second, c.Analyzer.Timeout.Duration)
	require.Equal(t, 3, c.Analyzer.MaxScreenshots)
	require.Equal(t, "gemini-2.5-pro", c.Analyzer.Model)
	require.Len(t, c.Watch, 1)
	require.Equal(t, "postgres://localhost/landing", c.DSN())
}

func TestLoadConfig_Invalid(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cases := map[string]string{
		"driver":   "[storage]\ndriver = \"oracle\"\n",
		"dsn":      "[storage]\ndriver = \"mysql\"\n",
		"watch":    "[[watch]]\nurl = \"https://x\"\n",
		"duration": "[analyzer]\ntimeout = \"soon\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".toml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))
			_, err := config.LoadConfig(path)
			require.Error(t, err)
		})
	}
}

func TestResolveAPIKey_Order(t *testing.T) {
	clearEnv(t)
	c, err := config.GetDefaultConfig()
	require.NoError(t, err)

	_, err = c.ResolveAPIKey(nil)
	require.Error(t, err)

	t.Setenv("GEMINI_API_KEY", "from-env")
	k, err := c.ResolveAPIKey(mapStore{})
	require.NoError(t, err)
	require.Equal(t, "from-env", k)

	k, err = c.ResolveAPIKey(mapStore{config.DefaultAPIKeySecret: []byte("from-keychain")})
	require.NoError(t, err)
	require.Equal(t, "from-keychain", k)

	c.Analyzer.APIKey = "from-config"
	k, err = c.ResolveAPIKey(mapStore{config.DefaultAPIKeySecret: []byte("from-keychain")})
	require.NoError(t, err)
	require.Equal(t, "from-config", k)
}

func TestSaveTemplateConfig(t *testing.T) {
	clearEnv(t)
	c, err := config.GetDefaultConfig()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "landing", "config.toml")
	require.NoError(t, c.SaveTemplateConfig(path))

	loaded, err := config.LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, c.DataDir, loaded.DataDir)
	require.Equal(t, "gemini-api-key", loaded.Analyzer.APIKeySecret)
}
