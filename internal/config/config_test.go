package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Sync:     SyncConfig{Primary: "../package.json", Secondary: "tauri.conf.json"},
		Packager: PackagerConfig{Command: "cargo", Args: []string{"tauri", "build"}},
	}
}

func TestLoader_Load_DefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()

	loader := NewLoader(filepath.Join(dir, DefaultConfigFile))
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "../package.json", cfg.Sync.Primary)
	assert.Equal(t, "tauri.conf.json", cfg.Sync.Secondary)
	assert.Equal(t, "cargo", cfg.Packager.Command)
	assert.Equal(t, []string{"tauri", "build"}, cfg.Packager.Args)
	assert.Empty(t, cfg.Packager.Env)
	assert.False(t, cfg.Log.Cargo)
	require.NoError(t, cfg.Validate())

	// Loading never creates the file.
	assert.False(t, loader.Exists())
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	require.NoError(t, cfg.Validate())

	loaded, err := NewLoader(filepath.Join(t.TempDir(), DefaultConfigFile)).Load()
	require.NoError(t, err)
	assert.Equal(t, cfg.Sync, loaded.Sync)
	assert.Equal(t, cfg.Packager.Command, loaded.Packager.Command)
	assert.Equal(t, cfg.Packager.Args, loaded.Packager.Args)
}

func TestLoader_Load_ReadsExistingConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFile)

	configContent := `
sync:
  primary: ../app/package.json
  secondary: Tauri.toml.json
packager:
  command: npm
  args: [run, tauri, build]
  dir: ..
  env:
    - TAURI_SIGNING_PRIVATE_KEY_PATH=keys/app.key
log:
  cargo: true
`
	require.NoError(t, os.WriteFile(path, []byte(configContent), 0o644))

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "../app/package.json", cfg.Sync.Primary)
	assert.Equal(t, "Tauri.toml.json", cfg.Sync.Secondary)
	assert.Equal(t, "npm", cfg.Packager.Command)
	assert.Equal(t, []string{"run", "tauri", "build"}, cfg.Packager.Args)
	assert.Equal(t, "..", cfg.Packager.Dir)
	assert.True(t, cfg.Log.Cargo)

	// Env entries keep their case, unlike viper map keys.
	env, err := cfg.Packager.EnvMap()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"TAURI_SIGNING_PRIVATE_KEY_PATH": "keys/app.key"}, env)
}

func TestLoader_Load_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte("sync: [unterminated"), 0o644))

	_, err := NewLoader(path).Load()
	assert.Error(t, err)
}

func TestLoader_Load_EnvVarOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VERSYNC_PRIMARY", "manifest.json")
	t.Setenv("VERSYNC_SYNC_SECONDARY", "conf/tauri.conf.json")
	t.Setenv("VERSYNC_PACKAGER", "pnpm")
	t.Setenv("VERSYNC_LOG_CARGO", "true")

	cfg, err := NewLoader(filepath.Join(dir, DefaultConfigFile)).Load()
	require.NoError(t, err)

	assert.Equal(t, "manifest.json", cfg.Sync.Primary)
	assert.Equal(t, "conf/tauri.conf.json", cfg.Sync.Secondary)
	assert.Equal(t, "pnpm", cfg.Packager.Command)
	assert.True(t, cfg.Log.Cargo)

	// The packager alias overrides only the command, not its section.
	assert.Equal(t, []string{"tauri", "build"}, cfg.Packager.Args)
	require.NoError(t, cfg.Validate())
}

func TestLoader_Load_PackagerAliasKeepsFileSection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFile)
	configContent := `
packager:
  command: cargo
  args: [tauri, build, --debug]
  dir: src-tauri
  env:
    - CI=true
`
	require.NoError(t, os.WriteFile(path, []byte(configContent), 0o644))
	t.Setenv("VERSYNC_PACKAGER", "npm")

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "npm", cfg.Packager.Command)
	assert.Equal(t, []string{"tauri", "build", "--debug"}, cfg.Packager.Args)
	assert.Equal(t, "src-tauri", cfg.Packager.Dir)
	assert.Equal(t, []string{"CI=true"}, cfg.Packager.Env)
	require.NoError(t, cfg.Validate())
}

func TestLoader_Load_LeafEnvVars(t *testing.T) {
	t.Setenv("VERSYNC_PACKAGER_COMMAND", "yarn")
	t.Setenv("VERSYNC_PACKAGER_ARGS", "tauri,build,--ci")
	t.Setenv("VERSYNC_PACKAGER_DIR", "..")

	cfg, err := NewLoader(filepath.Join(t.TempDir(), DefaultConfigFile)).Load()
	require.NoError(t, err)

	assert.Equal(t, "yarn", cfg.Packager.Command)
	assert.Equal(t, []string{"tauri", "build", "--ci"}, cfg.Packager.Args)
	assert.Equal(t, "..", cfg.Packager.Dir)
}

func TestLoader_Load_AliasTakesPrecedence(t *testing.T) {
	t.Setenv("VERSYNC_PACKAGER", "pnpm")
	t.Setenv("VERSYNC_PACKAGER_COMMAND", "yarn")

	cfg, err := NewLoader(filepath.Join(t.TempDir(), DefaultConfigFile)).Load()
	require.NoError(t, err)

	assert.Equal(t, "pnpm", cfg.Packager.Command)
}

func TestEnvNames(t *testing.T) {
	tests := []struct {
		key  string
		want []string
	}{
		{"sync.primary", []string{"VERSYNC_PRIMARY", "VERSYNC_SYNC_PRIMARY"}},
		{"packager.command", []string{"VERSYNC_PACKAGER", "VERSYNC_PACKAGER_COMMAND"}},
		{"packager.args", []string{"VERSYNC_PACKAGER_ARGS"}},
		{"log.cargo", []string{"VERSYNC_LOG_CARGO"}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, EnvNames(tt.key))
		})
	}
}

func TestLoader_Path(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		assert.Equal(t, "/tmp/custom.yaml", NewLoader("/tmp/custom.yaml").Path())
	})

	t.Run("default path", func(t *testing.T) {
		assert.Equal(t, DefaultConfigFile, NewLoader("").Path())
	})
}

func TestLoader_Get(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), DefaultConfigFile))
	_, err := loader.Load()
	require.NoError(t, err)

	t.Run("valid key returns value", func(t *testing.T) {
		val, err := loader.Get("sync.secondary")
		require.NoError(t, err)
		assert.Equal(t, "tauri.conf.json", val)
	})

	t.Run("invalid key returns error", func(t *testing.T) {
		_, err := loader.Get("invalid.key")
		assert.ErrorIs(t, err, ErrInvalidKey)
	})
}

func TestLoader_Set(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	loader := NewLoader(path)
	_, err := loader.Load()
	require.NoError(t, err)

	t.Run("sets valid key and creates file", func(t *testing.T) {
		require.NoError(t, loader.Set("sync.primary", "../web/package.json"))

		val, err := loader.Get("sync.primary")
		require.NoError(t, err)
		assert.Equal(t, "../web/package.json", val)
		assert.True(t, loader.Exists())

		// A fresh loader sees the persisted value.
		cfg, err := NewLoader(path).Load()
		require.NoError(t, err)
		assert.Equal(t, "../web/package.json", cfg.Sync.Primary)
	})

	t.Run("splits list values", func(t *testing.T) {
		require.NoError(t, loader.Set("packager.args", "tauri build --debug"))

		cfg, err := NewLoader(path).Load()
		require.NoError(t, err)
		assert.Equal(t, []string{"tauri", "build", "--debug"}, cfg.Packager.Args)
	})

	t.Run("parses booleans", func(t *testing.T) {
		require.NoError(t, loader.Set("log.cargo", "yes"))

		cfg, err := NewLoader(path).Load()
		require.NoError(t, err)
		assert.True(t, cfg.Log.Cargo)
	})

	t.Run("rejects invalid boolean", func(t *testing.T) {
		err := loader.Set("log.cargo", "maybe")
		assert.ErrorIs(t, err, ErrInvalidValue)
	})

	t.Run("rejects empty required value", func(t *testing.T) {
		err := loader.Set("packager.command", "")
		assert.ErrorIs(t, err, ErrInvalidValue)
	})

	t.Run("rejects section key", func(t *testing.T) {
		err := loader.Set("sync", "value")
		assert.ErrorIs(t, err, ErrInvalidKey)
	})

	t.Run("rejects invalid key", func(t *testing.T) {
		err := loader.Set("invalid.key", "value")
		assert.ErrorIs(t, err, ErrInvalidKey)
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("missing primary", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sync.Primary = ""

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Primary")
	})

	t.Run("secondary equals primary", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sync.Secondary = cfg.Sync.Primary

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Secondary")
	})

	t.Run("missing packager command", func(t *testing.T) {
		cfg := validConfig()
		cfg.Packager.Command = ""

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Command")
	})

	t.Run("malformed env entry", func(t *testing.T) {
		cfg := validConfig()
		cfg.Packager.Env = []string{"NOEQUALS"}

		err := cfg.Validate()
		assert.ErrorIs(t, err, ErrInvalidValue)
	})
}

func TestPackagerConfig_EnvMap(t *testing.T) {
	t.Run("splits on first equals", func(t *testing.T) {
		p := PackagerConfig{Env: []string{"A=1", "B=x=y", "C="}}

		env, err := p.EnvMap()
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"A": "1", "B": "x=y", "C": ""}, env)
	})

	t.Run("rejects empty key", func(t *testing.T) {
		_, err := PackagerConfig{Env: []string{"=value"}}.EnvMap()
		assert.ErrorIs(t, err, ErrInvalidValue)
	})
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"sync.primary is valid", "sync.primary", nil},
		{"sync.secondary is valid", "sync.secondary", nil},
		{"packager.command is valid", "packager.command", nil},
		{"packager.args is valid", "packager.args", nil},
		{"packager.dir is valid", "packager.dir", nil},
		{"packager.env is valid", "packager.env", nil},
		{"log.cargo is valid", "log.cargo", nil},
		{"sync is valid", "sync", nil},
		{"unknown.key returns error", "unknown.key", ErrInvalidKey},
		{"empty key returns error", "", ErrInvalidKey},
		{"random key returns error", "foo", ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()

	assert.Contains(t, keys, "sync.primary")
	assert.Contains(t, keys, "packager.env")
	assert.IsIncreasing(t, keys)
}
