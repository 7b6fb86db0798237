package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/idwallet/lwsd/internal/config"
)

func TestInitConfig(t *testing.T) {
	datadir := t.TempDir()
	config.Set(config.DatadirKey, datadir)

	require.NoError(t, config.InitConfig())

	for _, dir := range []string{config.GetDbDir(), config.GetKeystoreDir()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		require.True(t, info.IsDir())
	}
	require.Equal(t, filepath.Join(datadir, "db"), config.GetDbDir())
	require.Equal(t, 8898, config.GetInt(config.WSPortKey))
	require.Equal(
		t, []string{"127.0.0.1", "::1"},
		config.GetStringSlice(config.WSIPWhitelistKey),
	)
}

func TestStringSliceFromEnv(t *testing.T) {
	t.Setenv("LWS_WS_ORIGINS_WHITELIST", "chrome-extension://a, chrome-extension://b")

	require.Equal(
		t, []string{"chrome-extension://a", "chrome-extension://b"},
		config.GetStringSlice(config.WSOriginsWhitelistKey),
	)
}

func TestInvalidConfig(t *testing.T) {
	config.Set(config.DatadirKey, t.TempDir())

	tests := []struct {
		name  string
		key   string
		value interface{}
		reset interface{}
	}{
		{"db type", config.DBTypeKey, "postgres", config.DBTypeBadger},
		{"port", config.WSPortKey, 70000, 8898},
		{"tls", config.TLSKeyKey, "key.pem", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			config.Set(tt.key, tt.value)
			defer config.Set(tt.key, tt.reset)

			require.Error(t, config.InitConfig())
		})
	}
}
