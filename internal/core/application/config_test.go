package application_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/idwallet/lwsd/internal/core/application"
)

func TestConfig(t *testing.T) {
	t.Run("inmemory", func(t *testing.T) {
		cfg := &application.Config{
			DBType:      application.DBInmemory,
			KeystoreDir: t.TempDir(),
			Version:     "test",
		}
		require.NoError(t, cfg.Validate())
		require.NotNil(t, cfg.RepoManager())
		require.NotNil(t, cfg.KeyStore())
		require.NotNil(t, cfg.LWSService())
		require.Equal(t, cfg.LWSService(), cfg.LWSService())
	})

	t.Run("badger in memory", func(t *testing.T) {
		cfg := &application.Config{
			DBType:      application.DBBadger,
			KeystoreDir: t.TempDir(),
		}
		require.NoError(t, cfg.Validate())
		defer cfg.RepoManager().Close()
		require.NotNil(t, cfg.LWSService())
	})

	t.Run("invalid", func(t *testing.T) {
		cfg := &application.Config{
			DBType:      "postgres",
			KeystoreDir: t.TempDir(),
		}
		require.Error(t, cfg.Validate())

		cfg = &application.Config{DBType: application.DBInmemory}
		require.Error(t, cfg.Validate())

		cfg = &application.Config{
			DBType:       application.DBInmemory,
			KeystoreDir:  t.TempDir(),
			ActionLogURL: "ftp://localhost",
		}
		require.Error(t, cfg.Validate())
	})
}
