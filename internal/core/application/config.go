package application

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/idwallet/lwsd/internal/core/ports"
	actionlog "github.com/idwallet/lwsd/internal/infrastructure/action-log"
	"github.com/idwallet/lwsd/internal/infrastructure/hardware"
	"github.com/idwallet/lwsd/internal/infrastructure/keystore"
	relyingparty "github.com/idwallet/lwsd/internal/infrastructure/relying-party"
	dbbadger "github.com/idwallet/lwsd/internal/infrastructure/storage/db/badger"
	"github.com/idwallet/lwsd/internal/infrastructure/storage/db/inmemory"
)

const (
	DBBadger   = "badger"
	DBInmemory = "inmemory"
)

var (
	SupportedDBType = map[string]struct{}{
		DBBadger:   {},
		DBInmemory: {},
	}
)

// Config builds, lazily and once, every collaborator of the LWS service.
type Config struct {
	DBType string
	// DBDir is the badger directory, an empty one keeps data in memory.
	DBDir       string
	KeystoreDir string
	ScryptN     int
	ScryptP     int

	RPRequestTimeout    time.Duration
	RPRequestsPerSecond int

	ActionLogURL    string
	ActionLogSecret string

	Version string

	repo         ports.RepoManager
	keyStore     *keystore.FileKeyStore
	transports   *hardware.Opener
	actionLogger ports.ActionLogger
	lws          LWSService
}

func (c *Config) Validate() error {
	if _, ok := SupportedDBType[c.DBType]; !ok {
		return fmt.Errorf("unsupported db type %s", c.DBType)
	}
	if _, err := c.repoManager(); err != nil {
		return err
	}
	if _, err := c.fileKeyStore(); err != nil {
		return err
	}
	if _, err := c.actionLogService(); err != nil {
		return err
	}
	if _, err := c.lwsService(); err != nil {
		return err
	}
	return nil
}

func (c *Config) RepoManager() ports.RepoManager {
	svc, _ := c.repoManager()
	return svc
}

func (c *Config) KeyStore() *keystore.FileKeyStore {
	svc, _ := c.fileKeyStore()
	return svc
}

// Transports returns the hardware transport opener, drivers can be
// registered on it before the service handles requests.
func (c *Config) Transports() *hardware.Opener {
	if c.transports == nil {
		c.transports = hardware.NewOpener()
	}
	return c.transports
}

func (c *Config) LWSService() LWSService {
	svc, _ := c.lwsService()
	return svc
}

func (c *Config) repoManager() (ports.RepoManager, error) {
	if c.repo == nil {
		switch c.DBType {
		case DBBadger:
			repoManager, err := dbbadger.NewRepoManager(c.DBDir, log.New())
			if err != nil {
				return nil, err
			}
			c.repo = repoManager
		case DBInmemory:
			c.repo = inmemory.NewRepoManager()
		default:
			return nil, fmt.Errorf("unsupported db type %s", c.DBType)
		}
	}
	return c.repo, nil
}

func (c *Config) fileKeyStore() (*keystore.FileKeyStore, error) {
	if c.keyStore == nil {
		ks, err := keystore.NewFileKeyStore(keystore.Opts{
			Dir:     c.KeystoreDir,
			ScryptN: c.ScryptN,
			ScryptP: c.ScryptP,
		})
		if err != nil {
			return nil, err
		}
		c.keyStore = ks
	}
	return c.keyStore, nil
}

func (c *Config) actionLogService() (ports.ActionLogger, error) {
	if c.actionLogger == nil && len(c.ActionLogURL) > 0 {
		svc, err := actionlog.NewService(
			c.ActionLogURL, c.ActionLogSecret, c.RPRequestTimeout,
		)
		if err != nil {
			return nil, err
		}
		c.actionLogger = svc
	}
	return c.actionLogger, nil
}

func (c *Config) lwsService() (LWSService, error) {
	if c.lws == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		ks, err := c.fileKeyStore()
		if err != nil {
			return nil, err
		}
		actionLogger, err := c.actionLogService()
		if err != nil {
			return nil, err
		}

		svc, err := NewLWSService(LWSServiceOpts{
			WalletRepository:    repo.WalletRepository(),
			AttributeRepository: repo.AttributeRepository(),
			KeyStore:            ks,
			Transports:          c.Transports(),
			RelyingPartyClient: relyingparty.NewClient(relyingparty.Opts{
				RequestTimeout:    c.RPRequestTimeout,
				RequestsPerSecond: c.RPRequestsPerSecond,
				UserAgent:         fmt.Sprintf("lwsd/%s", c.Version),
			}),
			ActionLogger: actionLogger,
			Version:      c.Version,
		})
		if err != nil {
			return nil, err
		}
		c.lws = svc
	}
	return c.lws, nil
}
