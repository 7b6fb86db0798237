package dbbadger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"

	"github.com/idwallet/lwsd/internal/core/domain"
	"github.com/idwallet/lwsd/internal/core/ports"
)

const (
	mainDbDir = "main"

	valueLogGCInterval     = 30 * time.Minute
	valueLogGCDiscardRatio = 0.5
)

type repoManager struct {
	store *badgerhold.Store
	stop  chan struct{}

	walletRepository    domain.WalletRepository
	attributeRepository domain.AttributeRepository
}

// NewRepoManager opens (or creates if not exists) the badger store on disk.
// If baseDbDir is empty the store is kept in memory.
func NewRepoManager(
	baseDbDir string, logger badger.Logger,
) (ports.RepoManager, error) {
	var dbDir string
	if len(baseDbDir) > 0 {
		dbDir = filepath.Join(baseDbDir, mainDbDir)
	}

	stop := make(chan struct{})
	store, err := createDb(dbDir, logger, stop)
	if err != nil {
		return nil, fmt.Errorf("opening main db: %w", err)
	}

	return &repoManager{
		store:               store,
		stop:                stop,
		walletRepository:    NewWalletRepositoryImpl(store),
		attributeRepository: NewAttributeRepositoryImpl(store),
	}, nil
}

func (m *repoManager) WalletRepository() domain.WalletRepository {
	return m.walletRepository
}

func (m *repoManager) AttributeRepository() domain.AttributeRepository {
	return m.attributeRepository
}

func (m *repoManager) Close() {
	close(m.stop)
	if err := m.store.Close(); err != nil {
		log.WithError(err).Warn("failed to close main db")
	}
}

// JSONEncode is a custom JSON based encoder for badger
func JSONEncode(value interface{}) ([]byte, error) {
	var buff bytes.Buffer

	en := json.NewEncoder(&buff)

	err := en.Encode(value)
	if err != nil {
		return nil, err
	}

	return buff.Bytes(), nil
}

// JSONDecode is a custom JSON based decoder for badger
func JSONDecode(data []byte, value interface{}) error {
	var buff bytes.Buffer
	de := json.NewDecoder(&buff)

	_, err := buff.Write(data)
	if err != nil {
		return err
	}

	return de.Decode(value)
}

func createDb(
	dbDir string, logger badger.Logger, stop chan struct{},
) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          JSONEncode,
		Decoder:          JSONDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}

	if !isInMemory {
		ticker := time.NewTicker(valueLogGCInterval)

		go func() {
			defer ticker.Stop()
			for {
				select {
				case <-stop:
					return
				case <-ticker.C:
					if err := db.Badger().RunValueLogGC(
						valueLogGCDiscardRatio,
					); err != nil && err != badger.ErrNoRewrite {
						log.Error(err)
					}
				}
			}
		}()
	}

	return db, nil
}
