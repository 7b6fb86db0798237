// Package keystore implements a ports.KeyStore backed by version 3 JSON
// keystore files stored in a directory.
package keystore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/idwallet/lwsd/pkg/wallet"
)

const (
	keystoreDirPerm  = 0700
	keystoreFilePerm = 0600
)

type Opts struct {
	Dir     string
	ScryptN int
	ScryptP int
}

func (o Opts) validate() error {
	if len(o.Dir) <= 0 {
		return ErrMissingDir
	}
	return nil
}

// FileKeyStore reads and writes keystore files in a directory. Refs that are
// not absolute paths are resolved against the directory.
type FileKeyStore struct {
	dir     string
	scryptN int
	scryptP int
}

func NewFileKeyStore(opts Opts) (*FileKeyStore, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.Dir, keystoreDirPerm); err != nil {
		return nil, err
	}
	return &FileKeyStore{opts.Dir, opts.ScryptN, opts.ScryptP}, nil
}

// Decrypt returns the private key stored in the referenced keystore file.
func (k *FileKeyStore) Decrypt(ref, password string) ([]byte, error) {
	buf, err := os.ReadFile(k.resolve(ref))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrKeystoreNotFound
		}
		return nil, err
	}

	return wallet.DecryptKey(wallet.DecryptKeyOpts{
		Keystore:   buf,
		Passphrase: password,
	})
}

// Store encrypts the private key with the given password and writes it to a
// new keystore file. The path of the file is returned.
func (k *FileKeyStore) Store(privkey []byte, password string) (string, error) {
	buf, err := wallet.EncryptKey(wallet.EncryptKeyOpts{
		PrivateKey: privkey,
		Passphrase: password,
		ScryptN:    k.scryptN,
		ScryptP:    k.scryptP,
	})
	if err != nil {
		return "", err
	}

	key, _ := wallet.PrivateKeyFromBytes(privkey)
	address := strings.TrimPrefix(wallet.AddressFromPublicKey(key.PubKey()), "0x")
	filename := keystoreFilename(time.Now().UTC(), address)
	path := filepath.Join(k.dir, filename)

	if err := os.WriteFile(path, buf, keystoreFilePerm); err != nil {
		return "", err
	}
	log.Debugf("stored keystore for address 0x%s", address)
	return path, nil
}

func (k *FileKeyStore) resolve(ref string) string {
	if filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(k.dir, ref)
}

// keystoreFilename returns the conventional UTC--<created at>--<address>
// keystore file name.
func keystoreFilename(t time.Time, address string) string {
	ts := fmt.Sprintf(
		"%04d-%02d-%02dT%02d-%02d-%02d.%09dZ",
		t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(),
		t.Nanosecond(),
	)
	return fmt.Sprintf("UTC--%s--%s", ts, address)
}
