package wallet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

const (
	keystoreVersion = 3
	keystoreCipher  = "aes-128-ctr"
	kdfScrypt       = "scrypt"
	kdfPbkdf2       = "pbkdf2"

	// StandardScryptN is the N parameter of Scrypt encryption algorithm, using
	// 256MB memory and taking approximately 1s CPU time on a modern processor.
	StandardScryptN = 1 << 18
	// StandardScryptP is the P parameter of Scrypt encryption algorithm, using
	// 256MB memory and taking approximately 1s CPU time on a modern processor.
	StandardScryptP = 1
	// LightScryptN is the N parameter of Scrypt encryption algorithm, using 4MB
	// memory and taking approximately 100ms CPU time on a modern processor.
	LightScryptN = 1 << 12
	// LightScryptP is the P parameter of Scrypt encryption algorithm, using 4MB
	// memory and taking approximately 100ms CPU time on a modern processor.
	LightScryptP = 6

	scryptR     = 8
	scryptDKLen = 32
)

// Keystore is the JSON (version 3) representation of an encrypted private key.
type Keystore struct {
	Address string     `json:"address"`
	Crypto  CryptoJSON `json:"crypto"`
	ID      string     `json:"id"`
	Version int        `json:"version"`
}

type CryptoJSON struct {
	Cipher       string                 `json:"cipher"`
	CipherText   string                 `json:"ciphertext"`
	CipherParams CipherParams           `json:"cipherparams"`
	KDF          string                 `json:"kdf"`
	KDFParams    map[string]interface{} `json:"kdfparams"`
	MAC          string                 `json:"mac"`
}

type CipherParams struct {
	IV string `json:"iv"`
}

// EncryptKeyOpts is the struct given to EncryptKey method
type EncryptKeyOpts struct {
	PrivateKey []byte
	Passphrase string
	ScryptN    int
	ScryptP    int
}

func (o EncryptKeyOpts) validate() error {
	if _, err := PrivateKeyFromBytes(o.PrivateKey); err != nil {
		return err
	}
	if len(o.Passphrase) <= 0 {
		return ErrNullPassphrase
	}
	return nil
}

// EncryptKey encrypts a private key into a version 3 keystore by using scrypt
// as key derivation function and AES-128-CTR as cipher.
func EncryptKey(opts EncryptKeyOpts) ([]byte, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	n, p := opts.ScryptN, opts.ScryptP
	if n <= 0 {
		n = StandardScryptN
	}
	if p <= 0 {
		p = StandardScryptP
	}

	salt := make([]byte, 32)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	derivedKey, err := scrypt.Key(
		[]byte(opts.Passphrase), salt, n, scryptR, p, scryptDKLen,
	)
	if err != nil {
		return nil, err
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}
	cipherText, err := aesCTRXOR(derivedKey[:16], opts.PrivateKey, iv)
	if err != nil {
		return nil, err
	}
	mac := Keccak256(derivedKey[16:32], cipherText)

	privkey, _ := PrivateKeyFromBytes(opts.PrivateKey)
	ks := Keystore{
		Address: strings.TrimPrefix(AddressFromPublicKey(privkey.PubKey()), "0x"),
		Crypto: CryptoJSON{
			Cipher:       keystoreCipher,
			CipherText:   hex.EncodeToString(cipherText),
			CipherParams: CipherParams{IV: hex.EncodeToString(iv)},
			KDF:          kdfScrypt,
			KDFParams: map[string]interface{}{
				"n":     n,
				"r":     scryptR,
				"p":     p,
				"dklen": scryptDKLen,
				"salt":  hex.EncodeToString(salt),
			},
			MAC: hex.EncodeToString(mac),
		},
		ID:      uuid.New().String(),
		Version: keystoreVersion,
	}
	return json.Marshal(ks)
}

// DecryptKeyOpts is the struct given to DecryptKey method
type DecryptKeyOpts struct {
	Keystore   []byte
	Passphrase string
}

func (o DecryptKeyOpts) validate() error {
	if len(o.Keystore) <= 0 {
		return ErrNullKeystore
	}
	if len(o.Passphrase) <= 0 {
		return ErrNullPassphrase
	}
	return nil
}

// DecryptKey returns the raw private key stored in the given keystore.
// ErrInvalidPassphrase is returned if the MAC check fails.
func DecryptKey(opts DecryptKeyOpts) ([]byte, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	var ks Keystore
	if err := json.Unmarshal(opts.Keystore, &ks); err != nil {
		return nil, ErrInvalidKeystore
	}
	if ks.Version != keystoreVersion || ks.Crypto.Cipher != keystoreCipher {
		return nil, ErrInvalidKeystore
	}

	mac, err := hex.DecodeString(ks.Crypto.MAC)
	if err != nil {
		return nil, ErrInvalidKeystore
	}
	iv, err := hex.DecodeString(ks.Crypto.CipherParams.IV)
	if err != nil {
		return nil, ErrInvalidKeystore
	}
	cipherText, err := hex.DecodeString(ks.Crypto.CipherText)
	if err != nil {
		return nil, ErrInvalidKeystore
	}

	derivedKey, err := deriveKeystoreKey(ks.Crypto, opts.Passphrase)
	if err != nil {
		return nil, err
	}

	calculatedMAC := Keccak256(derivedKey[16:32], cipherText)
	if subtle.ConstantTimeCompare(calculatedMAC, mac) != 1 {
		return nil, ErrInvalidPassphrase
	}

	return aesCTRXOR(derivedKey[:16], cipherText, iv)
}

func deriveKeystoreKey(c CryptoJSON, passphrase string) ([]byte, error) {
	saltHex, _ := c.KDFParams["salt"].(string)
	salt, err := hex.DecodeString(saltHex)
	if err != nil || len(salt) <= 0 {
		return nil, ErrInvalidKeystore
	}
	dkLen := paramToInt(c.KDFParams["dklen"])
	if dkLen < 32 {
		return nil, ErrInvalidKeystore
	}

	switch c.KDF {
	case kdfScrypt:
		n := paramToInt(c.KDFParams["n"])
		r := paramToInt(c.KDFParams["r"])
		p := paramToInt(c.KDFParams["p"])
		key, err := scrypt.Key([]byte(passphrase), salt, n, r, p, dkLen)
		if err != nil {
			return nil, ErrInvalidKeystore
		}
		return key, nil
	case kdfPbkdf2:
		if prf, _ := c.KDFParams["prf"].(string); prf != "hmac-sha256" {
			return nil, ErrInvalidKeystore
		}
		iterations := paramToInt(c.KDFParams["c"])
		if iterations <= 0 {
			return nil, ErrInvalidKeystore
		}
		return pbkdf2.Key(
			[]byte(passphrase), salt, iterations, dkLen, sha256.New,
		), nil
	default:
		return nil, ErrInvalidKeystore
	}
}

func aesCTRXOR(key, in, iv []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != block.BlockSize() {
		return nil, ErrInvalidKeystore
	}
	out := make([]byte, len(in))
	cipher.NewCTR(block, iv).XORKeyStream(out, in)
	return out, nil
}

// kdf params are decoded as float64 by encoding/json.
func paramToInt(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	default:
		return 0
	}
}
