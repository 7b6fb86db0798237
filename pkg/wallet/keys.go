package wallet

import (
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"golang.org/x/crypto/sha3"
)

// Keccak256 returns the legacy (pre-NIST) keccak256 digest of the given
// byte slices concatenated.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		h.Write(b)
	}
	return h.Sum(nil)
}

// PrivateKeyFromBytes parses a raw 32-byte secp256k1 scalar.
func PrivateKeyFromBytes(key []byte) (*btcec.PrivateKey, error) {
	if len(key) <= 0 {
		return nil, ErrNullPrivateKey
	}
	if len(key) != btcec.PrivKeyBytesLen {
		return nil, ErrInvalidPrivateKey
	}
	var zero [btcec.PrivKeyBytesLen]byte
	if string(key) == string(zero[:]) {
		return nil, ErrInvalidPrivateKey
	}
	privkey, _ := btcec.PrivKeyFromBytes(key)
	return privkey, nil
}

// PrivateKeyFromHex is like PrivateKeyFromBytes but accepts an optionally
// 0x-prefixed hex string.
func PrivateKeyFromHex(key string) (*btcec.PrivateKey, error) {
	buf, err := hex.DecodeString(strings.TrimPrefix(key, "0x"))
	if err != nil {
		return nil, ErrInvalidPrivateKey
	}
	return PrivateKeyFromBytes(buf)
}

// PublicKeyHex returns the 64 byte uncompressed public key (without the 0x04
// prefix) in hex format.
func PublicKeyHex(pubkey *btcec.PublicKey) string {
	return hex.EncodeToString(pubkey.SerializeUncompressed()[1:])
}

// PublicKeyFromHex parses a hex encoded public key. Both the serialized
// forms and the 64 byte uncompressed form returned by PublicKeyHex are
// accepted.
func PublicKeyFromHex(key string) (*btcec.PublicKey, error) {
	buf, err := hex.DecodeString(strings.TrimPrefix(key, "0x"))
	if err != nil {
		return nil, ErrInvalidPublicKey
	}
	if len(buf) == 64 {
		buf = append([]byte{0x04}, buf...)
	}
	pubkey, err := btcec.ParsePubKey(buf)
	if err != nil {
		return nil, ErrInvalidPublicKey
	}
	return pubkey, nil
}

// AddressFromPublicKey returns the lowercase 0x-prefixed address for the
// given public key, that is the last 20 bytes of the keccak256 of its
// uncompressed form.
func AddressFromPublicKey(pubkey *btcec.PublicKey) string {
	hash := Keccak256(pubkey.SerializeUncompressed()[1:])
	return "0x" + hex.EncodeToString(hash[12:])
}

// ValidateAddress returns an error if addr is not a 20 byte hex string.
func ValidateAddress(addr string) error {
	addr = strings.ToLower(strings.TrimSpace(addr))
	buf, err := hex.DecodeString(strings.TrimPrefix(addr, "0x"))
	if err != nil || len(buf) != 20 {
		return ErrInvalidAddress
	}
	return nil
}
