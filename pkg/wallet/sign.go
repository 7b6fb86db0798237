package wallet

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

const personalMessagePrefix = "\x19Ethereum Signed Message:\n"

// Signature is a recoverable secp256k1 signature split into its components.
// V holds the recovery id already biased by 27.
type Signature struct {
	R []byte
	S []byte
	V byte
}

// String returns the signature in the 0x-prefixed r||s||v layout.
func (s Signature) String() string {
	return "0x" + hex.EncodeToString(s.R) + hex.EncodeToString(s.S) +
		fmt.Sprintf("%02x", s.V)
}

// ParseSignature parses a 0x-prefixed r||s||v hex signature.
func ParseSignature(str string) (*Signature, error) {
	buf, err := hex.DecodeString(strings.TrimPrefix(str, "0x"))
	if err != nil || len(buf) != 65 {
		return nil, ErrMalformedSignature
	}
	return &Signature{
		R: buf[:32],
		S: buf[32:64],
		V: buf[64],
	}, nil
}

// HashPersonalMessage hashes the message the way personal_sign does, by
// prefixing it with the length of the message.
func HashPersonalMessage(msg []byte) []byte {
	prefix := personalMessagePrefix + strconv.Itoa(len(msg))
	return Keccak256([]byte(prefix), msg)
}

// SignPersonalMessage signs the personal-message hash of msg with the given
// private key.
func SignPersonalMessage(privkey *btcec.PrivateKey, msg []byte) (*Signature, error) {
	if privkey == nil {
		return nil, ErrNullPrivateKey
	}
	hash := HashPersonalMessage(msg)
	sig, err := ecdsa.SignCompact(privkey, hash, false)
	if err != nil {
		return nil, err
	}
	// compact layout is v||r||s with v = 27 + recid.
	return &Signature{
		R: sig[1:33],
		S: sig[33:65],
		V: sig[0],
	}, nil
}

// RecoverPersonalMessageSigner returns the address that produced the given
// r||s||v signature for msg.
func RecoverPersonalMessageSigner(msg []byte, sig *Signature) (string, error) {
	if sig == nil || len(sig.R) != 32 || len(sig.S) != 32 {
		return "", ErrMalformedSignature
	}
	compact := make([]byte, 0, 65)
	compact = append(compact, sig.V)
	compact = append(compact, sig.R...)
	compact = append(compact, sig.S...)

	pubkey, _, err := ecdsa.RecoverCompact(compact, HashPersonalMessage(msg))
	if err != nil {
		return "", err
	}
	return AddressFromPublicKey(pubkey), nil
}
