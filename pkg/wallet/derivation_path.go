package wallet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

const hardenedMarker = "'"

// DerivationPath is a BIP32 path as the list of child indexes to derive,
// hardened indexes already offset by hdkeychain.HardenedKeyStart.
type DerivationPath []uint32

// DefaultDerivationPath is the BIP44 path of the first Ethereum account,
// m/44'/60'/0'/0/0, the one desktop wallets and hardware devices derive by
// default.
var DefaultDerivationPath = DerivationPath{
	hdkeychain.HardenedKeyStart + 44,
	hdkeychain.HardenedKeyStart + 60,
	hdkeychain.HardenedKeyStart,
	0,
	0,
}

// ParseDerivationPath parses paths like m/44'/60'/0'/0/0. The leading m is
// optional but at least two indexes are required.
func ParseDerivationPath(str string) (DerivationPath, error) {
	if str == "" {
		return nil, ErrNullDerivationPath
	}

	segments := strings.Split(str, "/")
	if len(segments) < 2 {
		return nil, ErrMalformedDerivationPath
	}
	for _, segment := range segments {
		if segment == "" {
			return nil, ErrMalformedDerivationPath
		}
	}
	if strings.TrimSpace(segments[0]) == "m" {
		segments = segments[1:]
	}

	path := make(DerivationPath, 0, len(segments))
	for _, segment := range segments {
		index, err := parseIndex(strings.TrimSpace(segment))
		if err != nil {
			return nil, err
		}
		path = append(path, index)
	}
	return path, nil
}

// parseIndex accepts decimal or 0x prefixed indexes, hardened ones carrying
// a trailing quote.
func parseIndex(segment string) (uint32, error) {
	var offset uint32
	if strings.HasSuffix(segment, hardenedMarker) {
		offset = hdkeychain.HardenedKeyStart
		segment = strings.TrimSpace(strings.TrimSuffix(segment, hardenedMarker))
	}

	index, err := strconv.ParseUint(segment, 0, 32)
	if err != nil || index >= uint64(hdkeychain.HardenedKeyStart) {
		return 0, fmt.Errorf(
			"%w: index %q out of range [0, %d)",
			ErrInvalidDerivationPath, segment, hdkeychain.HardenedKeyStart,
		)
	}
	return offset + uint32(index), nil
}

// String returns the path in the m/44'/60'/... notation.
func (path DerivationPath) String() string {
	if len(path) <= 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("m")
	for _, index := range path {
		if index >= hdkeychain.HardenedKeyStart {
			fmt.Fprintf(&b, "/%d%s", index-hdkeychain.HardenedKeyStart, hardenedMarker)
			continue
		}
		fmt.Fprintf(&b, "/%d", index)
	}
	return b.String()
}
