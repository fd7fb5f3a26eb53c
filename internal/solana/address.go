package solana

import (
	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
	"github.com/rotisserie/eris"
)

// AddressLength is the byte length of a Solana public key.
const AddressLength = 32

// ErrInvalidAddress is returned for strings that are not base58 32-byte keys.
var ErrInvalidAddress = eris.New("invalid solana address")

// DecodeAddress decodes a base58 address into its 32 raw bytes.
func DecodeAddress(address string) ([]byte, error) {
	if address == "" {
		return nil, eris.Wrap(ErrInvalidAddress, "empty address")
	}
	raw, err := base58.Decode(address)
	if err != nil {
		return nil, eris.Wrapf(ErrInvalidAddress, "decode %q: %v", address, err)
	}
	if len(raw) != AddressLength {
		return nil, eris.Wrapf(ErrInvalidAddress, "%q decodes to %d bytes", address, len(raw))
	}
	return raw, nil
}

// ValidateAddress checks that address is a well-formed public key.
func ValidateAddress(address string) error {
	_, err := DecodeAddress(address)
	return err
}

// IsOnCurve reports whether address is a point on the ed25519 curve.
// Wallet keys are on the curve; program-derived addresses are not.
// Malformed addresses report false.
func IsOnCurve(address string) bool {
	raw, err := DecodeAddress(address)
	if err != nil {
		return false
	}
	return isOnCurve(raw)
}

func isOnCurve(point []byte) bool {
	if len(point) != AddressLength {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
