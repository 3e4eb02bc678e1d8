package types

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
)

// AddressLength is the number of raw bytes in a ledger address.
const AddressLength = 20

// Address identifies an account or another ledger instance. Addresses are
// opaque beyond equality and byte ordering; rendering uses 0x-prefixed hex.
type Address [AddressLength]byte

// BytesToAddress copies the trailing bytes of b into an address, left padded
// with zeroes when b is shorter than AddressLength.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// ParseAddress decodes a 0x-prefixed or bare hex string into an address.
func ParseAddress(s string) (Address, error) {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X") {
		trimmed = trimmed[2:]
	}
	if len(trimmed) != AddressLength*2 {
		return Address{}, fmt.Errorf("types: address must be %d bytes (got %d hex chars)", AddressLength, len(trimmed))
	}
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return Address{}, fmt.Errorf("types: decode address: %w", err)
	}
	var a Address
	copy(a[:], decoded)
	return a, nil
}

// Bytes returns the raw address bytes.
func (a Address) Bytes() []byte { return a[:] }

// IsZero reports whether the address is the all-zero identity.
func (a Address) IsZero() bool { return a == Address{} }

// Compare orders two addresses bytewise.
func (a Address) Compare(other Address) int { return bytes.Compare(a[:], other[:]) }

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}
