package domain

import (
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	"golang.org/x/crypto/sha3"

	dErrors "custody/pkg/domain-errors"
)

// AddressLength is the number of bytes in an account address.
const AddressLength = 20

// Address identifies an account (administrator or actor) in canonical
// lowercase "0x"-prefixed hex form.
type Address string

// ZeroAddress is the all-zero identity. It is never a valid caller and
// stands for "no holder" when an asset does not exist.
const ZeroAddress Address = "0x0000000000000000000000000000000000000000"

// ParseAddress validates a hex address and returns its canonical form.
// Mixed-case input must carry a valid EIP-55 checksum.
func ParseAddress(s string) (Address, error) {
	addr, err := ParseAddressOrZero(s)
	if err != nil {
		return "", err
	}
	if addr == ZeroAddress {
		return "", dErrors.New(dErrors.CodeInvalidInput, "zero address is not allowed")
	}
	return addr, nil
}

// ParseAddressOrZero is ParseAddress but accepts the zero address, for
// fields where the ledger itself decides what zero means.
func ParseAddressOrZero(s string) (Address, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "address is required")
	}
	body, ok := strings.CutPrefix(s, "0x")
	if !ok {
		body, ok = strings.CutPrefix(s, "0X")
	}
	if !ok || len(body) != 2*AddressLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "address must be 0x followed by 40 hex characters")
	}
	if _, err := hex.DecodeString(body); err != nil {
		return "", dErrors.New(dErrors.CodeInvalidInput, "address must be 0x followed by 40 hex characters")
	}
	lower := strings.ToLower(body)
	if body != lower && body != strings.ToUpper(body) {
		if checksumHex(lower) != body {
			return "", dErrors.New(dErrors.CodeInvalidInput, "address checksum mismatch")
		}
	}
	return Address("0x" + lower), nil
}

// MustParseAddress is ParseAddress for constants and tests.
func MustParseAddress(s string) Address {
	addr, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

func (a Address) String() string {
	return string(a)
}

// IsZero reports whether a is empty or the zero address.
func (a Address) IsZero() bool {
	return a == "" || a == ZeroAddress
}

// Checksum renders the address with EIP-55 mixed-case encoding.
func (a Address) Checksum() string {
	if a == "" {
		return ""
	}
	return "0x" + checksumHex(strings.TrimPrefix(string(a), "0x"))
}

func checksumHex(lower string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	digest := h.Sum(nil)

	out := []byte(lower)
	for i, c := range out {
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := digest[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if nibble&0x0f >= 8 {
			out[i] = c - 'a' + 'A'
		}
	}
	return string(out)
}

// MarshalJSON renders the checksummed form.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Checksum())
}

// UnmarshalJSON accepts any valid address spelling.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "address must be a string")
	}
	parsed, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// AssetID is the sequential identifier of a registered asset. Valid ids
// start at 1; 0 never names an asset.
type AssetID uint64

// ParseAssetID parses a decimal asset id. Range checks belong to the registry.
func ParseAssetID(s string) (AssetID, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "asset id must be a non-negative integer")
	}
	return AssetID(v), nil
}

func (id AssetID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}
