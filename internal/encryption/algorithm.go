package encryption

import (
	"fmt"
	"strings"
)

// Algorithm identifies one of the keystream transforms. The numeric value is the
// algorithm id written into the member header.
type Algorithm byte

const (
	algorithmInvalid Algorithm = iota
	// XOR uses a repeating SHA-256 digest of the password.
	XOR
	// HMACSHA256 uses an HKDF digest of password and salt, expanded with a counter.
	HMACSHA256
	// AESLike applies four repeating-key rounds derived from the password.
	AESLike
	// DoubleXOR applies the password digest forwards and then reversed.
	DoubleXOR
	// CustomHash uses a composite MD5, SHA-1 and SHA-256 key over password and salt.
	CustomHash
)

// DefaultAlgorithm is used when no algorithm is requested.
const DefaultAlgorithm = XOR

// Algorithms returns all supported algorithms in id order.
func Algorithms() []Algorithm {
	return []Algorithm{XOR, HMACSHA256, AESLike, DoubleXOR, CustomHash}
}

// ParseAlgorithm converts a name such as "hmac_sha256" into an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultAlgorithm, nil
	}

	for _, alg := range Algorithms() {
		if alg.String() == name {
			return alg, nil
		}
	}

	return algorithmInvalid, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
}

// Valid reports whether a is a supported algorithm.
func (a Algorithm) Valid() bool {
	switch a {
	case XOR, HMACSHA256, AESLike, DoubleXOR, CustomHash:
		return true
	default:
		return false
	}
}

func (a Algorithm) String() string {
	switch a {
	case XOR:
		return "xor"
	case HMACSHA256:
		return "hmac_sha256"
	case AESLike:
		return "aes_like"
	case DoubleXOR:
		return "double_xor"
	case CustomHash:
		return "custom_hash"
	default:
		return fmt.Sprintf("Algorithm(%d)", byte(a))
	}
}

// Description is a one-line summary for listings.
func (a Algorithm) Description() string {
	switch a {
	case XOR:
		return "repeating XOR with SHA-256(password)"
	case HMACSHA256:
		return "salted HKDF-SHA256 digest expanded into a counter keystream"
	case AESLike:
		return "four XOR rounds with per-round SHA-256 keys (not AES)"
	case DoubleXOR:
		return "XOR with SHA-256(password), then with the reversed digest"
	case CustomHash:
		return "salted composite MD5 || SHA-1 || SHA-256 repeating key"
	default:
		return ""
	}
}

// saltSize is the number of salt bytes stored in the member header.
func (a Algorithm) saltSize() int {
	switch a {
	case HMACSHA256, CustomHash:
		return saltSize
	default:
		return 0
	}
}
