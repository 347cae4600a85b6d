package encryption

import (
	"crypto/cipher"
	"crypto/md5"  //nolint:gosec // part of the composite key, not used for integrity
	"crypto/sha1" //nolint:gosec // part of the composite key, not used for integrity
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"hash"
	"slices"

	"github.com/tink-crypto/tink-go/v2/subtle"
)

const (
	// aesLikeRounds is the number of XOR rounds applied by AESLike.
	aesLikeRounds = 4

	hmacInfo = "minizip/hmac_sha256"
)

// newKeystream derives the keystream for alg. XOR'ing with the returned stream is its
// own inverse, so the same call serves encoding and decoding.
func newKeystream(alg Algorithm, password, salt []byte) (cipher.Stream, error) {
	switch alg {
	case XOR:
		return newRepeatingKey(digest(password)), nil

	case HMACSHA256:
		seed, err := subtle.ComputeHKDF("SHA256", password, salt, []byte(hmacInfo), sha256.Size)
		if err != nil {
			return nil, fmt.Errorf("deriving keyed digest: %w", err)
		}

		return &counterStream{seed: seed, off: sha256.Size}, nil

	case AESLike:
		rounds := make(chain, aesLikeRounds)
		for r := range rounds {
			rounds[r] = newRepeatingKey(digest(password, []byte{byte(r)}))
		}

		return rounds, nil

	case DoubleXOR:
		forward := digest(password)
		reverse := slices.Clone(forward)
		slices.Reverse(reverse)

		return chain{newRepeatingKey(forward), newRepeatingKey(reverse)}, nil

	case CustomHash:
		key := make([]byte, 0, md5.Size+sha1.Size+sha256.Size)

		for _, h := range []hash.Hash{md5.New(), sha1.New(), sha256.New()} { //nolint:gosec
			h.Write(password)
			h.Write(salt)
			key = h.Sum(key)
		}

		return newRepeatingKey(key), nil

	case algorithmInvalid:
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, byte(alg))

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, byte(alg))
	}
}

// digest returns SHA-256 over the concatenation of parts.
func digest(parts ...[]byte) []byte {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}

	return h.Sum(nil)
}

// repeatingKey XORs byte i of the stream with key[i mod len(key)].
type repeatingKey struct {
	key []byte
	pos int
}

func newRepeatingKey(key []byte) *repeatingKey {
	return &repeatingKey{key: key}
}

func (r *repeatingKey) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		panic("encryption: output smaller than input")
	}

	for i, b := range src {
		dst[i] = b ^ r.key[r.pos]

		r.pos++
		if r.pos == len(r.key) {
			r.pos = 0
		}
	}
}

// counterStream expands seed into SHA-256(seed || uint64be(n)) for n = 0, 1, 2, ...
type counterStream struct {
	seed    []byte
	counter uint64
	block   [sha256.Size]byte
	off     int
}

func (c *counterStream) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		panic("encryption: output smaller than input")
	}

	for i, b := range src {
		if c.off == len(c.block) {
			c.refill()
		}

		dst[i] = b ^ c.block[c.off]
		c.off++
	}
}

func (c *counterStream) refill() {
	var ctr [8]byte

	binary.BigEndian.PutUint64(ctr[:], c.counter)

	h := sha256.New()
	h.Write(c.seed)
	h.Write(ctr[:])
	h.Sum(c.block[:0])

	c.counter++
	c.off = 0
}

// chain applies each stream in order. Rounds are replayed identically on decode.
type chain []cipher.Stream

func (c chain) XORKeyStream(dst, src []byte) {
	if len(c) == 0 {
		copy(dst, src)

		return
	}

	c[0].XORKeyStream(dst, src)

	for _, s := range c[1:] {
		s.XORKeyStream(dst[:len(src)], dst[:len(src)])
	}
}
