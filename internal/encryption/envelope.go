package encryption

import (
	"bytes"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"

	"golang.org/x/crypto/sha3"
)

// Member header layout:
//
//	magic(4) | algorithm id(1) | salt(16, salted algorithms only) | tag(32) | ciphertext
const (
	envelopeMagic = "MZC1"
	saltSize      = 16
	tagSize       = 32

	envelopePrefixSize = len(envelopeMagic) + 1
	maxHeaderSize      = envelopePrefixSize + saltSize + tagSize

	// PrefixSize is the number of leading member bytes Inspect needs.
	PrefixSize = envelopePrefixSize
)

// envelope is a parsed member header.
type envelope struct {
	algorithm Algorithm
	salt      []byte
	tag       []byte
}

// size returns the encoded header length for the envelope's algorithm.
func (e envelope) size() int {
	return headerSize(e.algorithm)
}

func headerSize(alg Algorithm) int {
	return envelopePrefixSize + alg.saltSize() + tagSize
}

// HeaderSize returns the length of the member header written for alg, or 0 for an
// invalid algorithm.
func HeaderSize(alg Algorithm) int {
	if !alg.Valid() {
		return 0
	}

	return headerSize(alg)
}

// HasHeader reports whether data begins with the encrypted-member magic.
func HasHeader(data []byte) bool {
	return bytes.HasPrefix(data, []byte(envelopeMagic))
}

// Inspect reports whether data starts an encrypted member and, if so, which algorithm
// the header names. The second result is false for plain members. No password is needed.
func Inspect(data []byte) (Algorithm, bool) {
	if !HasHeader(data) {
		return algorithmInvalid, false
	}

	if len(data) < envelopePrefixSize {
		return algorithmInvalid, true
	}

	return Algorithm(data[len(envelopeMagic)]), true
}

// newEnvelope prepares a header for alg with a fresh salt if the algorithm uses one.
func newEnvelope(alg Algorithm, password []byte) (envelope, error) {
	env := envelope{algorithm: alg}

	if n := alg.saltSize(); n > 0 {
		env.salt = make([]byte, n)
		if _, err := io.ReadFull(rand.Reader, env.salt); err != nil {
			return envelope{}, fmt.Errorf("generating salt: %w", err)
		}
	}

	env.tag = verificationTag(password, env.salt, alg)

	return env, nil
}

// marshal serialises the header.
func (e envelope) marshal() []byte {
	header := make([]byte, 0, e.size())
	header = append(header, envelopeMagic...)
	header = append(header, byte(e.algorithm))
	header = append(header, e.salt...)
	header = append(header, e.tag...)

	return header
}

// parseEnvelope parses the header at the start of data. data must begin with the magic.
func parseEnvelope(data []byte) (envelope, error) {
	if len(data) < envelopePrefixSize {
		return envelope{}, fmt.Errorf("%w: %d bytes", ErrTruncatedHeader, len(data))
	}

	alg := Algorithm(data[len(envelopeMagic)])
	if !alg.Valid() {
		return envelope{}, fmt.Errorf("%w: id %d", ErrUnknownAlgorithm, byte(alg))
	}

	if len(data) < headerSize(alg) {
		return envelope{}, fmt.Errorf("%w: %s needs %d bytes, have %d",
			ErrTruncatedHeader, alg, headerSize(alg), len(data))
	}

	rest := data[envelopePrefixSize:]

	env := envelope{algorithm: alg}

	if n := alg.saltSize(); n > 0 {
		env.salt = rest[:n]
		rest = rest[n:]
	}

	env.tag = rest[:tagSize]

	return env, nil
}

// verificationTag is SHA3-256(password || salt || algorithm id).
func verificationTag(password, salt []byte, alg Algorithm) []byte {
	h := sha3.New256()
	h.Write(password)
	h.Write(salt)
	h.Write([]byte{byte(alg)})

	return h.Sum(nil)
}

// verify checks the tag against password before any ciphertext is touched.
func (e envelope) verify(password []byte) error {
	if len(password) == 0 {
		return ErrPasswordRequired
	}

	expected := verificationTag(password, e.salt, e.algorithm)
	if subtle.ConstantTimeCompare(expected, e.tag) != 1 {
		return ErrWrongPassword
	}

	return nil
}
