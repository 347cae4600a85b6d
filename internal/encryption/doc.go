// Package encryption implements the password-keyed byte transforms applied to archive
// members and the member header that carries the algorithm and a password check.
//
// Every algorithm reduces to XOR with a keystream derived from the password (and a
// per-member salt for some algorithms), so encoding and decoding are the same
// operation. This is a format-level scrambling layer, not authenticated encryption:
// the verification tag only detects a wrong password, not modified ciphertext.
package encryption
