package encryption

import (
	"bufio"
	"bytes"
	"crypto/cipher"
	"errors"
	"fmt"
	"io"
)

// Encode returns the on-archive form of plaintext. Without a password the input is
// returned unchanged; otherwise the result is the member header followed by the
// transformed bytes.
func (c *Context) Encode(plaintext []byte) ([]byte, error) {
	header, stream, err := c.seal()
	if err != nil {
		return nil, err
	}

	if stream == nil {
		return plaintext, nil
	}

	out := make([]byte, len(header)+len(plaintext))
	copy(out, header)
	stream.XORKeyStream(out[len(header):], plaintext)

	return out, nil
}

// Decode reverses Encode. Data without the member magic is returned unchanged, so
// archives may mix encrypted and plain members. For encrypted data the password is
// verified before any plaintext is produced.
func (c *Context) Decode(data []byte) ([]byte, error) {
	if err := c.usable(); err != nil {
		return nil, err
	}

	if !HasHeader(data) {
		return data, nil
	}

	env, err := parseEnvelope(data)
	if err != nil {
		return nil, err
	}

	stream, err := c.open(env)
	if err != nil {
		return nil, err
	}

	ciphertext := data[env.size():]

	out := make([]byte, len(ciphertext))
	stream.XORKeyStream(out, ciphertext)

	return out, nil
}

// NewWriter returns a writer that encodes everything written to it into w. The
// member header is written immediately. Without a password writes go straight to w.
// Close does not close w.
func (c *Context) NewWriter(w io.Writer) (io.WriteCloser, error) {
	header, stream, err := c.seal()
	if err != nil {
		return nil, err
	}

	if stream == nil {
		return &streamingWriter{w: w}, nil
	}

	if _, err := w.Write(header); err != nil {
		return nil, fmt.Errorf("writing member header: %w", err)
	}

	return &streamingWriter{w: w, stream: stream}, nil
}

// NewReader returns a reader yielding the decoded contents of r. The header is read
// and the password verified before NewReader returns; plain input passes through.
func (c *Context) NewReader(r io.Reader) (io.Reader, error) {
	if err := c.usable(); err != nil {
		return nil, err
	}

	buffered := bufio.NewReaderSize(r, defaultBufferSize)

	prefix, err := buffered.Peek(len(envelopeMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading member header: %w", err)
	}

	if !bytes.Equal(prefix, []byte(envelopeMagic)) {
		return buffered, nil
	}

	header := make([]byte, envelopePrefixSize, maxHeaderSize)
	if _, err := io.ReadFull(buffered, header); err != nil {
		return nil, truncated(err)
	}

	alg := Algorithm(header[len(envelopeMagic)])
	if !alg.Valid() {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownAlgorithm, byte(alg))
	}

	header = header[:headerSize(alg)]
	if _, err := io.ReadFull(buffered, header[envelopePrefixSize:]); err != nil {
		return nil, truncated(err)
	}

	env, err := parseEnvelope(header)
	if err != nil {
		return nil, err
	}

	stream, err := c.open(env)
	if err != nil {
		return nil, err
	}

	return &cipher.StreamReader{S: stream, R: buffered}, nil
}

// seal returns a fresh header and keystream, or a nil stream when encryption is off.
func (c *Context) seal() ([]byte, cipher.Stream, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch c.state {
	case StateCleared:
		return nil, nil, ErrContextCleared
	case StateIdle:
		return nil, nil, nil
	case StatePasswordSet:
	}

	env, err := newEnvelope(c.algorithm, c.password)
	if err != nil {
		return nil, nil, err
	}

	stream, err := newKeystream(c.algorithm, c.password, env.salt)
	if err != nil {
		return nil, nil, err
	}

	return env.marshal(), stream, nil
}

// open verifies env against the password and derives the decoding keystream.
func (c *Context) open(env envelope) (cipher.Stream, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.state == StateCleared {
		return nil, ErrContextCleared
	}

	if err := env.verify(c.password); err != nil {
		return nil, fmt.Errorf("%s member: %w", env.algorithm, err)
	}

	return newKeystream(env.algorithm, c.password, env.salt)
}

func (c *Context) usable() error {
	if c.State() == StateCleared {
		return ErrContextCleared
	}

	return nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncatedHeader
	}

	return fmt.Errorf("reading member header: %w", err)
}
