package encryption

import (
	"bytes"
	"fmt"
	"runtime"
	"sync"
)

// State is the lifecycle state of a Context.
type State int

const (
	// StateIdle means no password is set; members pass through unencrypted.
	StateIdle State = iota
	// StatePasswordSet means members are encoded with the password and algorithm.
	StatePasswordSet
	// StateCleared is terminal: the password has been wiped and the context is unusable.
	StateCleared
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePasswordSet:
		return "password-set"
	case StateCleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// Context holds the password and algorithm used to encode and decode members.
// It owns a private copy of the password, which Clear overwrites.
//
// Encode, Decode, NewWriter and NewReader may be called concurrently.
// SetPassword and Clear must not race with an archive operation using the context.
type Context struct {
	mu        sync.RWMutex
	password  []byte
	algorithm Algorithm
	state     State
}

// New returns an idle context: no password, default algorithm.
func New() *Context {
	return &Context{algorithm: DefaultAlgorithm}
}

// With creates a context holding password, runs fn with it and clears the context on
// every exit path, including errors and panics.
func With(password []byte, alg Algorithm, fn func(*Context) error) error {
	ctx := New()
	defer ctx.Clear()

	if err := ctx.SetPassword(password, alg); err != nil {
		return err
	}

	return fn(ctx)
}

// SetPassword stores a copy of password and selects alg. The previous password, if
// any, is wiped first. An empty password disables encryption.
func (c *Context) SetPassword(password []byte, alg Algorithm) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateCleared {
		return ErrContextCleared
	}

	if !alg.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownAlgorithm, alg)
	}

	wipe(c.password)
	c.password = nil

	if len(password) == 0 {
		c.state = StateIdle

		return nil
	}

	c.password = bytes.Clone(password)
	c.algorithm = alg
	c.state = StatePasswordSet

	return nil
}

// Clear wipes the password and moves the context to StateCleared. It is idempotent.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	wipe(c.password)
	c.password = nil
	c.algorithm = DefaultAlgorithm
	c.state = StateCleared
}

// Close implements io.Closer by clearing the context.
func (c *Context) Close() error {
	c.Clear()

	return nil
}

// State returns the current lifecycle state.
func (c *Context) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state
}

// Enabled reports whether members will be encrypted.
func (c *Context) Enabled() bool {
	return c.State() == StatePasswordSet
}

// Algorithm returns the selected algorithm.
func (c *Context) Algorithm() Algorithm {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.algorithm
}

// wipe overwrites b with zeros.
func wipe(b []byte) {
	clear(b)
	runtime.KeepAlive(b)
}
