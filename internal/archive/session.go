// Package archive builds and reads zip archives whose members may be encrypted with
// the keystream algorithms of the encryption package.
//
// All operations go through a Session, which owns the password for its lifetime and
// allows one operation at a time:
//
//	Idle -> PasswordSet -> (Creating | Extracting) -> PasswordSet
//
// Close wipes the password and makes the session unusable.
package archive

import (
	"fmt"
	"io/fs"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/idelchi/minizip/internal/encryption"
)

// Compression levels accepted by Options.Level.
const (
	MinLevel     = 0
	MaxLevel     = 9
	DefaultLevel = 6
)

// Entry is one item to add to an archive.
type Entry struct {
	// Name is the slash-separated member name.
	Name string
	// Path is the file to read the payload from. When empty, Data is used.
	Path string
	// Data is the payload for entries without a Path.
	Data []byte
	// Dir marks a directory member, which has no payload.
	Dir bool
	// Plain stores the member unencrypted even when a password is set.
	Plain bool
	// Mode and Modified are recorded in the member header.
	Mode     fs.FileMode
	Modified time.Time
}

// State is the lifecycle state of a Session.
type State int

const (
	StateIdle State = iota
	StatePasswordSet
	StateCreating
	StateExtracting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePasswordSet:
		return "password-set"
	case StateCreating:
		return "creating"
	case StateExtracting:
		return "extracting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Options configures a Session.
type Options struct {
	// Level is the deflate level for unencrypted members, 0 (store) to 9.
	Level int
	// Parallel bounds the number of members extracted or verified at once.
	// Values below 1 mean runtime.NumCPU().
	Parallel int
	// Logger receives per-member debug records. Defaults to slog.Default().
	Logger *slog.Logger
}

// Session performs archive operations with one password and algorithm.
type Session struct {
	mu       sync.Mutex
	state    State
	crypto   *encryption.Context
	level    int
	parallel int
	logger   *slog.Logger
}

// New returns an idle session.
func New(opts Options) (*Session, error) {
	if opts.Level < MinLevel || opts.Level > MaxLevel {
		return nil, fmt.Errorf("%w: %d (want %d..%d)", ErrInvalidCompressionLevel, opts.Level, MinLevel, MaxLevel)
	}

	if opts.Parallel < 1 {
		opts.Parallel = runtime.NumCPU()
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Session{
		state:    StateIdle,
		crypto:   encryption.New(),
		level:    opts.Level,
		parallel: opts.Parallel,
		logger:   opts.Logger,
	}, nil
}

// SetPassword selects the password and algorithm for later operations, replacing any
// previous password. An empty password turns encryption off.
func (s *Session) SetPassword(password []byte, alg encryption.Algorithm) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateClosed:
		return ErrSessionClosed
	case StateCreating, StateExtracting:
		return ErrBusy
	case StateIdle, StatePasswordSet:
	}

	if err := s.crypto.SetPassword(password, alg); err != nil {
		return err
	}

	s.state = s.resting()

	return nil
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Close wipes the password. Further operations fail with ErrSessionClosed.
// Closing a session while an operation runs fails with ErrBusy.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateClosed:
		return nil
	case StateCreating, StateExtracting:
		return ErrBusy
	case StateIdle, StatePasswordSet:
	}

	s.crypto.Clear()
	s.state = StateClosed

	return nil
}

// begin moves the session into op or reports why it cannot.
func (s *Session) begin(op State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateClosed:
		return ErrSessionClosed
	case StateCreating, StateExtracting:
		return ErrBusy
	case StateIdle, StatePasswordSet:
	}

	s.state = op

	return nil
}

// end returns the session to its resting state after an operation.
func (s *Session) end() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = s.resting()
}

func (s *Session) resting() State {
	if s.crypto.Enabled() {
		return StatePasswordSet
	}

	return StateIdle
}
