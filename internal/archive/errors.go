package archive

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceNotFound is returned when an input file or archive does not exist.
	ErrSourceNotFound = errors.New("source not found")
	// ErrIO wraps read and write failures of files and the container.
	ErrIO = errors.New("i/o failure")
	// ErrInvalidCompressionLevel is returned for levels outside 0..9.
	ErrInvalidCompressionLevel = errors.New("invalid compression level")
	// ErrUnsafePath is returned for member names that are absolute or leave the destination.
	ErrUnsafePath = errors.New("unsafe member path")
	// ErrBusy is returned when an operation starts while another one is running.
	ErrBusy = errors.New("session busy")
	// ErrSessionClosed is returned by every operation after Close.
	ErrSessionClosed = errors.New("session closed")
	// ErrIntegrity is returned when member data fails its checksum or cannot be inflated.
	ErrIntegrity = errors.New("integrity check failed")
)

// MemberError attributes a failure to one archive member.
type MemberError struct {
	Name string
	Err  error
}

func (e *MemberError) Error() string {
	return fmt.Sprintf("member %q: %v", e.Name, e.Err)
}

func (e *MemberError) Unwrap() error {
	return e.Err
}
