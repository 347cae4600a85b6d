package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/idelchi/gogen/pkg/cobraext"
	"github.com/idelchi/minizip/internal/archive"
	"github.com/idelchi/minizip/internal/encryption"
	"github.com/idelchi/minizip/internal/logic"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	wrapped := func(err error) error {
		return fmt.Errorf("extracting %q: %w", "a.zip", &archive.MemberError{Name: "a.txt", Err: err})
	}

	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{cobraext.ErrExitGracefully, 0},
		{errors.New("boom"), 1},
		{wrapped(encryption.ErrPasswordRequired), 3},
		{wrapped(encryption.ErrWrongPassword), 4},
		{wrapped(encryption.ErrUnknownAlgorithm), 5},
		{wrapped(encryption.ErrTruncatedHeader), 6},
		{wrapped(archive.ErrSourceNotFound), 7},
		{wrapped(archive.ErrIO), 8},
		{archive.ErrInvalidCompressionLevel, 9},
		{fmt.Errorf("validating config: %w", errors.Join(encryption.ErrUnknownAlgorithm, errors.New("bad"))), 5},
		{fmt.Errorf("%w: %w", logic.ErrTestFailed, wrapped(encryption.ErrWrongPassword)), 10},
	}

	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
