package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"github.com/idelchi/minizip/internal/fileutil"
)

// Summary describes a finished Create.
type Summary struct {
	// Files and Dirs count the members written.
	Files int
	Dirs  int
	// Bytes is the total payload size before encoding.
	Bytes int64
}

// Create writes entries as a zip archive to w. Encrypted members are stored; plain
// members are deflated at the session level, or stored at level 0. The first failing
// entry aborts the archive with a *MemberError.
func (s *Session) Create(w io.Writer, entries []Entry) (Summary, error) {
	if err := s.begin(StateCreating); err != nil {
		return Summary{}, err
	}
	defer s.end()

	return s.create(w, entries)
}

// CreateFile writes the archive to path atomically: on failure no file is left behind.
func (s *Session) CreateFile(path string, entries []Entry) (sum Summary, err error) {
	if err := s.begin(StateCreating); err != nil {
		return Summary{}, err
	}
	defer s.end()

	tc, err := fileutil.NewTempContext(path, fileutil.DefaultMode, time.Time{})
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %w", ErrIO, err)
	}

	defer tc.CleanupOnError(&err)

	sum, err = s.create(tc, entries)
	if err != nil {
		return Summary{}, err
	}

	if _, err = tc.Commit(); err != nil {
		return Summary{}, fmt.Errorf("%w: %w", ErrIO, err)
	}

	return sum, nil
}

func (s *Session) create(w io.Writer, entries []Entry) (Summary, error) {
	var sum Summary

	zw := zip.NewWriter(w)

	level := s.level
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})

	for _, entry := range entries {
		n, err := s.add(zw, entry)
		if err != nil {
			zw.Close() //nolint:errcheck,gosec // archive is discarded

			return Summary{}, &MemberError{Name: entry.Name, Err: err}
		}

		if entry.Dir {
			sum.Dirs++
		} else {
			sum.Files++
			sum.Bytes += n
		}
	}

	if err := zw.Close(); err != nil {
		return Summary{}, fmt.Errorf("%w: finishing archive: %w", ErrIO, err)
	}

	return sum, nil
}

// add writes a single entry and returns the number of payload bytes read.
func (s *Session) add(zw *zip.Writer, entry Entry) (int64, error) {
	name, err := cleanName(entry.Name)
	if err != nil {
		return 0, err
	}

	header := &zip.FileHeader{
		Name:     name,
		Method:   zip.Store,
		Modified: entry.Modified,
	}

	if header.Modified.IsZero() {
		header.Modified = time.Now()
	}

	if entry.Dir {
		header.Name += "/"
		header.SetMode(fs.ModeDir | permOr(entry.Mode, 0o755))

		if _, err := zw.CreateHeader(header); err != nil {
			return 0, fmt.Errorf("%w: writing directory header: %w", ErrIO, err)
		}

		return 0, nil
	}

	src, err := open(entry)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	encrypt := s.crypto.Enabled() && !entry.Plain

	switch {
	case encrypt:
		markEncrypted(header, s.crypto.Algorithm())
	case s.level > 0:
		header.Method = zip.Deflate
	}

	header.SetMode(permOr(entry.Mode, fileutil.DefaultMode))

	member, err := zw.CreateHeader(header)
	if err != nil {
		return 0, fmt.Errorf("%w: writing header: %w", ErrIO, err)
	}

	out := io.Writer(member)

	var enc io.WriteCloser

	if encrypt {
		enc, err = s.crypto.NewWriter(member)
		if err != nil {
			return 0, err
		}

		out = enc
	}

	n, err := io.Copy(out, src)
	if err != nil {
		return 0, fmt.Errorf("%w: writing payload: %w", ErrIO, err)
	}

	if enc != nil {
		if err := enc.Close(); err != nil {
			return 0, fmt.Errorf("%w: finishing payload: %w", ErrIO, err)
		}
	}

	s.logger.Debug("member added", "name", name, "bytes", n, "encrypted", encrypt, "method", methodName(header.Method))

	return n, nil
}

// open returns the payload of entry.
func open(entry Entry) (io.ReadCloser, error) {
	if entry.Path == "" {
		return io.NopCloser(bytes.NewReader(entry.Data)), nil
	}

	f, err := os.Open(entry.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, entry.Path)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	return f, nil
}

func permOr(mode, fallback fs.FileMode) fs.FileMode {
	if mode.Perm() == 0 {
		return fallback
	}

	return mode.Perm()
}

func methodName(method uint16) string {
	switch method {
	case zip.Store:
		return "store"
	case zip.Deflate:
		return "deflate"
	default:
		return fmt.Sprintf("method-%d", method)
	}
}
