package archive

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"golang.org/x/sync/errgroup"

	"github.com/idelchi/minizip/internal/encryption"
	"github.com/idelchi/minizip/internal/fileutil"
)

// Extract decodes every member of the archive in r into dest and returns the paths of
// the files written. Directories are created first; files are extracted by up to
// Parallel workers. When a name occurs more than once the last member wins.
func (s *Session) Extract(r io.ReaderAt, size int64, dest string) ([]string, error) {
	if err := s.begin(StateExtracting); err != nil {
		return nil, err
	}
	defer s.end()

	return s.extract(r, size, dest)
}

// ExtractFile extracts the archive at path into dest.
func (s *Session) ExtractFile(path, dest string) ([]string, error) {
	if err := s.begin(StateExtracting); err != nil {
		return nil, err
	}
	defer s.end()

	var written []string

	err := withArchive(path, func(r io.ReaderAt, size int64) error {
		var err error

		written, err = s.extract(r, size, dest)

		return err
	})

	return written, err
}

// Verify decodes every member without writing anything. It checks the password
// against each encrypted member and the stored checksum of every member.
func (s *Session) Verify(r io.ReaderAt, size int64) error {
	if err := s.begin(StateExtracting); err != nil {
		return err
	}
	defer s.end()

	return s.verify(r, size)
}

// VerifyFile verifies the archive at path.
func (s *Session) VerifyFile(path string) error {
	if err := s.begin(StateExtracting); err != nil {
		return err
	}
	defer s.end()

	return withArchive(path, s.verify)
}

// TestIntegrity reports whether Verify succeeds.
func (s *Session) TestIntegrity(r io.ReaderAt, size int64) bool {
	return s.Verify(r, size) == nil
}

func (s *Session) extract(r io.ReaderAt, size int64, dest string) ([]string, error) {
	zr, err := newReader(r, size)
	if err != nil {
		return nil, err
	}

	dest, err = filepath.Abs(dest)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving destination: %w", ErrIO, err)
	}

	targets := make(map[string]int, len(zr.File))
	paths := make([]string, len(zr.File))

	for i, f := range zr.File {
		full, err := target(dest, f.Name)
		if err != nil {
			return nil, &MemberError{Name: f.Name, Err: err}
		}

		paths[i] = full

		if !f.FileInfo().IsDir() {
			targets[full] = i
		}
	}

	// Nothing is written until every encrypted member accepts the password.
	if err := s.checkPasswords(zr.File); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dest, 0o750); err != nil {
		return nil, fmt.Errorf("%w: creating destination: %w", ErrIO, err)
	}

	for i, f := range zr.File {
		if !f.FileInfo().IsDir() {
			continue
		}

		if err := os.MkdirAll(paths[i], 0o750); err != nil {
			return nil, &MemberError{Name: f.Name, Err: fmt.Errorf("%w: %w", ErrIO, err)}
		}
	}

	written := make([]string, len(zr.File))

	err = s.forEach(zr.File, func(i int, f *zip.File) error {
		if f.FileInfo().IsDir() || targets[paths[i]] != i {
			return nil
		}

		if err := s.extractMember(f, paths[i]); err != nil {
			return err
		}

		written[i] = paths[i]

		return nil
	})
	if err != nil {
		return nil, err
	}

	files := written[:0]

	for _, p := range written {
		if p != "" {
			files = append(files, p)
		}
	}

	return files, nil
}

// checkPasswords reads the header of every encrypted member and checks its
// verification tag. Only header bytes are read.
func (s *Session) checkPasswords(files []*zip.File) error {
	return s.forEach(files, func(_ int, f *zip.File) error {
		if _, marked := encryptedMark(f.Extra); !marked || f.FileInfo().IsDir() {
			return nil
		}

		_, closer, err := s.openMember(f)
		if err != nil {
			return err
		}

		closer.Close() //nolint:errcheck,gosec // only the header was read

		return nil
	})
}

func (s *Session) verify(r io.ReaderAt, size int64) error {
	zr, err := newReader(r, size)
	if err != nil {
		return err
	}

	return s.forEach(zr.File, func(_ int, f *zip.File) error {
		if f.FileInfo().IsDir() {
			return nil
		}

		dec, closer, err := s.openMember(f)
		if err != nil {
			return err
		}
		defer closer.Close()

		n, err := io.Copy(io.Discard, dec)
		if err != nil {
			return readError(err)
		}

		s.logger.Debug("member verified", "name", f.Name, "bytes", n)

		return nil
	})
}

// forEach runs fn for every member with at most Parallel in flight. The first error
// stops members not yet started and is returned as a *MemberError.
func (s *Session) forEach(files []*zip.File, fn func(int, *zip.File) error) error {
	group, ctx := errgroup.WithContext(context.Background())
	group.SetLimit(s.parallel)

	for i, f := range files {
		group.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			if err := fn(i, f); err != nil {
				return &MemberError{Name: f.Name, Err: err}
			}

			return nil
		})
	}

	return group.Wait()
}

// extractMember decodes f into path. The password is checked before the output file
// is created.
func (s *Session) extractMember(f *zip.File, path string) (err error) {
	dec, closer, err := s.openMember(f)
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	tc, err := fileutil.NewTempContext(path, f.Mode().Perm(), f.Modified)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	defer tc.CleanupOnError(&err)

	if _, err = io.Copy(tc, dec); err != nil {
		return readError(err)
	}

	size, err := tc.Commit()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	s.logger.Debug("member extracted", "name", f.Name, "path", path, "bytes", size)

	return nil
}

// openMember opens f and, when it carries the encrypted-member mark, wraps it in the
// decoder. Unmarked members are returned as stored. The returned closer releases the
// underlying member reader.
func (s *Session) openMember(f *zip.File) (io.Reader, io.Closer, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, nil, readError(err)
	}

	if _, marked := encryptedMark(f.Extra); !marked {
		return rc, rc, nil
	}

	br := bufio.NewReader(rc)

	prefix, err := br.Peek(encryption.PrefixSize)
	if err != nil && !errors.Is(err, io.EOF) {
		rc.Close() //nolint:errcheck,gosec // already failing

		return nil, nil, readError(err)
	}

	if !encryption.HasHeader(prefix) {
		rc.Close() //nolint:errcheck,gosec // already failing

		return nil, nil, fmt.Errorf("%w: encrypted member has no header", ErrIntegrity)
	}

	dec, err := s.crypto.NewReader(br)
	if err != nil {
		rc.Close() //nolint:errcheck,gosec // already failing

		return nil, nil, decodeError(err)
	}

	return dec, rc, nil
}

func newReader(r io.ReaderAt, size int64) (*zip.Reader, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: reading archive: %w", ErrIO, err)
	}

	return zr, nil
}

// withArchive opens the archive file at path and passes it to fn.
func withArchive(path string, fn func(io.ReaderAt, int64) error) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, path)
	}

	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	return fn(f, info.Size())
}

// readError classifies a failure while reading member data.
func readError(err error) error {
	var corrupt flate.CorruptInputError

	switch {
	case errors.Is(err, zip.ErrChecksum), errors.Is(err, zip.ErrFormat), errors.Is(err, zip.ErrAlgorithm),
		errors.As(err, &corrupt), errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w: %w", ErrIntegrity, err)
	case encryption.IsDecodeError(err):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
}

// decodeError passes member decoding failures through unchanged and classifies the rest.
func decodeError(err error) error {
	if encryption.IsDecodeError(err) || errors.Is(err, encryption.ErrContextCleared) {
		return err
	}

	return readError(err)
}
