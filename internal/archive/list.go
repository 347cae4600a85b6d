package archive

import (
	"errors"
	"io"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/idelchi/minizip/internal/encryption"
)

// Member describes one archive member as reported by List.
type Member struct {
	Name     string
	Dir      bool
	Method   string
	Modified time.Time
	// Size is the payload size without the encryption header.
	Size uint64
	// Stored is the number of bytes the member occupies in the archive.
	Stored    uint64
	Encrypted bool
	Algorithm encryption.Algorithm
}

// List describes the members of the archive in r. Encrypted members are recognised by
// their extra field and header, so no password is needed.
func (s *Session) List(r io.ReaderAt, size int64) ([]Member, error) {
	if err := s.begin(StateExtracting); err != nil {
		return nil, err
	}
	defer s.end()

	return list(r, size)
}

// ListFile lists the archive at path.
func (s *Session) ListFile(path string) ([]Member, error) {
	if err := s.begin(StateExtracting); err != nil {
		return nil, err
	}
	defer s.end()

	var members []Member

	err := withArchive(path, func(r io.ReaderAt, size int64) error {
		var err error

		members, err = list(r, size)

		return err
	})

	return members, err
}

func list(r io.ReaderAt, size int64) ([]Member, error) {
	zr, err := newReader(r, size)
	if err != nil {
		return nil, err
	}

	members := make([]Member, 0, len(zr.File))

	for _, f := range zr.File {
		member := Member{
			Name:     f.Name,
			Dir:      f.FileInfo().IsDir(),
			Method:   methodName(f.Method),
			Modified: f.Modified,
			Size:     f.UncompressedSize64,
			Stored:   f.CompressedSize64,
		}

		if _, marked := encryptedMark(f.Extra); marked && !member.Dir {
			alg, encrypted, err := peek(f)
			if err != nil {
				return nil, &MemberError{Name: f.Name, Err: err}
			}

			member.Encrypted = encrypted
			member.Algorithm = alg

			if n := uint64(encryption.HeaderSize(alg)); encrypted && member.Size >= n { //nolint:gosec // header sizes are small
				member.Size -= n
			}
		}

		members = append(members, member)
	}

	return members, nil
}

// peek reads the first bytes of a marked member to read its encryption header.
func peek(f *zip.File) (encryption.Algorithm, bool, error) {
	rc, err := f.Open()
	if err != nil {
		return 0, false, readError(err)
	}
	defer rc.Close()

	prefix := make([]byte, encryption.PrefixSize)

	n, err := io.ReadFull(rc, prefix)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return 0, false, readError(err)
	}

	alg, encrypted := encryption.Inspect(prefix[:n])

	return alg, encrypted, nil
}
