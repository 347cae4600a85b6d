package archive

import (
	"encoding/binary"

	"github.com/klauspost/compress/zip"

	"github.com/idelchi/minizip/internal/encryption"
)

// markerTag is the zip extra field id ("mz") carried by every member whose payload
// went through the encryption codec. Its one data byte is the algorithm id.
const markerTag uint16 = 0x7a6d

// markEncrypted appends the encrypted-member extra field to header.
func markEncrypted(header *zip.FileHeader, alg encryption.Algorithm) {
	header.Extra = binary.LittleEndian.AppendUint16(header.Extra, markerTag)
	header.Extra = binary.LittleEndian.AppendUint16(header.Extra, 1)
	header.Extra = append(header.Extra, byte(alg))
}

// encryptedMark reports whether extra holds the encrypted-member field and returns
// the algorithm recorded in it. Unmarked members are plain, whatever their bytes.
func encryptedMark(extra []byte) (encryption.Algorithm, bool) {
	const fieldHeader = 4

	for len(extra) >= fieldHeader {
		tag := binary.LittleEndian.Uint16(extra)
		size := int(binary.LittleEndian.Uint16(extra[2:]))
		extra = extra[fieldHeader:]

		if size > len(extra) {
			return 0, false
		}

		if tag == markerTag && size >= 1 {
			return encryption.Algorithm(extra[0]), true
		}

		extra = extra[size:]
	}

	return 0, false
}
