// Package contenthash computes the 32-byte content digest stored in the
// archive index, using BLAKE3 (the same primitive the original zipurat
// implementation hashes with).
package contenthash

import (
	"io"

	"lukechampine.com/blake3"

	"github.com/JanNeuendorf/zipurat/archive/zerr"
)

// HashBytes digests an in-memory byte slice.
func HashBytes(b []byte) [32]byte {
	sum := blake3.Sum256(b)
	return sum
}

// HashReader streams r through BLAKE3, for files too large to hold in
// memory at once.
func HashReader(r io.Reader) ([32]byte, error) {
	h := blake3.New(32, nil)
	if _, err := io.Copy(h, r); err != nil {
		return [32]byte{}, zerr.Wrap(zerr.IoError, "hash reader", err)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}
