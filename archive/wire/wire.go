// Package wire implements the length-prefixed little-endian binary codec
// used to serialize the archive index and its primitives. The ordering
// of fields in the Index encoding is a pinned, cross-implementation
// contract: do not reorder without bumping the archive magic.
package wire

import (
	"encoding/binary"
	"io"
	"unicode/utf8"

	"github.com/JanNeuendorf/zipurat/archive/zerr"
)

// WriteU32 writes v as 4 little-endian bytes.
func WriteU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadU32 reads 4 little-endian bytes into a uint32.
func ReadU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, zerr.Wrap(zerr.IoError, "read u32", err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// WriteU64 writes v as 8 little-endian bytes.
func WriteU64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadU64 reads 8 little-endian bytes into a uint64.
func ReadU64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, zerr.Wrap(zerr.IoError, "read u64", err)
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// WriteBytes writes raw bytes with no length prefix (the caller knows N).
func WriteBytes(w io.Writer, b []byte) error {
	_, err := w.Write(b)
	return err
}

// ReadBytes reads exactly n raw bytes.
func ReadBytes(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, zerr.Wrap(zerr.IoError, "read raw bytes", err)
	}
	return buf, nil
}

// WriteString writes a u64 byte-length followed by the UTF-8 bytes.
func WriteString(w io.Writer, s string) error {
	if err := WriteU64(w, uint64(len(s))); err != nil {
		return err
	}
	return WriteBytes(w, []byte(s))
}

// ReadString reads a length-prefixed UTF-8 string.
func ReadString(r io.Reader) (string, error) {
	n, err := ReadU64(r)
	if err != nil {
		return "", err
	}
	b, err := ReadBytes(r, int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", zerr.New(zerr.FormatError, "string is not valid UTF-8")
	}
	return string(b), nil
}

// WritePath writes p as a length-prefixed string; p must already be
// slash-normalized, relative, and UTF-8 (see archive/index.RelPath).
func WritePath(w io.Writer, p string) error {
	if !utf8.ValidString(p) {
		return zerr.New(zerr.FormatError, "path is not valid UTF-8")
	}
	return WriteString(w, p)
}

// ReadPath reads a length-prefixed path string.
func ReadPath(r io.Reader) (string, error) {
	return ReadString(r)
}

// WriteU64Seq writes a sequence of u64s.
func WriteU64Seq(w io.Writer, vs []uint64) error {
	if err := WriteU64(w, uint64(len(vs))); err != nil {
		return err
	}
	for _, v := range vs {
		if err := WriteU64(w, v); err != nil {
			return err
		}
	}
	return nil
}

// ReadU64Seq reads a sequence of u64s.
func ReadU64Seq(r io.Reader) ([]uint64, error) {
	n, err := ReadU64(r)
	if err != nil {
		return nil, err
	}
	out := make([]uint64, 0, n)
	for i := uint64(0); i < n; i++ {
		v, err := ReadU64(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// U64Pair is a (u64, u64) tuple, used both for chunk references
// (offset, length) and for raw hash-key/mapping-value pairs on the wire.
type U64Pair struct {
	A, B uint64
}

// WritePairSeq writes a sequence of (u64,u64) tuples.
func WritePairSeq(w io.Writer, vs []U64Pair) error {
	if err := WriteU64(w, uint64(len(vs))); err != nil {
		return err
	}
	for _, v := range vs {
		if err := WriteU64(w, v.A); err != nil {
			return err
		}
		if err := WriteU64(w, v.B); err != nil {
			return err
		}
	}
	return nil
}

// ReadPairSeq reads a sequence of (u64,u64) tuples.
func ReadPairSeq(r io.Reader) ([]U64Pair, error) {
	n, err := ReadU64(r)
	if err != nil {
		return nil, err
	}
	out := make([]U64Pair, 0, n)
	for i := uint64(0); i < n; i++ {
		a, err := ReadU64(r)
		if err != nil {
			return nil, err
		}
		b, err := ReadU64(r)
		if err != nil {
			return nil, err
		}
		out = append(out, U64Pair{A: a, B: b})
	}
	return out, nil
}

// WriteDigestSeq writes a sequence of 32-byte digests.
func WriteDigestSeq(w io.Writer, digests [][32]byte) error {
	if err := WriteU64(w, uint64(len(digests))); err != nil {
		return err
	}
	for _, d := range digests {
		if err := WriteBytes(w, d[:]); err != nil {
			return err
		}
	}
	return nil
}

// ReadDigestSeq reads a sequence of 32-byte digests.
func ReadDigestSeq(r io.Reader) ([][32]byte, error) {
	n, err := ReadU64(r)
	if err != nil {
		return nil, err
	}
	out := make([][32]byte, 0, n)
	for i := uint64(0); i < n; i++ {
		b, err := ReadBytes(r, 32)
		if err != nil {
			return nil, err
		}
		var d [32]byte
		copy(d[:], b)
		out = append(out, d)
	}
	return out, nil
}

// WritePathSeq writes a sequence of paths.
func WritePathSeq(w io.Writer, paths []string) error {
	if err := WriteU64(w, uint64(len(paths))); err != nil {
		return err
	}
	for _, p := range paths {
		if err := WritePath(w, p); err != nil {
			return err
		}
	}
	return nil
}

// ReadPathSeq reads a sequence of paths.
func ReadPathSeq(r io.Reader) ([]string, error) {
	n, err := ReadU64(r)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, n)
	for i := uint64(0); i < n; i++ {
		p, err := ReadPath(r)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
