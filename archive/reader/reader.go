// Package reader implements the archive read engine: trailer parsing,
// index materialization, and random-access streaming of a single file
// by path with optional hash verification.
package reader

import (
	"bytes"
	"io"

	"github.com/JanNeuendorf/zipurat/archive/contenthash"
	"github.com/JanNeuendorf/zipurat/archive/index"
	"github.com/JanNeuendorf/zipurat/archive/pipeline"
	"github.com/JanNeuendorf/zipurat/archive/stream"
	"github.com/JanNeuendorf/zipurat/archive/wire"
	"github.com/JanNeuendorf/zipurat/archive/zerr"
	"github.com/JanNeuendorf/zipurat/internal/identity"
)

// trailerSize is the fixed 16-byte trailer: an 8-byte index length
// followed by an 8-byte trailing magic.
const trailerSize = 16

// Reader is an opened archive: its parsed index plus the stream used
// to satisfy subsequent random-access reads.
type Reader struct {
	archive    stream.Stream
	idx        *index.Index
	identities []identity.Identity
}

// Open seeks to the trailer, parses INDEX_LEN and the trailing magic,
// decrypts+decompresses the index blob, and verifies the in-index
// magic_number against the trailing magic.
func Open(archive stream.Stream, identities []identity.Identity) (*Reader, error) {
	end, err := archive.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, zerr.Wrap(zerr.IoError, "seek to archive end", err)
	}
	if end < trailerSize+8 {
		return nil, zerr.New(zerr.FormatError, "archive too small to contain a trailer")
	}

	if _, err := archive.Seek(-trailerSize, io.SeekEnd); err != nil {
		return nil, zerr.Wrap(zerr.IoError, "seek to trailer", err)
	}

	indexLen, err := wire.ReadU64(archive)
	if err != nil {
		return nil, zerr.Wrap(zerr.FormatError, "read index length", err)
	}
	trailingMagic, err := wire.ReadU64(archive)
	if err != nil {
		return nil, zerr.Wrap(zerr.FormatError, "read trailing magic", err)
	}
	if trailingMagic != index.Magic {
		return nil, zerr.New(zerr.FormatError, "trailing magic mismatch")
	}

	indexStart := end - trailerSize - int64(indexLen)
	if indexStart < 8 {
		return nil, zerr.New(zerr.FormatError, "index length overruns archive")
	}
	if _, err := archive.Seek(indexStart, io.SeekStart); err != nil {
		return nil, zerr.Wrap(zerr.IoError, "seek to index blob", err)
	}

	var plain bytes.Buffer
	if err := pipeline.DecryptAndDecompress(archive, &plain, indexLen, identities); err != nil {
		return nil, err
	}

	idx, err := index.Decode(&plain)
	if err != nil {
		return nil, err
	}
	if idx.MagicNumber != trailingMagic {
		return nil, zerr.New(zerr.FormatError, "in-index magic does not match trailing magic")
	}

	return &Reader{archive: archive, idx: idx, identities: identities}, nil
}

// Index returns the archive's parsed index.
func (r *Reader) Index() *index.Index {
	return r.idx
}

// Close closes the underlying stream.
func (r *Reader) Close() error {
	return r.archive.Close()
}

// StreamFile streams path's full content to sink. When verify is true,
// the streamed bytes are hashed and compared against the index's
// stored digest; a mismatch is reported as zerr.IntegrityError
// (fail-closed) instead of delivering the (possibly tampered) bytes
// silently.
func (r *Reader) StreamFile(path index.RelPath, sink io.Writer, verify bool) error {
	ref, ok := r.idx.Mapping[path]
	if !ok {
		return zerr.New(zerr.NotFound, "path not present in index: "+path.String())
	}

	if !verify {
		return r.streamChunk(ref, sink)
	}

	var buf bytes.Buffer
	if err := r.streamChunk(ref, &buf); err != nil {
		return err
	}

	if err := r.verifyDigest(ref, buf.Bytes()); err != nil {
		return err
	}

	_, err := sink.Write(buf.Bytes())
	if err != nil {
		return zerr.Wrap(zerr.IoError, "write streamed file", err)
	}
	return nil
}

// StreamHead streams at most n bytes of path's decompressed content to
// sink, for small-offset probes (e.g. file-type detection over FUSE).
func (r *Reader) StreamHead(path index.RelPath, sink io.Writer, n int64) error {
	ref, ok := r.idx.Mapping[path]
	if !ok {
		return zerr.New(zerr.NotFound, "path not present in index: "+path.String())
	}

	if _, err := r.archive.Seek(int64(ref.Offset), io.SeekStart); err != nil {
		return zerr.Wrap(zerr.IoError, "seek to chunk", err)
	}

	return pipeline.DecryptAndDecompressHead(r.archive, sink, ref.Length, n, r.identities)
}

func (r *Reader) streamChunk(ref index.ChunkRef, sink io.Writer) error {
	if _, err := r.archive.Seek(int64(ref.Offset), io.SeekStart); err != nil {
		return zerr.Wrap(zerr.IoError, "seek to chunk", err)
	}
	return pipeline.DecryptAndDecompress(r.archive, sink, ref.Length, r.identities)
}

func (r *Reader) verifyDigest(ref index.ChunkRef, content []byte) error {
	want, ok := r.idx.Hashes[ref.Offset]
	if !ok {
		return zerr.New(zerr.NotFound, "digest not present for chunk offset")
	}
	got := contenthash.HashBytes(content)
	if got != want {
		return zerr.New(zerr.IntegrityError, "content digest mismatch")
	}
	return nil
}
