// Package builder implements the archive creation engine: it walks a
// source tree, randomizes build order, hashes and deduplicates file
// content, streams each file through compress+encrypt, and finally
// emits the index and trailer.
package builder

import (
	"bytes"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/JanNeuendorf/zipurat/archive/contenthash"
	"github.com/JanNeuendorf/zipurat/archive/index"
	"github.com/JanNeuendorf/zipurat/archive/pipeline"
	"github.com/JanNeuendorf/zipurat/archive/stream"
	"github.com/JanNeuendorf/zipurat/archive/wire"
	"github.com/JanNeuendorf/zipurat/archive/zerr"
	"github.com/JanNeuendorf/zipurat/internal/identity"
)

// indexCompressionLevel is used for the trailing index blob, which is
// small and read on every open, so it is worth compressing hard.
const indexCompressionLevel = 19

// Build walks source, writes every regular file into archive as an
// independent compress-then-encrypt chunk (deduplicating identical
// content), and appends the serialized index and trailer. Build is
// fail-fast: any error aborts the whole archive, leaving no valid
// trailer behind.
func Build(source string, archive stream.Stream, recipients []identity.Recipient, level int) error {
	files, emptyDirs, err := scan(source)
	if err != nil {
		return err
	}

	rand.Shuffle(len(files), func(i, j int) { files[i], files[j] = files[j], files[i] })
	rand.Shuffle(len(emptyDirs), func(i, j int) { emptyDirs[i], emptyDirs[j] = emptyDirs[j], emptyDirs[i] })

	if err := wire.WriteU64(archive, index.Magic); err != nil {
		return zerr.Wrap(zerr.IoError, "write leading magic", err)
	}

	idx := index.New(index.Magic)
	// canonical remembers, for each distinct content digest, the first
	// archived path that produced it — the candidate used for the
	// byte-for-byte dedup confirmation in step 4.b of spec.md §4.F.
	canonical := make(map[[32]byte]index.RelPath)

	for i, relPath := range files {
		log.Debugf("building: %d/%d %s", i+1, len(files), relPath)

		absPath := filepath.Join(source, string(relPath))
		hash, err := hashFile(absPath)
		if err != nil {
			return err
		}

		if candidate, ok := canonical[hash]; ok {
			equal, err := filesEqual(filepath.Join(source, string(candidate)), absPath)
			if err != nil {
				return err
			}
			if equal {
				idx.Mapping[relPath] = idx.Mapping[candidate]
				continue
			}
			// Hash collision with differing content: fall through and
			// store as a distinct chunk. canonical keeps pointing at
			// the original so future matches keep re-checking it.
		} else {
			canonical[hash] = relPath
		}

		start, err := archive.Position()
		if err != nil {
			return zerr.Wrap(zerr.IoError, "query archive position", err)
		}

		if err := streamFileChunk(absPath, archive, level, recipients); err != nil {
			return err
		}

		end, err := archive.Position()
		if err != nil {
			return zerr.Wrap(zerr.IoError, "query archive position", err)
		}

		size, err := fileSize(absPath)
		if err != nil {
			return err
		}

		idx.Mapping[relPath] = index.ChunkRef{Offset: uint64(start), Length: uint64(end - start)}
		idx.Hashes[uint64(start)] = hash
		idx.Sizes[uint64(start)] = size
	}

	idx.EmptyDirs = emptyDirs

	var idxBuf bytes.Buffer
	if err := idx.Encode(&idxBuf); err != nil {
		return zerr.Wrap(zerr.FormatError, "encode index", err)
	}

	indexStart, err := archive.Position()
	if err != nil {
		return zerr.Wrap(zerr.IoError, "query archive position", err)
	}

	if err := pipeline.CompressAndEncrypt(bytes.NewReader(idxBuf.Bytes()), archive, indexCompressionLevel, recipients); err != nil {
		return err
	}

	indexEnd, err := archive.Position()
	if err != nil {
		return zerr.Wrap(zerr.IoError, "query archive position", err)
	}

	if err := wire.WriteU64(archive, uint64(indexEnd-indexStart)); err != nil {
		return zerr.Wrap(zerr.IoError, "write index length trailer", err)
	}
	if err := wire.WriteU64(archive, index.Magic); err != nil {
		return zerr.Wrap(zerr.IoError, "write trailing magic", err)
	}

	return nil
}

func streamFileChunk(absPath string, archive stream.Stream, level int, recipients []identity.Recipient) error {
	f, err := os.Open(absPath) // #nosec
	if err != nil {
		return zerr.Wrap(zerr.IoError, "open source file", err)
	}
	defer f.Close()

	return pipeline.CompressAndEncrypt(f, archive, level, recipients)
}

func hashFile(absPath string) ([32]byte, error) {
	f, err := os.Open(absPath) // #nosec
	if err != nil {
		return [32]byte{}, zerr.Wrap(zerr.IoError, "open source file for hashing", err)
	}
	defer f.Close()

	return contenthash.HashReader(f)
}

func fileSize(absPath string) (uint64, error) {
	info, err := os.Stat(absPath)
	if err != nil {
		return 0, zerr.Wrap(zerr.IoError, "stat source file", err)
	}
	return uint64(info.Size()), nil
}

// filesEqual confirms content equality byte-for-byte, as a defensive
// check against hash collision or a digest implementation bug,
// regardless of the digest's own collision resistance.
func filesEqual(a, b string) (bool, error) {
	fa, err := os.Open(a) // #nosec
	if err != nil {
		return false, zerr.Wrap(zerr.IoError, "open dedup candidate", err)
	}
	defer fa.Close()

	fb, err := os.Open(b) // #nosec
	if err != nil {
		return false, zerr.Wrap(zerr.IoError, "open dedup candidate", err)
	}
	defer fb.Close()

	const bufSize = 64 * 1024
	bufA := make([]byte, bufSize)
	bufB := make([]byte, bufSize)
	for {
		na, erra := io.ReadFull(fa, bufA)
		nb, errb := io.ReadFull(fb, bufB)
		if na != nb || !bytes.Equal(bufA[:na], bufB[:nb]) {
			return false, nil
		}
		aDone := erra == io.EOF || erra == io.ErrUnexpectedEOF
		bDone := errb == io.EOF || errb == io.ErrUnexpectedEOF
		if aDone != bDone {
			return false, nil
		}
		if aDone {
			return true, nil
		}
		if erra != nil {
			return false, zerr.Wrap(zerr.IoError, "compare dedup candidate", erra)
		}
		if errb != nil {
			return false, zerr.Wrap(zerr.IoError, "compare dedup candidate", errb)
		}
	}
}

// scan recursively enumerates source, returning regular files and
// empty leaf directories (both relative to source). Non-file,
// non-directory entries are skipped with a warning.
func scan(source string) ([]index.RelPath, []index.RelPath, error) {
	var files []index.RelPath
	var emptyDirs []index.RelPath

	err := filepath.WalkDir(source, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return zerr.Wrap(zerr.IoError, "walk source tree", err)
		}
		if p == source {
			return nil
		}

		rel, relErr := filepath.Rel(source, p)
		if relErr != nil {
			return zerr.Wrap(zerr.IoError, "compute relative path", relErr)
		}
		relPath := index.Clean(rel)

		switch {
		case d.IsDir():
			entries, readErr := os.ReadDir(p)
			if readErr != nil {
				return zerr.Wrap(zerr.IoError, "read directory", readErr)
			}
			if len(entries) == 0 {
				emptyDirs = append(emptyDirs, relPath)
			}
			return nil
		case d.Type().IsRegular():
			files = append(files, relPath)
			return nil
		default:
			log.Warnf("skipping non-regular-file entry: %s", p)
			return nil
		}
	})
	if err != nil {
		return nil, nil, err
	}

	return files, emptyDirs, nil
}
