// Package restore implements selective extraction of files and
// directories from an opened archive to the local filesystem, with
// hash-based skip for idempotent re-runs.
package restore

import (
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/JanNeuendorf/zipurat/archive/contenthash"
	"github.com/JanNeuendorf/zipurat/archive/index"
	"github.com/JanNeuendorf/zipurat/archive/reader"
	"github.com/JanNeuendorf/zipurat/archive/zerr"
)

// Restore extracts from (a file or directory path in the archive) to
// the local destination path. When trustHashes is true, a destination
// file whose on-disk digest already matches the archive's stored
// digest is skipped without reading its chunk, making repeated
// restores idempotent. Restore is fail-fast per file: the first error
// aborts the remaining copies.
func Restore(r *reader.Reader, from index.RelPath, to string, trustHashes bool) error {
	idx := r.Index()

	if idx.IsFile(from) {
		return restoreFile(r, from, to, trustHashes)
	}
	if idx.IsDir(from) {
		return restoreDirectory(r, from, to, trustHashes)
	}
	return zerr.New(zerr.NotFound, "path not present in index: "+from.String())
}

func restoreFile(r *reader.Reader, from index.RelPath, to string, trustHashes bool) error {
	if trustHashes {
		skip, err := matchesStoredHash(r, from, to)
		if err != nil {
			return err
		}
		if skip {
			log.Debugf("restore: skipping %s, local hash matches", to)
			return nil
		}
	}

	if dir := filepath.Dir(to); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return zerr.Wrap(zerr.IoError, "create restore destination directory", err)
		}
	}

	f, err := os.Create(to) // #nosec
	if err != nil {
		return zerr.Wrap(zerr.IoError, "create restore destination file", err)
	}
	defer f.Close()

	return r.StreamFile(from, f, true)
}

func restoreDirectory(r *reader.Reader, from index.RelPath, to string, trustHashes bool) error {
	sub, err := r.Index().Subindex(from)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(to, 0o755); err != nil {
		return zerr.Wrap(zerr.IoError, "create restore destination directory", err)
	}

	for relPath := range sub.Mapping {
		archivePath := from.Join(relPath.String())
		destPath := filepath.Join(to, filepath.FromSlash(relPath.String()))
		if err := restoreFile(r, archivePath, destPath, trustHashes); err != nil {
			return err
		}
	}

	for _, d := range sub.EmptyDirs {
		destPath := filepath.Join(to, filepath.FromSlash(d.String()))
		if err := os.MkdirAll(destPath, 0o755); err != nil {
			return zerr.Wrap(zerr.IoError, "create restored empty directory", err)
		}
	}

	return nil
}

func matchesStoredHash(r *reader.Reader, from index.RelPath, to string) (bool, error) {
	ref, ok := r.Index().Mapping[from]
	if !ok {
		return false, zerr.New(zerr.NotFound, "path not present in index: "+from.String())
	}
	want, ok := r.Index().Hashes[ref.Offset]
	if !ok {
		return false, nil
	}

	f, err := os.Open(to) // #nosec
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, zerr.Wrap(zerr.IoError, "open existing restore destination", err)
	}
	defer f.Close()

	got, err := contenthash.HashReader(f)
	if err != nil {
		return false, err
	}
	return got == want, nil
}
