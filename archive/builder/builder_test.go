package builder

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"filippo.io/age"
	"github.com/stretchr/testify/require"

	"github.com/JanNeuendorf/zipurat/archive/index"
	"github.com/JanNeuendorf/zipurat/archive/reader"
	"github.com/JanNeuendorf/zipurat/archive/stream"
	"github.com/JanNeuendorf/zipurat/internal/identity"
)

// buildFixture packs a small tree (with duplicate content and an empty
// directory) into a fresh archive and returns an opened reader over
// it, alongside the source tree for comparison.
func buildFixture(t *testing.T) (srcDir string, r *reader.Reader) {
	t.Helper()

	id, err := age.GenerateX25519Identity()
	require.NoError(t, err)

	srcDir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "a.txt"), []byte("hello world"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(srcDir, "dir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "dir", "b.txt"), []byte("duplicate content"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "dir", "c.txt"), []byte("duplicate content"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(srcDir, "empty"), 0o755))

	archivePath := filepath.Join(t.TempDir(), "archive.zpr")
	dst, err := stream.OpenLocalWrite(archivePath)
	require.NoError(t, err)

	recipients := []identity.Recipient{id.Recipient()}
	require.NoError(t, Build(srcDir, dst, recipients, 3))
	require.NoError(t, dst.Close())

	src, err := stream.OpenLocalRead(archivePath)
	require.NoError(t, err)

	r, err = reader.Open(src, []identity.Identity{id})
	require.NoError(t, err)

	t.Cleanup(func() { r.Close() })
	return srcDir, r
}

func TestBuildProducesExpectedMapping(t *testing.T) {
	_, r := buildFixture(t)
	idx := r.Index()

	require.True(t, idx.IsFile(index.RelPath("a.txt")))
	require.True(t, idx.IsFile(index.RelPath("dir/b.txt")))
	require.True(t, idx.IsFile(index.RelPath("dir/c.txt")))
	require.True(t, idx.IsDir(index.RelPath("empty")))
	require.Equal(t, index.Magic, idx.MagicNumber)
}

func TestBuildDeduplicatesIdenticalContent(t *testing.T) {
	_, r := buildFixture(t)
	idx := r.Index()

	b := idx.Mapping[index.RelPath("dir/b.txt")]
	c := idx.Mapping[index.RelPath("dir/c.txt")]
	require.Equal(t, b.Offset, c.Offset, "identical file content should share one chunk")
	require.Equal(t, b.Length, c.Length)
}

func TestBuildRoundTripsFileContent(t *testing.T) {
	_, r := buildFixture(t)

	var buf bytes.Buffer
	require.NoError(t, r.StreamFile(index.RelPath("a.txt"), &buf, true))
	require.Equal(t, "hello world", buf.String())
}

func TestBuildEveryOffsetHasDigestAndSize(t *testing.T) {
	_, r := buildFixture(t)
	idx := r.Index()

	for _, ref := range idx.Mapping {
		_, ok := idx.Hashes[ref.Offset]
		require.True(t, ok, "missing digest for offset %d", ref.Offset)
		_, ok = idx.Sizes[ref.Offset]
		require.True(t, ok, "missing size for offset %d", ref.Offset)
	}
}

func TestBuildRejectsPreexistingArchive(t *testing.T) {
	id, err := age.GenerateX25519Identity()
	require.NoError(t, err)

	srcDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "a.txt"), []byte("x"), 0o644))

	archivePath := filepath.Join(t.TempDir(), "archive.zpr")
	dst, err := stream.OpenLocalWrite(archivePath)
	require.NoError(t, err)
	require.NoError(t, Build(srcDir, dst, []identity.Recipient{id.Recipient()}, 3))
	require.NoError(t, dst.Close())

	_, err = stream.OpenLocalWrite(archivePath)
	require.Error(t, err)
}
