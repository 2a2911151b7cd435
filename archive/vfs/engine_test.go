package vfs

import (
	"os"
	"path/filepath"
	"testing"

	"filippo.io/age"
	"github.com/stretchr/testify/require"

	"github.com/JanNeuendorf/zipurat/archive/builder"
	"github.com/JanNeuendorf/zipurat/archive/reader"
	"github.com/JanNeuendorf/zipurat/archive/stream"
	"github.com/JanNeuendorf/zipurat/internal/identity"
)

func buildEngine(t *testing.T) *Engine {
	t.Helper()

	id, err := age.GenerateX25519Identity()
	require.NoError(t, err)

	srcDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "a.txt"), []byte("hello world"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(srcDir, "dir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "dir", "b.txt"), make([]byte, HeadBytes+1000), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(srcDir, "empty"), 0o755))

	archivePath := filepath.Join(t.TempDir(), "archive.zpr")
	dst, err := stream.OpenLocalWrite(archivePath)
	require.NoError(t, err)
	require.NoError(t, builder.Build(srcDir, dst, []identity.Recipient{id.Recipient()}, 3))
	require.NoError(t, dst.Close())

	src, err := stream.OpenLocalRead(archivePath)
	require.NoError(t, err)
	r, err := reader.Open(src, []identity.Identity{id})
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })

	return NewEngine(r.Index(), r, Options{})
}

func TestRootAttrIsDirectory(t *testing.T) {
	e := buildEngine(t)

	attr, err := e.GetAttr(e.RootIno())
	require.NoError(t, err)
	require.True(t, attr.IsDir)
	require.Equal(t, rootInode, attr.Ino)
}

func TestLookupAndReadDir(t *testing.T) {
	e := buildEngine(t)

	aAttr, err := e.Lookup(e.RootIno(), "a.txt")
	require.NoError(t, err)
	require.False(t, aAttr.IsDir)
	require.Equal(t, uint64(len("hello world")), aAttr.Size)

	entries, err := e.ReadDir(e.RootIno())
	require.NoError(t, err)

	names := map[string]bool{}
	for _, ent := range entries {
		names[ent.Name] = true
	}
	require.True(t, names["."])
	require.True(t, names[".."])
	require.True(t, names["a.txt"])
	require.True(t, names["dir"])
	require.True(t, names["empty"])
}

func TestLookupUnknownNameFails(t *testing.T) {
	e := buildEngine(t)
	_, err := e.Lookup(e.RootIno(), "nope")
	require.Error(t, err)
}

func TestReadSmallFileFullContent(t *testing.T) {
	e := buildEngine(t)

	aAttr, err := e.Lookup(e.RootIno(), "a.txt")
	require.NoError(t, err)

	data, err := e.Read(aAttr.Ino, 0, 4096)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(data))
}

func TestReadLargeFileHeadAndOffset(t *testing.T) {
	e := buildEngine(t)

	dirAttr, err := e.Lookup(e.RootIno(), "dir")
	require.NoError(t, err)
	bAttr, err := e.Lookup(dirAttr.Ino, "b.txt")
	require.NoError(t, err)
	require.Equal(t, uint64(HeadBytes+1000), bAttr.Size)

	head, err := e.Read(bAttr.Ino, 0, 100)
	require.NoError(t, err)
	require.Len(t, head, 100)

	tail, err := e.Read(bAttr.Ino, int64(HeadBytes+900), 1000)
	require.NoError(t, err)
	require.Len(t, tail, 100) // clamped to EOF
}

func TestReadPastEndOfFileReturnsEmpty(t *testing.T) {
	e := buildEngine(t)

	aAttr, err := e.Lookup(e.RootIno(), "a.txt")
	require.NoError(t, err)

	data, err := e.Read(aAttr.Ino, 1000, 10)
	require.NoError(t, err)
	require.Empty(t, data)
}

func TestInodesAreStableAcrossLookups(t *testing.T) {
	e := buildEngine(t)

	first, err := e.Lookup(e.RootIno(), "a.txt")
	require.NoError(t, err)
	second, err := e.Lookup(e.RootIno(), "a.txt")
	require.NoError(t, err)
	require.Equal(t, first.Ino, second.Ino)
}

func TestEmptyDirectoryIsListable(t *testing.T) {
	e := buildEngine(t)

	emptyAttr, err := e.Lookup(e.RootIno(), "empty")
	require.NoError(t, err)
	require.True(t, emptyAttr.IsDir)

	entries, err := e.ReadDir(emptyAttr.Ino)
	require.NoError(t, err)
	require.Len(t, entries, 2) // just "." and ".."
}
