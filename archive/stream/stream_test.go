package stream

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenLocalWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.bin")

	w, err := OpenLocalWrite(path)
	require.NoError(t, err)

	_, err = w.Write([]byte("hello archive"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := OpenLocalRead(path)
	require.NoError(t, err)
	defer r.Close()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "hello archive", string(data))
}

func TestOpenLocalWriteRefusesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.bin")

	w, err := OpenLocalWrite(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = OpenLocalWrite(path)
	require.Error(t, err)
}

func TestOpenLocalReadMissingFile(t *testing.T) {
	_, err := OpenLocalRead(filepath.Join(t.TempDir(), "nope.bin"))
	require.Error(t, err)
}

func TestPositionTracksSeek(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.bin")
	w, err := OpenLocalWrite(path)
	require.NoError(t, err)
	_, err = w.Write([]byte("0123456789"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := OpenLocalRead(path)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Seek(5, io.SeekStart)
	require.NoError(t, err)

	pos, err := r.Position()
	require.NoError(t, err)
	require.Equal(t, int64(5), pos)
}
