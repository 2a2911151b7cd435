package stream

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemStreamWriteReadRoundTrip(t *testing.T) {
	s := OpenMemory()

	_, err := s.Write([]byte("hello"))
	require.NoError(t, err)

	_, err = s.Seek(0, io.SeekStart)
	require.NoError(t, err)

	data, err := io.ReadAll(s)
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))
}

func TestMemStreamPositionTracksWrites(t *testing.T) {
	s := OpenMemory()

	_, err := s.Write([]byte("0123456789"))
	require.NoError(t, err)

	pos, err := s.Position()
	require.NoError(t, err)
	require.Equal(t, int64(10), pos)
}

func TestMemStreamSupportsMultipleSequentialChunks(t *testing.T) {
	s := OpenMemory()

	start1, _ := s.Position()
	_, _ = s.Write([]byte("chunk-one"))
	end1, _ := s.Position()

	start2, _ := s.Position()
	_, _ = s.Write([]byte("chunk-two-longer"))
	end2, _ := s.Position()

	require.Equal(t, int64(0), start1)
	require.Equal(t, int64(len("chunk-one")), end1)
	require.Equal(t, end1, start2)
	require.Equal(t, start2+int64(len("chunk-two-longer")), end2)

	_, err := s.Seek(start1, io.SeekStart)
	require.NoError(t, err)
	buf := make([]byte, end1-start1)
	_, err = io.ReadFull(s, buf)
	require.NoError(t, err)
	require.Equal(t, "chunk-one", string(buf))
}
