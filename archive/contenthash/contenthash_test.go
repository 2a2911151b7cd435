package contenthash

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashBytesAndHashReaderAgree(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")

	byHash := HashBytes(data)
	byReader, err := HashReader(bytes.NewReader(data))
	require.NoError(t, err)

	require.Equal(t, byHash, byReader)
}

func TestHashBytesIsDeterministic(t *testing.T) {
	data := []byte("deterministic")
	require.Equal(t, HashBytes(data), HashBytes(data))
}

func TestHashBytesDiffersOnDifferentContent(t *testing.T) {
	require.NotEqual(t, HashBytes([]byte("a")), HashBytes([]byte("b")))
}
