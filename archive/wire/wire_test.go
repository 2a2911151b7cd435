package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestU32RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteU32(&buf, 0xDEADBEEF))

	v, err := ReadU32(&buf)
	require.NoError(t, err)
	require.Equal(t, uint32(0xDEADBEEF), v)
}

func TestU64RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteU64(&buf, 0xA9A98D26AA1F3FDD))

	v, err := ReadU64(&buf)
	require.NoError(t, err)
	require.Equal(t, uint64(0xA9A98D26AA1F3FDD), v)
}

func TestBytesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	want := []byte("hello, archive")
	require.NoError(t, WriteBytes(&buf, want))

	got, err := ReadBytes(&buf, len(want))
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestStringRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteString(&buf, "dir/b.txt"))

	got, err := ReadString(&buf)
	require.NoError(t, err)
	require.Equal(t, "dir/b.txt", got)
}

func TestPathRejectsInvalidUTF8(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteU64(&buf, 3))
	require.NoError(t, WriteBytes(&buf, []byte{0xff, 0xfe, 0xfd}))

	_, err := ReadPath(&buf)
	require.Error(t, err)
}

func TestU64SeqRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	want := []uint64{1, 2, 3, 1 << 40}
	require.NoError(t, WriteU64Seq(&buf, want))

	got, err := ReadU64Seq(&buf)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestPairSeqRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	want := []U64Pair{{A: 1, B: 2}, {A: 3, B: 4}}
	require.NoError(t, WritePairSeq(&buf, want))

	got, err := ReadPairSeq(&buf)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestDigestSeqRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	want := [][32]byte{{1, 2, 3}, {4, 5, 6}}
	require.NoError(t, WriteDigestSeq(&buf, want))

	got, err := ReadDigestSeq(&buf)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestPathSeqRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	want := []string{"a", "dir/b", "dir/c"}
	require.NoError(t, WritePathSeq(&buf, want))

	got, err := ReadPathSeq(&buf)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestReadErrorsOnTruncatedInput(t *testing.T) {
	_, err := ReadU64(bytes.NewReader([]byte{1, 2, 3}))
	require.Error(t, err)
}
