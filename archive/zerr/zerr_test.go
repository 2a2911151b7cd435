package zerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsMatchesDirectKind(t *testing.T) {
	err := New(NotFound, "missing")
	require.True(t, Is(err, NotFound))
	require.False(t, Is(err, IoError))
}

func TestIsSeesThroughWrapping(t *testing.T) {
	inner := New(IntegrityError, "digest mismatch")
	wrapped := fmt.Errorf("streaming chunk: %w", inner)
	require.True(t, Is(wrapped, IntegrityError))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(IoError, "write chunk", cause)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "disk full")
}

func TestIsFalseForPlainError(t *testing.T) {
	require.False(t, Is(errors.New("plain"), NotFound))
}
