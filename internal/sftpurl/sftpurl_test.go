package sftpurl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseValidLocator(t *testing.T) {
	p, err := Parse("sftp://bob@example.com/srv/archives/home.zpr")
	require.NoError(t, err)
	require.Equal(t, "example.com", p.Host)
	require.Equal(t, "bob", p.User)
	require.Equal(t, 22, p.Port)
	require.Equal(t, "/srv/archives/home.zpr", p.Path)
}

func TestParseCustomPort(t *testing.T) {
	p, err := Parse("sftp://bob@example.com:2222/archive.zpr")
	require.NoError(t, err)
	require.Equal(t, 2222, p.Port)
}

func TestParseRejectsNonSFTPScheme(t *testing.T) {
	_, err := Parse("/local/path/archive.zpr")
	require.Error(t, err)

	_, err = Parse("https://example.com/archive.zpr")
	require.Error(t, err)
}

func TestParseRejectsMissingUser(t *testing.T) {
	_, err := Parse("sftp://example.com/archive.zpr")
	require.Error(t, err)
}
