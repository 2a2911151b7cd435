package identity

import (
	"os"
	"path/filepath"
	"testing"

	"filippo.io/age"
	"github.com/stretchr/testify/require"
)

func writeIdentityFile(t *testing.T, dir, name string, ids ...*age.X25519Identity) string {
	t.Helper()
	path := filepath.Join(dir, name)

	var content string
	for _, id := range ids {
		content += id.String() + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadIdentitiesAndRecipients(t *testing.T) {
	id, err := age.GenerateX25519Identity()
	require.NoError(t, err)

	dir := t.TempDir()
	path := writeIdentityFile(t, dir, "key.txt", id)

	ids, err := LoadIdentities(path)
	require.NoError(t, err)
	require.Len(t, ids, 1)

	recipients, err := LoadRecipients(path)
	require.NoError(t, err)
	require.Len(t, recipients, 1)
	require.Equal(t, id.Recipient().String(), recipients[0].(*age.X25519Recipient).String())
}

func TestLoadIdentitiesMissingFile(t *testing.T) {
	_, err := LoadIdentities(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
}

func TestScanConfigDirAggregatesFiles(t *testing.T) {
	id1, err := age.GenerateX25519Identity()
	require.NoError(t, err)
	id2, err := age.GenerateX25519Identity()
	require.NoError(t, err)

	xdg := t.TempDir()
	ageDir := filepath.Join(xdg, "age")
	require.NoError(t, os.MkdirAll(ageDir, 0o755))
	writeIdentityFile(t, ageDir, "a.txt", id1)
	writeIdentityFile(t, ageDir, "b.txt", id2)

	t.Setenv("XDG_CONFIG_HOME", xdg)

	ids, err := ScanConfigDir()
	require.NoError(t, err)
	require.Len(t, ids, 2)
}

func TestScanConfigDirEmptyIsError(t *testing.T) {
	xdg := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(xdg, "age"), 0o755))
	t.Setenv("XDG_CONFIG_HOME", xdg)

	_, err := ScanConfigDir()
	require.Error(t, err)
}
