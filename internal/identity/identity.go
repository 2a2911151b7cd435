// Package identity loads age identities and recipients for the
// archive core, keeping the concrete age types behind a couple of
// domain aliases so core signatures read in terms of "recipient" and
// "identity" rather than a specific crypto library.
package identity

import (
	"os"
	"path/filepath"

	"filippo.io/age"

	"github.com/JanNeuendorf/zipurat/archive/zerr"
)

// Recipient encrypts; see age.Recipient.
type Recipient = age.Recipient

// Identity decrypts; see age.Identity.
type Identity = age.Identity

// LoadRecipients parses the recipients derivable from an identity file
// at path (every age identity also yields its recipient).
func LoadRecipients(path string) ([]Recipient, error) {
	f, err := os.Open(path) // #nosec
	if err != nil {
		return nil, zerr.Wrap(zerr.IoError, "open identity file", err)
	}
	defer f.Close()

	ids, err := age.ParseIdentities(f)
	if err != nil {
		return nil, zerr.Wrap(zerr.CryptoError, "parse identities", err)
	}

	recipients := make([]Recipient, 0, len(ids))
	for _, id := range ids {
		x25519, ok := id.(*age.X25519Identity)
		if !ok {
			continue
		}
		recipients = append(recipients, x25519.Recipient())
	}
	if len(recipients) == 0 {
		return nil, zerr.New(zerr.NotFound, "no recipients derivable from "+path)
	}
	return recipients, nil
}

// LoadIdentities parses every identity in the file at path.
func LoadIdentities(path string) ([]Identity, error) {
	f, err := os.Open(path) // #nosec
	if err != nil {
		return nil, zerr.Wrap(zerr.IoError, "open identity file", err)
	}
	defer f.Close()

	ids, err := age.ParseIdentities(f)
	if err != nil {
		return nil, zerr.Wrap(zerr.CryptoError, "parse identities", err)
	}
	return ids, nil
}

// ScanConfigDir aggregates every parseable identity file under
// <config>/age/ (XDG_CONFIG_HOME, or os.UserConfigDir() as fallback).
// Used when no identity path is supplied for a read operation. An
// empty aggregate result is a zerr.NotFound error.
func ScanConfigDir() ([]Identity, error) {
	dir, err := ageConfigDir()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, zerr.Wrap(zerr.NotFound, "read age config dir", err)
	}

	var all []Identity
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ids, err := LoadIdentities(filepath.Join(dir, entry.Name()))
		if err != nil {
			// Skip unparseable files; only the aggregate emptiness is
			// an error.
			continue
		}
		all = append(all, ids...)
	}

	if len(all) == 0 {
		return nil, zerr.New(zerr.NotFound, "no parseable identity files under "+dir)
	}
	return all, nil
}

func ageConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "age"), nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", zerr.Wrap(zerr.IoError, "resolve user config dir", err)
	}
	return filepath.Join(base, "age"), nil
}

