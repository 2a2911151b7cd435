package main

import (
	"github.com/urfave/cli/v2"

	"github.com/JanNeuendorf/zipurat/archive/index"
	"github.com/JanNeuendorf/zipurat/archive/reader"
	"github.com/JanNeuendorf/zipurat/archive/stream"
	"github.com/JanNeuendorf/zipurat/internal/identity"
)

var identityFlag = &cli.StringSliceFlag{
	Name:    "identity",
	Aliases: []string{"i"},
	Usage:   "age identity file (repeatable); defaults to scanning the age config directory",
}

var recipientsFlag = &cli.StringSliceFlag{
	Name:     "recipient-file",
	Aliases:  []string{"r"},
	Usage:    "age identity file whose recipients to encrypt for (repeatable, required)",
	Required: true,
}

var levelFlag = &cli.IntFlag{
	Name:    "level",
	Aliases: []string{"c"},
	Usage:   "compression level (1 fastest .. 22 smallest)",
	Value:   6,
}

func loadIdentities(paths []string) ([]identity.Identity, error) {
	if len(paths) == 0 {
		return identity.ScanConfigDir()
	}

	var all []identity.Identity
	for _, p := range paths {
		ids, err := identity.LoadIdentities(p)
		if err != nil {
			return nil, err
		}
		all = append(all, ids...)
	}
	return all, nil
}

func loadRecipients(paths []string) ([]identity.Recipient, error) {
	var all []identity.Recipient
	for _, p := range paths {
		rs, err := identity.LoadRecipients(p)
		if err != nil {
			return nil, err
		}
		all = append(all, rs...)
	}
	return all, nil
}

// openArchive opens locator read-only and parses its index, using the
// identity files named by --identity (or the age config directory
// fallback when none are given).
func openArchive(c *cli.Context, locator string) (*reader.Reader, error) {
	ids, err := loadIdentities(c.StringSlice("identity"))
	if err != nil {
		return nil, err
	}

	s, err := stream.OpenRead(locator)
	if err != nil {
		return nil, err
	}

	r, err := reader.Open(s, ids)
	if err != nil {
		s.Close()
		return nil, err
	}
	return r, nil
}

func archiveLocatorArg(c *cli.Context) (string, error) {
	locator := c.Args().First()
	if locator == "" {
		return "", cli.Exit("missing archive path/URL argument", 1)
	}
	return locator, nil
}

func pathArg(c *cli.Context, idx int, def string) index.RelPath {
	if c.Args().Len() <= idx {
		return index.Clean(def)
	}
	return index.Clean(c.Args().Get(idx))
}
