package main

import (
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/JanNeuendorf/zipurat/archive/zerr"
)

func newCatCmd() *cli.Command {
	return &cli.Command{
		Name:      "cat",
		Aliases:   []string{"show"},
		Usage:     "stream a single file's content to stdout or a file, digest-verified",
		ArgsUsage: "<archive-path-or-sftp-url> <path>",
		Flags: []cli.Flag{
			identityFlag,
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write to this file instead of stdout",
			},
		},
		Action: func(c *cli.Context) error {
			locator, err := archiveLocatorArg(c)
			if err != nil {
				return err
			}
			if c.Args().Len() < 2 {
				return zerr.New(zerr.NotFound, "missing path argument")
			}

			r, err := openArchive(c, locator)
			if err != nil {
				return err
			}
			defer r.Close()

			path := pathArg(c, 1, "")

			var out io.Writer = os.Stdout
			if dest := c.String("output"); dest != "" {
				f, err := os.Create(dest) // #nosec
				if err != nil {
					return zerr.Wrap(zerr.IoError, "create output file", err)
				}
				defer f.Close()
				out = f
			}

			return r.StreamFile(path, out, true)
		},
	}
}
