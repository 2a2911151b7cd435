package main

import (
	"github.com/urfave/cli/v2"

	"github.com/JanNeuendorf/zipurat/archive/index"
	"github.com/JanNeuendorf/zipurat/archive/restore"
	"github.com/JanNeuendorf/zipurat/archive/zerr"
)

func newRestoreCmd() *cli.Command {
	return &cli.Command{
		Name:      "restore",
		Usage:     "extract a file or directory from the archive to the local filesystem",
		ArgsUsage: "<archive-path-or-sftp-url> <destination>",
		Flags: []cli.Flag{
			identityFlag,
			&cli.StringFlag{
				Name:  "from",
				Usage: "archive path to restore (defaults to the archive root)",
			},
			&cli.BoolFlag{
				Name:    "trust-hashes",
				Aliases: []string{"t"},
				Usage:   "skip files whose local content already matches the stored digest",
			},
		},
		Action: func(c *cli.Context) error {
			locator, err := archiveLocatorArg(c)
			if err != nil {
				return err
			}
			if c.Args().Len() < 2 {
				return zerr.New(zerr.NotFound, "missing destination argument")
			}

			r, err := openArchive(c, locator)
			if err != nil {
				return err
			}
			defer r.Close()

			from := index.Clean(c.String("from"))
			dest := c.Args().Get(1)

			return restore.Restore(r, from, dest, c.Bool("trust-hashes"))
		},
	}
}
