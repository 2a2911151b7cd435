package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

func newDuCmd() *cli.Command {
	return &cli.Command{
		Name:      "du",
		Usage:     "report the decompressed size of a path (defaults to the archive root)",
		ArgsUsage: "<archive-path-or-sftp-url> [path]",
		Flags: []cli.Flag{
			identityFlag,
			&cli.BoolFlag{
				Name:    "human",
				Aliases: []string{"h"},
				Usage:   "print a human-readable size",
			},
		},
		Action: func(c *cli.Context) error {
			locator, err := archiveLocatorArg(c)
			if err != nil {
				return err
			}

			r, err := openArchive(c, locator)
			if err != nil {
				return err
			}
			defer r.Close()

			path := pathArg(c, 1, "")
			size, err := r.Index().Du(path)
			if err != nil {
				return err
			}

			if c.Bool("human") {
				fmt.Println(humanize.Bytes(size))
			} else {
				fmt.Println(size)
			}
			return nil
		},
	}
}
