package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/JanNeuendorf/zipurat/archive/index"
)

func newInfoCmd() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "print summary statistics about the archive",
		ArgsUsage: "<archive-path-or-sftp-url>",
		Flags:     []cli.Flag{identityFlag},
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

			idx := r.Index()
			total, err := idx.Du(index.RelPath(""))
			if err != nil {
				return err
			}

			fmt.Printf("magic:          0x%X\n", idx.MagicNumber)
			fmt.Printf("files:          %d\n", len(idx.Mapping))
			fmt.Printf("distinct chunks: %d\n", len(idx.Hashes))
			fmt.Printf("empty dirs:     %d\n", len(idx.EmptyDirs))
			fmt.Printf("total size:     %s (%d bytes)\n", humanize.Bytes(total), total)
			return nil
		},
	}
}
