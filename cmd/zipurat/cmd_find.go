package main

import (
	"fmt"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/JanNeuendorf/zipurat/archive/index"
	"github.com/JanNeuendorf/zipurat/archive/zerr"
)

func newFindCmd() *cli.Command {
	return &cli.Command{
		Name:      "find",
		Usage:     "search paths by basename substring, case-insensitive",
		ArgsUsage: "<archive-path-or-sftp-url> <name>",
		Flags:     []cli.Flag{identityFlag},
		Action: func(c *cli.Context) error {
			locator, err := archiveLocatorArg(c)
			if err != nil {
				return err
			}
			if c.Args().Len() < 2 {
				return zerr.New(zerr.NotFound, "missing name argument")
			}

			r, err := openArchive(c, locator)
			if err != nil {
				return err
			}
			defer r.Close()

			matches := r.Index().Search(c.Args().Get(1))

			names := make([]index.RelPath, 0, len(matches))
			for p := range matches {
				names = append(names, p)
			}
			sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

			for _, p := range names {
				fmt.Println(p.String())
			}
			return nil
		},
	}
}
