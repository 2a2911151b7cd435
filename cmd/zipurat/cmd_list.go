package main

import (
	"fmt"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/JanNeuendorf/zipurat/archive/index"
)

func newListCmd() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "list the entries under a path (defaults to the archive root)",
		ArgsUsage: "<archive-path-or-sftp-url> [prefix]",
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

			prefix := pathArg(c, 1, "")
			children, err := r.Index().GetDirectChildren(prefix)
			if err != nil {
				return err
			}

			names := make([]index.RelPath, 0, len(children))
			for p := range children {
				names = append(names, p)
			}
			sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

			for _, p := range names {
				suffix := ""
				if r.Index().IsDir(p) {
					suffix = "/"
				}
				fmt.Println(p.Basename() + suffix)
			}
			return nil
		},
	}
}
