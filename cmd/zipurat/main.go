// Command zipurat builds, inspects, and mounts content-addressed,
// encrypted, compressed directory-tree archives.
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:        "zipurat",
		Usage:       "create, inspect, restore, and mount encrypted archives",
		Version:     version,
		Description: "zipurat packs a directory tree into a single content-addressed, age-encrypted, zstd-compressed archive with random-access retrieval.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				log.SetLevel(log.DebugLevel)
			}
			log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
			return nil
		},
		Commands: []*cli.Command{
			newCreateCmd(),
			newListCmd(),
			newCatCmd(),
			newFindCmd(),
			newRestoreCmd(),
			newDuCmd(),
			newInfoCmd(),
			newMountCmd(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
