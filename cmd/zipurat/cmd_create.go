package main

import (
	"github.com/urfave/cli/v2"

	"github.com/JanNeuendorf/zipurat/archive/builder"
	"github.com/JanNeuendorf/zipurat/archive/stream"
)

func newCreateCmd() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "pack a directory tree into a new archive",
		ArgsUsage: "<archive-path-or-sftp-url>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "source",
				Usage:    "directory to archive",
				Required: true,
			},
			levelFlag,
			recipientsFlag,
		},
		Action: func(c *cli.Context) error {
			locator, err := archiveLocatorArg(c)
			if err != nil {
				return err
			}

			recipients, err := loadRecipients(c.StringSlice("recipient-file"))
			if err != nil {
				return err
			}

			dst, err := stream.OpenWrite(locator)
			if err != nil {
				return err
			}
			defer dst.Close()

			return builder.Build(c.String("source"), dst, recipients, c.Int("level"))
		},
	}
}
