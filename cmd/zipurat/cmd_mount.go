package main

import (
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/JanNeuendorf/zipurat/archive/vfs"
	"github.com/JanNeuendorf/zipurat/archive/zerr"
)

func newMountCmd() *cli.Command {
	return &cli.Command{
		Name:      "mount",
		Usage:     "mount the archive read-only as a FUSE filesystem until interrupted",
		ArgsUsage: "<archive-path-or-sftp-url> <mountpoint>",
		Flags:     []cli.Flag{identityFlag},
		Action: func(c *cli.Context) error {
			locator, err := archiveLocatorArg(c)
			if err != nil {
				return err
			}
			if c.Args().Len() < 2 {
				return zerr.New(zerr.NotFound, "missing mountpoint argument")
			}
			mountpoint := c.Args().Get(1)

			r, err := openArchive(c, locator)
			if err != nil {
				return err
			}
			defer r.Close()

			engine := vfs.NewEngine(r.Index(), r, vfs.Options{})

			mnt, err := vfs.MountReadOnly(engine, mountpoint)
			if err != nil {
				return err
			}

			log.Infof("mounted %s at %s (ctrl-c to unmount)", locator, mountpoint)

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			<-sig

			return mnt.Close()
		},
	}
}
