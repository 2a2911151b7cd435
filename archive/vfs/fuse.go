//go:build !windows

package vfs

import (
	"context"
	"os/exec"
	"syscall"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	e "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/JanNeuendorf/zipurat/archive/zerr"
)

// FS is the bazil.org/fuse binding over an Engine: it translates
// Lookup/GetAttr/ReadDir/Read into fs.Node calls and maps every engine
// error to ENOENT, per the coarse error-mapping policy (no archive is
// ever partially mounted; any missing path just isn't there).
type FS struct {
	engine *Engine
}

// NewFS wraps engine as a bazil.org/fuse filesystem.
func NewFS(engine *Engine) *FS {
	return &FS{engine: engine}
}

// Root implements fs.FS.
func (f *FS) Root() (fs.Node, error) {
	attr, err := f.engine.GetAttr(f.engine.RootIno())
	if err != nil {
		return nil, syscall.ENOENT
	}
	return &node{fs: f, attr: attr}, nil
}

// node implements fs.Node, fs.NodeStringLookuper, fs.HandleReadDirAller,
// and fs.HandleReader uniformly for both files and directories; IsDir
// in the cached Attr picks the behavior.
type node struct {
	fs   *FS
	attr Attr
}

var (
	_ fs.Node               = (*node)(nil)
	_ fs.NodeStringLookuper = (*node)(nil)
	_ fs.HandleReadDirAller = (*node)(nil)
	_ fs.HandleReader       = (*node)(nil)
)

func (n *node) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = n.attr.Ino
	a.Size = n.attr.Size
	a.Nlink = n.attr.Nlink
	a.Uid = n.attr.UID
	a.Gid = n.attr.GID
	a.Valid = time.Second
	a.Atime = time.Unix(0, 0)
	a.Mtime = time.Unix(0, 0)
	a.Ctime = time.Unix(0, 0)
	a.BlockSize = 512
	if n.attr.IsDir {
		a.Mode = 0o755 | 0o40000 // os.ModeDir
	} else {
		a.Mode = 0o644
		a.Blocks = (a.Size + 511) / 512
	}
	return nil
}

func (n *node) Lookup(ctx context.Context, name string) (fs.Node, error) {
	attr, err := n.fs.engine.Lookup(n.attr.Ino, name)
	if err != nil {
		return nil, mapError(err)
	}
	return &node{fs: n.fs, attr: attr}, nil
}

func (n *node) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	entries, err := n.fs.engine.ReadDir(n.attr.Ino)
	if err != nil {
		return nil, mapError(err)
	}

	out := make([]fuse.Dirent, 0, len(entries))
	for _, ent := range entries {
		dt := fuse.DT_File
		if ent.IsDir {
			dt = fuse.DT_Dir
		}
		out = append(out, fuse.Dirent{Inode: ent.Ino, Name: ent.Name, Type: dt})
	}
	return out, nil
}

func (n *node) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	data, err := n.fs.engine.Read(n.attr.Ino, req.Offset, req.Size)
	if err != nil {
		return mapError(err)
	}
	resp.Data = data
	return nil
}

// mapError coarsens every engine error down to ENOENT: the archive is
// immutable and fully indexed up front, so the only failure a caller
// can usefully distinguish is "not there".
func mapError(err error) error {
	if zerr.Is(err, zerr.NotFound) {
		return syscall.ENOENT
	}
	log.Warnf("vfs: unexpected error surfaced as ENOENT: %v", err)
	return syscall.ENOENT
}

// Mount is a live FUSE mount of an archive, modeled on the
// mount/unmount retry dance used elsewhere for bazil.org/fuse mounts
// in this codebase.
type Mount struct {
	Dir    string
	conn   *fuse.Conn
	server *fs.Server
	done   chan struct{}
	errc   chan error
}

// MountReadOnly mounts engine's filesystem at mountpoint and serves it
// in the background until Close is called.
func MountReadOnly(engine *Engine, mountpoint string) (*Mount, error) {
	conn, err := fuse.Mount(
		mountpoint,
		fuse.FSName("zipurat"),
		fuse.Subtype("zipurat"),
		fuse.ReadOnly(),
	)
	if err != nil {
		return nil, e.Wrapf(err, "fuse mount %s", mountpoint)
	}

	m := &Mount{
		Dir:    mountpoint,
		conn:   conn,
		server: fs.New(conn, nil),
		done:   make(chan struct{}),
		errc:   make(chan error, 1),
	}

	go func() {
		defer close(m.done)
		log.Debugf("serving archive fuse mount at %v", mountpoint)
		m.errc <- m.server.Serve(NewFS(engine))
		log.Debugf("stopped serving archive fuse mount at %v", mountpoint)
	}()

	select {
	case <-conn.Ready:
		if err := conn.MountError; err != nil {
			return nil, err
		}
	case err := <-m.errc:
		if err != nil {
			return nil, err
		}
		return nil, e.New("fuse serve exited early")
	}

	return m, nil
}

func lazyUnmount(dir string) error {
	cmd := exec.Command("fusermount", "-u", "-z", dir) // #nosec
	return cmd.Run()
}

// Close unmounts the filesystem, retrying gracefully before falling
// back to a lazy unmount.
func (m *Mount) Close() error {
	couldUnmount := false
	for tries := 0; tries < 10; tries++ {
		if err := fuse.Unmount(m.Dir); err != nil {
			log.Debugf("graceful unmount attempt failed: %v", err)
			time.Sleep(250 * time.Millisecond)
			continue
		}
		couldUnmount = true
		break
	}

	if !couldUnmount {
		log.Warn("could not gracefully unmount; attempting lazy unmount")
		if err := lazyUnmount(m.Dir); err != nil {
			log.Debugf("lazy unmount failed: %v", err)
		}
	}

	select {
	case err := <-m.errc:
		if err != nil {
			log.Warningf("fuse server returned an error: %v", err)
		}
	case <-time.After(5 * time.Second):
	}

	return m.conn.Close()
}
