// Package vfs synthesizes a read-only POSIX-like inode/dentry tree
// from an archive index, with four bounded caches and a head-read
// fast path, independent of any particular FUSE binding (see fuse.go
// for the bazil.org/fuse glue).
package vfs

import (
	"bytes"
	"sort"

	"github.com/JanNeuendorf/zipurat/archive/index"
	"github.com/JanNeuendorf/zipurat/archive/reader"
	"github.com/JanNeuendorf/zipurat/archive/zerr"
)

// HeadBytes is the size of the head-cache fast path: a read at offset
// 0 smaller than this consults (and populates) the head cache instead
// of materializing the whole file.
const HeadBytes = 50_000

const (
	defaultOwnerUID = 501
	defaultOwnerGID = 20
)

// Attr is the subset of POSIX file attributes the archive can
// synthesize; timestamps are not preserved (spec Non-goals) and the
// FUSE binding reports them all as the Unix epoch.
type Attr struct {
	Ino   uint64
	Size  uint64
	IsDir bool
	Mode  uint32 // permission bits only (0o644 or 0o755)
	Nlink uint32
	UID   uint32
	GID   uint32
}

// DirEntry is one synthesized directory entry.
type DirEntry struct {
	Ino   uint64
	Name  string
	IsDir bool
}

// Options configures the bounded caches. Zero values fall back to
// sane defaults via NewEngine.
type Options struct {
	LookupCacheSize  int
	AttrCacheSize    int
	ListingCacheSize int
	ReadCacheMaxSize int64
	ReadCacheMaxFiles int
	UID, GID         uint32
}

func (o Options) withDefaults() Options {
	if o.LookupCacheSize <= 0 {
		o.LookupCacheSize = 4096
	}
	if o.AttrCacheSize <= 0 {
		o.AttrCacheSize = 4096
	}
	if o.ListingCacheSize <= 0 {
		o.ListingCacheSize = 1024
	}
	if o.ReadCacheMaxSize <= 0 {
		o.ReadCacheMaxSize = 64 * 1024 * 1024
	}
	if o.ReadCacheMaxFiles <= 0 {
		o.ReadCacheMaxFiles = 64
	}
	if o.UID == 0 {
		o.UID = defaultOwnerUID
	}
	if o.GID == 0 {
		o.GID = defaultOwnerGID
	}
	return o
}

type lookupKey struct {
	parentIno uint64
	name      string
}

// Engine is the FUSE-independent virtual filesystem core: inode
// assignment, attribute synthesis, and the four bounded caches plus
// the head cache, all driven off an immutable archive index.
type Engine struct {
	idx    *index.Index
	rdr    *reader.Reader
	inodes *inodeTable

	lookupCache  *fifoCache[lookupKey, Attr]
	attrCache    *fifoCache[uint64, Attr]
	listingCache *fifoCache[uint64, []DirEntry]
	readCache    *readCache
	headCache    *fifoCache[uint64, []byte]

	uid, gid uint32
}

// NewEngine builds an Engine over idx, reading chunk content through
// rdr when caches miss.
func NewEngine(idx *index.Index, rdr *reader.Reader, opts Options) *Engine {
	opts = opts.withDefaults()

	return &Engine{
		idx:          idx,
		rdr:          rdr,
		inodes:       buildInodeTable(idx),
		lookupCache:  newFIFOCache[lookupKey, Attr](opts.LookupCacheSize),
		attrCache:    newFIFOCache[uint64, Attr](opts.AttrCacheSize),
		listingCache: newFIFOCache[uint64, []DirEntry](opts.ListingCacheSize),
		readCache:    newReadCache(opts.ReadCacheMaxSize, opts.ReadCacheMaxFiles),
		headCache:    newFIFOCache[uint64, []byte](0),
		uid:          opts.UID,
		gid:          opts.GID,
	}
}

// RootIno returns the fixed root inode (1).
func (e *Engine) RootIno() uint64 {
	return rootInode
}

func (e *Engine) attrForPath(p index.RelPath) (Attr, error) {
	if e.idx.IsFile(p) {
		return e.fileAttr(p)
	}
	if e.idx.IsDir(p) {
		return e.dirAttr(p)
	}
	return Attr{}, zerr.New(zerr.NotFound, "path not present in index: "+p.String())
}

func (e *Engine) fileAttr(p index.RelPath) (Attr, error) {
	ref, ok := e.idx.Mapping[p]
	if !ok {
		return Attr{}, zerr.New(zerr.NotFound, "path not present in index: "+p.String())
	}
	size, ok := e.idx.Sizes[ref.Offset]
	if !ok {
		return Attr{}, zerr.New(zerr.NotFound, "size not present for chunk offset")
	}
	ino, ok := e.inodes.inoForPath(p)
	if !ok {
		return Attr{}, zerr.New(zerr.NotFound, "no inode assigned for path: "+p.String())
	}
	return Attr{
		Ino:   ino,
		Size:  size,
		IsDir: false,
		Mode:  0o644,
		Nlink: 1,
		UID:   e.uid,
		GID:   e.gid,
	}, nil
}

func (e *Engine) dirAttr(p index.RelPath) (Attr, error) {
	ino, ok := e.inodes.inoForPath(p)
	if !ok {
		return Attr{}, zerr.New(zerr.NotFound, "no inode assigned for path: "+p.String())
	}
	children, err := e.idx.GetDirectChildren(p)
	if err != nil {
		return Attr{}, err
	}

	nlink := len(children) + 2
	if p.IsRoot() {
		nlink = len(children) + 1
	}

	return Attr{
		Ino:   ino,
		Size:  0,
		IsDir: true,
		Mode:  0o755,
		Nlink: uint32(nlink),
		UID:   e.uid,
		GID:   e.gid,
	}, nil
}

// Lookup resolves name within parentIno, returning the child's attr.
func (e *Engine) Lookup(parentIno uint64, name string) (Attr, error) {
	key := lookupKey{parentIno: parentIno, name: name}
	if attr, ok := e.lookupCache.Get(key); ok {
		return attr, nil
	}

	parentPath, ok := e.inodes.pathForIno(parentIno)
	if !ok {
		return Attr{}, zerr.New(zerr.NotFound, "unknown parent inode")
	}

	childPath := parentPath.Join(name)
	attr, err := e.attrForPath(childPath)
	if err != nil {
		return Attr{}, err
	}

	e.lookupCache.Put(key, attr)
	e.attrCache.Put(attr.Ino, attr)
	return attr, nil
}

// GetAttr returns ino's synthesized attributes.
func (e *Engine) GetAttr(ino uint64) (Attr, error) {
	if attr, ok := e.attrCache.Get(ino); ok {
		return attr, nil
	}

	path, ok := e.inodes.pathForIno(ino)
	if !ok {
		return Attr{}, zerr.New(zerr.NotFound, "unknown inode")
	}

	attr, err := e.attrForPath(path)
	if err != nil {
		return Attr{}, err
	}

	e.attrCache.Put(ino, attr)
	return attr, nil
}

func (e *Engine) parentInoOf(path index.RelPath, ino uint64) uint64 {
	parent, ok := path.Parent()
	if !ok {
		return ino
	}
	parentIno, ok := e.inodes.inoForPath(parent)
	if !ok {
		return ino
	}
	return parentIno
}

// ReadDir synthesizes ".", "..", and the sorted direct children of
// ino.
func (e *Engine) ReadDir(ino uint64) ([]DirEntry, error) {
	if entries, ok := e.listingCache.Get(ino); ok {
		return entries, nil
	}

	path, ok := e.inodes.pathForIno(ino)
	if !ok {
		return nil, zerr.New(zerr.NotFound, "unknown inode")
	}
	if !e.idx.IsDir(path) {
		return nil, zerr.New(zerr.NotFound, "not a directory: "+path.String())
	}

	parentIno := e.parentInoOf(path, ino)
	children, err := e.idx.GetDirectChildren(path)
	if err != nil {
		return nil, err
	}

	names := make([]index.RelPath, 0, len(children))
	for c := range children {
		names = append(names, c)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	entries := []DirEntry{
		{Ino: ino, Name: ".", IsDir: true},
		{Ino: parentIno, Name: "..", IsDir: true},
	}
	for _, c := range names {
		childIno, ok := e.inodes.inoForPath(c)
		if !ok {
			continue
		}
		entries = append(entries, DirEntry{
			Ino:   childIno,
			Name:  c.Basename(),
			IsDir: e.idx.IsDir(c),
		})
	}

	e.listingCache.Put(ino, entries)
	return entries, nil
}

// Read serves size bytes of ino starting at offset, clamped to the
// file's length. Reads at offset 0 smaller than HeadBytes consult the
// head cache; all other reads consult the budgeted full-body cache.
func (e *Engine) Read(ino uint64, offset int64, size int) ([]byte, error) {
	path, ok := e.inodes.pathForIno(ino)
	if !ok {
		return nil, zerr.New(zerr.NotFound, "unknown inode")
	}
	ref, ok := e.idx.Mapping[path]
	if !ok {
		return nil, zerr.New(zerr.NotFound, "not a file: "+path.String())
	}
	fileSize, ok := e.idx.Sizes[ref.Offset]
	if !ok {
		return nil, zerr.New(zerr.NotFound, "size not present for chunk offset")
	}

	if offset < 0 || uint64(offset) >= fileSize {
		return []byte{}, nil
	}
	readSize := int64(size)
	if remaining := int64(fileSize) - offset; readSize > remaining {
		readSize = remaining
	}

	if offset == 0 && int64(size) < HeadBytes {
		data, err := e.readHead(ino, path)
		if err != nil {
			return nil, err
		}
		return sliceClamped(data, offset, readSize), nil
	}

	data, err := e.readFull(ino, path)
	if err != nil {
		return nil, err
	}
	return sliceClamped(data, offset, readSize), nil
}

func (e *Engine) readHead(ino uint64, path index.RelPath) ([]byte, error) {
	if data, ok := e.headCache.Get(ino); ok {
		return data, nil
	}

	var buf bytes.Buffer
	if err := e.rdr.StreamHead(path, &buf, HeadBytes); err != nil {
		return nil, err
	}

	data := buf.Bytes()
	e.headCache.Put(ino, data)
	return data, nil
}

func (e *Engine) readFull(ino uint64, path index.RelPath) ([]byte, error) {
	if data, ok := e.readCache.Get(ino); ok {
		return data, nil
	}

	var buf bytes.Buffer
	if err := e.rdr.StreamFile(path, &buf, true); err != nil {
		return nil, err
	}

	data := buf.Bytes()
	e.readCache.Put(ino, data)
	return data, nil
}

func sliceClamped(data []byte, offset, size int64) []byte {
	if offset >= int64(len(data)) {
		return []byte{}
	}
	end := offset + size
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return data[offset:end]
}
