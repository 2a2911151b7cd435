// Package index implements the in-memory archive index: the trailing,
// self-describing record mapping archive paths to chunks, and the
// listing/search/du operations the rest of the core and the CLI build
// on.
package index

import (
	"io"
	"strings"

	"github.com/JanNeuendorf/zipurat/archive/wire"
	"github.com/JanNeuendorf/zipurat/archive/zerr"
)

// Magic is the fixed 64-bit constant framing the archive at both ends
// and stored as Index.MagicNumber.
const Magic uint64 = 0xA9A98D26AA1F3FDD

// ChunkRef locates a chunk's encrypted+compressed byte range within the
// archive.
type ChunkRef struct {
	Offset uint64
	Length uint64
}

// Index is the pure in-memory model described in spec.md §3. It is
// built once (by the builder) and is immutable thereafter; every
// operation below is a read over its maps.
type Index struct {
	MagicNumber uint64
	// Hashes maps a canonical chunk offset to its content digest.
	Hashes map[uint64][32]byte
	// Sizes maps a canonical chunk offset to its uncompressed length.
	Sizes map[uint64]uint64
	// Mapping maps every archived file path to its chunk reference.
	Mapping map[RelPath]ChunkRef
	// EmptyDirs lists directories that contain no files.
	EmptyDirs []RelPath
}

// New returns an empty Index carrying magic.
func New(magic uint64) *Index {
	return &Index{
		MagicNumber: magic,
		Hashes:      make(map[uint64][32]byte),
		Sizes:       make(map[uint64]uint64),
		Mapping:     make(map[RelPath]ChunkRef),
	}
}

// Encode serializes the Index in the canonical wire order: (a)
// hash-key offsets paired with their chunk lengths, (b) digests, (c)
// sizes, (d) mapping values, (e) mapping keys, (f) empty dirs, (g)
// magic number.
func (idx *Index) Encode(w io.Writer) error {
	offsets := make([]uint64, 0, len(idx.Hashes))
	for off := range idx.Hashes {
		offsets = append(offsets, off)
	}

	pairs := make([]wire.U64Pair, 0, len(offsets))
	digests := make([][32]byte, 0, len(offsets))
	sizes := make([]uint64, 0, len(offsets))

	// The chunk length for a given offset is not stored directly in
	// Hashes/Sizes; it is recovered from any Mapping entry that refers
	// to that offset (they all agree per invariant 3: chunks are
	// disjoint, so one offset maps to exactly one length).
	lengthByOffset := make(map[uint64]uint64, len(offsets))
	for _, ref := range idx.Mapping {
		lengthByOffset[ref.Offset] = ref.Length
	}

	for _, off := range offsets {
		pairs = append(pairs, wire.U64Pair{A: off, B: lengthByOffset[off]})
		digests = append(digests, idx.Hashes[off])
		sizes = append(sizes, idx.Sizes[off])
	}

	if err := wire.WritePairSeq(w, pairs); err != nil {
		return err
	}
	if err := wire.WriteDigestSeq(w, digests); err != nil {
		return err
	}
	if err := wire.WriteU64Seq(w, sizes); err != nil {
		return err
	}

	mappingKeys := make([]RelPath, 0, len(idx.Mapping))
	for k := range idx.Mapping {
		mappingKeys = append(mappingKeys, k)
	}
	mappingValues := make([]wire.U64Pair, 0, len(mappingKeys))
	mappingPaths := make([]string, 0, len(mappingKeys))
	for _, k := range mappingKeys {
		ref := idx.Mapping[k]
		mappingValues = append(mappingValues, wire.U64Pair{A: ref.Offset, B: ref.Length})
		mappingPaths = append(mappingPaths, string(k))
	}
	if err := wire.WritePairSeq(w, mappingValues); err != nil {
		return err
	}
	if err := wire.WritePathSeq(w, mappingPaths); err != nil {
		return err
	}

	emptyDirs := make([]string, 0, len(idx.EmptyDirs))
	for _, d := range idx.EmptyDirs {
		emptyDirs = append(emptyDirs, string(d))
	}
	if err := wire.WritePathSeq(w, emptyDirs); err != nil {
		return err
	}

	return wire.WriteU64(w, idx.MagicNumber)
}

// Decode deserializes an Index in the canonical wire order, rejecting
// malformed data per spec.md §4.B: the (offsets,lengths)/digests/sizes
// triple must share a length, as must the mapping values/keys pair.
func Decode(r io.Reader) (*Index, error) {
	pairs, err := wire.ReadPairSeq(r)
	if err != nil {
		return nil, err
	}
	digests, err := wire.ReadDigestSeq(r)
	if err != nil {
		return nil, err
	}
	sizes, err := wire.ReadU64Seq(r)
	if err != nil {
		return nil, err
	}
	if len(pairs) != len(digests) || len(digests) != len(sizes) {
		return nil, zerr.New(zerr.FormatError, "malformed index: hash/size sequences disagree in length")
	}

	mappingValues, err := wire.ReadPairSeq(r)
	if err != nil {
		return nil, err
	}
	mappingPaths, err := wire.ReadPathSeq(r)
	if err != nil {
		return nil, err
	}
	if len(mappingValues) != len(mappingPaths) {
		return nil, zerr.New(zerr.FormatError, "malformed index: mapping keys/values disagree in length")
	}

	emptyDirPaths, err := wire.ReadPathSeq(r)
	if err != nil {
		return nil, err
	}

	magic, err := wire.ReadU64(r)
	if err != nil {
		return nil, err
	}

	idx := New(magic)
	for i, p := range pairs {
		idx.Hashes[p.A] = digests[i]
		idx.Sizes[p.A] = sizes[i]
	}
	for i, p := range mappingPaths {
		idx.Mapping[RelPath(p)] = ChunkRef{Offset: mappingValues[i].A, Length: mappingValues[i].B}
	}
	for _, p := range emptyDirPaths {
		idx.EmptyDirs = append(idx.EmptyDirs, RelPath(p))
	}

	return idx, nil
}

// IsFile reports whether p is an archived file path.
func (idx *Index) IsFile(p RelPath) bool {
	_, ok := idx.Mapping[p]
	return ok
}

// IsDir reports whether p denotes a directory: not a file, and either
// some mapping key lies strictly under it or some empty-dir entry
// equals it or lies under it. The root path ("") always denotes the
// root directory.
func (idx *Index) IsDir(p RelPath) bool {
	if p.IsRoot() {
		return true
	}
	if idx.IsFile(p) {
		return false
	}
	for k := range idx.Mapping {
		if k.HasPrefixDir(p) {
			return true
		}
	}
	for _, d := range idx.EmptyDirs {
		if d.HasPrefixDirOrEqual(p) {
			return true
		}
	}
	return false
}

// Du computes cumulative uncompressed size for a file or directory
// path. An unknown path is a zerr.NotFound error.
func (idx *Index) Du(p RelPath) (uint64, error) {
	if idx.IsFile(p) {
		ref := idx.Mapping[p]
		size, ok := idx.Sizes[ref.Offset]
		if !ok {
			return 0, zerr.New(zerr.NotFound, "size not present for chunk offset")
		}
		return size, nil
	}
	if !idx.IsDir(p) {
		return 0, zerr.New(zerr.NotFound, "path not present in index: "+p.String())
	}

	var total uint64
	for q, ref := range idx.Mapping {
		if q.HasPrefixDir(p) {
			size, ok := idx.Sizes[ref.Offset]
			if !ok {
				return 0, zerr.New(zerr.NotFound, "size not present for chunk offset")
			}
			total += size
		}
	}
	return total, nil
}

// Subindex returns a view of the index rooted at subpath, with subpath
// stripped from every key. If subpath is a listed empty directory, an
// empty index (carrying the same magic) is returned. If subpath is
// neither a file prefix nor an empty dir, NotADirectory is returned.
func (idx *Index) Subindex(subpath RelPath) (*Index, error) {
	for _, d := range idx.EmptyDirs {
		if d == subpath {
			return New(idx.MagicNumber), nil
		}
	}
	if !idx.IsDir(subpath) {
		return nil, zerr.New(zerr.NotADirectory, subpath.String()+" is not a directory in index")
	}

	out := New(idx.MagicNumber)
	selected := make(map[uint64]bool)
	for k, ref := range idx.Mapping {
		if !k.HasPrefixDir(subpath) {
			continue
		}
		stripped := k.StripPrefix(subpath)
		out.Mapping[stripped] = ref
		selected[ref.Offset] = true
	}
	for _, d := range idx.EmptyDirs {
		if !d.HasPrefixDir(subpath) {
			continue
		}
		out.EmptyDirs = append(out.EmptyDirs, d.StripPrefix(subpath))
	}
	for off := range selected {
		if h, ok := idx.Hashes[off]; ok {
			out.Hashes[off] = h
		}
		if s, ok := idx.Sizes[off]; ok {
			out.Sizes[off] = s
		}
	}
	return out, nil
}

// GetDirectChildren returns the set of immediate child paths of p
// (files and empty directories alike), deduplicated.
func (idx *Index) GetDirectChildren(p RelPath) (map[RelPath]struct{}, error) {
	sub, err := idx.Subindex(p)
	if err != nil {
		return nil, err
	}

	children := make(map[RelPath]struct{})
	for file := range sub.Mapping {
		root := file.FirstComponent()
		children[p.Join(root)] = struct{}{}
	}
	for _, d := range sub.EmptyDirs {
		root := d.FirstComponent()
		children[p.Join(root)] = struct{}{}
	}
	return children, nil
}

// Search returns every path whose basename matches pattern
// case-insensitively (substring), plus the parent directory of every
// path whose parent's basename matches (the directory itself is
// inserted, not the child). Both Mapping keys and EmptyDirs are
// searched.
func (idx *Index) Search(pattern string) map[RelPath]struct{} {
	pattern = strings.ToLower(pattern)
	matches := make(map[RelPath]struct{})

	consider := func(c RelPath) {
		if strings.Contains(strings.ToLower(c.Basename()), pattern) {
			matches[c] = struct{}{}
		}
		if parent, ok := c.Parent(); ok {
			if strings.Contains(strings.ToLower(parent.Basename()), pattern) {
				matches[parent] = struct{}{}
			}
		}
	}

	for k := range idx.Mapping {
		consider(k)
	}
	for _, d := range idx.EmptyDirs {
		consider(d)
	}
	return matches
}
