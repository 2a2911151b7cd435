package vfs

import "github.com/JanNeuendorf/zipurat/archive/index"

// rootInode is the fixed inode of the archive root directory.
const rootInode uint64 = 1

// inodeTable is a bijective inode<->path mapping. No third-party
// bimap library appears anywhere in the reference corpus this module
// was built from, so it is implemented here as two plain maps kept in
// sync (see DESIGN.md for the justification).
type inodeTable struct {
	pathToIno map[index.RelPath]uint64
	inoToPath map[uint64]index.RelPath
	next      uint64
}

func newInodeTable() *inodeTable {
	t := &inodeTable{
		pathToIno: make(map[index.RelPath]uint64),
		inoToPath: make(map[uint64]index.RelPath),
		next:      rootInode,
	}
	t.assign(index.RelPath(""))
	return t
}

// assign allocates the next sequential inode for p if it does not
// already have one, and returns p's inode either way.
func (t *inodeTable) assign(p index.RelPath) uint64 {
	if ino, ok := t.pathToIno[p]; ok {
		return ino
	}
	ino := t.next
	t.next++
	t.pathToIno[p] = ino
	t.inoToPath[ino] = p
	return ino
}

// assignWithAncestors allocates inodes for p and every ancestor of p
// that does not already have one.
func (t *inodeTable) assignWithAncestors(p index.RelPath) {
	t.assign(p)
	for {
		parent, ok := p.Parent()
		if !ok {
			return
		}
		if _, seen := t.pathToIno[parent]; seen {
			return
		}
		t.assign(parent)
		p = parent
	}
}

func (t *inodeTable) pathForIno(ino uint64) (index.RelPath, bool) {
	p, ok := t.inoToPath[ino]
	return p, ok
}

func (t *inodeTable) inoForPath(p index.RelPath) (uint64, bool) {
	ino, ok := t.pathToIno[p]
	return ino, ok
}

// buildInodeTable assigns sequential inodes to every file and empty
// directory path in idx (plus every ancestor), with the root fixed at
// inode 1. Iteration order across files/empty-dirs does not affect
// correctness, only which numeric inode a given path receives.
func buildInodeTable(idx *index.Index) *inodeTable {
	t := newInodeTable()

	for p := range idx.Mapping {
		t.assignWithAncestors(p)
	}
	for _, p := range idx.EmptyDirs {
		t.assignWithAncestors(p)
	}

	return t
}
