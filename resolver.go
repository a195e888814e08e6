package sfs

import "strings"

// region identifies one directory's slot array on disk: either the root
// directory's fixed region, or a subdirectory's two-block chain.
type region struct {
	isRoot     bool
	firstBlock uint32 // subdirectory only
	n          int
}

// rootRegion returns the region describing the root directory.
func (fsys *FS) rootRegion() region {
	return region{isRoot: true, n: fsys.layout.RootN}
}

// subdirRegion returns the region for the subdirectory whose first block is
// firstBlock. Per spec.md §4.4, a subdirectory is exactly two linked
// blocks; resolving slot i requires following the chain when idx straddles
// the block boundary, which slotOffset below does lazily.
func (fsys *FS) subdirRegion(firstBlock uint32) region {
	return region{firstBlock: firstBlock, n: fsys.layout.DirN}
}

// slotOffset returns the absolute byte offset of slot index idx within r.
// For the root region this is direct arithmetic; for a subdirectory region
// this walks the two-block chain, since entries may straddle the block
// boundary. createSubdir (dirops.go) always allocates a subdirectory's two
// blocks adjacently, so the straddling case below is just linear
// arithmetic across the pair, the same as the non-straddling case.
func (fsys *FS) slotOffset(r region, idx int) (int64, error) {
	if r.isRoot {
		return fsys.layout.RootOff + int64(idx)*entrySize, nil
	}
	firstBlock := r.firstBlock
	byteOfs := int64(idx) * entrySize
	if byteOfs+entrySize <= BlockSize {
		return fsys.layout.blockOff(firstBlock) + byteOfs, nil
	}
	c, err := fsys.readCell(firstBlock)
	if err != nil {
		return 0, err
	}
	second, ok := c.next()
	if !ok {
		return 0, errNotFound.err()
	}
	return fsys.layout.blockOff(second) + (byteOfs - BlockSize), nil
}

// readSlot reads the raw entrySize-byte record at slot idx in region r.
func (fsys *FS) readSlot(r region, idx int) ([]byte, int64, error) {
	off, err := fsys.slotOffset(r, idx)
	if err != nil {
		return nil, 0, err
	}
	buf := make([]byte, entrySize)
	if err := fsys.dev.ReadAt(buf, off); err != nil {
		return nil, 0, err
	}
	return buf, off, nil
}

// writeSlot writes e to slot idx in region r.
func (fsys *FS) writeSlot(r region, idx int, e dirEntry) error {
	off, err := fsys.slotOffset(r, idx)
	if err != nil {
		return err
	}
	buf := make([]byte, entrySize)
	encodeEntry(buf, e)
	return fsys.dev.WriteAt(buf, off)
}

// resolved is the result of path resolution: the matched entry and the
// region+index of the slot it occupies (needed by callers that must
// rewrite the slot after a size/first_block change).
type resolved struct {
	entry  dirEntry
	region region
	index  int
	isRoot bool
}

// getEntry resolves a slash-separated absolute path to its entry and slot,
// grounded on the teacher's dir.follow_path/dir.find/dir.next (fat.go),
// simplified to single fixed-length byte compares (no SFN/LFN duality).
// Closes design note §9.3: it returns the instant the last component
// matches, with no post-loop fallback path.
func (fsys *FS) getEntry(path string) (resolved, error) {
	if path == "" || path[0] != '/' {
		return resolved{}, errInvalidArgument.err()
	}
	if path == "/" {
		return resolved{
			entry:  dirEntry{size: DirectoryFlag},
			isRoot: true,
		}, nil
	}
	comps := strings.Split(strings.Trim(path, "/"), "/")
	r := fsys.rootRegion()
	for ci, comp := range comps {
		last := ci == len(comps)-1
		idx, e, found, err := fsys.findByName(r, comp)
		if err != nil {
			return resolved{}, err
		}
		if !found {
			return resolved{}, errNotFound.err()
		}
		if last {
			return resolved{entry: e, region: r, index: idx}, nil
		}
		if !e.isDirectory() {
			return resolved{}, errNotADirectory.err()
		}
		r = fsys.subdirRegion(e.firstBlock)
	}
	// Unreachable: comps is never empty since path != "/" and Trim leaves
	// at least one non-empty component for well-formed callers.
	return resolved{}, errNotFound.err()
}

// findByName performs the linear scan spec.md §4.3/§4.4 describe: a slot
// matches iff its filename is non-empty and equal byte-for-byte to name.
func (fsys *FS) findByName(r region, name string) (int, dirEntry, bool, error) {
	for i := 0; i < r.n; i++ {
		raw, _, err := fsys.readSlot(r, i)
		if err != nil {
			return 0, dirEntry{}, false, err
		}
		if slotIsFree(raw) {
			continue
		}
		e := decodeEntry(raw)
		if e.filename() == name {
			return i, e, true, nil
		}
	}
	return 0, dirEntry{}, false, nil
}

// splitParent splits an absolute path into its parent directory path and
// final component name.
func splitParent(path string) (parent, name string, err error) {
	if path == "" || path[0] != '/' || path == "/" {
		return "", "", errInvalidArgument.err()
	}
	trimmed := strings.Trim(path, "/")
	i := strings.LastIndexByte(trimmed, '/')
	if i < 0 {
		return "/", trimmed, nil
	}
	return "/" + trimmed[:i], trimmed[i+1:], nil
}
