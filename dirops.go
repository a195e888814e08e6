package sfs

// findFreeEntry scans region r for the first slot whose filename is empty,
// grounded on the teacher's dir.alloc (fat.go) simplified to a single-slot
// search (SFS entries never span multiple contiguous slots the way a long
// filename's auxiliary entries do).
func (fsys *FS) findFreeEntry(r region) (int, error) {
	for i := 0; i < r.n; i++ {
		raw, _, err := fsys.readSlot(r, i)
		if err != nil {
			return 0, err
		}
		if slotIsFree(raw) {
			return i, nil
		}
	}
	return 0, errOutOfSpace.err()
}

// checkDirEmpty reports NOT_EMPTY if any slot in r is occupied.
func (fsys *FS) checkDirEmpty(r region) error {
	for i := 0; i < r.n; i++ {
		raw, _, err := fsys.readSlot(r, i)
		if err != nil {
			return err
		}
		if !slotIsFree(raw) {
			return errNotEmpty.err()
		}
	}
	return nil
}

// initDirRegion zero-initializes every slot of a freshly allocated
// subdirectory region: empty filename, first_block EMPTY.
func (fsys *FS) initDirRegion(r region) error {
	free := freeEntry()
	for i := 0; i < r.n; i++ {
		if err := fsys.writeSlot(r, i, free); err != nil {
			return err
		}
	}
	return nil
}

// createSubdir allocates the two-block chain and zero-initialized entry
// array for a new subdirectory, then writes its entry into the parent
// slot. Grounded on the teacher's dir.register (fat.go). Closes design
// note §9.1: both blocks are obtained from reserveAdjacentPair before
// either BAT cell is written, so a shortfall on the second block never
// leaves the first one allocated-but-orphaned. The pair must be adjacent,
// not just distinct, because resolver.go's slotOffset addresses a
// subdirectory's two blocks with flat linear arithmetic across the pair.
func (fsys *FS) createSubdir(parent region, slot int, name string) error {
	b1, b2, err := fsys.reserveAdjacentPair()
	if err != nil {
		return err
	}
	if err := fsys.linkBlock(b1, b2, true); err != nil {
		return err
	}
	if err := fsys.linkBlock(b2, 0, false); err != nil {
		return err
	}
	sub := fsys.subdirRegion(b1)
	if err := fsys.initDirRegion(sub); err != nil {
		return err
	}
	e, err := newEntry(name, b1, DirectoryFlag)
	if err != nil {
		return err
	}
	return fsys.writeSlot(parent, slot, e)
}

// removeSubdir verifies entry is an empty directory, frees its two-block
// chain, and clears its parent slot. Grounded on the teacher's behavior of
// freeing a chain and clearing the owning slot together (f_open's
// faCreateAlways truncate path, and remove_chain, fat.go).
func (fsys *FS) removeSubdir(parent region, slot int, entry dirEntry) error {
	sub := fsys.subdirRegion(entry.firstBlock)
	if err := fsys.checkDirEmpty(sub); err != nil {
		return err
	}
	if err := fsys.freeBlockChain(entry.firstBlock); err != nil {
		return err
	}
	return fsys.writeSlot(parent, slot, freeEntry())
}

// listNames returns every non-empty filename in region r, in on-disk slot
// order, grounded on the teacher's dir.f_readdir/get_fileinfo (fat.go).
func (fsys *FS) listNames(r region) ([]string, error) {
	var names []string
	for i := 0; i < r.n; i++ {
		raw, _, err := fsys.readSlot(r, i)
		if err != nil {
			return nil, err
		}
		if slotIsFree(raw) {
			continue
		}
		names = append(names, decodeEntry(raw).filename())
	}
	return names, nil
}
