package sfs

// cell is the typed view of one BAT on-disk uint32, grounded on the
// teacher's entry/fat32Sector split (sectors.go): the raw sentinel encoding
// lives here, behind accessors, while the rest of the package works with
// the tagged variant described in spec.md §9's re-architecture notes.
type cell uint32

func (c cell) isEmpty() bool { return uint32(c) == cellEmpty }
func (c cell) isEnd() bool   { return uint32(c) == cellEnd }

// next returns the successor block index and true, or (0, false) if c is a
// terminator (EMPTY or END).
func (c cell) next() (uint32, bool) {
	if c.isEmpty() || c.isEnd() {
		return 0, false
	}
	return uint32(c), true
}

// readCell reads the BAT cell for block i.
func (fsys *FS) readCell(i uint32) (cell, error) {
	var buf [batCellSize]byte
	if err := fsys.dev.ReadAt(buf[:], fsys.layout.batCellOff(i)); err != nil {
		return 0, err
	}
	return cell(le32(buf[:])), nil
}

// writeCell writes v into the BAT cell for block i.
func (fsys *FS) writeCell(i uint32, v cell) error {
	var buf [batCellSize]byte
	putLE32(buf[:], uint32(v))
	return fsys.dev.WriteAt(buf[:], fsys.layout.batCellOff(i))
}

// findFreeBlock scans the BAT from index 0 and returns the first EMPTY
// cell, matching spec.md §4.2's deterministic lowest-index-first policy.
func (fsys *FS) findFreeBlock() (uint32, bool, error) {
	for i := 0; i < fsys.layout.BATN; i++ {
		c, err := fsys.readCell(uint32(i))
		if err != nil {
			return 0, false, err
		}
		if c.isEmpty() {
			return uint32(i), true, nil
		}
	}
	return 0, false, nil
}

// reserveBlocks finds n distinct free blocks without writing any BAT cell,
// returning OUT_OF_SPACE if fewer than n are available, so a caller can
// check availability for a whole request before mutating anything.
// allocateBlock uses it with n=1; mkdir reserves its two blocks through
// reserveAdjacentPair instead.
func (fsys *FS) reserveBlocks(n int) ([]uint32, error) {
	found := make([]uint32, 0, n)
	seen := make(map[uint32]bool, n)
	for i := 0; i < fsys.layout.BATN && len(found) < n; i++ {
		c, err := fsys.readCell(uint32(i))
		if err != nil {
			return nil, err
		}
		if c.isEmpty() && !seen[uint32(i)] {
			found = append(found, uint32(i))
			seen[uint32(i)] = true
		}
	}
	if len(found) < n {
		return nil, errOutOfSpace.err()
	}
	return found, nil
}

// reserveAdjacentPair finds two consecutive free blocks (i, i+1), without
// writing any BAT cell, returning OUT_OF_SPACE if no such pair exists. A
// subdirectory's two-block region (dirops.go's createSubdir) is addressed
// with flat linear arithmetic across both blocks (resolver.go's
// slotOffset), which is only valid when the second block immediately
// follows the first on the device — unlike reserveBlocks(2), which makes
// no adjacency guarantee at all.
func (fsys *FS) reserveAdjacentPair() (uint32, uint32, error) {
	prevEmpty := false
	for i := 0; i < fsys.layout.BATN; i++ {
		c, err := fsys.readCell(uint32(i))
		if err != nil {
			return 0, 0, err
		}
		if prevEmpty && c.isEmpty() {
			return uint32(i - 1), uint32(i), nil
		}
		prevEmpty = c.isEmpty()
	}
	return 0, 0, errOutOfSpace.err()
}

// linkBlock marks block i as allocated, pointing to successor (or as a
// chain terminator if successor is false). The caller is responsible for
// having reserved i first; linkBlock performs the single cell write that
// "allocates" it per spec.md §4.2.
func (fsys *FS) linkBlock(i uint32, successor uint32, hasSuccessor bool) error {
	if hasSuccessor {
		return fsys.writeCell(i, cell(successor))
	}
	return fsys.writeCell(i, cell(cellEnd))
}

// allocateBlock finds and immediately marks one free block as a chain
// terminator, returning its index. Matches spec.md §4.2's allocate_block.
func (fsys *FS) allocateBlock() (uint32, error) {
	blocks, err := fsys.reserveBlocks(1)
	if err != nil {
		return 0, err
	}
	b := blocks[0]
	if err := fsys.linkBlock(b, 0, false); err != nil {
		return 0, err
	}
	return b, nil
}

// chainNext returns the BAT cell for block, as the tagged cell view.
func (fsys *FS) chainNext(block uint32) (cell, error) {
	return fsys.readCell(block)
}

// freeBlockChain walks the chain from start, writing EMPTY to every cell it
// visits, and stops at a cell that holds END or EMPTY (design note §9.5:
// both are accepted terminators, defending against a double free). start
// itself being a terminator (an empty file's END sentinel, or an
// already-freed EMPTY cell) is a no-op, checked directly here rather than
// relying on every caller to guard it first.
func (fsys *FS) freeBlockChain(start uint32) error {
	if cell(start).isEmpty() || cell(start).isEnd() {
		return nil
	}
	cur := start
	for {
		c, err := fsys.readCell(cur)
		if err != nil {
			return err
		}
		next, ok := c.next()
		if err := fsys.writeCell(cur, cell(cellEmpty)); err != nil {
			return err
		}
		if !ok {
			return nil
		}
		cur = next
	}
}

// zeroBlock writes BlockSize zero bytes to block i, used when growing a
// file or directory so newly linked blocks never expose stale data
// (design note §9.2, and spec.md §4.6.3's truncate grow path).
func (fsys *FS) zeroBlock(i uint32) error {
	var buf [BlockSize]byte
	return fsys.dev.WriteAt(buf[:], fsys.layout.blockOff(i))
}
