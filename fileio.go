package sfs

import "log/slog"

// walkChain follows the chain from first by steps hops, returning the
// block reached. ok is false if the chain terminates before steps hops
// complete — spec.md §4.6.1 step 3 treats that benignly (read returns
// whatever was copied so far).
func (fsys *FS) walkChain(first uint32, steps int64) (block uint32, ok bool, err error) {
	cur := first
	for i := int64(0); i < steps; i++ {
		c, err := fsys.chainNext(cur)
		if err != nil {
			return 0, false, err
		}
		next, has := c.next()
		if !has {
			return 0, false, nil
		}
		cur = next
	}
	return cur, true, nil
}

// walkToTail follows the chain from first all the way to its END cell,
// returning the tail block and the number of blocks in the chain. The
// cursor is always reassigned to a distinct local value rather than
// overwritten in place, closing design note §9.4 (the source's grow-path
// tail-tracking bug).
func (fsys *FS) walkToTail(first uint32) (tail uint32, length int64, err error) {
	cur := first
	length = 1
	for {
		c, err := fsys.chainNext(cur)
		if err != nil {
			return 0, 0, err
		}
		next, has := c.next()
		if !has {
			return cur, length, nil
		}
		cur = next
		length++
	}
}

// Read copies up to len(dst) bytes from path starting at offset into dst,
// per spec.md §4.6.1. It returns the number of bytes actually copied,
// which may be less than len(dst) at end-of-file or on a short chain.
func (fsys *FS) Read(path string, dst []byte, offset int64) (int, error) {
	fsys.trace("Read", slog.String("path", path), slog.Int64("offset", offset), slog.Int("len", len(dst)))
	res, err := fsys.getEntry(path)
	if err != nil {
		return 0, err
	}
	if res.entry.isDirectory() {
		return 0, errIsADirectory.err()
	}
	if offset < 0 {
		return 0, errInvalidArgument.err()
	}
	fileSize := int64(res.entry.fileSize())
	if offset >= fileSize {
		return 0, nil
	}
	want := len(dst)
	if remain := fileSize - offset; int64(want) > remain {
		want = int(remain)
	}
	if want == 0 {
		return 0, nil
	}

	startBlockIdx := offset / BlockSize
	inBlockOff := int(offset % BlockSize)
	block, ok, err := fsys.walkChain(res.entry.firstBlock, startBlockIdx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}

	var buf [BlockSize]byte
	read := 0
	for read < want {
		if err := fsys.dev.ReadAt(buf[:], fsys.layout.blockOff(block)); err != nil {
			return read, err
		}
		n := copy(dst[read:want], buf[inBlockOff:])
		read += n
		inBlockOff = 0
		if read >= want {
			break
		}
		c, err := fsys.chainNext(block)
		if err != nil {
			return read, err
		}
		next, has := c.next()
		if !has {
			break // Chain terminated early; return what was read so far.
		}
		block = next
	}
	return read, nil
}

// Write writes data to path at offset, growing the file and its block
// chain as needed, per spec.md §4.6.2. If allocation fails partway
// through, Write returns the bytes actually written along with
// ErrOutOfSpace, mirroring the io.Writer contract (n < len(data) implies a
// non-nil error) as the idiomatic Go rendering of spec.md §7's "integer
// result, negative indicates error" convention.
func (fsys *FS) Write(path string, data []byte, offset int64) (int, error) {
	fsys.trace("Write", slog.String("path", path), slog.Int64("offset", offset), slog.Int("len", len(data)))
	res, err := fsys.getEntry(path)
	if err != nil {
		return 0, err
	}
	if res.entry.isDirectory() {
		return 0, errIsADirectory.err()
	}
	if offset < 0 {
		return 0, errInvalidArgument.err()
	}
	oldSize := int64(res.entry.fileSize())
	newSize := oldSize
	if end := offset + int64(len(data)); end > newSize {
		newSize = end
	}
	if newSize > SizeMask {
		return 0, errFileTooBig.err()
	}
	if len(data) == 0 {
		return 0, nil
	}

	first := res.entry.firstBlock
	dirty := false
	if first == cellEnd {
		b, aerr := fsys.allocateBlock()
		if aerr != nil {
			return 0, errOutOfSpace.err()
		}
		if err := fsys.zeroBlock(b); err != nil {
			return 0, err
		}
		first = b
		dirty = true
	}

	written := 0
	cur := first
	curIdx := int64(0)
	targetStart := offset / BlockSize
	spaceExhausted := false

	// Walk to (or extend into) the block containing offset.
	for curIdx < targetStart && !spaceExhausted {
		next, nb, aerr := fsys.advanceOrExtend(cur)
		if aerr != nil {
			return written, aerr
		}
		if nb {
			dirty = true
		}
		if next == cur {
			spaceExhausted = true
			break
		}
		cur = next
		curIdx++
	}

	if !spaceExhausted {
		inBlockOff := int(offset % BlockSize)
		var buf [BlockSize]byte
		for written < len(data) {
			if err := fsys.dev.ReadAt(buf[:], fsys.layout.blockOff(cur)); err != nil {
				return written, err
			}
			n := copy(buf[inBlockOff:], data[written:])
			if err := fsys.dev.WriteAt(buf[:], fsys.layout.blockOff(cur)); err != nil {
				return written, err
			}
			written += n
			inBlockOff = 0
			if written >= len(data) {
				break
			}
			next, nb, aerr := fsys.advanceOrExtend(cur)
			if aerr != nil {
				return written, aerr
			}
			if nb {
				dirty = true
			}
			if next == cur {
				break // Out of space: stop, keep bytes written so far.
			}
			cur = next
		}
	}

	finalSize := oldSize
	if reached := offset + int64(written); reached > finalSize {
		finalSize = reached
	}
	if dirty || finalSize != oldSize {
		e, err := newEntry(res.entry.filename(), first, uint32(finalSize)&SizeMask)
		if err != nil {
			return written, err
		}
		if err := fsys.writeSlot(res.region, res.index, e); err != nil {
			return written, err
		}
	}
	if written < len(data) {
		return written, errOutOfSpace.err()
	}
	return written, nil
}

// advanceOrExtend returns the block following cur in the chain, allocating
// and zero-linking a new one (design note §9.2: holes are zero-filled at
// link time) if cur is currently the chain's tail. If no block can be
// allocated, it returns cur unchanged so the caller can detect exhaustion.
func (fsys *FS) advanceOrExtend(cur uint32) (next uint32, allocatedNew bool, err error) {
	c, err := fsys.chainNext(cur)
	if err != nil {
		return cur, false, err
	}
	if n, ok := c.next(); ok {
		return n, false, nil
	}
	nb, aerr := fsys.allocateBlock()
	if aerr != nil {
		return cur, false, nil
	}
	if err := fsys.zeroBlock(nb); err != nil {
		return cur, false, err
	}
	if err := fsys.linkBlock(cur, nb, true); err != nil {
		return cur, false, err
	}
	return nb, true, nil
}

// blocksFor returns ceil(size / BlockSize).
func blocksFor(size int64) int64 {
	if size <= 0 {
		return 0
	}
	return (size + BlockSize - 1) / BlockSize
}

// Truncate resizes path to size, per spec.md §4.6.3.
func (fsys *FS) Truncate(path string, size int64) error {
	fsys.trace("Truncate", slog.String("path", path), slog.Int64("size", size))
	if size < 0 {
		return errInvalidArgument.err()
	}
	if size > SizeMask {
		return errFileTooBig.err()
	}
	res, err := fsys.getEntry(path)
	if err != nil {
		return err
	}
	if res.entry.isDirectory() {
		return errIsADirectory.err()
	}
	current := int64(res.entry.fileSize())
	first := res.entry.firstBlock

	switch {
	case size < current:
		first, err = fsys.truncateShrink(first, size)
	case size > current:
		first, err = fsys.truncateGrow(first, current, size)
	}
	if err != nil {
		return err
	}

	e, err := newEntry(res.entry.filename(), first, uint32(size)&SizeMask)
	if err != nil {
		return err
	}
	return fsys.writeSlot(res.region, res.index, e)
}

// truncateShrink implements spec.md §4.6.3's shrink path: walk to the
// block that will become the new tail, free everything after it, and
// plant END there. If size is 0, the whole chain is freed and END (the
// empty-file sentinel) is returned as the new first_block.
func (fsys *FS) truncateShrink(first uint32, size int64) (uint32, error) {
	if size == 0 {
		if first != cellEnd {
			if err := fsys.freeBlockChain(first); err != nil {
				return 0, err
			}
		}
		return cellEnd, nil
	}
	blocksNeeded := blocksFor(size)
	tail, ok, err := fsys.walkChain(first, blocksNeeded-1)
	if err != nil {
		return 0, err
	}
	if !ok {
		// Chain already shorter than blocksNeeded; nothing to free.
		return first, nil
	}
	c, err := fsys.chainNext(tail)
	if err != nil {
		return 0, err
	}
	if next, has := c.next(); has {
		if err := fsys.freeBlockChain(next); err != nil {
			return 0, err
		}
	}
	if err := fsys.linkBlock(tail, 0, false); err != nil {
		return 0, err
	}
	return first, nil
}

// truncateGrow implements spec.md §4.6.3's grow path: walk to the current
// tail (tracked in its own variable throughout, closing design note §9.4),
// then append zero-filled blocks until the chain covers size.
func (fsys *FS) truncateGrow(first uint32, current, size int64) (uint32, error) {
	targetBlocks := blocksFor(size)
	if first == cellEnd {
		b, err := fsys.allocateBlock()
		if err != nil {
			return 0, errOutOfSpace.err()
		}
		if err := fsys.zeroBlock(b); err != nil {
			return 0, err
		}
		first = b
		tail := b
		for n := int64(1); n < targetBlocks; n++ {
			nb, err := fsys.allocateBlock()
			if err != nil {
				return 0, errOutOfSpace.err()
			}
			if err := fsys.zeroBlock(nb); err != nil {
				return 0, err
			}
			if err := fsys.linkBlock(tail, nb, true); err != nil {
				return 0, err
			}
			tail = nb
		}
		return first, nil
	}

	tail, length, err := fsys.walkToTail(first)
	if err != nil {
		return 0, err
	}
	for n := length; n < targetBlocks; n++ {
		nb, err := fsys.allocateBlock()
		if err != nil {
			return 0, errOutOfSpace.err()
		}
		if err := fsys.zeroBlock(nb); err != nil {
			return 0, err
		}
		if err := fsys.linkBlock(tail, nb, true); err != nil {
			return 0, err
		}
		tail = nb
	}
	return first, nil
}
