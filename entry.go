package sfs

import (
	"golang.org/x/text/encoding/charmap"
)

// dirEntry is the fixed-size record occupying one directory slot, grounded
// on the teacher's dirSector accessors (sectors.go): filename, first_block,
// size, exactly as spec.md §3/§6 define them.
type dirEntry struct {
	name       [FilenameMax]byte
	firstBlock uint32
	size       uint32 // high bit: DirectoryFlag; low 31 bits: byte size
}

func (e dirEntry) isDirectory() bool { return e.size&DirectoryFlag != 0 }
func (e dirEntry) fileSize() uint32  { return e.size & SizeMask }

// filename returns the entry's name as a Go string, stopping at the first NUL.
func (e dirEntry) filename() string {
	n := 0
	for n < len(e.name) && e.name[n] != 0 {
		n++
	}
	return string(e.name[:n])
}

// slotIsFree reports whether a slot is free: the on-disk convention is that
// a free slot's filename starts with a NUL byte (spec.md §3, §9).
func slotIsFree(raw []byte) bool { return raw[0] == 0 }

// encodeEntry serializes e into dst, which must be at least entrySize bytes.
func encodeEntry(dst []byte, e dirEntry) {
	copy(dst[:FilenameMax], e.name[:])
	putLE32(dst[FilenameMax:], e.firstBlock)
	putLE32(dst[FilenameMax+4:], e.size)
}

// decodeEntry parses a dirEntry out of src, which must be at least
// entrySize bytes.
func decodeEntry(src []byte) dirEntry {
	var e dirEntry
	copy(e.name[:], src[:FilenameMax])
	e.firstBlock = le32(src[FilenameMax:])
	e.size = le32(src[FilenameMax+4:])
	return e
}

// freeEntry returns a zeroed slot value: empty filename, first_block EMPTY.
func freeEntry() dirEntry {
	return dirEntry{firstBlock: cellEmpty}
}

// validateFilename checks the name against spec.md's filename constraints:
// it must fit (with its NUL terminator) in FilenameMax bytes, must not be
// empty, and must not contain a NUL or path separator. It additionally runs
// the name through the ISO-8859-1 codepage (golang.org/x/text, the
// teacher's own dependency) as a defensive sanity check — spec.md already
// mandates bounded ASCII names, so this never rejects a spec-conformant
// name. It rejects any rune above U+00FF; a rune in U+0080–U+00FF passes
// and is stored as its UTF-8 bytes.
func validateFilename(name string) error {
	if name == "" {
		return errInvalidArgument.err()
	}
	if len(name) > FilenameMax-1 {
		return errNameTooLong.err()
	}
	enc := charmap.ISO8859_1.NewEncoder()
	if _, err := enc.String(name); err != nil {
		return errInvalidArgument.err()
	}
	for i := 0; i < len(name); i++ {
		if name[i] == 0 || name[i] == '/' {
			return errInvalidArgument.err()
		}
	}
	return nil
}

// newEntry builds the on-disk dirEntry for name with the given first block
// and size/flags, after validating name.
func newEntry(name string, firstBlock uint32, size uint32) (dirEntry, error) {
	if err := validateFilename(name); err != nil {
		return dirEntry{}, err
	}
	var e dirEntry
	copy(e.name[:], name)
	e.firstBlock = firstBlock
	e.size = size
	return e, nil
}
