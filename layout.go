package sfs

// Disk layout constants for the default image geometry. A Layout value
// derives every region offset from these (or from caller-supplied overrides)
// so tests can build smaller images without touching the algorithms.
const (
	// BlockSize is the size in bytes of one data block / BAT cell's backing block.
	BlockSize = 512

	// RootEntries is the capacity, in directory entries, of the root directory.
	RootEntries = 128

	// DirEntries is the capacity, in directory entries, of a subdirectory.
	// §4.4 requires DirEntries*sizeof(entry) to fit in exactly two blocks;
	// with entrySize=40 and BlockSize=512 that caps DirEntries at 25
	// (leaving 24 unused trailing bytes in the second block).
	DirEntries = 25

	// FilenameMax is the size in bytes of the filename field, including the
	// trailing NUL. The longest acceptable name is FilenameMax-1 bytes.
	FilenameMax = 32

	// BATEntries is the number of cells in the block-allocation table, one
	// per data block.
	BATEntries = 4096

	// entrySize is the on-disk size of one directory entry record.
	entrySize = FilenameMax + 4 + 4 // filename + first_block + size

	// batCellSize is the on-disk size of one BAT cell.
	batCellSize = 4

	// SizeMask isolates the low 31 bits of a regular file's size field.
	SizeMask = 0x7FFF_FFFF

	// DirectoryFlag is the high bit of the size field, set for directory entries.
	DirectoryFlag = 0x8000_0000
)

// Sentinel BAT cell values, outside the valid block-index range [0, BATEntries).
const (
	cellEmpty uint32 = 0xFFFF_FFFF // free block
	cellEnd   uint32 = 0xFFFF_FFFE // chain terminator
)

// Layout describes the absolute byte offsets and capacities of the regions
// of one mounted image, grounded on the teacher's biosParamBlock pattern of
// hiding region arithmetic behind named accessors instead of scattering it.
type Layout struct {
	RootOff     int64 // offset of the root directory region
	RootN       int   // capacity of the root directory, in entries
	BATOff      int64 // offset of the block-allocation table
	BATN        int   // number of BAT cells / data blocks
	DataOff     int64 // offset of the data region
	DirN        int   // capacity of a subdirectory, in entries
	FilenameMax int   // filename field size including NUL
}

// DefaultLayout returns the layout used throughout this module's tests and
// tools: a 128-entry root, 4096 data blocks of 512 bytes each.
func DefaultLayout() Layout {
	return NewLayout(RootEntries, BATEntries)
}

// NewLayout computes a Layout for the given root capacity and block count,
// keeping DirEntries/FilenameMax/BlockSize at their package defaults.
func NewLayout(rootN, batN int) Layout {
	rootSize := int64(rootN) * entrySize
	batSize := int64(batN) * batCellSize
	return Layout{
		RootOff:     0,
		RootN:       rootN,
		BATOff:      rootSize,
		BATN:        batN,
		DataOff:     rootSize + batSize,
		DirN:        DirEntries,
		FilenameMax: FilenameMax,
	}
}

// Size returns the total byte size of an image built with this layout.
func (l Layout) Size() int64 {
	return l.DataOff + int64(l.BATN)*BlockSize
}

// blockOff returns the absolute byte offset of the data block at index i.
func (l Layout) blockOff(i uint32) int64 {
	return l.DataOff + int64(i)*BlockSize
}

// batCellOff returns the absolute byte offset of the BAT cell for block i.
func (l Layout) batCellOff(i uint32) int64 {
	return l.BATOff + int64(i)*batCellSize
}
