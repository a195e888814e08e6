package sfs

import "errors"

// Init writes a fresh, empty SFS image to dev using layout: every root slot
// cleared, every BAT cell marked free, grounded on the teacher's
// Formatter.Format (format.go) — validate arguments, then lay out each
// region in turn. Formatting a live image is out of scope for the core
// (spec.md §1); Init exists for tests and cmd/mksfs to produce one.
func Init(dev BlockDevice, layout Layout) error {
	if dev == nil {
		return errors.New("sfs: nil device")
	}
	if dev.Size() < layout.Size() {
		return errors.New("sfs: device too small for layout")
	}

	fsys := &FS{dev: dev, layout: layout, owner: ZeroOwner{}}

	root := fsys.rootRegion()
	if err := fsys.initDirRegion(root); err != nil {
		return err
	}

	for i := 0; i < layout.BATN; i++ {
		if err := fsys.writeCell(uint32(i), cell(cellEmpty)); err != nil {
			return err
		}
	}

	return nil
}
