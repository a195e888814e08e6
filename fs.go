package sfs

import (
	"context"
	"log/slog"
	"time"
)

// FS is a mounted SFS image: a BlockDevice plus the layout describing its
// regions. FS assumes a single caller runs each operation to completion
// before the next begins (spec.md §5); it is NOT safe for concurrent use by
// multiple goroutines without external serialization — a caller that wants
// concurrent access (e.g. cmd/sfsfuse) must hold its own mutex around calls
// into FS, the way the teacher's FS expects Mount's caller to serialize
// access to one mounted volume.
type FS struct {
	dev    BlockDevice
	layout Layout
	owner  Owner
	log    *slog.Logger
}

// Option configures a new FS.
type Option func(*FS)

// WithOwner sets the Owner used to populate Getattr's uid/gid fields.
func WithOwner(o Owner) Option { return func(f *FS) { f.owner = o } }

// WithLogger attaches a structured logger, grounded on the teacher's
// fsys.log field (fat.go) and its trace/debug/info/warn/logerror helpers.
func WithLogger(l *slog.Logger) Option { return func(f *FS) { f.log = l } }

// New mounts dev as an SFS image using layout. dev is assumed to already
// hold a valid image (mkfs/formatting is out of scope for the core, per
// spec.md §1; see Init in format.go for the test/tooling helper that
// produces one).
func New(dev BlockDevice, layout Layout, opts ...Option) *FS {
	fsys := &FS{dev: dev, layout: layout, owner: ZeroOwner{}}
	for _, o := range opts {
		o(fsys)
	}
	return fsys
}

const slogLevelTrace = slog.Level(-8)

func (fsys *FS) logAttrs(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	if fsys.log == nil {
		return
	}
	fsys.log.LogAttrs(ctx, level, msg, attrs...)
}

func (fsys *FS) trace(msg string, attrs ...slog.Attr) {
	fsys.logAttrs(context.Background(), slogLevelTrace, msg, attrs...)
}
func (fsys *FS) debug(msg string, attrs ...slog.Attr) {
	fsys.logAttrs(context.Background(), slog.LevelDebug, msg, attrs...)
}
func (fsys *FS) warn(msg string, attrs ...slog.Attr) {
	fsys.logAttrs(context.Background(), slog.LevelWarn, msg, attrs...)
}
func (fsys *FS) logerror(msg string, attrs ...slog.Attr) {
	fsys.logAttrs(context.Background(), slog.LevelError, msg, attrs...)
}

// Getattr synthesizes a Stat for path, per spec.md §4.5.
func (fsys *FS) Getattr(path string) (Stat, error) {
	fsys.trace("Getattr", slog.String("path", path))
	res, err := fsys.getEntry(path)
	if err != nil {
		return Stat{}, err
	}
	now := time.Now()
	if res.entry.isDirectory() {
		return Stat{
			Mode:  ModeDir,
			Nlink: 2,
			Size:  0,
			Uid:   fsys.owner.Uid(),
			Gid:   fsys.owner.Gid(),
			Atime: now,
			Mtime: now,
		}, nil
	}
	return Stat{
		Mode:  ModeRegular,
		Nlink: 1,
		Size:  int64(res.entry.fileSize()),
		Uid:   fsys.owner.Uid(),
		Gid:   fsys.owner.Gid(),
		Atime: now,
		Mtime: now,
	}, nil
}

// Readdir lists path's entries, "." and ".." first, then every occupied
// slot in on-disk order, per spec.md §4.5.
func (fsys *FS) Readdir(path string) ([]string, error) {
	fsys.trace("Readdir", slog.String("path", path))
	res, err := fsys.getEntry(path)
	if err != nil {
		return nil, err
	}
	if !res.entry.isDirectory() {
		return nil, errNotADirectory.err()
	}
	var r region
	if res.isRoot {
		r = fsys.rootRegion()
	} else {
		r = fsys.subdirRegion(res.entry.firstBlock)
	}
	names, err := fsys.listNames(r)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(names)+2)
	out = append(out, ".", "..")
	out = append(out, names...)
	return out, nil
}

// Create makes a new, empty regular file at path, per spec.md §4.6.4.
func (fsys *FS) Create(path string) error {
	fsys.trace("Create", slog.String("path", path))
	parentPath, name, err := splitParent(path)
	if err != nil {
		return err
	}
	if err := validateFilename(name); err != nil {
		return err
	}
	if _, err := fsys.getEntry(path); err == nil {
		return errExists.err()
	}
	parentRes, err := fsys.getEntry(parentPath)
	if err != nil {
		return err
	}
	if !parentRes.entry.isDirectory() {
		return errNotADirectory.err()
	}
	parent := fsys.parentRegion(parentRes)
	slot, err := fsys.findFreeEntry(parent)
	if err != nil {
		return err
	}
	e, err := newEntry(name, cellEnd, 0)
	if err != nil {
		return err
	}
	return fsys.writeSlot(parent, slot, e)
}

// Unlink removes a regular file, per spec.md §4.6.5.
func (fsys *FS) Unlink(path string) error {
	fsys.trace("Unlink", slog.String("path", path))
	res, err := fsys.getEntry(path)
	if err != nil {
		return err
	}
	if res.entry.isDirectory() {
		return errIsADirectory.err()
	}
	if _, ok := cellForFirstBlock(res.entry.firstBlock); ok {
		if err := fsys.freeBlockChain(res.entry.firstBlock); err != nil {
			return err
		}
	}
	return fsys.writeSlot(res.region, res.index, freeEntry())
}

// Mkdir creates a new subdirectory, per spec.md §4.6.6.
func (fsys *FS) Mkdir(path string) error {
	fsys.trace("Mkdir", slog.String("path", path))
	parentPath, name, err := splitParent(path)
	if err != nil {
		return err
	}
	if err := validateFilename(name); err != nil {
		return err
	}
	if _, err := fsys.getEntry(path); err == nil {
		return errExists.err()
	}
	parentRes, err := fsys.getEntry(parentPath)
	if err != nil {
		return err
	}
	if !parentRes.entry.isDirectory() {
		return errNotADirectory.err()
	}
	parent := fsys.parentRegion(parentRes)
	slot, err := fsys.findFreeEntry(parent)
	if err != nil {
		return err
	}
	return fsys.createSubdir(parent, slot, name)
}

// Rmdir removes an empty subdirectory, per spec.md §4.6.6.
func (fsys *FS) Rmdir(path string) error {
	fsys.trace("Rmdir", slog.String("path", path))
	if path == "/" {
		return errBusy.err()
	}
	res, err := fsys.getEntry(path)
	if err != nil {
		return err
	}
	if !res.entry.isDirectory() {
		return errNotADirectory.err()
	}
	return fsys.removeSubdir(res.region, res.index, res.entry)
}

// parentRegion returns the region a parent's getEntry result designates:
// the root region if parentRes.isRoot, otherwise the parent's own
// subdirectory region.
func (fsys *FS) parentRegion(parentRes resolved) region {
	if parentRes.isRoot {
		return fsys.rootRegion()
	}
	return fsys.subdirRegion(parentRes.entry.firstBlock)
}

// cellForFirstBlock reports whether firstBlock designates a real chain
// (as opposed to the empty-file sentinel END), per spec.md §4.2's "zero
// length file is represented by first_block = END; no BAT cells belong to
// it" edge policy.
func cellForFirstBlock(firstBlock uint32) (uint32, bool) {
	if firstBlock == cellEnd || firstBlock == cellEmpty {
		return 0, false
	}
	return firstBlock, true
}
