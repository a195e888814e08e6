// Command sfsfuse mounts an SFS image as a FUSE filesystem, grounded on
// KarpelesLab-squashfs's inode_fuse.go (an Inode per path, Getattr/Lookup/
// Open/ReadDir/Read delegated to the underlying filesystem). FS is not safe
// for concurrent use (fs.go), so every node call serializes through mu
// before touching the shared *sfs.FS, the way a squashfs superblock's inode
// index is guarded by its own lock (inoIdxL).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"sync"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	sfslib "github.com/adriensorensen/sfs"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: sfsfuse <image-path> <mountpoint>\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}
	imagePath, mountpoint := flag.Arg(0), flag.Arg(1)

	dev, err := sfslib.OpenFileDevice(imagePath)
	if err != nil {
		log.Fatalf("sfsfuse: %v", err)
	}
	defer dev.Close()

	layout := sfslib.DefaultLayout()
	root := &mount{fsys: sfslib.New(dev, layout), path: "/"}

	server, err := fs.Mount(mountpoint, root, &fs.Options{
		MountOptions: fuse.MountOptions{FsName: "sfs", Name: "sfs"},
	})
	if err != nil {
		log.Fatalf("sfsfuse: mount: %v", err)
	}
	server.Wait()
}

// mount is one fs.Inode per path, wrapping the shared, mutex-serialized
// *sfs.FS. Every method re-resolves its own path rather than caching a
// handle, matching the underlying FS's stateless-per-call operations.
type mount struct {
	fs.Inode

	mu   *sync.Mutex
	fsys *sfslib.FS
	path string
}

var _ fs.NodeGetattrer = (*mount)(nil)
var _ fs.NodeLookuper = (*mount)(nil)
var _ fs.NodeReaddirer = (*mount)(nil)
var _ fs.NodeReader = (*mount)(nil)
var _ fs.NodeWriter = (*mount)(nil)
var _ fs.NodeCreater = (*mount)(nil)
var _ fs.NodeMkdirer = (*mount)(nil)
var _ fs.NodeUnlinker = (*mount)(nil)
var _ fs.NodeRmdirer = (*mount)(nil)
var _ fs.NodeSetattrer = (*mount)(nil)

func (n *mount) lock() func() {
	if n.mu == nil {
		n.mu = &sync.Mutex{}
	}
	n.mu.Lock()
	return n.mu.Unlock
}

func errnoFor(err error) syscall.Errno {
	switch {
	case err == nil:
		return 0
	case err == sfslib.ErrNotFound:
		return syscall.ENOENT
	case err == sfslib.ErrNotADirectory:
		return syscall.ENOTDIR
	case err == sfslib.ErrIsADirectory:
		return syscall.EISDIR
	case err == sfslib.ErrExists:
		return syscall.EEXIST
	case err == sfslib.ErrNotEmpty:
		return syscall.ENOTEMPTY
	case err == sfslib.ErrOutOfSpace:
		return syscall.ENOSPC
	case err == sfslib.ErrNameTooLong:
		return syscall.ENAMETOOLONG
	case err == sfslib.ErrInvalidArgument:
		return syscall.EINVAL
	case err == sfslib.ErrFileTooBig:
		return syscall.EFBIG
	case err == sfslib.ErrBusy:
		return syscall.EBUSY
	default:
		return syscall.EIO
	}
}

func fillAttr(out *fuse.Attr, st sfslib.Stat) {
	out.Mode = uint32(st.Mode)
	if st.Mode.IsDir() {
		out.Mode |= 0755 | syscall.S_IFDIR
	} else {
		out.Mode |= 0644 | syscall.S_IFREG
	}
	out.Nlink = st.Nlink
	out.Size = uint64(st.Size)
	out.Uid = st.Uid
	out.Gid = st.Gid
	out.SetTimes(&st.Atime, &st.Mtime, &st.Mtime)
}

func (n *mount) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	defer n.lock()()
	st, err := n.fsys.Getattr(n.path)
	if err != nil {
		return errnoFor(err)
	}
	fillAttr(&out.Attr, st)
	return 0
}

func (n *mount) child(name string) *mount {
	return &mount{mu: n.mu, fsys: n.fsys, path: path.Join(n.path, name)}
}

func (n *mount) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	defer n.lock()()
	c := n.child(name)
	st, err := n.fsys.Getattr(c.path)
	if err != nil {
		return nil, errnoFor(err)
	}
	fillAttr(&out.Attr, st)
	mode := uint32(syscall.S_IFREG)
	if st.Mode.IsDir() {
		mode = syscall.S_IFDIR
	}
	return n.NewInode(ctx, c, fs.StableAttr{Mode: mode}), 0
}

func (n *mount) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	defer n.lock()()
	names, err := n.fsys.Readdir(n.path)
	if err != nil {
		return nil, errnoFor(err)
	}
	entries := make([]fuse.DirEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, fuse.DirEntry{Name: name})
	}
	return fs.NewListDirStream(entries), 0
}

func (n *mount) Read(ctx context.Context, f fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	defer n.lock()()
	got, err := n.fsys.Read(n.path, dest, off)
	if err != nil {
		return nil, errnoFor(err)
	}
	return fuse.ReadResultData(dest[:got]), 0
}

func (n *mount) Write(ctx context.Context, f fs.FileHandle, data []byte, off int64) (uint32, syscall.Errno) {
	defer n.lock()()
	written, err := n.fsys.Write(n.path, data, off)
	if err != nil && written == 0 {
		return 0, errnoFor(err)
	}
	return uint32(written), 0
}

func (n *mount) Create(ctx context.Context, name string, flags uint32, mode uint32, out *fuse.EntryOut) (*fs.Inode, fs.FileHandle, uint32, syscall.Errno) {
	defer n.lock()()
	c := n.child(name)
	if err := n.fsys.Create(c.path); err != nil {
		return nil, nil, 0, errnoFor(err)
	}
	st, err := n.fsys.Getattr(c.path)
	if err != nil {
		return nil, nil, 0, errnoFor(err)
	}
	fillAttr(&out.Attr, st)
	return n.NewInode(ctx, c, fs.StableAttr{Mode: syscall.S_IFREG}), nil, 0, 0
}

func (n *mount) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	defer n.lock()()
	c := n.child(name)
	if err := n.fsys.Mkdir(c.path); err != nil {
		return nil, errnoFor(err)
	}
	st, err := n.fsys.Getattr(c.path)
	if err != nil {
		return nil, errnoFor(err)
	}
	fillAttr(&out.Attr, st)
	return n.NewInode(ctx, c, fs.StableAttr{Mode: syscall.S_IFDIR}), 0
}

func (n *mount) Unlink(ctx context.Context, name string) syscall.Errno {
	defer n.lock()()
	return errnoFor(n.fsys.Unlink(path.Join(n.path, name)))
}

func (n *mount) Rmdir(ctx context.Context, name string) syscall.Errno {
	defer n.lock()()
	return errnoFor(n.fsys.Rmdir(path.Join(n.path, name)))
}

func (n *mount) Setattr(ctx context.Context, f fs.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	defer n.lock()()
	if size, ok := in.GetSize(); ok {
		if err := n.fsys.Truncate(n.path, int64(size)); err != nil {
			return errnoFor(err)
		}
	}
	st, err := n.fsys.Getattr(n.path)
	if err != nil {
		return errnoFor(err)
	}
	fillAttr(&out.Attr, st)
	return 0
}
