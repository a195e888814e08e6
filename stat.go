package sfs

import "time"

// Mode is a minimal POSIX-shaped file mode: a type bit plus nothing else,
// since spec.md §1 keeps permission bits out of scope (mode bits are
// synthesized on read, not persisted or enforced).
type Mode uint32

const (
	ModeDir     Mode = 1 << 31
	ModeRegular Mode = 0
)

func (m Mode) IsDir() bool { return m&ModeDir != 0 }

// Owner supplies the ownership fields getattr reports. Process identity is
// an external collaborator per spec.md §1; this interface is the seam a
// host passes its own os.Getuid()/os.Getegid() (or a fixed value, for
// hosts with no process identity of their own) through.
type Owner interface {
	Uid() uint32
	Gid() uint32
}

// ZeroOwner is the default Owner: every file appears owned by uid/gid 0.
type ZeroOwner struct{}

func (ZeroOwner) Uid() uint32 { return 0 }
func (ZeroOwner) Gid() uint32 { return 0 }

// Stat is the attribute record returned by Getattr, grounded on the
// teacher's FileInfo (fat.go) but POSIX-shaped per spec.md §4.5.
type Stat struct {
	Mode  Mode
	Nlink uint32
	Size  int64
	Uid   uint32
	Gid   uint32
	Atime time.Time
	Mtime time.Time
}
