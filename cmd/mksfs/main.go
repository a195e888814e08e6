// Command mksfs creates a fresh SFS image file, grounded on the teacher's
// mkfs-style CLI wrapping Formatter.Format (format.go) behind flag parsing.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/adriensorensen/sfs"
)

func main() {
	var (
		rootN = flag.Int("root-entries", sfs.RootEntries, "root directory capacity, in entries")
		batN  = flag.Int("blocks", sfs.BATEntries, "number of data blocks")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: mksfs [flags] <image-path>\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	layout := sfs.NewLayout(*rootN, *batN)
	dev, err := sfs.CreateFileDevice(path, layout.Size())
	if err != nil {
		fmt.Fprintf(os.Stderr, "mksfs: %v\n", err)
		os.Exit(1)
	}
	defer dev.Close()

	if err := sfs.Init(dev, layout); err != nil {
		fmt.Fprintf(os.Stderr, "mksfs: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("mksfs: wrote %s (%d bytes, %d root entries, %d blocks)\n", path, layout.Size(), *rootN, *batN)
}
