package sfs_test

import (
	"fmt"

	"github.com/adriensorensen/sfs"
)

func ExampleFS_basic_usage() {
	// dev could be an SD card, RAM, or anything implementing BlockDevice.
	layout := sfs.DefaultLayout()
	dev := sfs.NewMemDevice(layout.Size())
	if err := sfs.Init(dev, layout); err != nil {
		panic(err)
	}
	fsys := sfs.New(dev, layout)

	if err := fsys.Create("/hello.txt"); err != nil {
		panic(err)
	}
	if _, err := fsys.Write("/hello.txt", []byte("Hello, World!"), 0); err != nil {
		panic(err)
	}

	st, err := fsys.Getattr("/hello.txt")
	if err != nil {
		panic(err)
	}
	buf := make([]byte, st.Size)
	if _, err := fsys.Read("/hello.txt", buf, 0); err != nil {
		panic(err)
	}
	fmt.Println(string(buf))
	// Output:
	// Hello, World!
}
