package sfs

import "encoding/binary"

func le32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }

func putLE32(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }
