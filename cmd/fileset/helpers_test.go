package main

import (
	"fmt"

	"fileset/internal/testsupport"
)

func hex(n int64) string {
	return fmt.Sprintf("%x", n)
}

func crcHex(data []byte) string {
	return fmt.Sprintf("%08X", testsupport.Checksum(data))
}
