//go:build !unix

package native

import "os"

func filePrint(fi os.FileInfo) uint64 { return 0 }

func isCrossDevice(err error) bool { return false }

func copyOwner(from, to string, fi os.FileInfo) error { return nil }

func freeDiskSpace(path string) (int64, error) { return -1, nil }

func sameFilesystem(a, b string) bool { return false }
