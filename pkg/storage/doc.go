// Package storage keeps downloaded media on local disk.
//
// Files are stored flat in one directory under their canonical media name.
// The Manager indexes the directory when it is created, so files left by an
// earlier run count as already downloaded, and writes new files atomically
// through a temporary file and rename.
//
//	manager, err := storage.NewManager("./dumps")
//	if !manager.Exists(name) {
//	    err = manager.Save(body, name)
//	}
package storage
