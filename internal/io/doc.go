// Package ioutils provides file system utilities for multialbum.
//
// This package contains functions for:
//   - Byte-exact file copying with permission and timestamp preservation
//   - File writing
//   - Directory checks and creation
//   - Locking an output directory for the duration of a run
//
// # File Operations
//
//	// Copy a file, keeping its mode and modification time
//	err := ioutils.CopyFile(ctx, "/in/1-01 Song.m4a", "/out/1-01 Song.m4a")
//
//	// Ensure directory exists
//	created, err := ioutils.EnsureDir("/path/to/new/directory")
//
// # Locking
//
//	lock, err := ioutils.LockDir("/out")
//	if errors.Is(err, ioutils.ErrLocked) {
//	    // another run owns /out
//	}
//	defer lock.Unlock()
package ioutils
