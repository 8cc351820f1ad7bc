// Package storage lays archive files out on disk.
//
// JSON snapshots, release notes and release downloads are overwritten on
// every run. Avatars go through Place, which treats the target directory
// as the registry of what is already stored: bytes whose MD5 matches a
// file already there are not written again, and differing bytes get the
// next free "name (N).ext" slot.
//
//	m, err := storage.NewManager(filepath.Join(out, username))
//	res, err := m.Place(avatar, "avatars", "avatar", "png")
//	if res.Created {
//	    // new avatar version
//	}
//
// All writes go through a temp file in the destination directory followed
// by a rename, so an interrupted run never leaves a truncated file behind.
// Failures are reported as *errors.StorageError.
package storage
