package storage

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	errs "gharchiver/pkg/errors"
)

// PlaceResult describes where Place left the bytes
type PlaceResult struct {
	Path string
	// Created is false when an identical file was already present
	Created bool
	// Digest is the hex MD5 of the bytes
	Digest string
}

// Place stores data in dir without ever keeping two files with the same
// content. Candidates base.ext, base (1).ext, base (2).ext, ... are tried
// in order: the first missing one is written, and an existing one with the
// same digest is returned as is. A directory at a candidate name counts as
// a different file. ext may be given with or without its dot.
func Place(data []byte, dir, baseName, ext string) (PlaceResult, error) {
	digest := Digest(data)
	ext = strings.TrimPrefix(ext, ".")

	for i := 0; ; i++ {
		path := filepath.Join(dir, candidateName(baseName, ext, i))
		if fi, err := os.Stat(path); err == nil && fi.IsDir() {
			continue
		}

		existing, err := fileDigest(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			if _, err := WriteFileAtomic(path, bytes.NewReader(data)); err != nil {
				return PlaceResult{}, err
			}
			return PlaceResult{Path: path, Created: true, Digest: digest}, nil
		case err != nil:
			return PlaceResult{}, &errs.StorageError{Op: "read", Path: path, Err: err}
		case existing == digest:
			return PlaceResult{Path: path, Created: false, Digest: digest}, nil
		}
	}
}

func candidateName(base, ext string, index int) string {
	name := base
	if index > 0 {
		name = fmt.Sprintf("%s (%d)", base, index)
	}
	if ext != "" {
		name += "." + ext
	}
	return name
}

// Digest returns the hex MD5 of data
func Digest(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

func fileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
