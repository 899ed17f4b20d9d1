// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/samber/oops"

	"github.com/holomush/authclient/internal/xdg"
	"github.com/holomush/authclient/pkg/errutil"
)

// CodeCorrupt marks a stored document that cannot be decoded.
const CodeCorrupt = "STORAGE_CORRUPT"

// CorruptSuffix is appended to an undecodable document when it is moved aside.
const CorruptSuffix = ".corrupt"

// File is a Store backed by one JSON object on disk.
//
// Every Set and Remove rewrites the whole document through a temp file and
// rename, so readers never see a torn file. The file is created 0600.
//
// Get reports an undecodable document as CodeCorrupt. Set and Remove move it
// aside to Path()+CorruptSuffix and carry on from an empty document, so a
// damaged file never blocks signing in or out.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile creates a File store at path. Nothing touches disk until first use.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the document location.
func (f *File) Path() string {
	return f.path
}

// Get implements Store.
func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := doc[key]
	return v, ok, nil
}

// Set implements Store.
func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.readForWrite()
	if err != nil {
		return err
	}
	doc[key] = value
	return f.write(doc)
}

// Remove implements Store.
func (f *File) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.readForWrite()
	if err != nil {
		return err
	}
	if _, ok := doc[key]; !ok {
		return nil
	}
	delete(doc, key)
	if len(doc) == 0 {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return oops.Code("STORAGE_WRITE_FAILED").With("path", f.path).Wrap(err)
		}
		return nil
	}
	return f.write(doc)
}

// Close implements Store.
func (f *File) Close() error { return nil }

func (f *File) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, oops.Code("STORAGE_READ_FAILED").With("path", f.path).Wrap(err)
	}
	doc := make(map[string]string)
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, oops.Code(CodeCorrupt).With("path", f.path).Wrap(err)
	}
	return doc, nil
}

func (f *File) readForWrite() (map[string]string, error) {
	doc, err := f.read()
	if err == nil || errutil.Code(err) != CodeCorrupt {
		return doc, err
	}
	if err := os.Rename(f.path, f.path+CorruptSuffix); err != nil {
		return nil, oops.Code("STORAGE_WRITE_FAILED").With("path", f.path).Wrap(err)
	}
	return make(map[string]string), nil
}

func (f *File) write(doc map[string]string) error {
	dir := filepath.Dir(f.path)
	if err := xdg.EnsureDir(dir); err != nil {
		return oops.Code("STORAGE_WRITE_FAILED").With("path", f.path).Wrap(err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return oops.Code("STORAGE_WRITE_FAILED").With("path", f.path).Wrap(err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return oops.Code("STORAGE_WRITE_FAILED").With("path", f.path).Wrap(err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return oops.Code("STORAGE_WRITE_FAILED").With("path", f.path).Wrap(err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return oops.Code("STORAGE_WRITE_FAILED").With("path", f.path).Wrap(err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return oops.Code("STORAGE_WRITE_FAILED").With("path", f.path).Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		return oops.Code("STORAGE_WRITE_FAILED").With("path", f.path).Wrap(err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return oops.Code("STORAGE_WRITE_FAILED").With("path", f.path).Wrap(err)
	}
	return nil
}
