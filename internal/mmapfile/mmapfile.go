// Package mmapfile opens a file and maps it read-only into the process's
// address space, generalizing the teacher's own loadInternal: instead of a
// DAWG-specific header, it hands back the raw mapped bytes so codec.Decode
// can slice edge labels directly out of them without a copy.
package mmapfile

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// File is an open read-only memory map. Bytes returns the mapped region;
// callers must call Close before the process forgets the returned slices.
type File struct {
	f *os.File
	m mmap.MMap
}

// Open maps path read-only.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmapfile: open: %w", err)
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmapfile: map: %w", err)
	}
	return &File{f: f, m: m}, nil
}

// Bytes returns the mapped file contents. The slice is valid until Close.
func (mf *File) Bytes() []byte { return mf.m }

// Close unmaps the file and closes the underlying descriptor.
func (mf *File) Close() error {
	if err := mf.m.Unmap(); err != nil {
		mf.f.Close()
		return fmt.Errorf("mmapfile: unmap: %w", err)
	}
	return mf.f.Close()
}
