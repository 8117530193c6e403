package mdwriter

import (
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// SourceModule is the preservation input (§4.7, §6 "Optional source
// streams"): the original #Strings/#US/#Blob byte ranges for heap seeding,
// plus the original table rows the preserving builder copies forward
// verbatim. Decoding a raw PE/CLI image into these row vectors is the
// upstream metadata parser's job (out of scope here, spec.md §1); this
// type only carries the result.
type SourceModule struct {
	Strings []byte
	US      []byte
	Blob    []byte
	Tables  *TablesStore
}

// mappedSourceFile mmaps a module image read-only so heap seeding (§4.1)
// can slice directly into the mapped bytes instead of copying potentially
// large #Strings/#US/#Blob streams into fresh buffers. Grounded on the
// teacher's own use of github.com/edsrzf/mmap-go to map the PE file it
// parses (file.go's New(filename string, ...)).
type mappedSourceFile struct {
	file *os.File
	data mmap.MMap
}

// openMappedSourceFile opens and maps path for reading.
func openMappedSourceFile(path string) (*mappedSourceFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mdwriter: open source module: %w", err)
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mdwriter: mmap source module: %w", err)
	}
	return &mappedSourceFile{file: f, data: m}, nil
}

// slice returns the byte range [offset, offset+length) of the mapped file.
func (m *mappedSourceFile) slice(offset, length uint32) ([]byte, error) {
	end := uint64(offset) + uint64(length)
	if end > uint64(len(m.data)) {
		return nil, fmt.Errorf("mdwriter: source module range [%d,%d) exceeds file size %d", offset, end, len(m.data))
	}
	return m.data[offset:end], nil
}

// Close unmaps and closes the underlying file.
func (m *mappedSourceFile) Close() error {
	uerr := m.data.Unmap()
	cerr := m.file.Close()
	if uerr != nil {
		return uerr
	}
	return cerr
}

// HeapRange is a byte range of one stream within a mapped source module
// image, as reported by the upstream CLI metadata stream header.
type HeapRange struct {
	Offset uint32
	Length uint32
}

// LoadSourceModule mmaps path and slices out the #Strings/#US/#Blob streams
// at the given ranges (already known to the caller from the source image's
// CLI metadata stream header), pairing them with tables, the already
// decoded original row vectors. The returned close func unmaps the file;
// callers must call it once the build finishes with the returned
// SourceModule, since its byte slices alias the mapping.
func LoadSourceModule(path string, strings, us, blob HeapRange, tables *TablesStore) (*SourceModule, func() error, error) {
	mf, err := openMappedSourceFile(path)
	if err != nil {
		return nil, nil, err
	}
	stringsBytes, err := mf.slice(strings.Offset, strings.Length)
	if err != nil {
		mf.Close()
		return nil, nil, err
	}
	usBytes, err := mf.slice(us.Offset, us.Length)
	if err != nil {
		mf.Close()
		return nil, nil, err
	}
	blobBytes, err := mf.slice(blob.Offset, blob.Length)
	if err != nil {
		mf.Close()
		return nil, nil, err
	}
	sm := &SourceModule{
		Strings: stringsBytes,
		US:      usBytes,
		Blob:    blobBytes,
		Tables:  tables,
	}
	return sm, mf.Close, nil
}
