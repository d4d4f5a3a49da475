package anchor

import (
	"bufio"
	"bytes"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// LoadDictionaryMmap loads an anchor dictionary the same way LoadDictionary
// does, but memory-maps path read-only and scans the mapped bytes instead
// of reading the file through a buffered reader, mirrored on the teacher's use of edsrzf/mmap-go for large
// index files in cmd/util-db.go. Intended for anchor dictionaries too large
// to comfortably page through with a regular reader; falls back to
// LoadDictionary for files the OS cannot mmap (size 0, pipes).
func LoadDictionaryMmap(path string, leaderLen int) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "bkc/anchor: opening %s", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "bkc/anchor: stat %s", path)
	}
	if info.Size() == 0 || !info.Mode().IsRegular() {
		return LoadDictionary(bufio.NewReader(f), leaderLen)
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "bkc/anchor: mmapping %s", path)
	}
	defer m.Unmap()

	return LoadDictionary(bytes.NewReader([]byte(m)), leaderLen)
}
