package reads

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/iafan/cwalk"
)

// DiscoverChunks walks dir in parallel with iafan/cwalk (mirrored on the
// teacher's cmd/util.go getFileListFromDir) and returns every file whose
// name matches pattern, for the case where a count run is given a
// directory of pre-split per-CBC-chunk read files instead of a single pair
// of FASTA/FASTQ files.
func DiscoverChunks(dir string, pattern *regexp.Regexp, workers int) ([]string, error) {
	files := make([]string, 0, 512)
	ch := make(chan string, workers)
	done := make(chan struct{})
	go func() {
		for file := range ch {
			files = append(files, file)
		}
		close(done)
	}()

	cwalk.NumWorkers = workers
	err := cwalk.WalkWithSymlinks(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && pattern.MatchString(info.Name()) {
			ch <- filepath.Join(dir, path)
		}
		return nil
	})
	close(ch)
	<-done
	if err != nil {
		return nil, err
	}
	return files, nil
}
