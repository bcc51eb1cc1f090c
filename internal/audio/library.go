package audio

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/alkime/voicememo/pkg/collections"
)

// RecordingFile is a finished recording on disk.
type RecordingFile struct {
	Path     string
	URI      string
	Duration time.Duration
	ModTime  time.Time
}

// ListRecordings returns the FLAC files in dir, oldest first. Files whose
// header cannot be read are skipped. A missing dir is empty.
func ListRecordings(dir string) ([]RecordingFile, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read recordings directory %s: %w", dir, err)
	}

	entries = collections.Filter(entries, func(e os.DirEntry) bool {
		return !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".flac")
	})

	files := make([]RecordingFile, 0, len(entries))

	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(dir, e.Name())

		d, err := Probe(path)
		if err != nil {
			slog.Warn("skipping unreadable recording", "path", path, "error", err)
			continue
		}

		files = append(files, RecordingFile{
			Path:     path,
			URI:      fileURI(path),
			Duration: d,
			ModTime:  info.ModTime(),
		})
	}

	slices.SortStableFunc(files, func(a, b RecordingFile) int {
		return a.ModTime.Compare(b.ModTime)
	})

	return files, nil
}
