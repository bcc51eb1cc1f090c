// Package workdir locates the recorder's files on disk.
package workdir

import (
	"fmt"
	"os"
	"path/filepath"
)

// LogFile is the TUI log file name.
const LogFile = "memo.log"

// Root returns the base directory for all recorder files.
// The path is expanded at runtime to resolve to:
//
//	$HOME/Documents/Alkime/Memos
func Root() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, "Documents", "Alkime", "Memos"), nil
}

// Recordings returns override when set, otherwise the default recordings
// directory under Root.
func Recordings(override string) (string, error) {
	if override != "" {
		return filepath.Abs(override)
	}

	root, err := Root()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "recordings"), nil
}

// LogPath returns the TUI log file path inside dir.
func LogPath(dir string) string {
	return filepath.Join(dir, LogFile)
}

// Prep ensures that dir exists.
func Prep(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create working directory %s: %w", dir, err)
	}

	return nil
}
