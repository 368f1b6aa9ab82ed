package platform

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// File permissions
const (
	DefaultDirPermissions = 0o755
)

// File name matching thresholds
const (
	MaxNameDifference = 10
)

// File extensions to skip: yt-dlp partial and resume files
var (
	SkippedExtensions = []string{".part", ".ytdl", ".temp"}
)

// EnsureDir creates dirPath and its parents if they do not exist
func EnsureDir(dirPath string) error {
	if dirPath == "" {
		return errors.New("output directory is empty")
	}
	info, err := os.Stat(dirPath)
	if err == nil {
		if !info.IsDir() {
			return errors.Newf("output path %s exists and is not a directory", dirPath)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return errors.Wrapf(err, "stat %s", dirPath)
	}
	if err := os.MkdirAll(dirPath, DefaultDirPermissions); err != nil {
		return errors.Wrapf(err, "create output directory %s", dirPath)
	}
	return nil
}

// ResolveOutputFile finds the file yt-dlp finally wrote for filePath. Post
// processors may change the extension (remux, audio extraction), so when the
// exact path is gone the same base name is tried with each of exts, then any
// similarly named file in the directory, most recent first.
func ResolveOutputFile(filePath string, exts ...string) (string, error) {
	if filePath == "" {
		return "", errors.New("file path is empty")
	}

	if info, err := os.Stat(filePath); err == nil && !info.IsDir() {
		return filePath, nil
	}

	dir := filepath.Dir(filePath)
	originalExt := filepath.Ext(filePath)
	baseName := strings.TrimSuffix(filepath.Base(filePath), originalExt)

	for _, ext := range exts {
		ext = "." + strings.TrimPrefix(ext, ".")
		candidate := filepath.Join(dir, baseName+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.Wrapf(err, "read directory %s", dir)
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() || isPartialFile(entry.Name()) {
			continue
		}
		entryBase := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if isSimilarFileName(entryBase, baseName) {
			candidates = append(candidates, filepath.Join(dir, entry.Name()))
		}
	}

	if len(candidates) == 0 {
		return "", errors.Newf("file not found: %s", filePath)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		infoI, errI := os.Stat(candidates[i])
		infoJ, errJ := os.Stat(candidates[j])
		if errI != nil || errJ != nil {
			return false
		}
		return infoI.ModTime().After(infoJ.ModTime())
	})
	return candidates[0], nil
}

// isSimilarFileName checks if two file names are similar enough to be considered the same file
func isSimilarFileName(name1, name2 string) bool {
	clean1 := strings.TrimSpace(name1)
	clean2 := strings.TrimSpace(name2)
	if clean1 == "" || clean2 == "" {
		return false
	}

	if clean1 == clean2 {
		return true
	}

	// subtitle and format suffixes: "title-id.en", "title-id.f137"
	if strings.HasPrefix(clean1, clean2+".") || strings.HasPrefix(clean2, clean1+".") {
		return true
	}

	// truncated names
	if strings.Contains(clean1, clean2) || strings.Contains(clean2, clean1) {
		diff := len(clean1) - len(clean2)
		if diff < 0 {
			diff = -diff
		}
		return diff <= MaxNameDifference
	}

	return false
}

func isPartialFile(name string) bool {
	for _, ext := range SkippedExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
