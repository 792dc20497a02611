package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// FindCSVFiles finds all CSV files in the specified directory, sorted by name
func (d *Discovery) FindCSVFiles(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".csv") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// FindForecastSeries finds per-region forecast series files (forecast_<slug>.csv)
// keyed by region slug. Summary files are excluded. A missing directory yields
// an empty map.
func (d *Discovery) FindForecastSeries(dir, prefix string) (map[string]FileInfo, error) {
	files, err := d.FindCSVFiles(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]FileInfo{}, nil
		}
		return nil, err
	}

	series := make(map[string]FileInfo)
	for _, file := range files {
		if !strings.HasPrefix(file.Name, prefix) {
			continue
		}
		slug := strings.TrimSuffix(strings.TrimPrefix(file.Name, prefix), filepath.Ext(file.Name))
		if slug == "" || strings.HasPrefix(slug, "summary") {
			continue
		}
		series[slug] = file
	}

	return series, nil
}

// SortedKeys returns the keys of a series map in lexical order
func SortedKeys(series map[string]FileInfo) []string {
	keys := make([]string, 0, len(series))
	for k := range series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
