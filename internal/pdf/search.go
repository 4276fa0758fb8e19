package pdf

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Search finds PDF files below a directory with depth, count and time limits
type Search struct {
	maxDepth  int
	fileLimit int
	timeLimit time.Duration
}

// NewSearch creates a new directory search with the given limits. A zero
// limit disables that check.
func NewSearch(maxDepth, fileLimit int, timeLimit time.Duration) *Search {
	return &Search{
		maxDepth:  maxDepth,
		fileLimit: fileLimit,
		timeLimit: timeLimit,
	}
}

// SearchDirectory walks directory and returns the PDFs whose name contains
// query (case-insensitive), sorted by path. Hidden entries and symlinks are
// skipped.
func (s *Search) SearchDirectory(ctx context.Context, directory, query string) (*PDFSearchDirectoryResult, error) {
	info, err := os.Stat(directory)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &os.PathError{Op: "search", Path: directory, Err: os.ErrInvalid}
	}

	scan := &scanState{
		query:   strings.ToLower(strings.TrimSpace(query)),
		start:   time.Now(),
		visited: make(map[string]bool),
	}
	if err := s.scanRecursive(ctx, directory, 0, scan); err != nil {
		return nil, err
	}

	sort.Slice(scan.files, func(i, j int) bool {
		return scan.files[i].Path < scan.files[j].Path
	})

	return &PDFSearchDirectoryResult{
		Files:       scan.files,
		TotalCount:  len(scan.files),
		Directory:   directory,
		SearchQuery: query,
		Truncated:   scan.truncated,
	}, nil
}

type scanState struct {
	query     string
	start     time.Time
	visited   map[string]bool
	files     []FileInfo
	truncated bool
}

func (s *Search) scanRecursive(ctx context.Context, path string, depth int, scan *scanState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.maxDepth > 0 && depth >= s.maxDepth {
		return nil
	}
	if s.timeLimit > 0 && time.Since(scan.start) > s.timeLimit {
		scan.truncated = true
		return nil
	}

	realPath, err := filepath.EvalSymlinks(path)
	if err != nil || scan.visited[realPath] {
		return nil
	}
	scan.visited[realPath] = true

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil // Skip directories we can't read
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || entry.Type()&os.ModeSymlink != 0 {
			continue
		}

		entryPath := filepath.Join(path, name)
		if entry.IsDir() {
			if err := s.scanRecursive(ctx, entryPath, depth+1, scan); err != nil {
				return err
			}
			if scan.truncated {
				return nil
			}
			continue
		}

		if !strings.EqualFold(filepath.Ext(name), ".pdf") {
			continue
		}
		if scan.query != "" && !strings.Contains(strings.ToLower(name), scan.query) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		scan.files = append(scan.files, FileInfo{
			Name:         name,
			Path:         entryPath,
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})

		if s.fileLimit > 0 && len(scan.files) >= s.fileLimit {
			scan.truncated = true
			return nil
		}
	}

	return nil
}
