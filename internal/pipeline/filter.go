package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"rubox/internal/model"
)

// IgnoreList holds glob patterns for entry names that are never mirrored.
// Patterns match one name, never a path.
type IgnoreList []string

// ValidatePatterns reports the first malformed glob.
func ValidatePatterns(patterns []string) error {
	for _, pattern := range patterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("bad ignore pattern %q: %w", pattern, err)
		}
	}

	return nil
}

// MatchName reports whether a single entry name is ignored.
func (l IgnoreList) MatchName(name string) bool {
	for _, pattern := range l {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}

	return false
}

// MatchPath reports whether path lies under root and any name between root
// and path is ignored. Names above root never count.
func (l IgnoreList) MatchPath(root, path string) bool {
	if len(l) == 0 {
		return false
	}

	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return false
	}

	for _, name := range strings.Split(filepath.ToSlash(rel), "/") {
		if l.MatchName(name) {
			return true
		}
	}

	return false
}

// Filter drops events for ignored paths under root.
func Filter(inCh <-chan model.FileEvent, root string, ignore IgnoreList) <-chan model.FileEvent {
	outCh := make(chan model.FileEvent, cap(inCh))

	go func() {
		defer close(outCh)

		for event := range inCh {
			if ignore.MatchPath(root, event.Path) {
				continue
			}
			outCh <- event
		}
	}()

	return outCh
}
