// Package glob expands a single file pattern against a root directory into
// a sorted-by-discovery, deduplicated list of absolute regular-file paths.
package glob

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/artic-lang/artic-lsp/internal/arena"
)

const (
	maxStarStarDirs   = 20000
	maxWildcardEntries = 1000
)

// Expand resolves pattern against root and returns the matching absolute
// file paths in first-seen order. Diagnostics (bounds breaches, a
// nonexistent root) are appended to log, which must already have
// FileContext set to the config file the pattern came from. Directory read
// errors below the root are skipped without a diagnostic.
func Expand(root, pattern string, log *arena.ConfigLog) []string {
	base, parts := rootAndParts(root, pattern, log)
	if base == "" {
		return nil
	}
	if info, err := os.Stat(base); err != nil || !info.IsDir() {
		log.Error("glob root does not exist: " + base)
		return nil
	}

	e := &expander{log: log, seen: make(map[string]bool)}
	e.dfs(base, parts, 0)
	return e.results
}

// rootAndParts applies the prefix-handling rules (/, ~/, relative) and
// splits the remainder of the pattern on "/".
func rootAndParts(root, pattern string, log *arena.ConfigLog) (string, []string) {
	switch {
	case strings.HasPrefix(pattern, "/"):
		return "/", splitSegments(strings.TrimPrefix(pattern, "/"))
	case strings.HasPrefix(pattern, "~/"):
		home := os.Getenv("HOME")
		if home == "" {
			log.Warn("HOME is unset, resolving ~/ pattern from /", pattern)
			return "/", splitSegments(strings.TrimPrefix(pattern, "~/"))
		}
		return home, splitSegments(strings.TrimPrefix(pattern, "~/"))
	default:
		return root, splitSegments(pattern)
	}
}

func splitSegments(pattern string) []string {
	var parts []string
	for _, p := range strings.Split(pattern, "/") {
		if p == "" {
			continue
		}
		parts = append(parts, p)
	}
	return parts
}

type expander struct {
	log       *arena.ConfigLog
	seen      map[string]bool
	results   []string
	starDirs  int
	starWarned bool
}

func canonicalize(path string) string {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

func (e *expander) accept(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return
	}
	canon := canonicalize(path)
	if e.seen[canon] {
		return
	}
	e.seen[canon] = true
	e.results = append(e.results, canon)
}

// dfs walks parts[idx:] rooted at base, matching spec §4.1's algorithm.
func (e *expander) dfs(base string, parts []string, idx int) {
	if idx == len(parts) {
		return
	}
	part := parts[idx]
	last := idx == len(parts)-1

	switch {
	case part == "**":
		e.dfsStarStar(base, parts, idx)
	case isWildcard(part):
		e.dfsWildcard(base, parts, idx, part, last)
	default:
		e.dfsLiteral(base, parts, idx, part, last)
	}
}

func (e *expander) dfsStarStar(base string, parts []string, idx int) {
	// Zero-match case first: ** can match zero directory levels.
	e.dfs(base, parts, idx+1)

	entries, err := os.ReadDir(base)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if e.starDirs >= maxStarStarDirs {
			if !e.starWarned {
				e.starWarned = true
				e.log.Warn("** expansion exceeded directory cap, stopped", "**")
			}
			return
		}
		e.starDirs++
		e.dfs(filepath.Join(base, entry.Name()), parts, idx)
	}
}

func (e *expander) dfsWildcard(base string, parts []string, idx int, part string, last bool) {
	entries, err := os.ReadDir(base)
	if err != nil {
		return
	}
	if len(entries) > maxWildcardEntries {
		e.log.Warn("wildcard segment exceeded entry cap, stopped", part)
		return
	}
	for _, entry := range entries {
		matched, err := filepath.Match(part, entry.Name())
		if err != nil || !matched {
			continue
		}
		full := filepath.Join(base, entry.Name())
		if last {
			if !entry.IsDir() {
				e.accept(full)
			}
			continue
		}
		if entry.IsDir() {
			e.dfs(full, parts, idx+1)
		}
	}
}

func (e *expander) dfsLiteral(base string, parts []string, idx int, part string, last bool) {
	full := filepath.Join(base, part)
	info, err := os.Stat(full)
	if err != nil {
		return
	}
	if last {
		if !info.IsDir() {
			e.accept(full)
		}
		return
	}
	if info.IsDir() {
		e.dfs(full, parts, idx+1)
	}
}

func isWildcard(part string) bool {
	return strings.ContainsAny(part, "*?")
}
