// Package workspace builds and maintains the config-document graph and
// answers, for any source file, the question "which files must be compiled
// together for this file?" (spec §4.4). It replaces the teacher's
// whole-tree best-effort indexer, whose own doc comments describe it as a
// fallback for the absence of a project graph — see DESIGN.md.
package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/artic-lang/artic-lsp/internal/arena"
	"github.com/artic-lang/artic-lsp/internal/config"
	"github.com/artic-lang/artic-lsp/internal/glob"
)

// configFilenames lists recognized config filenames per directory, in
// priority order (spec §4.4 step 1, §6).
var configFilenames = []string{".artic-lsp", "artic.json"}

// FileEventKind classifies a filesystem change reported to the resolver,
// either from workspace/didChangeWatchedFiles or from a textDocument/didSave
// on a config file.
type FileEventKind int

const (
	FileCreated FileEventKind = iota
	FileDeleted
	FileChanged
	FileSaved
)

// Resolver owns the config graph and per-file resolution caches. It is not
// safe for concurrent use by design (spec §5: single-threaded core); the
// mutex exists for the same defensive-symmetry reasons as internal/arena.
type Resolver struct {
	arena *arena.Arena

	mu             sync.Mutex
	projectForFile map[string]string // canonical path -> project name, "" = no project
}

// NewResolver returns an empty Resolver backed by its own Arena.
func NewResolver() *Resolver {
	return &Resolver{
		arena:          arena.New(),
		projectForFile: make(map[string]string),
	}
}

// Arena exposes the resolver's backing arena to callers that need direct
// file-content access (e.g. the orchestrator reading a File's buffer).
func (r *Resolver) Arena() *arena.Arena {
	return r.arena
}

// Reload clears the arena and all caches (spec §4.4 "Reload"). It is
// triggered on initialization, a relevant watched-config-file event, or an
// explicit client command; callers are responsible for also invalidating
// anything the orchestrator derived from the previous state.
func (r *Resolver) Reload(log *arena.ConfigLog) {
	r.arena.Reset()
	r.mu.Lock()
	r.projectForFile = make(map[string]string)
	r.mu.Unlock()
}

// HandleConfigEvent implements the per-config-change optimization of spec
// §4.4 together with §4.5's "config file opened/saved/changed → reload"
// trigger row, and resolves Open Question 3 (spec §9): a config file that
// is Created or Deleted always triggers a full reload (its tracked-ness is
// necessarily stale either way); a config file that is Saved or Changed in
// place only triggers a reload if its canonical path is currently tracked
// — an edit to a file nothing references cannot change any open file's
// resolution. Reports whether a reload actually happened.
func (r *Resolver) HandleConfigEvent(path string, kind FileEventKind, log *arena.ConfigLog) bool {
	canon := weakCanonicalize(path)
	switch kind {
	case FileCreated, FileDeleted:
		r.Reload(log)
		return true
	case FileChanged, FileSaved:
		if !r.arena.TrackedConfigPath(canon) {
			return false
		}
		r.Reload(log)
		return true
	default:
		return false
	}
}

// ResolveProject discovers the project that owns file, per spec §4.4 step 1.
func (r *Resolver) ResolveProject(file string, log *arena.ConfigLog) (*arena.Project, bool) {
	canon := weakCanonicalize(file)

	r.mu.Lock()
	if name, ok := r.projectForFile[canon]; ok {
		r.mu.Unlock()
		if name == "" {
			return nil, false
		}
		return r.arena.LookupProject(name)
	}
	r.mu.Unlock()

	proj, ok := r.discoverProject(canon, log)

	r.mu.Lock()
	if ok {
		r.projectForFile[canon] = proj.Name
	} else {
		r.projectForFile[canon] = ""
	}
	r.mu.Unlock()

	return proj, ok
}

func (r *Resolver) discoverProject(canon string, log *arena.ConfigLog) (*arena.Project, bool) {
	dir := filepath.Dir(canon)
	for {
		for _, name := range configFilenames {
			candidate := filepath.Join(dir, name)
			info, err := os.Stat(candidate)
			if err != nil || info.IsDir() {
				continue
			}
			doc, ok := r.loadConfig(candidate, false, log)
			if !ok {
				continue
			}
			if proj := r.findProjectInDocument(doc, canon, log); proj != nil {
				return proj, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return nil, false
}

// findProjectInDocument returns the first project declared in doc (in
// declaration order) that uses canon, or doc's default project if none do.
func (r *Resolver) findProjectInDocument(doc *arena.ConfigDocument, canon string, log *arena.ConfigLog) *arena.Project {
	for _, name := range doc.ProjectNames {
		if r.usesFile(name, canon, map[string]bool{}, log) {
			p, _ := r.arena.LookupProject(name)
			return p
		}
	}
	if doc.DefaultProject != "" {
		p, _ := r.arena.LookupProject(doc.DefaultProject)
		return p
	}
	return nil
}

// loadConfig loads (or returns the already-tracked) ConfigDocument at path.
// The arena's config table doubles as the include-cycle breaker: a config
// already tracked is never re-parsed or re-recursed into (spec §4.4
// "Cycle handling for config includes").
func (r *Resolver) loadConfig(path string, optional bool, log *arena.ConfigLog) (*arena.ConfigDocument, bool) {
	canon := weakCanonicalize(path)
	if doc, ok := r.arena.LookupConfig(canon); ok {
		return doc, true
	}

	parsed, ok := config.Parse(canon, optional, log)
	if !ok {
		return nil, false
	}
	doc := parsed.Document
	r.arena.InsertConfig(doc) // before recursing into includes: breaks cycles

	for _, p := range parsed.Projects {
		if _, inserted := r.arena.InsertProject(p); !inserted {
			log.WithFile(canon).Warn("ignoring duplicate project definition, keeping first", p.Name)
		}
	}

	for _, inc := range doc.Includes {
		switch inc.Kind {
		case arena.IncludeDeprecatedGlobal:
			log.WithFile(canon).Warn(`"<global>" include is deprecated and ignored`, inc.Literal)
		case arena.IncludePath:
			r.loadConfig(inc.Target, false, log)
		case arena.IncludeOptionalPath:
			r.loadConfig(inc.Target, true, log)
		}
	}

	return doc, true
}

// usesFile implements spec §4.4 step 3. visited guards the transitive
// dependency walk against cycles; a cycle edge is diagnosed once and then
// permanently removed from the owning project's dependency list.
func (r *Resolver) usesFile(projectName, file string, visited map[string]bool, log *arena.ConfigLog) bool {
	p, ok := r.arena.LookupProject(projectName)
	if !ok {
		log.Error("unresolved project dependency", projectName)
		return false
	}

	for _, f := range r.ProjectFiles(projectName, log) {
		if f == file {
			return true
		}
	}

	// Snapshot before recursing: a cycle can bring us back to this same
	// project pointer, and the recursive call rewrites p.Dependencies on
	// its own backing array. Iterating p.Dependencies directly would then
	// read entries the recursive call already overwrote.
	deps := append([]string(nil), p.Dependencies...)
	var kept []string
	matched := false
	for _, dep := range deps {
		if visited[dep] {
			log.WithFile(p.Origin).Error("cyclic project dependency, removing edge", dep)
			continue
		}
		kept = append(kept, dep)
		visited[dep] = true
		if r.usesFile(dep, file, visited, log) {
			matched = true
		}
	}
	p.Dependencies = kept

	return matched
}

// ProjectFiles materializes and caches projectName's file list: every
// non-exclusion pattern expanded via internal/glob, minus every path
// matched by any exclusion pattern (spec §4.4 step 4; Open Question 1
// resolved as "exclusion wins unconditionally" — see DESIGN.md).
func (r *Resolver) ProjectFiles(projectName string, log *arena.ConfigLog) []string {
	p, ok := r.arena.LookupProject(projectName)
	if !ok {
		return nil
	}
	if files, built := p.Files(); built {
		return files
	}

	included := make(map[string]bool)
	var order []string
	for _, pattern := range p.Patterns {
		if strings.HasPrefix(pattern, "!") {
			continue
		}
		matches := glob.Expand(p.RootDir, pattern, log.WithFile(p.Origin))
		if len(matches) == 0 {
			log.WithFile(p.Origin).Warn("pattern matched 0 files", pattern)
		}
		for _, m := range matches {
			if !included[m] {
				included[m] = true
				order = append(order, m)
			}
		}
	}
	for _, pattern := range p.Patterns {
		if !strings.HasPrefix(pattern, "!") {
			continue
		}
		bare := strings.TrimPrefix(pattern, "!")
		excludes := glob.Expand(p.RootDir, bare, log.WithFile(p.Origin))
		if len(excludes) == 0 {
			log.WithFile(p.Origin).Warn("exclusion pattern matched 0 files", pattern)
		}
		for _, m := range excludes {
			included[m] = false
		}
	}

	result := make([]string, 0, len(order))
	for _, m := range order {
		if included[m] {
			result = append(result, m)
		}
	}
	p.SetFiles(result)
	return result
}

// CompileUnit assembles the ordered, deduplicated file set that must be
// compiled together for file (spec §4.4 step 5).
func (r *Resolver) CompileUnit(file string, log *arena.ConfigLog) []string {
	canon := weakCanonicalize(file)

	var result []string
	seenFiles := make(map[string]bool)

	if proj, ok := r.ResolveProject(canon, log); ok {
		r.collectProjectFiles(proj.Name, &result, seenFiles, map[string]bool{}, log)
	}

	if !seenFiles[canon] {
		result = append(result, canon)
	}

	return result
}

func (r *Resolver) collectProjectFiles(name string, out *[]string, seenFiles, visitedProjects map[string]bool, log *arena.ConfigLog) {
	if visitedProjects[name] {
		return
	}
	visitedProjects[name] = true

	p, ok := r.arena.LookupProject(name)
	if !ok {
		return
	}

	for _, f := range r.ProjectFiles(name, log) {
		if !seenFiles[f] {
			seenFiles[f] = true
			*out = append(*out, f)
		}
	}

	for _, dep := range p.Dependencies {
		r.collectProjectFiles(dep, out, seenFiles, visitedProjects, log)
	}
}

func weakCanonicalize(path string) string {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
