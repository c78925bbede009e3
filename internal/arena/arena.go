// Package arena owns the File, Project, and ConfigDocument tables that the
// rest of the workspace-resolution core refers to by path or name instead of
// by pointer. Nothing outside this package should hold a *Project or
// *ConfigDocument across a reload; look it up again by key.
package arena

import "sync"

// IncludeKind distinguishes the variants of an include reference found in a
// config document's "include" array.
type IncludeKind int

const (
	IncludePath IncludeKind = iota
	IncludeOptionalPath
	IncludeDeprecatedGlobal
)

// IncludeReference is one entry of a ConfigDocument's "include" array.
type IncludeReference struct {
	Kind    IncludeKind
	Target  string // canonical path; empty for IncludeDeprecatedGlobal
	Literal string // as written in the JSON source
}

// File is a tracked source or config file. Text is nil when the file has not
// been loaded into memory, in which case it is read from disk on next use.
type File struct {
	Path string
	Text *string
}

// Project is a named grouping of files rooted at a directory.
type Project struct {
	Name         string
	Origin       string // canonical path of the config that first defined it
	RootDir      string
	Patterns     []string // raw patterns; "!" prefix marks an exclusion
	Dependencies []string // unresolved project names, may be cyclic

	Depth int // tie-breaking for duplicate definitions; smaller = closer to root

	filesBuilt bool
	files      []string
}

// SetFiles caches this project's materialized file list.
func (p *Project) SetFiles(files []string) {
	p.files = files
	p.filesBuilt = true
}

// Files returns the cached materialized file list, if any.
func (p *Project) Files() ([]string, bool) {
	return p.files, p.filesBuilt
}

// ConfigDocument is one parsed JSON configuration file.
type ConfigDocument struct {
	Path           string
	Version        string
	ProjectNames   []string
	DefaultProject string // empty if absent
	Includes       []IncludeReference
}

// Arena is the process-wide store of File, Project, and ConfigDocument
// records. It is single-threaded by design (see spec §5); the mutex exists
// for the same defensive-symmetry reasons the teacher guards DocumentStore
// and SymbolIndex, not because concurrent access is expected.
type Arena struct {
	mu sync.RWMutex

	files   map[string]*File
	projects map[string]*Project
	configs map[string]*ConfigDocument
}

// New returns an empty Arena.
func New() *Arena {
	return &Arena{
		files:    make(map[string]*File),
		projects: make(map[string]*Project),
		configs:  make(map[string]*ConfigDocument),
	}
}

// Reset clears all three tables. This is the only operation that performs a
// workspace reload at the arena level; callers are responsible for also
// invalidating anything derived from the old contents (cached resolutions,
// compilation results).
func (a *Arena) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.files = make(map[string]*File)
	a.projects = make(map[string]*Project)
	a.configs = make(map[string]*ConfigDocument)
}

// File returns the File for path, creating an empty one if absent. Insert is
// idempotent: an existing record is returned unchanged.
func (a *Arena) File(path string) *File {
	a.mu.Lock()
	defer a.mu.Unlock()
	if f, ok := a.files[path]; ok {
		return f
	}
	f := &File{Path: path}
	a.files[path] = f
	return f
}

// LookupFile returns the File for path without creating it.
func (a *Arena) LookupFile(path string) (*File, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	f, ok := a.files[path]
	return f, ok
}

// SetFileText stores client-supplied content for path, creating the File if
// necessary. This is how an editor's didOpen/didChange overrides on-disk
// content per spec §5.
func (a *Arena) SetFileText(path, text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	f, ok := a.files[path]
	if !ok {
		f = &File{Path: path}
		a.files[path] = f
	}
	f.Text = &text
}

// InsertProject registers p under its name if no project of that name
// exists yet, returning false (and the existing project) if one does.
// "First wins" is enforced by the caller choosing not to overwrite.
func (a *Arena) InsertProject(p *Project) (*Project, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if existing, ok := a.projects[p.Name]; ok {
		return existing, false
	}
	a.projects[p.Name] = p
	return p, true
}

// LookupProject returns the project registered under name.
func (a *Arena) LookupProject(name string) (*Project, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	p, ok := a.projects[name]
	return p, ok
}

// LookupConfig returns the ConfigDocument tracked at path.
func (a *Arena) LookupConfig(path string) (*ConfigDocument, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	c, ok := a.configs[path]
	return c, ok
}

// InsertConfig tracks doc under its path, replacing any previous entry at
// the same path (a reload always starts from a cleared arena, so this only
// matters within a single load pass, where it should never happen twice).
func (a *Arena) InsertConfig(doc *ConfigDocument) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configs[doc.Path] = doc
}

// TrackedConfigPath reports whether path is already tracked, used by the
// per-config-change optimization in the Workspace Resolver.
func (a *Arena) TrackedConfigPath(path string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.configs[path]
	return ok
}
