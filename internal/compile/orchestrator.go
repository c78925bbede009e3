package compile

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/artic-lang/artic-lsp/internal/analysis"
	"github.com/artic-lang/artic-lsp/internal/arena"
	"github.com/artic-lang/artic-lsp/internal/workspace"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Orchestrator owns at most one cached CompilationResult and implements the
// trigger matrix of spec §4.5.
type Orchestrator struct {
	resolver *workspace.Resolver

	mu       sync.Mutex
	current  *CompilationResult
	safeMode bool
}

// New returns an Orchestrator backed by resolver.
func New(resolver *workspace.Resolver) *Orchestrator {
	return &Orchestrator{resolver: resolver}
}

// SetSafeMode enables or disables safe mode for the next build. It is set
// from the restartFromCrash initialization option (spec §5/§6) and cleared
// automatically on the first fully-parsing build (spec §4.5 "Safe mode").
func (o *Orchestrator) SetSafeMode(v bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.safeMode = v
}

func (o *Orchestrator) SafeMode() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.safeMode
}

// Current returns the currently cached result, or nil if invalid.
func (o *Orchestrator) Current() *CompilationResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Invalidate drops the current result without rebuilding (used for config
// reload triggers per the trigger matrix: "invalidate; do not rebuild eagerly").
func (o *Orchestrator) Invalidate() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.current = nil
}

// BuildResult is the outcome of a Build call: the new CompilationResult and
// the diagnostic log accumulated while resolving the workspace for it (config
// errors surfaced while materializing the compile set, not compile errors).
type BuildResult struct {
	Compilation *CompilationResult
	ConfigLog   *arena.ConfigLog
}

// Build performs spec §4.5's "Building" steps 1-7 for triggerFile: resolve
// the compile set, replace the current result, invoke the frontend per
// file (skipping non-parsing files if safe mode is on), and clear safe mode
// on the first fully-parsing build.
func (o *Orchestrator) Build(triggerFile string) *BuildResult {
	canon := canonicalize(triggerFile)

	log := &arena.ConfigLog{}
	files := o.resolver.CompileUnit(canon, log)

	o.mu.Lock()
	safeMode := o.safeMode
	o.mu.Unlock()

	result := newResult(files)
	allParsed := true

	for _, f := range files {
		if !isSourceExtension(f) {
			// Project patterns are config-driven (spec §4.4) and not
			// restricted to source files; the frontend only knows how to
			// parse artic source, so anything else in the compile set is
			// skipped rather than handed to it.
			result.Diagnostics[f] = []protocol.Diagnostic{}
			continue
		}

		text, err := o.readText(f)
		if err != nil {
			result.Diagnostics[f] = []protocol.Diagnostic{}
			allParsed = false
			continue
		}

		program, diags, perr := analysis.ParseDocument(text, f)
		if perr != nil {
			result.Diagnostics[f] = []protocol.Diagnostic{}
			allParsed = false
			continue
		}

		result.Diagnostics[f] = diags
		if hasError(diags) {
			allParsed = false
			if safeMode {
				continue // skip merging this file's AST into the result
			}
		}

		result.Programs[f] = program
		result.indexProgram(f, program)
	}

	o.mu.Lock()
	o.current = result
	if allParsed {
		o.safeMode = false
	}
	o.mu.Unlock()

	return &BuildResult{Compilation: result, ConfigLog: log}
}

// isSourceExtension reports whether path names an artic source file (spec
// §6: ".art" and ".impala" are both recognized). The client's languageID
// drives editor-side behavior, but the orchestrator reads the compile set
// straight off disk and has no languageID to consult, so it gates on the
// extension here instead.
func isSourceExtension(path string) bool {
	switch ext := filepath.Ext(path); ext {
	case ".art", ".impala":
		return true
	default:
		return false
	}
}

func hasError(diags []protocol.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity != nil && *d.Severity == protocol.DiagnosticSeverityError {
			return true
		}
	}
	return false
}

func (o *Orchestrator) readText(path string) (string, error) {
	if f, ok := o.resolver.Arena().LookupFile(path); ok && f.Text != nil {
		return *f.Text, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// --- Trigger matrix (spec §4.5) ---

// OnFileOpened implements "Source file opened, no current result OR
// current result lacks this file → rebuild for this file."
func (o *Orchestrator) OnFileOpened(file string) *BuildResult {
	canon := canonicalize(file)
	if cur := o.Current(); cur != nil && cur.Covers(canon) {
		return &BuildResult{Compilation: cur, ConfigLog: &arena.ConfigLog{}}
	}
	return o.Build(canon)
}

// OnFileChanged implements "Source file changed (full text sync) → store
// the new text on the File; rebuild for this file."
func (o *Orchestrator) OnFileChanged(file, text string) *BuildResult {
	canon := canonicalize(file)
	o.resolver.Arena().SetFileText(canon, text)
	return o.Build(canon)
}

// OnFileSaved implements "Source file saved → no-op."
func (o *Orchestrator) OnFileSaved(file string) {}

// OnConfigEvent implements "Config file opened/saved/changed → reload
// workspace; invalidate current result; do not rebuild eagerly", deferring
// the reload-or-not decision to the Workspace Resolver's tracked-path
// optimization (spec §4.4).
func (o *Orchestrator) OnConfigEvent(path string, kind workspace.FileEventKind) (reloaded bool, log *arena.ConfigLog) {
	log = &arena.ConfigLog{}
	reloaded = o.resolver.HandleConfigEvent(path, kind, log)
	if reloaded {
		o.Invalidate()
	}
	return reloaded, log
}

// LookupKind is the outcome of a symbol-lookup trigger-matrix row: either
// a CompilationResult to use, or a signal that the handler should return an
// empty response without compiling.
type LookupKind int

const (
	// LookupReuse: the current result already covers the target file.
	LookupReuse LookupKind = iota
	// LookupBuild: a fresh build for the target file was performed.
	LookupBuild
	// LookupEmpty: semantic-tokens/inlay-hints must not trigger a compile;
	// the handler should return an empty result.
	LookupEmpty
)

// EnsureForNavigation implements the symbol-lookup row of the trigger
// matrix for definition/references/rename/completion/debug-AST: reuse the
// current result if it covers file, else build for it.
func (o *Orchestrator) EnsureForNavigation(file string) (*CompilationResult, LookupKind) {
	canon := canonicalize(file)
	if cur := o.Current(); cur != nil && cur.Covers(canon) {
		return cur, LookupReuse
	}
	built := o.Build(canon)
	return built.Compilation, LookupBuild
}

// EnsureForTokenRequest implements the symbol-lookup row for semantic
// tokens and inlay hints: reuse if covered, otherwise report LookupEmpty
// without compiling, since these requests arrive right after an edit and
// must not invalidate the result that edit just produced (spec §5).
func (o *Orchestrator) EnsureForTokenRequest(file string) (*CompilationResult, LookupKind) {
	canon := canonicalize(file)
	if cur := o.Current(); cur != nil && cur.Covers(canon) {
		return cur, LookupReuse
	}
	return nil, LookupEmpty
}

func canonicalize(path string) string {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
