// Package config parses a single on-disk workspace configuration document
// (.artic-lsp or artic.json) into arena.ConfigDocument and arena.Project
// records, accumulating diagnostics tied to literal JSON tokens.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/artic-lang/artic-lsp/internal/arena"
)

const (
	currentVersion    = "2.0"
	deprecatedVersion = "1.0"
)

var allowedTopLevelKeys = map[string]bool{
	"artic-config":    true,
	"default-project": true,
	"include":         true,
	"projects":        true,
}

// Parsed is the structured result of parsing one config document: the
// document itself plus every project it declares directly (including an
// inline "default-project" object, if present).
type Parsed struct {
	Document *arena.ConfigDocument
	Projects []*arena.Project
}

// Parse reads and parses the config document at path. optional indicates
// whether a missing file is a silent no-op (true, from a "path?" include)
// or an error (false). Parse sets log's FileContext to path (via WithFile)
// before emitting diagnostics about this document.
func Parse(path string, optional bool, log *arena.ConfigLog) (*Parsed, bool) {
	log.WithFile(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if optional {
			return nil, false
		}
		log.Error("missing config file: " + path)
		return nil, false
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Error("invalid JSON: " + err.Error())
		return nil, false
	}

	for key := range raw {
		if !allowedTopLevelKeys[key] {
			log.Error("unknown key in config document", key)
		}
	}

	version, ok := parseVersion(raw, log)
	if !ok {
		return nil, false
	}

	doc := &arena.ConfigDocument{Path: path, Version: version}
	var projects []*arena.Project
	dir := filepath.Dir(path)

	if rawProjects, ok := raw["projects"]; ok {
		var items []json.RawMessage
		if err := json.Unmarshal(rawProjects, &items); err != nil {
			log.Error(`"projects" must be an array`, `projects`)
		} else {
			for _, item := range items {
				p := parseProject(item, path, dir, log)
				if p != nil {
					projects = append(projects, p)
					doc.ProjectNames = append(doc.ProjectNames, p.Name)
				}
			}
		}
	}

	if rawDefault, ok := raw["default-project"]; ok {
		name, inline := parseDefaultProject(rawDefault, path, dir, log)
		if inline != nil {
			projects = append(projects, inline)
			doc.ProjectNames = append(doc.ProjectNames, inline.Name)
			doc.DefaultProject = inline.Name
		} else if name != "" {
			doc.DefaultProject = name
		}
	}

	if rawInclude, ok := raw["include"]; ok {
		var items []string
		if err := json.Unmarshal(rawInclude, &items); err != nil {
			log.Error(`"include" must be an array of strings`, `include`)
		} else {
			for _, item := range items {
				doc.Includes = append(doc.Includes, parseInclude(item, dir))
			}
		}
	}

	return &Parsed{Document: doc, Projects: projects}, true
}

func parseVersion(raw map[string]json.RawMessage, log *arena.ConfigLog) (string, bool) {
	rawVersion, ok := raw["artic-config"]
	if !ok {
		log.Error(`missing required "artic-config" key`)
		return "", false
	}
	var version string
	if err := json.Unmarshal(rawVersion, &version); err != nil {
		log.Error(`"artic-config" must be a string`, `artic-config`)
		return "", false
	}
	switch version {
	case currentVersion:
		return version, true
	case deprecatedVersion:
		log.Warn(`"artic-config" version "1.0" is deprecated`, version)
		return version, true
	default:
		log.Warn(`unrecognized "artic-config" version, treating as current`, version)
		return version, true
	}
}

func parseInclude(item, dir string) arena.IncludeReference {
	if item == "<global>" {
		return arena.IncludeReference{Kind: arena.IncludeDeprecatedGlobal, Literal: item}
	}
	optional := strings.HasSuffix(item, "?")
	raw := strings.TrimSuffix(item, "?")
	target := weakCanonicalize(toAbsolutePath(dir, raw))
	kind := arena.IncludePath
	if optional {
		kind = arena.IncludeOptionalPath
	}
	return arena.IncludeReference{Kind: kind, Target: target, Literal: item}
}

type projectJSON struct {
	Name         string   `json:"name"`
	Folder       string   `json:"folder"`
	Dependencies []string `json:"dependencies"`
	Files        []string `json:"files"`
}

func parseProject(raw json.RawMessage, origin, dir string, log *arena.ConfigLog) *arena.Project {
	var pj projectJSON
	if err := json.Unmarshal(raw, &pj); err != nil {
		log.Error("invalid project object: " + err.Error())
		return nil
	}
	if pj.Name == "" {
		log.Error(`project object missing required "name"`)
		return nil
	}

	root := dir
	if pj.Folder != "" {
		candidate := toAbsolutePath(dir, pj.Folder)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			root = candidate
		} else {
			log.Error("project folder does not exist, falling back to config directory", pj.Folder)
		}
	}

	return &arena.Project{
		Name:         pj.Name,
		Origin:       origin,
		RootDir:      root,
		Patterns:     pj.Files,
		Dependencies: pj.Dependencies,
	}
}

// parseDefaultProject handles "default-project" being either a bare string
// (a reference to an existing project name) or an inline project object
// (which is also registered by name, per spec §4.2).
func parseDefaultProject(raw json.RawMessage, origin, dir string, log *arena.ConfigLog) (string, *arena.Project) {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return name, nil
	}
	p := parseProject(raw, origin, dir, log)
	if p == nil {
		return "", nil
	}
	return "", p
}

// toAbsolutePath resolves path against dir per spec §4.2's rules for both
// "folder" values and include strings.
func toAbsolutePath(dir, path string) string {
	switch {
	case strings.HasPrefix(path, "/"):
		return path
	case strings.HasPrefix(path, "~/"):
		home := os.Getenv("HOME")
		if home == "" {
			return filepath.Join("/", strings.TrimPrefix(path, "~/"))
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~/"))
	default:
		return filepath.Join(dir, path)
	}
}

// weakCanonicalize cleans and absolutizes a path without requiring that it,
// or any symlink along it, actually exist.
func weakCanonicalize(path string) string {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
