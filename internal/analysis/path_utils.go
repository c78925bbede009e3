package analysis

import (
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
)

// URIToPath converts a file:// URI into an OS-specific absolute path. It is
// exported so internal/lsp handlers can turn a document URI into the path
// the compile orchestrator and workspace resolver key their state on.
func URIToPath(u string) (string, error) {
	return uriToPath(u)
}

// PathToURI converts an OS-specific absolute path into a file:// URI. It is
// the inverse of URIToPath, used to publish diagnostics for files the
// compile orchestrator touched that the client never opened directly (spec
// §4.5's cross-file rebuild).
func PathToURI(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// uriToPath converts a file:// URI into an OS-specific absolute path.
func uriToPath(u string) (string, error) {
	parsed, err := url.Parse(u)
	if err != nil {
		return "", err
	}

	if parsed.Scheme != "file" && parsed.Scheme != "" {
		return "", fmt.Errorf("unsupported URI scheme: %s", parsed.Scheme)
	}

	path := parsed.Path
	if path == "" {
		path = parsed.Opaque
	}

	decoded, err := url.PathUnescape(path)
	if err == nil {
		path = decoded
	}

	if runtime.GOOS == "windows" {
		if strings.HasPrefix(path, "/") && len(path) >= 3 && path[2] == ':' {
			path = path[1:]
		}
	}

	if path == "" {
		return "", fmt.Errorf("empty path extracted from URI: %s", u)
	}

	return filepath.FromSlash(path), nil
}
