package loader

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/panyam/pylang/runtime"
)

// DefaultSuffix is appended to load paths that do not name a file as is.
const DefaultSuffix = ".pyl"

// Resolver maps a load path, as written in the importing program, to the
// canonical path of an existing file.
type Resolver interface {
	Resolve(importer, loadPath string) (canonical string, err error)
}

// SearchPathResolver looks a load path up relative to the importing file
// first and then under each search path.  Every candidate is tried as is
// and then with Suffix appended.
type SearchPathResolver struct {
	FS          FileSystem
	SearchPaths []string
	Suffix      string
}

func NewSearchPathResolver(fs FileSystem, searchPaths []string, suffix string) *SearchPathResolver {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	return &SearchPathResolver{FS: fs, SearchPaths: searchPaths, Suffix: suffix}
}

// Candidates lists the paths tried for a load, in order.
func (r *SearchPathResolver) Candidates(importer, loadPath string) (out []string) {
	var bases []string
	switch {
	case isURL(loadPath), filepath.IsAbs(loadPath):
		bases = []string{loadPath}
	case isURL(importer):
		if base, err := url.Parse(importer); err == nil {
			if ref, err := url.Parse(loadPath); err == nil {
				bases = append(bases, base.ResolveReference(ref).String())
			}
		}
	case importer != "":
		bases = append(bases, filepath.Join(filepath.Dir(importer), loadPath))
	default:
		bases = append(bases, filepath.Clean(loadPath))
	}
	if !isURL(loadPath) && !filepath.IsAbs(loadPath) {
		for _, sp := range r.SearchPaths {
			if isURL(sp) {
				bases = append(bases, strings.TrimSuffix(sp, "/")+"/"+path.Clean(loadPath))
			} else {
				bases = append(bases, filepath.Join(sp, loadPath))
			}
		}
	}

	seen := map[string]bool{}
	add := func(c string) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for _, base := range bases {
		add(base)
		if r.Suffix != "" && !strings.HasSuffix(base, r.Suffix) {
			add(base + r.Suffix)
		}
	}
	return
}

func (r *SearchPathResolver) Resolve(importer, loadPath string) (string, error) {
	candidates := r.Candidates(importer, loadPath)
	for _, c := range candidates {
		if r.FS.Exists(c) {
			return r.FS.Canonical(c), nil
		}
	}
	return "", fmt.Errorf("%w: cannot find %q (tried %s)", runtime.ErrLoad, loadPath, strings.Join(candidates, ", "))
}
