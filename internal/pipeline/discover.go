package pipeline

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"

	"github.com/ik5/mp32cdda/internal/config"
)

// Candidate is one validated input file and where its output goes.
type Candidate struct {
	Input     string
	OutputDir string
	Output    string
}

// Warning is a skipped path and the reason it was skipped.
type Warning struct {
	Path string
	Err  error
}

func (w Warning) String() string { return fmt.Sprintf("%s: %v", w.Path, w.Err) }

// extMatcher compares extensions under Unicode case folding.
type extMatcher struct {
	fold cases.Caser
	exts map[string]bool
}

func newExtMatcher(exts []string) *extMatcher {
	m := &extMatcher{fold: cases.Fold(), exts: make(map[string]bool, len(exts))}
	for _, e := range exts {
		m.exts[m.fold.String(strings.TrimPrefix(e, "."))] = true
	}
	return m
}

func (m *extMatcher) match(name string) bool {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	return ext != "" && m.exts[m.fold.String(ext)]
}

// Enumerate validates paths and expands directories into candidates, in
// input order. Directories are listed in lexical order; only their top level
// is scanned unless cfg.Recursive is set, and output directories met during
// a walk are skipped. Paths that cannot be used are returned as warnings and
// never stop enumeration. Nothing is written.
func Enumerate(cfg *config.Config, paths []string) ([]Candidate, []Warning) {
	m := newExtMatcher(cfg.Extensions)

	var cands []Candidate
	var warns []Warning
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			warns = append(warns, Warning{Path: p, Err: err})
			continue
		}

		switch {
		case fi.IsDir():
			c, w := scanDir(cfg, m, p)
			cands = append(cands, c...)
			warns = append(warns, w...)
		case !fi.Mode().IsRegular():
			warns = append(warns, Warning{Path: p, Err: ErrNotRegular})
		case !m.match(p):
			warns = append(warns, Warning{Path: p, Err: ErrWrongExtension})
		default:
			outDir := filepath.Join(filepath.Dir(p), cfg.OutputDirName)
			cands = append(cands, newCandidate(cfg, p, outDir))
		}
	}

	return cands, warns
}

func scanDir(cfg *config.Config, m *extMatcher, root string) ([]Candidate, []Warning) {
	outRoot := filepath.Join(root, cfg.OutputDirName)

	// WalkDir does not follow a symlinked root; walk its target and report
	// paths under root.
	walkRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, []Warning{{Path: root, Err: err}}
	}
	under := func(path string) string {
		rel, err := filepath.Rel(walkRoot, path)
		if err != nil {
			return path
		}
		return filepath.Join(root, rel)
	}

	var cands []Candidate
	var warns []Warning
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == walkRoot {
				return err
			}
			warns = append(warns, Warning{Path: under(path), Err: err})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path == walkRoot {
				return nil
			}
			if !cfg.Recursive || strings.EqualFold(d.Name(), cfg.OutputDirName) {
				return filepath.SkipDir
			}
			return nil
		}

		input := under(path)
		if !m.match(d.Name()) {
			warns = append(warns, Warning{Path: input, Err: ErrWrongExtension})
			return nil
		}
		if !d.Type().IsRegular() {
			// follow symlinks, reject devices and sockets
			fi, err := os.Stat(path)
			if err != nil {
				warns = append(warns, Warning{Path: input, Err: err})
				return nil
			}
			if !fi.Mode().IsRegular() {
				warns = append(warns, Warning{Path: input, Err: ErrNotRegular})
				return nil
			}
		}

		rel, err := filepath.Rel(root, filepath.Dir(input))
		if err != nil {
			warns = append(warns, Warning{Path: input, Err: err})
			return nil
		}
		cands = append(cands, newCandidate(cfg, input, filepath.Join(outRoot, rel)))
		return nil
	})

	switch {
	case err != nil:
		warns = append(warns, Warning{Path: root, Err: err})
	case len(cands) == 0:
		warns = append(warns, Warning{Path: root, Err: ErrNoCandidates})
	}

	return cands, warns
}

func newCandidate(cfg *config.Config, input, outDir string) Candidate {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	return Candidate{
		Input:     input,
		OutputDir: outDir,
		Output:    filepath.Join(outDir, stem+cfg.OutputExt),
	}
}
