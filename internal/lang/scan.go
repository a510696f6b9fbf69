package lang

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob.
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Manifest is the result of scanning a tree: which languages are present and
// which files carry them. It drives grammar preloading so that only grammars
// for languages actually present get instantiated.
type Manifest struct {
	Root      string
	Files     []FileEntry
	Counts    map[Language]int
	Skipped   int
	SkipPaths []string
}

// FileEntry is one classified file in the manifest.
type FileEntry struct {
	Path     string // absolute
	RelPath  string // slash-separated, relative to root
	Language Language
	Size     int64
}

// Languages returns the set of languages present in the manifest.
func (m *Manifest) Languages() []Language {
	out := make([]Language, 0, len(m.Counts))
	for l := range m.Counts {
		out = append(out, l)
	}
	return out
}

// Scanner walks a source tree, classifies every file once, and applies
// exclusion globs.
type Scanner struct {
	root     string
	excludes []compiledPattern
}

// NewScanner compiles the exclusion globs for a root directory.
func NewScanner(root string, excludes []string) (*Scanner, error) {
	s := &Scanner{root: root}
	for _, pattern := range excludes {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		s.excludes = append(s.excludes, compiledPattern{pattern: pattern, glob: g})
	}
	return s, nil
}

// Scan runs Detect over every non-excluded file under the root and builds
// the manifest. Unrecognized and binary files are skipped and counted,
// never treated as errors.
func (s *Scanner) Scan() (*Manifest, error) {
	m := &Manifest{
		Root:   s.root,
		Counts: make(map[Language]int),
	}

	err := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if s.shouldExclude(relPath) {
				return filepath.SkipDir
			}
			return nil
		}
		if s.shouldExclude(relPath) {
			return nil
		}

		sample, readErr := readSample(path)
		if readErr != nil {
			m.Skipped++
			m.SkipPaths = append(m.SkipPaths, relPath)
			return nil
		}

		l, ok := Detect(path, sample)
		if !ok {
			m.Skipped++
			m.SkipPaths = append(m.SkipPaths, relPath)
			return nil
		}

		m.Files = append(m.Files, FileEntry{
			Path:     path,
			RelPath:  relPath,
			Language: l,
			Size:     info.Size(),
		})
		m.Counts[l]++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// shouldExclude checks a relative path against the exclusion globs. A bare
// directory name like "node_modules" also excludes everything beneath it.
func (s *Scanner) shouldExclude(relPath string) bool {
	if relPath == "." {
		return false
	}
	for _, cp := range s.excludes {
		if cp.glob.Match(relPath) {
			return true
		}
	}
	// "vendor" should behave like "vendor/**" for directory prefixes.
	for _, cp := range s.excludes {
		if !strings.ContainsAny(cp.pattern, "*?[") && strings.HasPrefix(relPath, cp.pattern+"/") {
			return true
		}
	}
	return false
}

// readSample reads at most SampleSize bytes from the head of a file.
func readSample(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf := make([]byte, SampleSize)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}
