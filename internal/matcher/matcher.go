package matcher

import (
	"path/filepath"
	"sort"
	"strings"
)

var coverExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".bmp":  {},
	".gif":  {},
}

// IsLyric reports whether name carries the .lrc extension, case-insensitively.
func IsLyric(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".lrc")
}

// IsCover reports whether name carries a recognized image extension,
// case-insensitively.
func IsCover(name string) bool {
	_, ok := coverExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// FindLyric returns the lyric filename matching base, or empty when none
// matches. A candidate matches when its full name (extension included) starts
// with base. Candidates are sorted lexicographically before matching so the
// result does not depend on directory-listing order; the first match in
// sorted order wins.
func FindLyric(base string, names []string) string {
	candidates := make([]string, 0, len(names))
	for _, name := range names {
		if IsLyric(name) {
			candidates = append(candidates, name)
		}
	}
	sort.Strings(candidates)

	for _, name := range candidates {
		if strings.HasPrefix(name, base) {
			return name
		}
	}
	return ""
}

// CoverMatch is the result of a cover lookup. Name is the first matching
// filename in sorted order, or empty when nothing matched. When more than one
// candidate matched, Ambiguous is set and Candidates lists every match so the
// caller can decide whether first-wins is acceptable.
type CoverMatch struct {
	Name       string
	Ambiguous  bool
	Candidates []string
}

// Found reports whether the lookup produced a match.
func (m CoverMatch) Found() bool {
	return m.Name != ""
}

// FindCover matches base against image filenames. A candidate matches when
// its own basename (without extension) equals base, is a prefix of base, or
// has base as a prefix. Candidates are sorted lexicographically before
// matching; the first match wins and the rest are reported as candidates.
//
// The three-way containment rule can pair unrelated files when basenames are
// short or numeric ("1.jpg" matches every track starting with "1"), which is
// why every match is surfaced instead of silently picking one.
func FindCover(base string, names []string) CoverMatch {
	candidates := make([]string, 0, len(names))
	for _, name := range names {
		if IsCover(name) {
			candidates = append(candidates, name)
		}
	}
	sort.Strings(candidates)

	var match CoverMatch
	for _, name := range candidates {
		fileBase := strings.TrimSuffix(name, filepath.Ext(name))
		if fileBase == base || strings.HasPrefix(base, fileBase) || strings.HasPrefix(fileBase, base) {
			if match.Name == "" {
				match.Name = name
			}
			match.Candidates = append(match.Candidates, name)
		}
	}
	match.Ambiguous = len(match.Candidates) > 1
	return match
}
