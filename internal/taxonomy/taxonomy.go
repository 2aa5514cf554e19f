// Package taxonomy holds the fixed sets of expense categories and income
// sources presented by the entry forms.
package taxonomy

import (
	"bufio"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

var (
	DefaultCategories = []string{"Food", "Transport", "Entertainment", "Utilities", "Shopping", "Healthcare", "Education", "Other"}
	DefaultSources    = []string{"Salary", "Freelance", "Investment", "Gift", "Other"}
)

type Store struct {
	categories []string
	sources    []string
}

func New(categories, sources []string) *Store {
	return &Store{categories: dedupe(categories), sources: dedupe(sources)}
}

// NewFromFiles seeds the sets from seed_categories.txt and seed_sources.txt
// under base, falling back to the defaults for missing or empty files.
func NewFromFiles(base string) *Store {
	cats := readLines(filepath.Join(base, "seed_categories.txt"))
	srcs := readLines(filepath.Join(base, "seed_sources.txt"))
	if len(cats) == 0 {
		cats = DefaultCategories
	}
	if len(srcs) == 0 {
		srcs = DefaultSources
	}
	return New(cats, srcs)
}

func (s *Store) Categories() []string { return slices.Clone(s.categories) }

func (s *Store) Sources() []string { return slices.Clone(s.sources) }

// HasCategory reports whether c is one of the configured categories.
func (s *Store) HasCategory(c string) bool { return slices.Contains(s.categories, c) }

// HasSource reports whether src is one of the configured sources.
func (s *Store) HasSource(src string) bool { return slices.Contains(s.sources, src) }

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

// dedupe drops blanks and repeats, preserving first-seen order.
func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
