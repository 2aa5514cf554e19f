package taxonomy

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewDedupes(t *testing.T) {
	s := New([]string{"A", "B", "A", " "}, []string{"X", "X"})
	if cats := s.Categories(); len(cats) != 2 || cats[0] != "A" || cats[1] != "B" {
		t.Fatalf("unexpected categories: %v", cats)
	}
	if srcs := s.Sources(); len(srcs) != 1 {
		t.Fatalf("unexpected sources: %v", srcs)
	}
	if !s.HasCategory("B") || s.HasCategory("C") {
		t.Fatalf("HasCategory mismatch")
	}
}

func TestNewFromFilesSeedsAndDefaults(t *testing.T) {
	dir := t.TempDir()
	s := NewFromFiles(dir)
	if len(s.Categories()) != len(DefaultCategories) || len(s.Sources()) != len(DefaultSources) {
		t.Fatalf("expected defaults when files missing")
	}

	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite("seed_categories.txt", "# header\nRent\nGroceries\nRent\n\n")
	mustWrite("seed_sources.txt", "# header\nPension\n")

	s = NewFromFiles(dir)
	cats := s.Categories()
	if len(cats) != 2 || cats[0] != "Rent" || cats[1] != "Groceries" {
		t.Fatalf("unexpected categories: %v", cats)
	}
	if !s.HasSource("Pension") || s.HasSource("Salary") {
		t.Fatalf("unexpected sources: %v", s.Sources())
	}
}

func TestCategoriesReturnsCopy(t *testing.T) {
	s := New([]string{"A"}, nil)
	c := s.Categories()
	c[0] = "mutated"
	if s.Categories()[0] != "A" {
		t.Fatalf("store was mutated through returned slice")
	}
}

func TestDefaultsMatchEntryForms(t *testing.T) {
	s := New(DefaultCategories, DefaultSources)
	for _, c := range []string{"Food", "Transport", "Entertainment", "Utilities", "Shopping", "Healthcare", "Education", "Other"} {
		if !s.HasCategory(c) {
			t.Errorf("default categories missing %q", c)
		}
	}
	if len(s.Categories()) != 8 || s.HasCategory("Housing") {
		t.Errorf("unexpected default categories: %v", s.Categories())
	}
	for _, src := range []string{"Salary", "Freelance", "Investment", "Gift", "Other"} {
		if !s.HasSource(src) {
			t.Errorf("default sources missing %q", src)
		}
	}
}
