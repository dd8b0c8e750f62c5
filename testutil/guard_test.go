package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPredicates(t *testing.T) {
	cases := []struct {
		name string
		pred func(string) bool
		in   string
		want bool
	}{
		{"internal", InternalImportForbidden, "palettecore/internal/core", true},
		{"internal pkg", InternalImportForbidden, "palettecore/pkg/domain", false},
		{"infra sqlite", InfraImportForbidden, "palettecore/internal/infra/persistence/sqlite", true},
		{"infra core", InfraImportForbidden, "palettecore/internal/core", false},
		{"exactly", Exactly("palettecore/internal/core"), "palettecore/internal/core", true},
		{"any of", AnyOf(Exactly("a"), Exactly("b")), "b", true},
		{"any of none", AnyOf(), "b", false},
	}
	for _, tc := range cases {
		if got := tc.pred(tc.in); got != tc.want {
			t.Fatalf("%s(%q)=%v want %v", tc.name, tc.in, got, tc.want)
		}
	}
}

type recorder struct {
	testing.TB
	failed string
}

func (r *recorder) Helper() {}

func (r *recorder) Fatalf(format string, args ...any) {
	r.failed = format
}

func writeFile(t *testing.T, dir, name, src string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestDirectImportViolations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ok.go", "package tmp\nimport \"fmt\"\nfunc X() { fmt.Println() }\n")
	writeFile(t, dir, "bad.go", "package tmp\nimport (\n\t\"palettecore/internal/infra/blob\"\n)\n")
	writeFile(t, dir, "bad_test.go", "package tmp\nimport \"palettecore/internal/core\"\n")
	writeFile(t, dir, "notes.txt", "import \"palettecore/internal/core\"")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(dir, "sub"), "sub.go", "package sub\nimport \"palettecore/internal/core\"\n")

	viols, err := directImportViolations(dir, InternalImportForbidden)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(viols) != 1 || !strings.Contains(viols[0], "bad.go") {
		t.Fatalf("expected only bad.go to violate, got %v", viols)
	}

	rec := &recorder{}
	AssertNoDirectImports(rec, dir, InternalImportForbidden, "demo")
	if rec.failed == "" {
		t.Fatalf("expected assertion failure")
	}
	AssertNoDirectImports(t, dir, Exactly("os"), "os is not imported")
}
