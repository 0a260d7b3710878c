package runner_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/michaelbrown/runcheck/internal/runner"
)

func TestDetect(t *testing.T) {
	cases := []struct {
		path string
		want runner.Language
	}{
		{"main.py", runner.LangPython},
		{"main.PY", runner.LangPython},
		{"prog.c", runner.LangC},
		{"prog.cpp", runner.LangCPP},
		{"prog.cxx", runner.LangCPP},
		{"prog.cc", runner.LangCPP},
		{"Main.java", runner.LangJava},
		{"Main.JAVA", runner.LangJava},
		{"script.sh", runner.LangUnknown},
		{"README", runner.LangUnknown},
		{"archive.tar.gz", runner.LangUnknown},
	}

	for _, tc := range cases {
		if got := runner.Detect(tc.path); got != tc.want {
			t.Errorf("Detect(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestExtensionRoundTrip(t *testing.T) {
	for _, lang := range runner.Languages() {
		ext := runner.ExtensionFor(lang)
		if ext == "" {
			t.Fatalf("ExtensionFor(%q) is empty", lang)
		}
		if got := runner.Detect("snippet" + ext); got != lang {
			t.Errorf("Detect(snippet%s) = %q, want %q", ext, got, lang)
		}
	}
}

func TestLoadToolchainsOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "languages.yaml")
	overlay := `c:
  compiler: clang
python:
  interpreters: [python3.12, python3]
`
	if err := os.WriteFile(path, []byte(overlay), 0o644); err != nil {
		t.Fatal(err)
	}

	chains, err := runner.LoadToolchains(path)
	if err != nil {
		t.Fatalf("LoadToolchains: %v", err)
	}

	if got := chains[runner.LangC].Compiler; got != "clang" {
		t.Errorf("c compiler = %q, want clang", got)
	}
	// Unmentioned languages keep their defaults.
	if got := chains[runner.LangCPP].Compiler; got != "g++" {
		t.Errorf("cpp compiler = %q, want g++", got)
	}
	if got := chains[runner.LangJava].Runtime; got != "java" {
		t.Errorf("java runtime = %q, want java", got)
	}
	want := []string{"python3.12", "python3"}
	got := chains[runner.LangPython].Interpreters
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("python interpreters = %v, want %v", got, want)
	}
}

func TestLoadToolchainsUnknownLanguage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "languages.yaml")
	if err := os.WriteFile(path, []byte("rust:\n  compiler: rustc\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := runner.LoadToolchains(path); err == nil {
		t.Fatal("want error for unsupported language override")
	}
}
