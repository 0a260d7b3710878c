package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Language is a supported source language. The set is closed; anything
// the extension table does not know maps to LangUnknown.
type Language string

const (
	LangPython  Language = "python"
	LangC       Language = "c"
	LangCPP     Language = "cpp"
	LangJava    Language = "java"
	LangUnknown Language = "Unknown"
)

var extensions = map[string]Language{
	".py":   LangPython,
	".c":    LangC,
	".cpp":  LangCPP,
	".cxx":  LangCPP,
	".cc":   LangCPP,
	".java": LangJava,
}

// Detect maps a file path to its language by extension, case-insensitively.
func Detect(path string) Language {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := extensions[ext]; ok {
		return lang
	}
	return LangUnknown
}

// Supported reports whether the file's extension is in the supported set.
func Supported(path string) bool { return Detect(path) != LangUnknown }

// Extensions returns the supported extensions, sorted.
func Extensions() []string {
	exts := make([]string, 0, len(extensions))
	for ext := range extensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Languages returns the supported languages, sorted by name.
func Languages() []Language {
	seen := map[Language]bool{}
	var langs []Language
	for _, lang := range extensions {
		if !seen[lang] {
			seen[lang] = true
			langs = append(langs, lang)
		}
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

// ExtensionFor returns the canonical file extension for a language,
// or "" for LangUnknown.
func ExtensionFor(lang Language) string {
	switch lang {
	case LangPython:
		return ".py"
	case LangC:
		return ".c"
	case LangCPP:
		return ".cpp"
	case LangJava:
		return ".java"
	}
	return ""
}

// Toolchain names the external tools used for one language. Compiler is
// empty for interpreted languages; Interpreters is an ordered list of
// candidate binaries probed until one answers a version check.
type Toolchain struct {
	Compiler     string   `yaml:"compiler"`
	Runtime      string   `yaml:"runtime"`
	Interpreters []string `yaml:"interpreters"`
}

func defaultToolchains() map[Language]Toolchain {
	return map[Language]Toolchain{
		LangPython: {Interpreters: []string{"python3", "python"}},
		LangC:      {Compiler: "gcc"},
		LangCPP:    {Compiler: "g++"},
		LangJava:   {Compiler: "javac", Runtime: "java"},
	}
}

// LoadToolchains reads per-language tool overrides from a YAML file and
// applies them over the defaults. Languages outside the supported set
// are rejected; fields left empty keep their default.
func LoadToolchains(path string) (map[Language]Toolchain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading languages file %s: %w", path, err)
	}

	var overrides map[Language]Toolchain
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parsing languages file %s: %w", path, err)
	}

	chains := defaultToolchains()
	for lang, o := range overrides {
		base, ok := chains[lang]
		if !ok {
			return nil, fmt.Errorf("languages file %s: unsupported language %q", path, lang)
		}
		if o.Compiler != "" {
			base.Compiler = o.Compiler
		}
		if o.Runtime != "" {
			base.Runtime = o.Runtime
		}
		if len(o.Interpreters) > 0 {
			base.Interpreters = o.Interpreters
		}
		chains[lang] = base
	}
	return chains, nil
}
