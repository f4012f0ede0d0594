package confkit_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pricefeed-api/pkg/confkit"
)

func TestResolvePath(t *testing.T) {
	t.Setenv("CONF_DIR", "confdir")

	tests := []struct {
		name     string
		base     string
		file     string
		expected string
	}{
		{
			name:     "absolute path passes through",
			base:     "/base/dir",
			file:     "/absolute/path/file.yaml",
			expected: "/absolute/path/file.yaml",
		},
		{
			name:     "relative path joins base",
			base:     "/base/dir",
			file:     "config/file.yaml",
			expected: "/base/dir/config/file.yaml",
		},
		{
			name:     "env var expands before joining",
			base:     "/base/dir",
			file:     "${CONF_DIR}/file.yaml",
			expected: "/base/dir/confdir/file.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := confkit.ResolvePath(tt.base, tt.file); got != tt.expected {
				t.Errorf("ResolvePath(%q, %q) = %q, want %q", tt.base, tt.file, got, tt.expected)
			}
		})
	}
}

func TestBaseDir(t *testing.T) {
	tests := []struct {
		name     string
		mainPath string
		expected string
	}{
		{name: "nested path", mainPath: "/etc/config/app.yaml", expected: "/etc/config"},
		{name: "root path", mainPath: "/app.yaml", expected: "/"},
		{name: "relative path", mainPath: "config/app.yaml", expected: "config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := confkit.BaseDir(tt.mainPath); got != tt.expected {
				t.Errorf("BaseDir(%q) = %q, want %q", tt.mainPath, got, tt.expected)
			}
		})
	}
}

func TestSectionHydrate(t *testing.T) {
	t.Run("empty file stays empty", func(t *testing.T) {
		section := &confkit.Section[string]{}
		err := section.Hydrate("/base", func(string) (*string, error) {
			t.Error("loader should not run when File is empty")
			return nil, nil
		})
		if err != nil {
			t.Errorf("Hydrate() = %v, want nil", err)
		}
		if section.Value != nil {
			t.Error("Value should remain nil when File is empty")
		}
	})

	t.Run("loads and rewrites File to resolved path", func(t *testing.T) {
		section := &confkit.Section[string]{File: "market.yaml"}
		loaded := "loaded"

		err := section.Hydrate("/base", func(path string) (*string, error) {
			if path != "/base/market.yaml" {
				t.Errorf("loader got path %q, want /base/market.yaml", path)
			}
			return &loaded, nil
		})
		if err != nil {
			t.Fatalf("Hydrate() = %v, want nil", err)
		}
		if section.Value == nil || *section.Value != loaded {
			t.Errorf("Value = %v, want %q", section.Value, loaded)
		}
		if section.File != "/base/market.yaml" {
			t.Errorf("File = %q, want /base/market.yaml", section.File)
		}
	})

	t.Run("loader error propagates", func(t *testing.T) {
		section := &confkit.Section[string]{File: "missing.yaml"}
		want := errors.New("no such file")

		err := section.Hydrate("/base", func(string) (*string, error) {
			return nil, want
		})
		if !errors.Is(err, want) {
			t.Errorf("Hydrate() = %v, want %v", err, want)
		}
		if section.Value != nil {
			t.Error("Value should stay nil when the loader fails")
		}
	})
}

func TestProjectRoot(t *testing.T) {
	root, err := confkit.ProjectRoot()
	if err != nil {
		t.Fatalf("ProjectRoot() error = %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(root, "go.mod")); statErr != nil {
		t.Errorf("ProjectRoot() = %q, expected a directory containing go.mod: %v", root, statErr)
	}
}

func TestMustProjectPath(t *testing.T) {
	p := confkit.MustProjectPath("etc/pricefeed.yaml")
	if !strings.HasSuffix(p, filepath.Join("etc", "pricefeed.yaml")) {
		t.Errorf("MustProjectPath() = %q, want suffix etc/pricefeed.yaml", p)
	}
	if !filepath.IsAbs(p) {
		t.Errorf("MustProjectPath() = %q, want absolute path", p)
	}
}
