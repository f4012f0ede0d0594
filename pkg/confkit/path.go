package confkit

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// maxWalkDepth bounds the upward search for the repository root.
const maxWalkDepth = 8

// ProjectRoot locates the repository root by walking up from this source
// file until a directory carrying go.mod or .git appears. It falls back to
// the working directory when the walk finds nothing.
func ProjectRoot() (string, error) {
	if _, file, _, ok := runtime.Caller(0); ok {
		dir := filepath.Dir(file)
		for i := 0; i < maxWalkDepth; i++ {
			if fileExists(filepath.Join(dir, "go.mod")) || fileExists(filepath.Join(dir, ".git")) {
				return dir, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		return ".", fmt.Errorf("getwd: %w", err)
	}
	return wd, nil
}

// MustProjectPath joins the repository root with rel, panicking when the
// root cannot be determined.
func MustProjectPath(rel string) string {
	root, err := ProjectRoot()
	if err != nil {
		panic(err)
	}
	return filepath.Join(root, rel)
}

func fileExists(p string) bool {
	if p == "" {
		return false
	}
	_, err := os.Stat(p)
	return err == nil
}
