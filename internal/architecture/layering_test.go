package architecture_test

import (
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
)

const modulePrefix = "studyo/internal/modules/"

type goImport struct {
	file string
	path string
}

// walkImports yields every non-test import under root.
func walkImports(t *testing.T, root string, fn func(imp goImport)) {
	t.Helper()
	fset := token.NewFileSet()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		node, parseErr := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if parseErr != nil {
			return parseErr
		}
		for _, spec := range node.Imports {
			fn(goImport{file: filepath.ToSlash(path), path: strings.Trim(spec.Path.Value, `"`)})
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
}

func TestHexagonalLayerImports(t *testing.T) {
	t.Parallel()
	walkImports(t, filepath.Join("..", "modules"), func(imp goImport) {
		if !strings.HasPrefix(imp.path, modulePrefix) {
			return
		}
		module, layer := locate(imp.file)
		if module == "" || layer == "" {
			return
		}
		if violatesLayerRule(module, layer, imp.path) {
			t.Errorf("forbidden import in %s (%s): %s", imp.file, layer, imp.path)
		}
	})
}

// The TUI talks to modules through their dto packages only; ports are
// declared on the UI side.
func TestUIDependsOnlyOnDTOs(t *testing.T) {
	t.Parallel()
	walkImports(t, filepath.Join("..", "ui"), func(imp goImport) {
		if strings.HasPrefix(imp.path, modulePrefix) && !isDTO(imp.path) {
			t.Errorf("%s imports %s", imp.file, imp.path)
		}
	})
}

func TestPlatformIsLeaf(t *testing.T) {
	t.Parallel()
	walkImports(t, filepath.Join("..", "platform"), func(imp goImport) {
		if strings.HasPrefix(imp.path, "studyo/internal/") && !strings.HasPrefix(imp.path, "studyo/internal/platform/") {
			t.Errorf("%s imports %s", imp.file, imp.path)
		}
	})
}

func locate(path string) (module, layer string) {
	parts := strings.Split(path, "/")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == "modules" {
			module = parts[i+1]
			break
		}
	}
	for _, l := range []string{"adapter/in", "adapter/out", "usecase", "service", "domain", "port/in", "port/out", "dto"} {
		if strings.Contains(path, "/"+l+"/") {
			return module, l
		}
	}
	return module, ""
}

func isPortIn(path string) bool {
	return strings.Contains(path, "/port/in/") || strings.HasSuffix(path, "/port/in")
}

func isDTO(path string) bool {
	return strings.Contains(path, "/dto/") || strings.HasSuffix(path, "/dto")
}

func violatesLayerRule(module, layer, importPath string) bool {
	if !strings.HasPrefix(importPath, modulePrefix+module+"/") {
		// Other modules are reachable through their inbound port and dto only.
		return !isPortIn(importPath) && !isDTO(importPath)
	}

	switch layer {
	case "adapter/in":
		return !isPortIn(importPath) && !isDTO(importPath)
	case "usecase":
		return strings.Contains(importPath, "/adapter/")
	case "service":
		return strings.Contains(importPath, "/adapter/") || strings.Contains(importPath, "/usecase/")
	case "domain", "dto":
		return !strings.HasSuffix(importPath, "/domain") && !strings.Contains(importPath, "/domain/")
	case "port/in":
		return !isDTO(importPath)
	default:
		return false
	}
}
