package golang

import (
	"fmt"
	"go/ast"

	"golang.org/x/tools/go/packages"
)

// CheckSource loads the Go package at pkgPath and verifies it exports every
// name in want, the Go-backend analogue of the teacher's
// Parser.getExternalStructAST (internal/parser/external.go), which loads
// and caches an external package's AST purely to validate a referenced
// name exists. Other backend languages' source files are not parsed at
// all — only the Go backend gets this check, since morloc's middle end has
// no general-purpose parser for C/Python/R source (§1 non-goals).
func CheckSource(pkgPath string, want []string) error {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedSyntax | packages.NeedTypes}
	pkgs, err := packages.Load(cfg, pkgPath)
	if err != nil {
		return fmt.Errorf("loading Go source package %q: %w", pkgPath, err)
	}
	if len(pkgs) == 0 {
		return fmt.Errorf("Go source package %q resolved to nothing", pkgPath)
	}

	exported := make(map[string]bool)
	for _, pkg := range pkgs {
		for _, err := range pkg.Errors {
			return fmt.Errorf("package %q: %w", pkgPath, err)
		}
		for _, file := range pkg.Syntax {
			for _, decl := range file.Decls {
				fn, ok := decl.(*ast.FuncDecl)
				if !ok || fn.Recv != nil || !fn.Name.IsExported() {
					continue
				}
				exported[fn.Name.Name] = true
			}
		}
	}

	var missing []string
	for _, name := range want {
		if !exported[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("Go source %q does not export: %v", pkgPath, missing)
	}
	return nil
}
