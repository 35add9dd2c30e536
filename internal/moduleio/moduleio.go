// Package moduleio reads the parser collaborator's serialized module files
// from disk. Surface parsing/lexing of morloc source text is out of scope
// (see SPEC_FULL.md's Non-goals); a module file here is already the JSON
// form of an ast.Module, decoded straight into the tree internal/compiler
// expects via ast.ExprI's envelope codec.
package moduleio

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/morloc-lang/morloc/internal/ast"
)

// Load reads and decodes one ast.Module per path, in the given order.
func Load(paths ...string) ([]*ast.Module, error) {
	modules := make([]*ast.Module, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading module file %q: %w", p, err)
		}
		var m ast.Module
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decoding module file %q: %w", p, err)
		}
		modules = append(modules, &m)
	}
	return modules, nil
}
