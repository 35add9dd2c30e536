package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/morloc-lang/morloc/internal/ast"
	"github.com/morloc-lang/morloc/internal/compiler"
	"github.com/morloc-lang/morloc/internal/config"
)

func intType() *ast.Type { return ast.NewApp("Int") }

// serializers returns the generic pack/unpack signatures for lang and the
// source declaration backing them, which serial.Plan requires of every
// language a build realizes into.
func serializers(lang string, index int) []ast.ExprI {
	fn := ast.NewFunction([]*ast.Type{ast.NewVar(ast.TVar{Name: "a"})}, ast.NewApp("Str"))
	pack, unpack := ast.EVar("pack_"+lang), ast.EVar("unpack_"+lang)
	return []ast.ExprI{
		{Index: index, Node: ast.SignatureDecl{Name: pack, Lang: lang, Type: fn, Props: map[string]string{"pack": "generic"}}},
		{Index: index + 1, Node: ast.SignatureDecl{Name: unpack, Lang: lang, Type: fn, Props: map[string]string{"unpack": "generic"}}},
		{Index: index + 2, Node: ast.SourceDecl{Lang: lang, Path: "runtime." + lang, Remotes: []ast.SourceRemote{
			{Remote: pack, Alias: pack}, {Remote: unpack, Alias: unpack},
		}}},
	}
}

func TestCompile_SingleLanguageIdentity(t *testing.T) {
	mod := &ast.Module{
		Name:    "Main",
		Exports: []ast.EVar{"f"},
		Body: []ast.ExprI{
			{Index: 1, Node: ast.SignatureDecl{Name: "f", Lang: "py", Type: ast.NewFunction([]*ast.Type{intType()}, intType())}},
			{Index: 2, Node: ast.SourceDecl{Lang: "py", Path: "f.py", Remotes: []ast.SourceRemote{{Remote: "f_impl", Alias: "f"}}}},
		},
	}
	mod.Body = append(mod.Body, serializers("py", 100)...)
	cfg := &config.Config{
		LibraryRoot: "/lib",
		DefaultLang: "py",
		Executors:   map[string]config.ExecutorConfig{"py": {Command: "python3"}},
	}

	arts, err := compiler.Compile(cfg, []*ast.Module{mod})
	require.NoError(t, err)
	require.Contains(t, arts.Pools, "py")
	require.Contains(t, arts.Nexus.Subcommands, "f")
}

func TestCompile_CrossLanguageComposition(t *testing.T) {
	mod := &ast.Module{
		Name:    "Main",
		Exports: []ast.EVar{"h"},
		Body: []ast.ExprI{
			{Index: 1, Node: ast.SignatureDecl{Name: "f", Lang: "c", Type: ast.NewFunction([]*ast.Type{intType()}, intType())}},
			{Index: 2, Node: ast.SourceDecl{Lang: "c", Path: "f.c", Remotes: []ast.SourceRemote{{Remote: "f_impl", Alias: "f"}}}},
			{Index: 3, Node: ast.SignatureDecl{Name: "g", Lang: "py", Type: ast.NewFunction([]*ast.Type{intType()}, intType())}},
			{Index: 4, Node: ast.SourceDecl{Lang: "py", Path: "g.py", Remotes: []ast.SourceRemote{{Remote: "g_impl", Alias: "g"}}}},
			{Index: 5, Node: ast.ValueDecl{Name: "h", Body: ast.ExprI{
				Index: 6, Node: ast.Lambda{Params: []ast.EVar{"x"}, Body: ast.ExprI{
					Index: 7, Node: ast.App{
						Fn: ast.ExprI{Index: 8, Node: ast.Var{Name: "g"}},
						Args: []ast.ExprI{
							{Index: 9, Node: ast.App{
								Fn:   ast.ExprI{Index: 10, Node: ast.Var{Name: "f"}},
								Args: []ast.ExprI{{Index: 11, Node: ast.Var{Name: "x"}}},
							}},
						},
					},
				}},
			}}},
		},
	}
	mod.Body = append(mod.Body, serializers("py", 100)...)
	mod.Body = append(mod.Body, serializers("c", 200)...)
	cfg := &config.Config{
		LibraryRoot: "/lib",
		DefaultLang: "py",
		Executors: map[string]config.ExecutorConfig{
			"py": {Command: "python3"},
			"c":  {Command: "./pool.c.exe"},
		},
	}

	arts, err := compiler.Compile(cfg, []*ast.Module{mod})
	require.NoError(t, err)
	require.Contains(t, arts.Pools, "py")
	require.Contains(t, arts.Pools, "c")
	require.Contains(t, arts.Nexus.Subcommands, "h")
}

func TestCompile_MissingExecutorFails(t *testing.T) {
	mod := &ast.Module{
		Name:    "Main",
		Exports: []ast.EVar{"f"},
		Body: []ast.ExprI{
			{Index: 1, Node: ast.SignatureDecl{Name: "f", Lang: "py", Type: ast.NewFunction([]*ast.Type{intType()}, intType())}},
			{Index: 2, Node: ast.SourceDecl{Lang: "py", Path: "f.py", Remotes: []ast.SourceRemote{{Remote: "f_impl", Alias: "f"}}}},
		},
	}
	mod.Body = append(mod.Body, serializers("py", 100)...)
	cfg := &config.Config{
		LibraryRoot: "/lib",
		DefaultLang: "py",
		Executors:   map[string]config.ExecutorConfig{},
	}

	_, err := compiler.Compile(cfg, []*ast.Module{mod})
	require.Error(t, err)
}
