package manifold_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/morloc-lang/morloc/internal/ast"
	"github.com/morloc-lang/morloc/internal/dag"
	"github.com/morloc-lang/morloc/internal/manifold"
	"github.com/morloc-lang/morloc/internal/termtype"
)

func intType() *ast.Type { return ast.NewApp("Int") }

func build(t *testing.T, mods ...*ast.Module) (*dag.Graph, *termtype.Table) {
	t.Helper()
	g, err := dag.Resolve(mods)
	require.NoError(t, err)
	tt, err := termtype.Build(g)
	require.NoError(t, err)
	return g, tt
}

func TestBuildRoot_TrivialExport(t *testing.T) {
	m := &ast.Module{
		Name:    "Main",
		Exports: []ast.EVar{"x"},
		Body: []ast.ExprI{
			{Index: 1, Node: ast.ValueDecl{Name: "x", Body: ast.ExprI{Index: 2, Node: ast.NumLit{Value: 1}}}},
		},
	}
	g, table := build(t, m)

	manifolds, err := manifold.BuildAll(g, table, "r")
	require.NoError(t, err)
	require.Len(t, manifolds, 1)

	root := manifolds[0]
	require.Equal(t, ast.EVar("x"), root.Composition)
	require.True(t, root.Exported)
	require.Empty(t, root.Realizations)
	require.Len(t, root.Args, 1)
	require.Equal(t, manifold.ArgData, root.Args[0].Kind)
}

func TestBuildRoot_IdentityFunction(t *testing.T) {
	m := &ast.Module{
		Name:    "Main",
		Exports: []ast.EVar{"id"},
		Body: []ast.ExprI{
			{Index: 1, Node: ast.ValueDecl{Name: "id", Body: ast.ExprI{
				Index: 2, Node: ast.Lambda{Params: []ast.EVar{"x"}, Body: ast.ExprI{Index: 3, Node: ast.Var{Name: "x"}}},
			}}},
		},
	}
	g, table := build(t, m)

	manifolds, err := manifold.BuildAll(g, table, "r")
	require.NoError(t, err)
	require.Len(t, manifolds, 1)

	root := manifolds[0]
	require.Equal(t, []ast.EVar{"x"}, root.BoundVars)
	require.Len(t, root.Args, 1)
	require.Equal(t, manifold.ArgPositional, root.Args[0].Kind)
	require.Equal(t, 0, root.Args[0].Position)
}

func TestBuildRoot_CrossLanguageComposition(t *testing.T) {
	// h x = g (f x); f and g each sourced in a different language.
	m := &ast.Module{
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
	g, table := build(t, m)

	manifolds, err := manifold.BuildAll(g, table, "r")
	require.NoError(t, err)
	require.Len(t, manifolds, 2)

	root := manifolds[0]
	require.Equal(t, ast.EVar("h"), root.Composition)
	require.Equal(t, ast.EVar("g"), root.MorlocName)
	require.Len(t, root.Realizations, 1)
	require.Equal(t, "py", root.Realizations[0].Lang)
	require.Len(t, root.Args, 1)
	require.Equal(t, manifold.ArgCall, root.Args[0].Kind)

	nested := manifolds[1]
	require.Equal(t, nested.ID, root.Args[0].CallID)
	require.Equal(t, ast.EVar("f"), nested.MorlocName)
	require.Len(t, nested.Realizations, 1)
	require.Equal(t, "c", nested.Realizations[0].Lang)
	require.True(t, nested.Called)
	require.Len(t, nested.Args, 1)
	require.Equal(t, manifold.ArgName, nested.Args[0].Kind)
	require.Equal(t, ast.EVar("x"), nested.Args[0].Name)
}

func TestBuildRoot_LambdaArgumentRejected(t *testing.T) {
	m := &ast.Module{
		Name:    "Main",
		Exports: []ast.EVar{"h"},
		Body: []ast.ExprI{
			{Index: 1, Node: ast.SignatureDecl{Name: "g", Lang: "py", Type: ast.NewFunction([]*ast.Type{intType()}, intType())}},
			{Index: 2, Node: ast.SourceDecl{Lang: "py", Path: "g.py", Remotes: []ast.SourceRemote{{Remote: "g_impl", Alias: "g"}}}},
			{Index: 3, Node: ast.ValueDecl{Name: "h", Body: ast.ExprI{
				Index: 4, Node: ast.Lambda{Params: []ast.EVar{"x"}, Body: ast.ExprI{
					Index: 5, Node: ast.App{
						Fn: ast.ExprI{Index: 6, Node: ast.Var{Name: "g"}},
						Args: []ast.ExprI{
							{Index: 7, Node: ast.Lambda{Params: []ast.EVar{"y"}, Body: ast.ExprI{Index: 8, Node: ast.Var{Name: "y"}}}},
						},
					},
				}},
			}}},
		},
	}
	g, table := build(t, m)

	_, err := manifold.BuildAll(g, table, "r")
	require.Error(t, err)
	require.Contains(t, err.Error(), "LambdaArgumentUnsupported")
}

func TestBuildRoot_RecursiveDeclarationRejected(t *testing.T) {
	m := &ast.Module{
		Name:    "Main",
		Exports: []ast.EVar{"f"},
		Body: []ast.ExprI{
			{Index: 1, Node: ast.ValueDecl{Name: "f", Body: ast.ExprI{
				Index: 2, Node: ast.Lambda{Params: []ast.EVar{"x"}, Body: ast.ExprI{
					Index: 3, Node: ast.App{
						Fn:   ast.ExprI{Index: 4, Node: ast.Var{Name: "f"}},
						Args: []ast.ExprI{{Index: 5, Node: ast.Var{Name: "x"}}},
					},
				}},
			}}},
		},
	}
	g, table := build(t, m)

	_, err := manifold.BuildAll(g, table, "r")
	require.Error(t, err)
	require.Contains(t, err.Error(), "RecursiveDeclaration")
}

func TestBuildRoot_NestedArgumentSelfRecursionRejected(t *testing.T) {
	// f x = g (f x); g is sourced only, so the cycle is entirely within f's
	// own body, buried inside g's argument list rather than at the head.
	m := &ast.Module{
		Name:    "Main",
		Exports: []ast.EVar{"f"},
		Body: []ast.ExprI{
			{Index: 1, Node: ast.SignatureDecl{Name: "g", Lang: "py", Type: ast.NewFunction([]*ast.Type{intType()}, intType())}},
			{Index: 2, Node: ast.SourceDecl{Lang: "py", Path: "g.py", Remotes: []ast.SourceRemote{{Remote: "g_impl", Alias: "g"}}}},
			{Index: 3, Node: ast.ValueDecl{Name: "f", Body: ast.ExprI{
				Index: 4, Node: ast.Lambda{Params: []ast.EVar{"x"}, Body: ast.ExprI{
					Index: 5, Node: ast.App{
						Fn: ast.ExprI{Index: 6, Node: ast.Var{Name: "g"}},
						Args: []ast.ExprI{
							{Index: 7, Node: ast.App{
								Fn:   ast.ExprI{Index: 8, Node: ast.Var{Name: "f"}},
								Args: []ast.ExprI{{Index: 9, Node: ast.Var{Name: "x"}}},
							}},
						},
					},
				}},
			}}},
		},
	}
	g, table := build(t, m)

	_, err := manifold.BuildAll(g, table, "r")
	require.Error(t, err)
	require.Contains(t, err.Error(), "RecursiveDeclaration")
}

func TestBuildRoot_MutualRecursionRejected(t *testing.T) {
	// f x = g x; g x = f x. Neither body nests a call inside an argument
	// list, so only a walk into g's own declared body (not just f's
	// argument expressions) can find the cycle.
	m := &ast.Module{
		Name:    "Main",
		Exports: []ast.EVar{"f"},
		Body: []ast.ExprI{
			{Index: 1, Node: ast.ValueDecl{Name: "f", Body: ast.ExprI{
				Index: 2, Node: ast.Lambda{Params: []ast.EVar{"x"}, Body: ast.ExprI{
					Index: 3, Node: ast.App{
						Fn:   ast.ExprI{Index: 4, Node: ast.Var{Name: "g"}},
						Args: []ast.ExprI{{Index: 5, Node: ast.Var{Name: "x"}}},
					},
				}},
			}}},
			{Index: 6, Node: ast.ValueDecl{Name: "g", Body: ast.ExprI{
				Index: 7, Node: ast.Lambda{Params: []ast.EVar{"x"}, Body: ast.ExprI{
					Index: 8, Node: ast.App{
						Fn:   ast.ExprI{Index: 9, Node: ast.Var{Name: "f"}},
						Args: []ast.ExprI{{Index: 10, Node: ast.Var{Name: "x"}}},
					},
				}},
			}}},
		},
	}
	g, table := build(t, m)

	_, err := manifold.BuildAll(g, table, "r")
	require.Error(t, err)
	require.Contains(t, err.Error(), "RecursiveDeclaration")
}
