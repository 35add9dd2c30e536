package poolgen_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/morloc-lang/morloc/internal/ast"
	"github.com/morloc-lang/morloc/internal/dag"
	"github.com/morloc-lang/morloc/internal/grammar/python"
	"github.com/morloc-lang/morloc/internal/manifold"
	"github.com/morloc-lang/morloc/internal/poolgen"
	"github.com/morloc-lang/morloc/internal/serial"
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

func genericSerialMap(lang string) *serial.Map {
	return &serial.Map{
		Lang:            lang,
		Packer:          map[string]string{},
		Unpacker:        map[string]string{},
		GenericPacker:   "morloc_pack",
		GenericUnpacker: "morloc_unpack",
	}
}

func TestClassify_TrivialLiteral(t *testing.T) {
	m := &ast.Module{
		Name:    "Main",
		Exports: []ast.EVar{"x"},
		Body: []ast.ExprI{
			{Index: 1, Node: ast.ValueDecl{Name: "x", Body: ast.ExprI{Index: 2, Node: ast.NumLit{Value: 1}}}},
		},
	}
	g, table := build(t, m)
	manifolds, err := manifold.BuildAll(g, table, "py")
	require.NoError(t, err)

	classes := poolgen.Classify(manifolds, "py", "py")
	require.Equal(t, poolgen.Cis, classes[manifolds[0].ID])

	other := poolgen.Classify(manifolds, "r", "py")
	require.Equal(t, poolgen.Uncalled, other[manifolds[0].ID])
}

func TestClassify_CrossLanguageComposition(t *testing.T) {
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
	g, table := build(t, mod)
	manifolds, err := manifold.BuildAll(g, table, "py")
	require.NoError(t, err)
	require.Len(t, manifolds, 2)
	root, nested := manifolds[0], manifolds[1]

	pyClasses := poolgen.Classify(manifolds, "py", "py")
	require.Equal(t, poolgen.Cis, pyClasses[root.ID]) // exported root with a nested call: Cis, not Source
	require.Equal(t, poolgen.Trans, pyClasses[nested.ID])

	cClasses := poolgen.Classify(manifolds, "c", "py")
	require.Equal(t, poolgen.Cis, cClasses[nested.ID])
	require.Equal(t, poolgen.Uncalled, cClasses[root.ID])
}

func TestEmitPool_IdentityFunction(t *testing.T) {
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
	manifolds, err := manifold.BuildAll(g, table, "py")
	require.NoError(t, err)

	sm := genericSerialMap("py")
	pool, err := poolgen.EmitPool(manifolds, "py", "py", sm, nil, python.New())
	require.NoError(t, err)
	require.Contains(t, pool.Source, "def m0(x):")
	require.Contains(t, pool.Source, "morloc_unpack")
	require.Contains(t, pool.Source, "return a0")
	require.Equal(t, []int{0}, pool.ManifoldIDs)
}

func TestEmitPool_CrossLanguageForeignCall(t *testing.T) {
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
	g, table := build(t, mod)
	manifolds, err := manifold.BuildAll(g, table, "py")
	require.NoError(t, err)

	sm := genericSerialMap("py")
	execs := map[string]poolgen.Executor{"c": {Command: "pool.c.exe", PoolPath: "pool.c"}}
	pool, err := poolgen.EmitPool(manifolds, "py", "py", sm, execs, python.New())
	require.NoError(t, err)
	require.Contains(t, pool.Source, "subprocess.run")
	require.Contains(t, pool.Source, "pool.c")
	require.Contains(t, pool.Source, "def m0(x):")
	require.NotContains(t, pool.Source, "def m1(")
}
