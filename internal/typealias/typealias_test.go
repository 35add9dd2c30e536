package typealias_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/morloc-lang/morloc/internal/ast"
	"github.com/morloc-lang/morloc/internal/dag"
	"github.com/morloc-lang/morloc/internal/typealias"
)

func TestDesugar_SelfRecursiveRejected(t *testing.T) {
	m := &ast.Module{
		Name: "Main",
		Body: []ast.ExprI{
			{Index: 1, Node: ast.TypeAliasDecl{Name: ast.TVar{Name: "T"}, Body: ast.NewApp("T")}},
		},
	}
	g, err := dag.Resolve([]*ast.Module{m})
	require.NoError(t, err)

	_, err = typealias.Desugar(g)
	require.Error(t, err)
	require.Contains(t, err.Error(), "SelfRecursiveTypeAlias")
}

func TestSubstitute_Positional(t *testing.T) {
	// type Pair a b = {left :: a, right :: b}
	body := ast.NewRecord("Pair", nil, []ast.RecordField{
		{Key: "left", Type: ast.NewVar(ast.TVar{Name: "a"})},
		{Key: "right", Type: ast.NewVar(ast.TVar{Name: "b"})},
	})
	m := &ast.Module{
		Name: "Main",
		Body: []ast.ExprI{
			{Index: 1, Node: ast.TypeAliasDecl{
				Name:   ast.TVar{Name: "Pair"},
				Params: []ast.TVar{{Name: "a"}, {Name: "b"}},
				Body:   body,
			}},
		},
	}
	g, err := dag.Resolve([]*ast.Module{m})
	require.NoError(t, err)

	tbl, err := typealias.Desugar(g)
	require.NoError(t, err)

	applied := ast.NewApp("Pair", ast.NewApp("Int"), ast.NewApp("Str"))
	result, err := tbl.Substitute("Main", applied)
	require.NoError(t, err)

	want := ast.NewRecord("Pair", nil, []ast.RecordField{
		{Key: "left", Type: ast.NewApp("Int")},
		{Key: "right", Type: ast.NewApp("Str")},
	})
	if diff := cmp.Diff(want, result); diff != "" {
		t.Fatalf("substituted type mismatch (-want +got):\n%s", diff)
	}
}

func TestSubstitute_ArityMismatch(t *testing.T) {
	m := &ast.Module{
		Name: "Main",
		Body: []ast.ExprI{
			{Index: 1, Node: ast.TypeAliasDecl{
				Name:   ast.TVar{Name: "Box"},
				Params: []ast.TVar{{Name: "a"}},
				Body:   ast.NewApp("List", ast.NewVar(ast.TVar{Name: "a"})),
			}},
		},
	}
	g, err := dag.Resolve([]*ast.Module{m})
	require.NoError(t, err)

	tbl, err := typealias.Desugar(g)
	require.NoError(t, err)

	_, err = tbl.Substitute("Main", ast.NewApp("Box"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "BadTypeAliasParameters")
}

func TestDesugar_ConflictingImportedAliases(t *testing.T) {
	a := &ast.Module{
		Name:    "A",
		Exports: []ast.EVar{"T"},
		Body: []ast.ExprI{
			{Index: 1, Node: ast.TypeAliasDecl{Name: ast.TVar{Name: "T"}, Body: ast.NewApp("Int")}},
		},
	}
	b := &ast.Module{
		Name:    "B",
		Exports: []ast.EVar{"T"},
		Body: []ast.ExprI{
			{Index: 1, Node: ast.TypeAliasDecl{Name: ast.TVar{Name: "T"}, Body: ast.NewApp("Str")}},
		},
	}
	main := &ast.Module{
		Name: "Main",
		Imports: []ast.ImportDecl{
			{Spec: ast.ImportSpec{Module: "A"}},
			{Spec: ast.ImportSpec{Module: "B"}},
		},
	}
	g, err := dag.Resolve([]*ast.Module{a, b, main})
	require.NoError(t, err)

	_, err = typealias.Desugar(g)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ConflictingTypeAlias")
}
