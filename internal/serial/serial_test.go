package serial_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/morloc-lang/morloc/internal/ast"
	"github.com/morloc-lang/morloc/internal/dag"
	"github.com/morloc-lang/morloc/internal/serial"
	"github.com/morloc-lang/morloc/internal/termtype"
)

func intType() *ast.Type { return ast.NewApp("Int") }

func build(t *testing.T, mods ...*ast.Module) *termtype.Table {
	t.Helper()
	g, err := dag.Resolve(mods)
	require.NoError(t, err)
	table, err := termtype.Build(g)
	require.NoError(t, err)
	return table
}

func TestPlan_GenericAndTypeSpecific(t *testing.T) {
	packFn := ast.NewFunction([]*ast.Type{intType()}, ast.NewApp("Bytes"))
	genericParam := ast.NewVar(ast.TVar{Name: "a"})
	genericPackFn := ast.NewFunction([]*ast.Type{genericParam}, ast.NewApp("Bytes"))

	mod := &ast.Module{
		Name: "Main",
		Body: []ast.ExprI{
			{Index: 1, Node: ast.SignatureDecl{Name: "packInt", Lang: "py", Type: packFn, Props: map[string]string{"pack": "Int"}}},
			{Index: 2, Node: ast.SignatureDecl{Name: "packAny", Lang: "py", Type: genericPackFn, Props: map[string]string{"pack": "generic"}}},
			{Index: 3, Node: ast.SignatureDecl{Name: "unpackAny", Lang: "py", Type: genericPackFn, Props: map[string]string{"unpack": "generic"}}},
			{Index: 4, Node: ast.SourceDecl{Lang: "py", Path: "runtime.py", Remotes: []ast.SourceRemote{
				{Remote: "pack_int", Alias: "packInt"},
				{Remote: "pack_any", Alias: "packAny"},
				{Remote: "unpack_any", Alias: "unpackAny"},
			}}},
		},
	}

	table := build(t, mod)
	m, err := serial.Plan(table, "py")
	require.NoError(t, err)

	require.Equal(t, "packInt", m.PackerFor(intType()))
	require.Equal(t, "packAny", m.PackerFor(ast.NewApp("Str")))
	require.Equal(t, "packAny", m.GenericPacker)
	require.Equal(t, "unpackAny", m.GenericUnpacker)
	require.Contains(t, m.Sources, "runtime.py")
}

func TestPlan_MissingGenericFails(t *testing.T) {
	packFn := ast.NewFunction([]*ast.Type{intType()}, ast.NewApp("Bytes"))
	mod := &ast.Module{
		Name: "Main",
		Body: []ast.ExprI{
			{Index: 1, Node: ast.SignatureDecl{Name: "packInt", Lang: "py", Type: packFn, Props: map[string]string{"pack": "Int"}}},
			{Index: 2, Node: ast.SourceDecl{Lang: "py", Path: "runtime.py", Remotes: []ast.SourceRemote{{Remote: "pack_int", Alias: "packInt"}}}},
		},
	}
	table := build(t, mod)
	_, err := serial.Plan(table, "py")
	require.Error(t, err)
}
