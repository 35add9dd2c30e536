package grammar_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/morloc-lang/morloc/internal/grammar"
	"github.com/morloc-lang/morloc/internal/grammar/c"
	"github.com/morloc-lang/morloc/internal/grammar/python"
	"github.com/morloc-lang/morloc/internal/grammar/r"
)

func TestRegistry_GetAndList(t *testing.T) {
	reg := grammar.NewRegistry(python.New(), c.New(), r.New())

	g, err := reg.Get("py")
	require.NoError(t, err)
	require.Equal(t, "py", g.Lang())
	require.Equal(t, "py", g.Ext())

	require.ElementsMatch(t, []string{"py", "c", "r"}, reg.Languages())
}

func TestRegistry_UnknownLanguage(t *testing.T) {
	reg := grammar.NewRegistry(python.New())
	_, err := reg.Get("rust")
	require.Error(t, err)
}
