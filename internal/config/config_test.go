package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/morloc-lang/morloc/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
library_root: /opt/morloc/lib
default_lang: py
executors:
  py:
    command: python3
  c:
    command: ./pool.c.exe
    args: ["--fast"]
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "/opt/morloc/lib", cfg.LibraryRoot)
	require.Equal(t, "py", cfg.DefaultLang)
	require.Equal(t, "python3", cfg.Executors["py"].Command)
	require.Equal(t, []string{"--fast"}, cfg.Executors["c"].Args)
}

func TestLoad_MissingLibraryRootFails(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "default_lang: py\n")

	_, err := config.Load(path)
	require.Error(t, err)
}

func TestLoad_SecondFileOverridesFirst(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yaml", "library_root: /base\ndefault_lang: py\n")
	override := writeFile(t, dir, "override.yaml", "library_root: /override\n")

	cfg, err := config.Load(base, override)
	require.NoError(t, err)
	require.Equal(t, "/override", cfg.LibraryRoot)
	require.Equal(t, "py", cfg.DefaultLang)
}
