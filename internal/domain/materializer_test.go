package domain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mouse-blink/portyp/internal/adapter"
	m "github.com/mouse-blink/portyp/internal/model"
)

func simplePackage() m.PackageLocation {
	return m.PackageLocation{
		Key:        m.PackageKey{Name: "simple-package", Version: "2025.1.0"},
		Root:       m.Path(examplePath("packages", "simple-package", "2025.1.0")),
		Entrypoint: "entrypoint.typ",
	}
}

func TestMaterializer_CopiesPackageTree(t *testing.T) {
	target := t.TempDir()
	mt := NewMaterializer(adapter.NewLocalSourceFSAdapter(), m.Path(target), "pckgs", 5, discardLogger())

	pkg, err := mt.Materialize(simplePackage())
	require.NoError(t, err)

	dest := filepath.Join(target, "pckgs", "simple-package", "2025.1.0")
	assert.Equal(t, m.Path(dest), pkg.Destination)
	assert.Equal(t, 3, pkg.Files)
	assert.Positive(t, pkg.Bytes)

	assert.Equal(t, treeDigests(t, string(simplePackage().Root)), treeDigests(t, dest))
	assert.Equal(t, []m.MaterializedPackage{pkg}, mt.Packages())
}

func TestMaterializer_CopiesOncePerRun(t *testing.T) {
	target := t.TempDir()
	mt := NewMaterializer(adapter.NewLocalSourceFSAdapter(), m.Path(target), "pckgs", 5, discardLogger())

	first, err := mt.Materialize(simplePackage())
	require.NoError(t, err)

	marker := filepath.Join(string(first.Destination), "entrypoint.typ")
	require.NoError(t, os.Remove(marker))

	second, err := mt.Materialize(simplePackage())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NoFileExists(t, marker, "a completed package must not be copied again")
	assert.Len(t, mt.Packages(), 1)
}

func TestMaterializer_KeepsPackagesInCompletionOrder(t *testing.T) {
	target := t.TempDir()
	mt := NewMaterializer(adapter.NewLocalSourceFSAdapter(), m.Path(target), "vendor", 5, discardLogger())

	other := m.PackageLocation{
		Key:        m.PackageKey{Name: "a-package", Version: "2025.1.0"},
		Root:       m.Path(examplePath("packages", "a-package", "2025.1.0")),
		Entrypoint: "CV-template.typ",
	}

	_, err := mt.Materialize(other)
	require.NoError(t, err)
	_, err = mt.Materialize(simplePackage())
	require.NoError(t, err)
	_, err = mt.Materialize(other)
	require.NoError(t, err)

	packages := mt.Packages()
	require.Len(t, packages, 2)
	assert.Equal(t, "a-package", packages[0].Key.Name)
	assert.Equal(t, "simple-package", packages[1].Key.Name)
	assert.FileExists(t, filepath.Join(target, "vendor", "a-package", "2025.1.0", "CV-template.typ"))
}

func TestMaterializer_PreservesEmptyDirectories(t *testing.T) {
	store := t.TempDir()
	root := filepath.Join(store, "pkg", "1.0.0")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "assets", "empty"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "lib.typ"), []byte("#let x = 1\n"), 0o644))

	target := t.TempDir()
	mt := NewMaterializer(adapter.NewLocalSourceFSAdapter(), m.Path(target), "pckgs", 5, discardLogger())

	pkg, err := mt.Materialize(m.PackageLocation{Key: m.PackageKey{Name: "pkg", Version: "1.0.0"}, Root: m.Path(root), Entrypoint: "lib.typ"})
	require.NoError(t, err)

	assert.Equal(t, 1, pkg.Files)
	assert.DirExists(t, filepath.Join(target, "pckgs", "pkg", "1.0.0", "assets", "empty"))
}

func TestMaterializer_HonoursDepthBound(t *testing.T) {
	target := t.TempDir()
	mt := NewMaterializer(adapter.NewLocalSourceFSAdapter(), m.Path(target), "pckgs", 1, discardLogger())

	pkg, err := mt.Materialize(simplePackage())
	require.NoError(t, err)

	assert.Equal(t, 2, pkg.Files)
	assert.DirExists(t, filepath.Join(string(pkg.Destination), "lib"))
	assert.NoFileExists(t, filepath.Join(string(pkg.Destination), "lib", "helpers.typ"))
}

func TestMaterializer_SkipsSymlinks(t *testing.T) {
	store := t.TempDir()
	root := filepath.Join(store, "pkg", "1.0.0")
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "lib.typ"), []byte("#let x = 1\n"), 0o644))

	if err := os.Symlink(filepath.Join(root, "lib.typ"), filepath.Join(root, "alias.typ")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	target := t.TempDir()
	mt := NewMaterializer(adapter.NewLocalSourceFSAdapter(), m.Path(target), "pckgs", 5, discardLogger())

	pkg, err := mt.Materialize(m.PackageLocation{Key: m.PackageKey{Name: "pkg", Version: "1.0.0"}, Root: m.Path(root), Entrypoint: "lib.typ"})
	require.NoError(t, err)

	assert.Equal(t, 1, pkg.Files)
	assert.NoFileExists(t, filepath.Join(string(pkg.Destination), "alias.typ"))
}

func TestMaterializer_FailedCopyIsRetried(t *testing.T) {
	target := t.TempDir()
	blocker := filepath.Join(target, "pckgs")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o644))

	mt := NewMaterializer(adapter.NewLocalSourceFSAdapter(), m.Path(target), "pckgs", 5, discardLogger())

	_, err := mt.Materialize(simplePackage())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
	assert.Contains(t, err.Error(), "simple-package:2025.1.0")
	assert.Empty(t, mt.Packages())

	require.NoError(t, os.Remove(blocker))

	pkg, err := mt.Materialize(simplePackage())
	require.NoError(t, err)
	assert.Equal(t, 3, pkg.Files)
	assert.Len(t, mt.Packages(), 1)
}

// linkedPackageStore lays out <store>/pkg/1.0.0 as a symlink to a
// development checkout holding files.
func linkedPackageStore(t *testing.T, entrypoint string, files map[string]string) (store, devDir string) {
	t.Helper()

	store = t.TempDir()
	devDir = filepath.Join(t.TempDir(), "pkg-dev")
	require.NoError(t, os.MkdirAll(devDir, 0o755))

	manifest := "[package]\nname = \"pkg\"\nversion = \"1.0.0\"\nentrypoint = \"" + entrypoint + "\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(devDir, "typst.toml"), []byte(manifest), 0o644))

	for rel, content := range files {
		path := filepath.Join(devDir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	require.NoError(t, os.MkdirAll(filepath.Join(store, "pkg"), 0o755))

	if err := os.Symlink(devDir, filepath.Join(store, "pkg", "1.0.0")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	return store, devDir
}

func TestMaterializer_FollowsSymlinkedPackageRoot(t *testing.T) {
	store, devDir := linkedPackageStore(t, "lib.typ", map[string]string{
		"lib.typ":         "#import \"util/fmt.typ\": *\n",
		"util/fmt.typ":    "#let fmt(x) = x\n",
		"assets/logo.svg": "<svg/>",
	})

	target := t.TempDir()
	mt := NewMaterializer(adapter.NewLocalSourceFSAdapter(), m.Path(target), "pckgs", 5, discardLogger())

	pkg, err := mt.Materialize(m.PackageLocation{
		Key:        m.PackageKey{Name: "pkg", Version: "1.0.0"},
		Root:       m.Path(filepath.Join(store, "pkg", "1.0.0")),
		Entrypoint: "lib.typ",
	})
	require.NoError(t, err)

	assert.Equal(t, 4, pkg.Files)
	assert.Equal(t, treeDigests(t, devDir), treeDigests(t, string(pkg.Destination)))
	assert.Len(t, mt.Packages(), 1)
}

func TestMaterializer_RejectsCopyWithoutEntrypoint(t *testing.T) {
	tests := []struct {
		name       string
		entrypoint string
		maxDepth   int
		setup      func(t *testing.T, root string)
	}{
		{
			name:       "entrypoint deeper than max depth",
			entrypoint: "a/b/lib.typ",
			maxDepth:   2,
			setup: func(t *testing.T, root string) {
				require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b"), 0o755))
				require.NoError(t, os.WriteFile(filepath.Join(root, "a", "b", "lib.typ"), []byte("#let x = 1\n"), 0o644))
			},
		},
		{
			name:       "entrypoint is a symlink",
			entrypoint: "lib.typ",
			maxDepth:   5,
			setup: func(t *testing.T, root string) {
				src := filepath.Join(root, "src.typ")
				require.NoError(t, os.WriteFile(src, []byte("#let x = 1\n"), 0o644))

				if err := os.Symlink(src, filepath.Join(root, "lib.typ")); err != nil {
					t.Skipf("symlinks unavailable: %v", err)
				}
			},
		},
		{
			name:       "entrypoint missing from the package",
			entrypoint: "lib.typ",
			maxDepth:   5,
			setup: func(t *testing.T, root string) {
				require.NoError(t, os.WriteFile(filepath.Join(root, "other.typ"), []byte("x\n"), 0o644))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := filepath.Join(t.TempDir(), "pkg", "1.0.0")
			require.NoError(t, os.MkdirAll(root, 0o755))
			tt.setup(t, root)

			target := t.TempDir()
			mt := NewMaterializer(adapter.NewLocalSourceFSAdapter(), m.Path(target), "pckgs", tt.maxDepth, discardLogger())

			_, err := mt.Materialize(m.PackageLocation{
				Key:        m.PackageKey{Name: "pkg", Version: "1.0.0"},
				Root:       m.Path(root),
				Entrypoint: tt.entrypoint,
			})
			require.ErrorIs(t, err, ErrIO)
			assert.Contains(t, err.Error(), "entrypoint "+tt.entrypoint)
			assert.Empty(t, mt.Packages())
		})
	}
}

func TestMaterializer_IgnoresStaleEntrypointInTarget(t *testing.T) {
	root := filepath.Join(t.TempDir(), "pkg", "1.0.0")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "b", "lib.typ"), []byte("#let x = 2\n"), 0o644))

	target := t.TempDir()
	stale := filepath.Join(target, "pckgs", "pkg", "1.0.0", "a", "b", "lib.typ")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("#let x = 1\n"), 0o644))

	mt := NewMaterializer(adapter.NewLocalSourceFSAdapter(), m.Path(target), "pckgs", 2, discardLogger())

	_, err := mt.Materialize(m.PackageLocation{
		Key:        m.PackageKey{Name: "pkg", Version: "1.0.0"},
		Root:       m.Path(root),
		Entrypoint: "a/b/lib.typ",
	})
	require.ErrorIs(t, err, ErrIO)
	assert.Empty(t, mt.Packages())
}
