package arena

import "testing"

import "github.com/stretchr/testify/require"

func TestInsertProject_FirstWins(t *testing.T) {
	a := New()
	first := &Project{Name: "main", RootDir: "/a"}
	second := &Project{Name: "main", RootDir: "/b"}

	got1, inserted1 := a.InsertProject(first)
	require.True(t, inserted1)
	require.Equal(t, first, got1)

	got2, inserted2 := a.InsertProject(second)
	require.False(t, inserted2)
	require.Equal(t, first, got2) // existing one returned, not the duplicate
}

func TestReset_ClearsAllTables(t *testing.T) {
	a := New()
	a.InsertProject(&Project{Name: "main"})
	a.InsertConfig(&ConfigDocument{Path: "/artic.json"})
	a.SetFileText("/foo.art", "hello")

	a.Reset()

	_, ok1 := a.LookupProject("main")
	require.False(t, ok1)
	_, ok2 := a.LookupConfig("/artic.json")
	require.False(t, ok2)
	_, ok3 := a.LookupFile("/foo.art")
	require.False(t, ok3)
}

func TestSetFileText_OverridesContent(t *testing.T) {
	a := New()
	a.SetFileText("/foo.art", "v1")
	f, ok := a.LookupFile("/foo.art")
	require.True(t, ok)
	require.Equal(t, "v1", *f.Text)

	a.SetFileText("/foo.art", "v2")
	f2, _ := a.LookupFile("/foo.art")
	require.Equal(t, "v2", *f2.Text)
}

func TestTrackedConfigPath(t *testing.T) {
	a := New()
	require.False(t, a.TrackedConfigPath("/artic.json"))
	a.InsertConfig(&ConfigDocument{Path: "/artic.json"})
	require.True(t, a.TrackedConfigPath("/artic.json"))
}

func TestProjectFilesCache(t *testing.T) {
	p := &Project{Name: "main"}
	_, built := p.Files()
	require.False(t, built)

	p.SetFiles([]string{"/a.art"})
	files, built := p.Files()
	require.True(t, built)
	require.Equal(t, []string{"/a.art"}, files)
}
