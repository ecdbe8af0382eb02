package loader

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/panyam/pylang/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tfs "gotest.tools/v3/fs"
)

func setupLoader(t *testing.T, fs FileSystem, searchPaths ...string) *Loader {
	t.Helper()
	return NewLoader(fs, NewSearchPathResolver(fs, searchPaths, ""), nil, runtime.QuietLogger())
}

func runFile(t *testing.T, l *Loader, path string) (*runtime.Interpreter, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	in := runtime.NewInterpreter(runtime.StandardConstants().Build(),
		runtime.WithOutput(out), runtime.WithLogger(runtime.QuietLogger()), runtime.WithLoader(l))
	prog, err := l.LoadFile(path)
	require.NoError(t, err)
	err = in.Run(prog)
	return in, out.String(), err
}

func TestSearchPathCandidates(t *testing.T) {
	r := NewSearchPathResolver(NewMemoryFS(), []string{"/lib", "https://example.com/pkgs/"}, "")
	assert.Equal(t, []string{
		"/src/util", "/src/util.pyl",
		"/lib/util", "/lib/util.pyl",
		"https://example.com/pkgs/util", "https://example.com/pkgs/util.pyl",
	}, r.Candidates("/src/main.pyl", "util"))

	assert.Equal(t, []string{"/abs/x.pyl"}, r.Candidates("/src/main.pyl", "/abs/x.pyl"))
	assert.Equal(t, []string{"https://h/a/c", "https://h/a/c.pyl"},
		r.Candidates("https://h/a/b.pyl", "c")[:2])
}

func TestLoadFromDisk(t *testing.T) {
	dir := tfs.NewDir(t, "pylang-loader",
		tfs.WithFile("main.pyl", "load util, shared\nprint double(x);\n"),
		tfs.WithFile("util.pyl", "load shared\ndef double(n) { return n * 2; }\n"),
		tfs.WithDir("lib",
			tfs.WithFile("shared.pyl", "print \"shared\";\nx = 21;\n")),
	)
	defer dir.Remove()

	l := setupLoader(t, NewLocalFS(""), dir.Join("lib"))
	in, out, err := runFile(t, l, dir.Join("main.pyl"))
	require.NoError(t, err)

	// shared runs once even though two files load it.
	assert.Equal(t, "shared\n42\n", out)
	v, err := in.Env().Get("double")
	require.NoError(t, err)
	assert.Equal(t, "function", v.TypeName())
}

func TestLoadCachesParsedPrograms(t *testing.T) {
	dir := tfs.NewDir(t, "pylang-cache", tfs.WithFile("a.pyl", "x = 1;"))
	defer dir.Remove()

	l := setupLoader(t, NewLocalFS(""))
	first, err := l.Load(dir.Join("main.pyl"), "a")
	require.NoError(t, err)
	second, err := l.Load(dir.Join("sub", "..", "main.pyl"), "a.pyl")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, dir.Join("a.pyl"), first.Path)

	l.Forget(first.Path)
	third, err := l.Load(dir.Join("main.pyl"), "a")
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestLoadCycle(t *testing.T) {
	fs := NewMemoryFS()
	fs.PreloadFiles(map[string]string{
		"/src/a.pyl": "load b\nx = 1;",
		"/src/b.pyl": "load a\ny = 2;",
	})
	l := setupLoader(t, fs)
	_, _, err := runFile(t, l, "/src/a.pyl")
	assert.ErrorIs(t, err, runtime.ErrLoad)
	assert.Contains(t, err.Error(), "cycle")
}

func TestLoadErrors(t *testing.T) {
	fs := NewMemoryFS()
	fs.PreloadFiles(map[string]string{
		"/src/main.pyl":   "load missing\n",
		"/src/broken.pyl": "x = (1;",
		"/src/usebad.pyl": "load broken\n",
	})
	l := setupLoader(t, fs)

	_, _, err := runFile(t, l, "/src/main.pyl")
	assert.ErrorIs(t, err, runtime.ErrLoad)
	assert.Contains(t, err.Error(), "/src/missing.pyl")

	_, _, err = runFile(t, l, "/src/usebad.pyl")
	assert.ErrorIs(t, err, runtime.ErrLoad)

	_, err = l.LoadFile("/nowhere.pyl")
	assert.ErrorIs(t, err, runtime.ErrLoad)
}

func TestLoadDepthLimit(t *testing.T) {
	files := map[string]string{}
	for i := range 15 {
		files[fmt.Sprintf("/chain/f%d.pyl", i)] = fmt.Sprintf("load f%d\n", i+1)
	}
	files["/chain/f15.pyl"] = "done = True;"
	fs := NewMemoryFS()
	fs.PreloadFiles(files)

	_, _, err := runFile(t, setupLoader(t, fs), "/chain/f0.pyl")
	assert.ErrorIs(t, err, runtime.ErrLoad)
	assert.Contains(t, err.Error(), "depth")
}

func TestCompositeAndHTTP(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		switch r.URL.Path {
		case "/pkgs/greet.pyl":
			fmt.Fprint(w, "greeting = \"hi\";")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	mem := NewMemoryFS()
	mem.PreloadFiles(map[string]string{"/app/main.pyl": "load greet\nprint greeting;"})
	fs := NewCompositeFS()
	fs.SetFallback(mem)
	fs.Mount("http://", NewHTTPFileSystem("", srv.Client()))

	l := setupLoader(t, fs, srv.URL+"/pkgs")
	_, out, err := runFile(t, l, "/app/main.pyl")
	require.NoError(t, err)
	assert.Equal(t, "hi\n", out)

	// The bare name 404s once, then the suffixed one is fetched and cached.
	before := hits
	assert.True(t, fs.Exists(srv.URL+"/pkgs/greet.pyl"))
	assert.Equal(t, before, hits)
}

func TestLocalFSCanonical(t *testing.T) {
	dir := tfs.NewDir(t, "pylang-canon", tfs.WithFile("x.pyl", ""))
	defer dir.Remove()
	fs := NewLocalFS(dir.Path())
	assert.True(t, fs.Exists("x.pyl"))
	assert.False(t, fs.Exists("."))
	assert.Equal(t, filepath.Join(dir.Path(), "x.pyl"), fs.Canonical("./x.pyl"))
}
