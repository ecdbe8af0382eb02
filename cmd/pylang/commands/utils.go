package commands

import (
	"io"
	"log/slog"
	"sort"

	"github.com/panyam/pylang/config"
	"github.com/panyam/pylang/loader"
	"github.com/panyam/pylang/runtime"
)

func newLoader(cfg *config.Config) *loader.Loader {
	fs := loader.NewCompositeFS()
	fs.SetFallback(loader.NewLocalFS(""))
	fs.Mount("https://", loader.NewHTTPFileSystem("", nil))
	fs.Mount("http://", loader.NewHTTPFileSystem("", nil))
	resolver := loader.NewSearchPathResolver(fs, cfg.SearchPaths, cfg.Suffix)
	return loader.NewLoader(fs, resolver, cfg.ParserOptions(), slog.Default())
}

func newInterpreter(cfg *config.Config, out io.Writer, l runtime.ProgramLoader) *runtime.Interpreter {
	opts := append(cfg.InterpreterOptions(),
		runtime.WithOutput(out),
		runtime.WithLogger(slog.Default()),
		runtime.WithLoader(l),
	)
	if cfg.Embed == config.EmbedYAML {
		opts = append(opts, runtime.WithEmbedHook(runtime.YAMLEmbedHook))
	}
	return runtime.NewInterpreter(runtime.StandardConstants().Build(), opts...)
}

// printBindings writes `name = repr` lines in name order.
func printBindings(w io.Writer, bindings map[string]runtime.Value) {
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		io.WriteString(w, name+" = "+bindings[name].Repr()+"\n")
	}
}
