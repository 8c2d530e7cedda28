package runtime

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/axarion/axscript/internal/logging"
	"github.com/axarion/axscript/pkg/diagnostics"
	"github.com/axarion/axscript/pkg/interpreter"
	"github.com/axarion/axscript/pkg/parser"
	"github.com/axarion/axscript/pkg/stdlib"
)

// ModuleExt is the extension of module source files.
const ModuleExt = ".axs"

type importChainKey struct{}

// importChain returns the modules being loaded on this context, outermost first.
func importChain(ctx context.Context) []string {
	chain, _ := ctx.Value(importChainKey{}).([]string)
	return chain
}

func withImport(ctx context.Context, name string) context.Context {
	chain := importChain(ctx)
	next := make([]string, len(chain), len(chain)+1)
	copy(next, chain)
	return context.WithValue(ctx, importChainKey{}, append(next, name))
}

// fileLoader resolves unregistered modules to `<Name>.axs` files on the
// search path. Each file runs once, in its own interpreter; the module
// system caches what it exports.
type fileLoader struct {
	rt    *Runtime
	paths []string
}

var _ stdlib.Loader = (*fileLoader)(nil)

func (l *fileLoader) Load(ctx context.Context, name string) (*interpreter.Object, error) {
	chain := importChain(ctx)
	for _, n := range chain {
		if n == name {
			cycle := strings.Join(append(chain, name), " -> ")
			return nil, &interpreter.RuntimeError{Code: diagnostics.EModule, Message: "Circular import: " + cycle}
		}
	}

	path, err := l.find(name)
	if err != nil {
		return nil, err
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, &interpreter.RuntimeError{
			Code:    diagnostics.EIO,
			Message: errors.Wrapf(err, "read module %s", name).Error(),
		}
	}

	program, diags := parser.Parse(string(source), path)
	if len(diags) > 0 {
		return nil, &interpreter.RuntimeError{
			Code:    diagnostics.EModule,
			Message: fmt.Sprintf("Error in module %s: %s", name, diagnostics.FormatParseError(diags[0])),
		}
	}

	logger := logging.Logger(ctx).WithField("module", name)
	logger.Debugf("loading module from %s", path)
	res, err := interpreter.Execute(withImport(ctx, name), program, l.rt.execOptions(nil))
	if err != nil {
		return nil, moduleError(name, err)
	}
	for _, w := range res.Warnings {
		logger.Warn(w)
	}
	return res.Exports, nil
}

// find returns the first `<dir>/<name>.axs` that exists.
func (l *fileLoader) find(name string) (string, error) {
	file := name + ModuleExt
	if !filepath.IsLocal(file) {
		return "", errors.Wrapf(stdlib.ErrModuleNotFound, "%s is not a local module name", name)
	}
	for _, dir := range l.paths {
		path := filepath.Join(dir, file)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", errors.Wrap(stdlib.ErrModuleNotFound, name)
}

// moduleError reports a failure inside a module. The result carries no span
// so that it is located at the importing statement.
func moduleError(name string, err error) error {
	var rtErr *interpreter.RuntimeError
	if !errors.As(err, &rtErr) {
		return &interpreter.RuntimeError{
			Code:    diagnostics.EModule,
			Message: fmt.Sprintf("Error in module %s: %s", name, err.Error()),
		}
	}
	switch {
	case rtErr.Code == diagnostics.EBudget:
		return rtErr
	case rtErr.Code == diagnostics.EModule:
		// A nested import already names the module at fault.
		return &interpreter.RuntimeError{Code: rtErr.Code, Message: rtErr.Message}
	case rtErr.Span != nil && rtErr.Span.StartLine > 0:
		return &interpreter.RuntimeError{
			Code:    diagnostics.EModule,
			Message: fmt.Sprintf("Error in module %s, line %d: %s", name, rtErr.Span.StartLine, rtErr.Message),
		}
	}
	return &interpreter.RuntimeError{
		Code:    diagnostics.EModule,
		Message: fmt.Sprintf("Error in module %s: %s", name, rtErr.Message),
	}
}
