package evaluator

import (
	"path/filepath"

	"github.com/madkinsz/jrsonnet/internal/ast"
	"github.com/madkinsz/jrsonnet/internal/state"
	"github.com/madkinsz/jrsonnet/internal/value"
)

// fromDir is the directory the host resolves a relative import path
// against: the directory of the file containing the import expression
// itself, tracked via State.CurrentFile (falling back to the node's own
// location when no file is currently pushed, e.g. evaluating a standalone
// snippet with no enclosing PushFile).
func fromDir(loc ast.Location, st *state.State) string {
	file := st.CurrentFile()
	if file == "" {
		file = loc.File
	}
	return filepath.Dir(file)
}

func evalImport(n *ast.Import, ctx *value.Context, st *state.State) (value.Value, error) {
	resolved, err := st.ResolveFile(fromDir(n.Loc(), st), n.Path)
	if err != nil {
		return nil, err
	}
	return st.PushFile(n.Loc(), resolved, func() (value.Value, error) {
		return st.Import(resolved)
	})
}

func evalImportStr(n *ast.ImportStr, ctx *value.Context, st *state.State) (value.Value, error) {
	resolved, err := st.ResolveFile(fromDir(n.Loc(), st), n.Path)
	if err != nil {
		return nil, err
	}
	s, err := st.ImportStr(resolved)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func evalImportBin(n *ast.ImportBin, ctx *value.Context, st *state.State) (value.Value, error) {
	resolved, err := st.ResolveFile(fromDir(n.Loc(), st), n.Path)
	if err != nil {
		return nil, err
	}
	arr, err := st.ImportBin(resolved)
	if err != nil {
		return nil, err
	}
	return arr, nil
}
