package decompiler

import (
	"bytes"
	"encoding/gob"

	"github.com/hlbc-go/hlbc/internal/ast"
	"github.com/hlbc-go/hlbc/internal/bytecode"
	"github.com/hlbc-go/hlbc/internal/decomperrors"
)

func init() {
	gob.Register(&ast.Unknown{})
	gob.Register(&ast.Variable{})
	gob.Register(&ast.Constant{})
	gob.Register(&ast.Op{})
	gob.Register(&ast.Call{})
	gob.Register(&ast.Field{})
	gob.Register(&ast.Array{})
	gob.Register(&ast.Constructor{})
	gob.Register(&ast.Anonymous{})
	gob.Register(&ast.EnumConstr{})
	gob.Register(&ast.Closure{})
	gob.Register(&ast.Assign{})
	gob.Register(&ast.ExprStmt{})
	gob.Register(&ast.Return{})
	gob.Register(&ast.If{})
	gob.Register(&ast.Else{})
	gob.Register(&ast.While{})
	gob.Register(&ast.Switch{})
	gob.Register(&ast.Try{})
	gob.Register(&ast.Throw{})
	gob.Register(&ast.Break{})
	gob.Register(&ast.Continue{})
}

// ModuleResult is the result of decompiling a whole module's worth of
// requested functions and classes, tagged with the run that produced it.
type ModuleResult struct {
	Session     Session
	Functions   map[bytecode.RefFun][]ast.Stmt
	Classes     []*Class
	Diagnostics []decomperrors.Diagnostic
}

// DecompileModule decompiles looseFunctions (top-level functions with no
// enclosing class) and classTypes (object types to aggregate via
// DecompileClass), tagging the run with a fresh Session. Each function
// only reads shared immutable input from code, so the caller is free to
// run this same loop concurrently per entry if it wishes — this
// orchestrator itself stays sequential, matching the function decompiler's
// own single-threaded contract.
//
// When opts.Cache is set, looseFunctions are looked up by (opts.ModuleHash,
// findex) before decompiling and stored back afterwards, so a repeated
// call against the same module skips functions already solved.
func DecompileModule(code *bytecode.Bytecode, classTypes []bytecode.RefType, looseFunctions []bytecode.RefFun, opts Options) *ModuleResult {
	result := &ModuleResult{
		Session:   NewSession(),
		Functions: make(map[bytecode.RefFun][]ast.Stmt, len(looseFunctions)),
	}

	for _, ref := range looseFunctions {
		if opts.Cache != nil {
			if cached, ok, err := opts.Cache.Get(opts.ModuleHash, int(ref)); err == nil && ok {
				if stmts, err := decodeStatements(cached); err == nil {
					result.Functions[ref] = stmts
					continue
				}
			}
		}
		ptr := ref.Resolve(code)
		if ptr.Fun == nil {
			continue
		}
		stmts, diags, err := Function(code, ptr.Fun, opts)
		result.Diagnostics = append(result.Diagnostics, diags...)
		if err != nil {
			result.Diagnostics = append(result.Diagnostics, decomperrors.Diagnostic{
				Position: decomperrors.Position{FunctionIndex: int(ref)},
				Msg:      err.Error(),
			})
			continue
		}
		result.Functions[ref] = stmts
		if opts.Cache != nil {
			if encoded, err := encodeStatements(stmts); err == nil {
				opts.Cache.Put(opts.ModuleHash, int(ref), result.Session.ID, encoded)
			}
		}
	}

	for _, ref := range classTypes {
		class := DecompileClass(code, ref, opts)
		result.Diagnostics = append(result.Diagnostics, class.Diagnostics...)
		result.Classes = append(result.Classes, class)
	}

	return result
}

func encodeStatements(stmts []ast.Stmt) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&stmts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeStatements(data []byte) ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&stmts); err != nil {
		return nil, err
	}
	return stmts, nil
}
