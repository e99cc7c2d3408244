package decompiler

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/hlbc-go/hlbc/internal/ast"
	"github.com/hlbc-go/hlbc/internal/cache"
	"github.com/hlbc-go/hlbc/internal/decomperrors"
)

// debugDecompiler gates trace output, same pattern as pkg/compiler's
// debugCompiler: a package-level const flipped during local development,
// never exposed as a CLI flag for the core itself.
const debugDecompiler = false

func debugPrintf(format string, args ...interface{}) {
	if debugDecompiler {
		fmt.Printf(format, args...)
	}
}

// MaxClosureDepth bounds StaticClosure recursion. Pathological nesting
// beyond this aborts the closure's decompilation with a Diagnostic rather
// than a stack overflow.
const MaxClosureDepth = 64

// Options configures a decompile pass. The zero value is the default:
// no depth override, no diagnostics collection, no cache.
type Options struct {
	// MaxDepth overrides MaxClosureDepth when non-zero.
	MaxDepth int
	// CollectDiagnostics, when true, appends every soft failure to the
	// returned Diagnostics slice instead of only logging them via
	// debugPrintf.
	CollectDiagnostics bool
	// Cache, when non-nil, is consulted before decompiling a top-level
	// function and populated afterwards (internal/cache).
	Cache *cache.Store
	// ModuleHash identifies the bytecode module for Cache lookups; unused
	// if Cache is nil.
	ModuleHash string
}

func (o Options) maxDepth() int {
	if o.MaxDepth > 0 {
		return o.MaxDepth
	}
	return MaxClosureDepth
}

// Result is what decompiling a single function produces.
type Result struct {
	Statements  []ast.Stmt
	Diagnostics []decomperrors.Diagnostic
}

// Session identifies one whole-module decompile run: every diagnostic and
// cache row produced during the run can be tagged with it, so concurrent
// or historical runs against the same module are distinguishable in logs
// and in internal/cache's table.
type Session struct{ ID uuid.UUID }

// NewSession mints a fresh run identity.
func NewSession() Session { return Session{ID: cache.NewSession()} }

func (s Session) String() string { return s.ID.String() }
