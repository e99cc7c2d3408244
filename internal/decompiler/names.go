package decompiler

import (
	"fmt"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/unicode/norm"
)

// haxeIdentPattern matches a legal Haxe identifier that isn't a reserved
// word. regexp2 (rather than the stdlib regexp package, which lacks
// lookaround) lets this be expressed as a single pattern instead of a
// match-then-blacklist-check pair. Debug-table names come straight out of
// the bytecode's string table and are not guaranteed to be valid source
// identifiers, so every name is validated before it is used to build a
// Variable node. Field and method names are used as resolved; they are
// not checked against this pattern.
var haxeIdentPattern = regexp2.MustCompile(
	`^(?!(function|class|var|if|else|while|for|return|new|this|null|true|false|break|continue|switch|case|default|try|catch|throw|enum|static)$)[A-Za-z_][A-Za-z0-9_]*$`,
	regexp2.None,
)

// sanitizeIdent returns name unchanged if it is a valid, non-reserved Haxe
// identifier, or a deterministic synthetic name otherwise (so the AST
// never carries a name the pretty-printer can't emit as-is). fallback
// distinguishes the callsite (e.g. "_r3" from synthRegName) when name must
// be replaced.
func sanitizeIdent(name string, fallback string) string {
	if name == "" {
		return fallback
	}
	ok, err := haxeIdentPattern.MatchString(name)
	if err != nil || !ok {
		return fallback
	}
	return name
}

// normalizeString returns s in Unicode NFC form, so that combining-
// character variants of the same logical string constant (recovered from
// the bytecode's string table via String/GetGlobal opcodes) compare and
// print identically regardless of how the original compiler encoded them.
func normalizeString(s string) string {
	return norm.NFC.String(s)
}

// synthRegName produces the fallback identifier used when a register's
// debug-table name fails sanitizeIdent.
func synthRegName(i int) string { return fmt.Sprintf("_r%d", i) }
