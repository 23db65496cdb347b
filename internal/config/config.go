// Package config carries process-wide toggles read by multiple packages.
// None of it is required for correctness of the core algorithms; it exists
// so the CLI and the other packages share a few ambient knobs without
// threading extra parameters through every call.
package config

// Version is the current module version, set at build time via -ldflags.
var Version = "0.1.0"

// IsTestMode is a test-run toggle. No package reads it, so setting it
// changes no output (inference-variable and binder names are not
// normalized by it).
var IsTestMode = false

// ColorOutput gates ANSI coloring of CLI diagnostics and residual dumps.
// Set from isatty.IsTerminal in cmd/refinex; left false under test mode.
var ColorOutput = false

// CachePath records the -cache path given to cmd/refinex. No package reads
// it; cmd/refinex opens the cache from the flag value directly.
var CachePath = ""

// Built-in names referenced by more than one package.
const (
	PrintFuncName  = "print"
	MapFuncName    = "map"
	FilterFuncName = "filter"
	FoldFuncName   = "fold"
	TypeOfFuncName = "typeOf"
)
