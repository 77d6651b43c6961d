// Package wallclock provides a linter that keeps the clock out of the cycle
// math.
//
// Cycle days, phases and suggested dates are derived from an explicit as-of
// date so results are reproducible and testable. A stray time.Now() in those
// packages silently ties the answer to the machine's clock and timezone.
//
// The analyzer reports calls to time.Now, time.Since and time.Until in the
// packages named by the -packages flag. A function that deliberately reads
// the clock, such as a "today" convenience wrapper, opts out with a
// "//wallclock:allow" line in its doc comment. A single call can be
// silenced with //nolint or //nolint:wallclock on the same line.
package wallclock

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
)

const allowDirective = "//wallclock:allow"

// Analyzer is the wallclock analyzer.
var Analyzer = &analysis.Analyzer{
	Name: "wallclock",
	Doc:  "reports clock reads in packages that must work from an explicit as-of date",
	Run:  run,
}

var packages = "internal/cycle,internal/affinity,internal/domain"

func init() {
	Analyzer.Flags.StringVar(&packages, "packages", packages,
		"comma-separated import path fragments of the packages to check")
}

var clockFuncs = map[string]bool{"Now": true, "Since": true, "Until": true}

func run(pass *analysis.Pass) (any, error) {
	if !checked(pass.Pkg.Path()) {
		return nil, nil
	}

	for _, file := range pass.Files {
		silenced := nolintLines(pass, file)

		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Body == nil || allowed(fn) {
				continue
			}

			ast.Inspect(fn.Body, func(n ast.Node) bool {
				call, ok := n.(*ast.CallExpr)
				if !ok {
					return true
				}
				name, ok := clockCall(pass, call)
				if !ok {
					return true
				}
				if silenced[pass.Fset.Position(call.Pos()).Line] {
					return true
				}
				pass.Reportf(call.Pos(), "time.%s reads the wall clock; take the as-of date as a parameter", name)
				return true
			})
		}
	}

	return nil, nil
}

func checked(path string) bool {
	for frag := range strings.SplitSeq(packages, ",") {
		frag = strings.TrimSpace(frag)
		if frag != "" && (path == frag || strings.HasSuffix(path, "/"+frag) || strings.Contains(path, "/"+frag+"/")) {
			return true
		}
	}
	return false
}

// clockCall resolves the callee through type info so renamed imports of
// package time are still caught.
func clockCall(pass *analysis.Pass, call *ast.CallExpr) (string, bool) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || !clockFuncs[sel.Sel.Name] {
		return "", false
	}
	fn, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Func)
	if !ok || fn.Pkg() == nil || fn.Pkg().Path() != "time" {
		return "", false
	}
	return sel.Sel.Name, true
}

func allowed(fn *ast.FuncDecl) bool {
	if fn.Doc == nil {
		return false
	}
	for _, c := range fn.Doc.List {
		if strings.HasPrefix(c.Text, allowDirective) {
			return true
		}
	}
	return false
}

// nolintLines returns the lines carrying a //nolint or //nolint:wallclock
// comment. A nolint naming only other linters does not count.
func nolintLines(pass *analysis.Pass, file *ast.File) map[int]bool {
	lines := make(map[int]bool)
	for _, cg := range file.Comments {
		for _, c := range cg.List {
			text := strings.TrimPrefix(c.Text, "//")
			if !strings.HasPrefix(text, "nolint") {
				continue
			}
			directive, _, _ := strings.Cut(text, " ")
			linters, named := strings.CutPrefix(directive, "nolint:")
			if directive == "nolint" || (named && strings.Contains(linters, "wallclock")) {
				lines[pass.Fset.Position(c.Pos()).Line] = true
			}
		}
	}
	return lines
}
