package interp

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/fippli/fip/internal/diagnostics"
	"github.com/fippli/fip/pkg/ast"
	"github.com/fippli/fip/pkg/env"
	"github.com/fippli/fip/pkg/parser"
	"github.com/fippli/fip/pkg/value"
)

// Module is a fully evaluated top-level environment plus its export set.
// "exported" equals "defined at top level" — the surface grammar has no
// export clause (see DESIGN.md).
type Module struct {
	Env     *env.Env
	Exports map[string]value.Value
}

// loadModule is the load algorithm: cycle detection via the in-progress set,
// then cache lookup, then a fresh parse-and-evaluate.
func (e *Evaluator) loadModule(rawPath string, usePos lexer.Position) (*Module, error) {
	abs, err := e.resolveModulePath(rawPath, usePos)
	if err != nil {
		return nil, err
	}
	if e.inProgress[abs] {
		return nil, runtimeErr(usePos, "import cycle detected: %q is already being loaded", abs)
	}
	if m, ok := e.cache[abs]; ok {
		return m, nil
	}

	e.inProgress[abs] = true
	m, err := e.evaluateModuleFile(abs, usePos)
	delete(e.inProgress, abs)
	if err != nil {
		return nil, err
	}
	e.cache[abs] = m
	return m, nil
}

func (e *Evaluator) evaluateModuleFile(abs string, usePos lexer.Position) (*Module, error) {
	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, runtimeErr(usePos, "cannot load module %q: %v", abs, err)
	}
	p, err := parser.New()
	if err != nil {
		return nil, runtimeErr(usePos, "internal error building parser: %v", err)
	}
	prog, err := p.ParseBytes(abs, src)
	if err != nil {
		return nil, runtimeErr(usePos, "cannot parse module %q: %v", abs, err)
	}
	frame := env.New()
	if err := e.evalProgram(prog, frame); err != nil {
		return nil, err
	}
	exports := map[string]value.Value{}
	for _, name := range frame.Names() {
		v, _ := frame.Lookup(name)
		exports[name] = v
	}
	return &Module{Env: frame, Exports: exports}, nil
}

// resolveModulePath joins a `use` path against the entry-point directory —
// not the importing file's directory — and rejects any path containing "..",
// whether or not it would escape that directory.
func (e *Evaluator) resolveModulePath(rawPath string, usePos lexer.Position) (string, error) {
	if strings.Contains(rawPath, "..") {
		return "", runtimeErr(usePos, "module path %q escapes the entry-point directory", rawPath)
	}
	joined := filepath.Join(e.entryDir, rawPath)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", runtimeErr(usePos, "cannot resolve module path %q: %v", rawPath, err)
	}
	rel, err := filepath.Rel(e.entryDir, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", runtimeErr(usePos, "module path %q escapes the entry-point directory", rawPath)
	}
	return abs, nil
}

func (e *Evaluator) evalUseStmt(u *ast.UseStmt, frame *env.Env) error {
	rawPath, err := literalStringPath(u.Path, u.Pos)
	if err != nil {
		return err
	}
	m, err := e.loadModule(rawPath, u.Pos)
	if err != nil {
		return err
	}
	switch {
	case u.Single != nil:
		name := *u.Single
		v, ok := m.Exports[name]
		if !ok {
			return runtimeErr(u.Pos, "%s", diagnostics.WithSuggestion(
				fmt.Sprintf("module %q does not export %q", rawPath, name), name, exportNames(m)))
		}
		if u.Alias != nil {
			// `use NAME as ALIAS` is the namespace form: ALIAS becomes an
			// Object whose fields are the whole module's exports, not just
			// NAME's value.
			alias := *u.Alias
			if frame.Defined(alias) {
				return mutationErr(u.Pos, alias)
			}
			frame.Define(alias, moduleObject(m))
			return nil
		}
		if frame.Defined(name) {
			return mutationErr(u.Pos, name)
		}
		frame.Define(name, v)
		return nil
	default:
		for _, name := range u.Names {
			v, ok := m.Exports[name]
			if !ok {
				return runtimeErr(u.Pos, "%s", diagnostics.WithSuggestion(
					fmt.Sprintf("module %q does not export %q", rawPath, name), name, exportNames(m)))
			}
			if frame.Defined(name) {
				return mutationErr(u.Pos, name)
			}
			frame.Define(name, v)
		}
		return nil
	}
}

// moduleObject wraps m's exports as an Object value for the alias form of a
// `use` statement. Export order is not observable in the source module (a
// root frame is a map), so keys are sorted for a stable iteration order.
func moduleObject(m *Module) value.ObjectValue {
	names := exportNames(m)
	sort.Strings(names)
	return value.NewObject(names, m.Exports)
}

// exportNames lists m's export names, in unspecified order: moduleObject
// sorts them for the alias form, and they are the "did you mean" candidates
// when a `use` statement names a binding the module doesn't export.
func exportNames(m *Module) []string {
	names := make([]string, 0, len(m.Exports))
	for name := range m.Exports {
		names = append(names, name)
	}
	return names
}

// literalStringPath renders a use-statement path, rejecting interpolation
// (module paths must be static so they can be cycle-detected by string
// identity before any evaluation happens).
func literalStringPath(s *ast.StringLit, pos lexer.Position) (string, error) {
	var b strings.Builder
	for _, part := range s.Parts {
		switch {
		case part.Text != nil:
			b.WriteString(*part.Text)
		case part.Escape != nil:
			b.WriteString(*part.Escape)
		case part.Interp != nil:
			return "", runtimeErr(pos, "use path must not contain interpolation")
		}
	}
	return b.String(), nil
}

// EvaluateFile is the core's evaluate entry point: it evaluates the named
// file as the entry-point module and returns its root environment's last
// top-level value.
func EvaluateFile(path string) (value.Value, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve %q: %v", path, err)
	}
	e := NewEvaluator(filepath.Dir(abs))
	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("cannot read %q: %v", abs, err)
	}
	p, err := parser.New()
	if err != nil {
		return nil, err
	}
	prog, err := p.ParseBytes(abs, src)
	if err != nil {
		return nil, err
	}
	frame := env.New()
	block := &ast.Block{Pos: prog.Pos, Stmts: prog.Stmts}
	e.inProgress[abs] = true
	v, err := e.evalBlock(block, frame, callCtx{})
	delete(e.inProgress, abs)
	if err != nil {
		return nil, err
	}
	exports := map[string]value.Value{}
	for _, name := range frame.Names() {
		ev, _ := frame.Lookup(name)
		exports[name] = ev
	}
	e.cache[abs] = &Module{Env: frame, Exports: exports}
	return v, nil
}

// AnalyzeFile is the core's analyze entry point: it parses and runs the
// purity/predicate checker over every function literal without evaluating
// any call, for the stand-alone lint tool.
func AnalyzeFile(path string) []error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return []error{err}
	}
	src, err := os.ReadFile(abs)
	if err != nil {
		return []error{err}
	}
	p, err := parser.New()
	if err != nil {
		return []error{err}
	}
	prog, err := p.ParseBytes(abs, src)
	if err != nil {
		return []error{err}
	}
	var checks []funcCheck
	collectFuncLits(&ast.Block{Stmts: prog.Stmts}, &checks)

	var errs []error
	for _, fc := range checks {
		if err := validateNamedFuncLit(fc.lit, fc.name, fc.impure, fc.pred); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// funcCheck pairs a function literal with the effective impure/pred suffix
// it must be checked against: a named binding's or async def's binder suffix
// stands in for an unwritten literal suffix, while an anonymous literal is
// checked against only its own.
type funcCheck struct {
	lit    *ast.FuncLit
	name   string
	impure bool
	pred   bool
}

func namedFuncCheck(lit *ast.FuncLit, name string) funcCheck {
	_, impure, pred := parseIdentSuffix(name)
	return funcCheck{lit: lit, name: name, impure: impure, pred: pred}
}

func anonFuncCheck(lit *ast.FuncLit) funcCheck {
	return funcCheck{lit: lit, name: "function literal", impure: lit.Impure, pred: lit.Pred}
}

// collectFuncLits gathers every function literal in b, including those
// nested inside other function bodies — unlike the impurity-witness scan in
// purity.go, the lint pass must check each literal's own suffix discipline
// regardless of nesting depth.
func collectFuncLits(b *ast.Block, out *[]funcCheck) {
	for _, stmt := range b.Stmts {
		switch {
		case stmt.Async != nil && stmt.Async.Fn != nil:
			*out = append(*out, namedFuncCheck(stmt.Async.Fn, stmt.Async.Name))
			collectFuncLits(stmt.Async.Fn.Body, out)
		case stmt.Binding != nil:
			if stmt.Binding.Pattern.Ident != nil {
				if lit, ok := literalFuncLit(stmt.Binding.Value); ok {
					*out = append(*out, namedFuncCheck(lit, *stmt.Binding.Pattern.Ident))
					collectFuncLits(lit.Body, out)
					continue
				}
			}
			collectFuncLitsExpr(stmt.Binding.Value, out)
		case stmt.Expr != nil:
			collectFuncLitsExpr(stmt.Expr, out)
		}
	}
}

func collectFuncLitsExpr(e *ast.Expr, out *[]funcCheck) {
	walkOr(e.Or, out)
}

func walkOr(x *ast.OrExpr, out *[]funcCheck) {
	walkAnd(x.Left, out)
	for _, t := range x.Rest {
		walkAnd(t.Right, out)
	}
}

func walkAnd(x *ast.AndExpr, out *[]funcCheck) {
	walkEq(x.Left, out)
	for _, t := range x.Rest {
		walkEq(t.Right, out)
	}
}

func walkEq(x *ast.EqExpr, out *[]funcCheck) {
	walkRel(x.Left, out)
	for _, t := range x.Rest {
		walkRel(t.Right, out)
	}
}

func walkRel(x *ast.RelExpr, out *[]funcCheck) {
	walkAdd(x.Left, out)
	for _, t := range x.Rest {
		walkAdd(t.Right, out)
	}
}

func walkAdd(x *ast.AddExpr, out *[]funcCheck) {
	walkMul(x.Left, out)
	for _, t := range x.Rest {
		walkMul(t.Right, out)
	}
}

func walkMul(x *ast.MulExpr, out *[]funcCheck) {
	walkUnary(x.Left, out)
	for _, t := range x.Rest {
		walkUnary(t.Right, out)
	}
}

func walkUnary(x *ast.UnaryExpr, out *[]funcCheck) {
	walkPostfix(x.Postfix, out)
}

func walkPostfix(p *ast.Postfix, out *[]funcCheck) {
	walkPrimary(p.Primary, out)
	for _, op := range p.Ops {
		if op.Call != nil {
			for _, a := range op.Call.Args {
				collectFuncLitsExpr(a, out)
			}
		}
	}
}

func walkPrimary(p *ast.Primary, out *[]funcCheck) {
	switch {
	case p.Str != nil:
		return
	case p.Array != nil:
		for _, el := range p.Array.Elements {
			collectFuncLitsExpr(el.Value, out)
		}
	case p.Object != nil:
		for _, el := range p.Object.Elements {
			if el.Spread != nil {
				collectFuncLitsExpr(el.Spread, out)
			}
			if el.Pair != nil {
				collectFuncLitsExpr(el.Pair.Value, out)
			}
		}
	case p.Paren != nil:
		collectFuncLitsExpr(p.Paren, out)
	case p.FuncLit != nil:
		*out = append(*out, anonFuncCheck(p.FuncLit))
		collectFuncLits(p.FuncLit.Body, out)
	}
}
