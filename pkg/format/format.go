// Package format implements FIP's stand-alone source formatter behind the
// `fip format` front-end command. The core only exposes the Format entry
// point; the CLI front-end decides whether to print the result or rewrite
// the file in place (the `--write`/`-w` flag).
package format

import (
	"strings"

	"github.com/fippli/fip/pkg/ast"
)

// Formatter walks a parsed Program through ast.Visitor double dispatch and
// renders it back out as canonical FIP source: one statement per line,
// two-space indentation, a single space around binary operators. It embeds
// ast.BaseVisitor and overrides every method that emits text; the few
// pure-dispatch methods (Stmt, Expr, Postfix) fall through to the base
// traversal.
type Formatter struct {
	ast.BaseVisitor

	out    strings.Builder
	indent int
}

// Format renders prog as canonical FIP source text.
func Format(prog *ast.Program) string {
	f := &Formatter{}
	prog.Accept(f)
	return f.out.String()
}

var _ ast.Visitor = (*Formatter)(nil)

func (f *Formatter) print(s string) { f.out.WriteString(s) }

func (f *Formatter) pad() string { return strings.Repeat("  ", f.indent) }

// VisitProgram renders every top-level statement on its own line.
func (f *Formatter) VisitProgram(node *ast.Program) interface{} {
	for _, s := range node.Stmts {
		f.print(f.pad())
		s.Accept(f)
		f.print("\n")
	}
	return nil
}

func (f *Formatter) VisitUseStmt(node *ast.UseStmt) interface{} {
	switch {
	case node.Single != nil && node.Alias != nil:
		f.print("use " + *node.Single + " as " + *node.Alias + " from ")
	case node.Single != nil:
		f.print("use " + *node.Single + " from ")
	default:
		f.print("use { " + strings.Join(node.Names, ", ") + " } from ")
	}
	node.Path.Accept(f)
	return nil
}

func (f *Formatter) VisitAsyncDef(node *ast.AsyncDef) interface{} {
	f.print("async " + node.Name + ": ")
	node.Fn.Accept(f)
	return nil
}

func (f *Formatter) VisitBinding(node *ast.Binding) interface{} {
	node.Pattern.Accept(f)
	f.print(": ")
	node.Value.Accept(f)
	return nil
}

func (f *Formatter) VisitPattern(node *ast.Pattern) interface{} {
	switch {
	case node.Ident != nil:
		f.print(*node.Ident)
	case node.Array != nil:
		f.print("[")
		for i, sub := range node.Array {
			if i > 0 {
				f.print(", ")
			}
			sub.Accept(f)
		}
		f.print("]")
	case node.Object != nil:
		f.print("{")
		for i, el := range node.Object {
			if i > 0 {
				f.print(", ")
			}
			el.Accept(f)
		}
		f.print("}")
	}
	return nil
}

func (f *Formatter) VisitObjectPatEl(node *ast.ObjectPatEl) interface{} {
	f.print(node.Key)
	if node.SubPat != nil {
		f.print(": ")
		node.SubPat.Accept(f)
	}
	return nil
}

func (f *Formatter) VisitOrExpr(node *ast.OrExpr) interface{} {
	node.Left.Accept(f)
	for _, t := range node.Rest {
		f.print(" | ")
		t.Right.Accept(f)
	}
	return nil
}

func (f *Formatter) VisitAndExpr(node *ast.AndExpr) interface{} {
	node.Left.Accept(f)
	for _, t := range node.Rest {
		f.print(" & ")
		t.Right.Accept(f)
	}
	return nil
}

func (f *Formatter) VisitEqExpr(node *ast.EqExpr) interface{} {
	node.Left.Accept(f)
	for _, t := range node.Rest {
		f.print(" " + t.Op + " ")
		t.Right.Accept(f)
	}
	return nil
}

func (f *Formatter) VisitRelExpr(node *ast.RelExpr) interface{} {
	node.Left.Accept(f)
	for _, t := range node.Rest {
		f.print(" " + t.Op + " ")
		t.Right.Accept(f)
	}
	return nil
}

func (f *Formatter) VisitAddExpr(node *ast.AddExpr) interface{} {
	node.Left.Accept(f)
	for _, t := range node.Rest {
		f.print(" " + t.Op + " ")
		t.Right.Accept(f)
	}
	return nil
}

func (f *Formatter) VisitMulExpr(node *ast.MulExpr) interface{} {
	node.Left.Accept(f)
	for _, t := range node.Rest {
		f.print(" " + t.Op + " ")
		t.Right.Accept(f)
	}
	return nil
}

func (f *Formatter) VisitUnaryExpr(node *ast.UnaryExpr) interface{} {
	if node.Neg {
		f.print("-")
	}
	if node.Await {
		f.print("await ")
	}
	node.Postfix.Accept(f)
	return nil
}

func (f *Formatter) VisitPostfixOp(node *ast.PostfixOp) interface{} {
	switch {
	case node.Call != nil:
		node.Call.Accept(f)
	case node.Prop != nil:
		f.print("." + *node.Prop)
	}
	return nil
}

func (f *Formatter) VisitCallOp(node *ast.CallOp) interface{} {
	f.print("(")
	for i, a := range node.Args {
		if i > 0 {
			f.print(", ")
		}
		a.Accept(f)
	}
	f.print(")")
	return nil
}

func (f *Formatter) VisitPrimary(node *ast.Primary) interface{} {
	switch {
	case node.Number != nil:
		f.print(*node.Number)
	case node.Str != nil:
		node.Str.Accept(f)
	case node.True:
		f.print("true")
	case node.False:
		f.print("false")
	case node.Null:
		f.print("null")
	case node.Array != nil:
		node.Array.Accept(f)
	case node.Object != nil:
		node.Object.Accept(f)
	case node.FuncLit != nil:
		node.FuncLit.Accept(f)
	case node.Paren != nil:
		f.print("(")
		node.Paren.Accept(f)
		f.print(")")
	case node.Ident != nil:
		f.print(*node.Ident)
	}
	return nil
}

func (f *Formatter) VisitStringLit(node *ast.StringLit) interface{} {
	f.print(`"`)
	for _, part := range node.Parts {
		part.Accept(f)
	}
	f.print(`"`)
	return nil
}

func (f *Formatter) VisitStringPart(node *ast.StringPart) interface{} {
	switch {
	case node.Text != nil:
		f.print(*node.Text)
	case node.Escape != nil:
		f.print(*node.Escape)
	case node.Interp != nil:
		f.print("<" + *node.Interp + ">")
	}
	return nil
}

func (f *Formatter) VisitArrayLit(node *ast.ArrayLit) interface{} {
	f.print("[")
	for i, el := range node.Elements {
		if i > 0 {
			f.print(", ")
		}
		el.Accept(f)
	}
	f.print("]")
	return nil
}

func (f *Formatter) VisitSeqElem(node *ast.SeqElem) interface{} {
	if node.Spread {
		f.print("...")
	}
	node.Value.Accept(f)
	return nil
}

func (f *Formatter) VisitObjectLit(node *ast.ObjectLit) interface{} {
	f.print("{")
	for i, el := range node.Elements {
		if i > 0 {
			f.print(", ")
		}
		el.Accept(f)
	}
	f.print("}")
	return nil
}

func (f *Formatter) VisitObjectElem(node *ast.ObjectElem) interface{} {
	if node.Spread != nil {
		f.print("...")
		node.Spread.Accept(f)
		return nil
	}
	node.Pair.Accept(f)
	return nil
}

func (f *Formatter) VisitKeyValue(node *ast.KeyValue) interface{} {
	f.print(node.Key + ": ")
	node.Value.Accept(f)
	return nil
}

func (f *Formatter) VisitFuncLit(node *ast.FuncLit) interface{} {
	f.print("(" + strings.Join(node.Params, ", ") + ")")
	if node.Impure {
		f.print("!")
	} else if node.Pred {
		f.print("?")
	}
	if len(node.Body.Stmts) == 0 {
		f.print("{}")
		return nil
	}
	f.print("{\n")
	f.indent++
	node.Body.Accept(f)
	f.indent--
	f.print(f.pad() + "}")
	return nil
}

// VisitBlock renders each statement on its own indented line; the enclosing
// VisitFuncLit owns the braces and the indent level.
func (f *Formatter) VisitBlock(node *ast.Block) interface{} {
	for _, s := range node.Stmts {
		f.print(f.pad())
		s.Accept(f)
		f.print("\n")
	}
	return nil
}
