// Package ast defines FIP's expression tree.
package ast

// Visitor gives one method per node type, double-dispatched through each
// node's Accept method. The formatter (pkg/format) is its consumer: it
// embeds BaseVisitor and overrides the methods that emit text.
type Visitor interface {
	VisitProgram(*Program) interface{}
	VisitStmt(*Stmt) interface{}
	VisitUseStmt(*UseStmt) interface{}
	VisitAsyncDef(*AsyncDef) interface{}
	VisitBinding(*Binding) interface{}
	VisitPattern(*Pattern) interface{}
	VisitObjectPatEl(*ObjectPatEl) interface{}
	VisitExpr(*Expr) interface{}
	VisitOrExpr(*OrExpr) interface{}
	VisitAndExpr(*AndExpr) interface{}
	VisitEqExpr(*EqExpr) interface{}
	VisitRelExpr(*RelExpr) interface{}
	VisitAddExpr(*AddExpr) interface{}
	VisitMulExpr(*MulExpr) interface{}
	VisitUnaryExpr(*UnaryExpr) interface{}
	VisitPostfix(*Postfix) interface{}
	VisitPostfixOp(*PostfixOp) interface{}
	VisitCallOp(*CallOp) interface{}
	VisitPrimary(*Primary) interface{}
	VisitStringLit(*StringLit) interface{}
	VisitStringPart(*StringPart) interface{}
	VisitArrayLit(*ArrayLit) interface{}
	VisitSeqElem(*SeqElem) interface{}
	VisitObjectLit(*ObjectLit) interface{}
	VisitObjectElem(*ObjectElem) interface{}
	VisitKeyValue(*KeyValue) interface{}
	VisitFuncLit(*FuncLit) interface{}
	VisitBlock(*Block) interface{}
}

// Node is implemented by every AST node to support the visitor pattern.
type Node interface {
	Accept(v Visitor) interface{}
}

func (n *Program) Accept(v Visitor) interface{}     { return v.VisitProgram(n) }
func (n *Stmt) Accept(v Visitor) interface{}        { return v.VisitStmt(n) }
func (n *UseStmt) Accept(v Visitor) interface{}     { return v.VisitUseStmt(n) }
func (n *AsyncDef) Accept(v Visitor) interface{}    { return v.VisitAsyncDef(n) }
func (n *Binding) Accept(v Visitor) interface{}     { return v.VisitBinding(n) }
func (n *Pattern) Accept(v Visitor) interface{}     { return v.VisitPattern(n) }
func (n *ObjectPatEl) Accept(v Visitor) interface{} { return v.VisitObjectPatEl(n) }
func (n *Expr) Accept(v Visitor) interface{}        { return v.VisitExpr(n) }
func (n *OrExpr) Accept(v Visitor) interface{}      { return v.VisitOrExpr(n) }
func (n *AndExpr) Accept(v Visitor) interface{}     { return v.VisitAndExpr(n) }
func (n *EqExpr) Accept(v Visitor) interface{}      { return v.VisitEqExpr(n) }
func (n *RelExpr) Accept(v Visitor) interface{}     { return v.VisitRelExpr(n) }
func (n *AddExpr) Accept(v Visitor) interface{}     { return v.VisitAddExpr(n) }
func (n *MulExpr) Accept(v Visitor) interface{}     { return v.VisitMulExpr(n) }
func (n *UnaryExpr) Accept(v Visitor) interface{}   { return v.VisitUnaryExpr(n) }
func (n *Postfix) Accept(v Visitor) interface{}     { return v.VisitPostfix(n) }
func (n *PostfixOp) Accept(v Visitor) interface{}   { return v.VisitPostfixOp(n) }
func (n *CallOp) Accept(v Visitor) interface{}      { return v.VisitCallOp(n) }
func (n *Primary) Accept(v Visitor) interface{}     { return v.VisitPrimary(n) }
func (n *StringLit) Accept(v Visitor) interface{}   { return v.VisitStringLit(n) }
func (n *StringPart) Accept(v Visitor) interface{}  { return v.VisitStringPart(n) }
func (n *ArrayLit) Accept(v Visitor) interface{}    { return v.VisitArrayLit(n) }
func (n *SeqElem) Accept(v Visitor) interface{}     { return v.VisitSeqElem(n) }
func (n *ObjectLit) Accept(v Visitor) interface{}   { return v.VisitObjectLit(n) }
func (n *ObjectElem) Accept(v Visitor) interface{}  { return v.VisitObjectElem(n) }
func (n *KeyValue) Accept(v Visitor) interface{}    { return v.VisitKeyValue(n) }
func (n *FuncLit) Accept(v Visitor) interface{}     { return v.VisitFuncLit(n) }
func (n *Block) Accept(v Visitor) interface{}       { return v.VisitBlock(n) }
