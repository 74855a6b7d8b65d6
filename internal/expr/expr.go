// Package expr implements the binder's expression trees: the minimal
// polymorphism spec.md's Design Notes calls for (Property, Literal,
// Variable, FunctionCall, Case) represented as a tagged enum with a shared
// type field, rather than full class polymorphism.
package expr

import "github.com/oriondb/oriondb/internal/types"

// ExprKind discriminates the expression variants.
type ExprKind int

const (
	KindProperty ExprKind = iota
	KindLiteral
	KindVariable
	KindFunctionCall
	KindCase
)

// Expr is one node of a bound expression tree. Every node carries the
// LogicalType its evaluation would produce; builders produce owned trees,
// copied by recursive Clone.
type Expr struct {
	Kind ExprKind
	Type types.LogicalType

	// KindProperty
	PropertyTable types.TableId
	PropertyID    types.PropertyId
	PropertyName  string

	// KindLiteral
	LiteralValue any

	// KindVariable
	VariableName string

	// KindFunctionCall
	FuncName string
	Args     []Expr

	// KindCase: a list of (when, then) pairs plus an optional else branch.
	CaseWhens []CaseWhen
	CaseElse  *Expr
}

// CaseWhen is one WHEN/THEN arm of a Case expression.
type CaseWhen struct {
	When Expr
	Then Expr
}

func Property(table types.TableId, id types.PropertyId, name string, t types.LogicalType) Expr {
	return Expr{Kind: KindProperty, Type: t, PropertyTable: table, PropertyID: id, PropertyName: name}
}

func Literal(value any, t types.LogicalType) Expr {
	return Expr{Kind: KindLiteral, Type: t, LiteralValue: value}
}

func Variable(name string, t types.LogicalType) Expr {
	return Expr{Kind: KindVariable, Type: t, VariableName: name}
}

func FunctionCall(name string, args []Expr, resultType types.LogicalType) Expr {
	return Expr{Kind: KindFunctionCall, Type: resultType, FuncName: name, Args: args}
}

func Case(whens []CaseWhen, elseBranch *Expr, resultType types.LogicalType) Expr {
	return Expr{Kind: KindCase, Type: resultType, CaseWhens: whens, CaseElse: elseBranch}
}

// GetProperty returns (table, id, name) when Kind == KindProperty.
func (e Expr) GetProperty() (types.TableId, types.PropertyId, string, bool) {
	if e.Kind != KindProperty {
		return types.InvalidTableId, types.InvalidPropertyId, "", false
	}
	return e.PropertyTable, e.PropertyID, e.PropertyName, true
}

// GetLiteral returns the literal value when Kind == KindLiteral.
func (e Expr) GetLiteral() (any, bool) {
	if e.Kind != KindLiteral {
		return nil, false
	}
	return e.LiteralValue, true
}

// Clone performs a recursive deep copy, per the Design Notes' "copy by
// recursive clone" rule.
func (e Expr) Clone() Expr {
	c := e
	if e.Args != nil {
		c.Args = make([]Expr, len(e.Args))
		for i, a := range e.Args {
			c.Args[i] = a.Clone()
		}
	}
	if e.CaseWhens != nil {
		c.CaseWhens = make([]CaseWhen, len(e.CaseWhens))
		for i, w := range e.CaseWhens {
			c.CaseWhens[i] = CaseWhen{When: w.When.Clone(), Then: w.Then.Clone()}
		}
	}
	if e.CaseElse != nil {
		elseClone := e.CaseElse.Clone()
		c.CaseElse = &elseClone
	}
	return c
}
