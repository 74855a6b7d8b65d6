package binder

import (
	"strings"

	"github.com/oriondb/oriondb/internal/expr"
	"github.com/oriondb/oriondb/internal/oriorerr"
	"github.com/oriondb/oriondb/internal/types"
	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// bindCopyToProjection parses the COPY TO projection-list fragment the same
// way pg_lineage/rewrite_pks.go parses a full query — by handing it to
// pg_query.Parse — except the fragment is not itself a query: it is wrapped
// as "SELECT <fragment>" first, since the one thing spec.md keeps in scope
// for COPY TO is the projection list, not a full sub-query grammar (Parser
// is out of scope). The resulting SelectStmt's TargetList is walked into
// internal/expr nodes instead of the provenance map rewrite_pks.go builds.
func (b *Binder) bindCopyToProjection(query string) ([]string, []expr.Expr, error) {
	frag := strings.TrimSpace(query)
	if frag == "" {
		return nil, nil, oriorerr.WithCode(oriorerr.Binder, "EmptyProjection", "COPY TO projection must not be empty")
	}

	tree, err := pg_query.Parse("SELECT " + frag)
	if err != nil {
		return nil, nil, oriorerr.WithCode(oriorerr.Binder, "BadProjection", "could not parse COPY TO projection: "+err.Error())
	}
	if len(tree.GetStmts()) == 0 {
		return nil, nil, oriorerr.WithCode(oriorerr.Binder, "BadProjection", "COPY TO projection parsed to no statement")
	}
	sel := tree.GetStmts()[0].GetStmt().GetSelectStmt()
	if sel == nil {
		return nil, nil, oriorerr.WithCode(oriorerr.Binder, "BadProjection", "COPY TO projection must be a plain expression list")
	}

	targets := sel.GetTargetList()
	names := make([]string, 0, len(targets))
	exprs := make([]expr.Expr, 0, len(targets))
	for _, n := range targets {
		rt := n.GetResTarget()
		if rt == nil {
			continue
		}
		e, err := b.bindProjectionExpr(rt.GetVal())
		if err != nil {
			return nil, nil, err
		}
		name := rt.GetName()
		if name == "" {
			name = defaultProjectionName(e)
		}
		names = append(names, name)
		exprs = append(exprs, e)
	}
	return names, exprs, nil
}

// bindProjectionExpr walks one node of the projection fragment's expression
// tree, recognizing the same node kinds rewrite_pks.go and resolver.go
// already walk (ColumnRef, FuncCall, A_Expr, CaseExpr) plus A_Const literals
// and TypeCast. Column references resolve to Variables, not bound
// Properties: a COPY TO projection runs over the result schema of a
// sub-query the Binder never typechecks (spec.md keeps only the projection
// list in scope, not the query grammar), so their real LogicalType is only
// known once the Planner executes the underlying query. ArrowColumn — the
// same "figure the concrete type out from the data" marker the NPY/Parquet
// file-scan columns use — stands in for that deferred type.
func (b *Binder) bindProjectionExpr(n *pg_query.Node) (expr.Expr, error) {
	if n == nil {
		return expr.Expr{}, oriorerr.WithCode(oriorerr.Binder, "BadProjection", "empty projection expression")
	}

	switch {
	case n.GetColumnRef() != nil:
		_, name, err := columnRefParts(n.GetColumnRef())
		if err != nil {
			return expr.Expr{}, err
		}
		return expr.Variable(name, types.ArrowColumn()), nil

	case n.GetAConst() != nil:
		return bindAConst(n.GetAConst()), nil

	case n.GetFuncCall() != nil:
		fc := n.GetFuncCall()
		args := make([]expr.Expr, 0, len(fc.GetArgs()))
		for _, a := range fc.GetArgs() {
			ae, err := b.bindProjectionExpr(a)
			if err != nil {
				return expr.Expr{}, err
			}
			args = append(args, ae)
		}
		return expr.FunctionCall(funcCallName(fc), args, types.ArrowColumn()), nil

	case n.GetAExpr() != nil:
		ax := n.GetAExpr()
		lhs, err := b.bindProjectionExpr(ax.GetLexpr())
		if err != nil {
			return expr.Expr{}, err
		}
		rhs, err := b.bindProjectionExpr(ax.GetRexpr())
		if err != nil {
			return expr.Expr{}, err
		}
		return expr.FunctionCall(operatorName(ax), []expr.Expr{lhs, rhs}, types.ArrowColumn()), nil

	case n.GetCaseExpr() != nil:
		return b.bindCaseExpr(n.GetCaseExpr())

	case n.GetTypeCast() != nil:
		tc := n.GetTypeCast()
		inner, err := b.bindProjectionExpr(tc.GetArg())
		if err != nil {
			return expr.Expr{}, err
		}
		target, err := typeNameToLogicalType(tc.GetTypeName())
		if err != nil {
			return expr.Expr{}, err
		}
		return expr.FunctionCall("CAST", []expr.Expr{inner}, target), nil

	default:
		return expr.Expr{}, oriorerr.New(oriorerr.NotImplemented, "unsupported COPY TO projection expression")
	}
}

func (b *Binder) bindCaseExpr(ce *pg_query.CaseExpr) (expr.Expr, error) {
	whens := make([]expr.CaseWhen, 0, len(ce.GetArgs()))
	for _, a := range ce.GetArgs() {
		cw := a.GetCaseWhen()
		if cw == nil {
			continue
		}
		whenExpr, err := b.bindProjectionExpr(cw.GetExpr())
		if err != nil {
			return expr.Expr{}, err
		}
		thenExpr, err := b.bindProjectionExpr(cw.GetResult())
		if err != nil {
			return expr.Expr{}, err
		}
		whens = append(whens, expr.CaseWhen{When: whenExpr, Then: thenExpr})
	}

	var elsePtr *expr.Expr
	resultType := types.ArrowColumn()
	if len(whens) > 0 {
		resultType = whens[0].Then.Type
	}
	if ce.GetDefresult() != nil {
		elseExpr, err := b.bindProjectionExpr(ce.GetDefresult())
		if err != nil {
			return expr.Expr{}, err
		}
		elsePtr = &elseExpr
	}
	return expr.Case(whens, elsePtr, resultType), nil
}

func bindAConst(c *pg_query.A_Const) expr.Expr {
	if c.GetIsnull() {
		return expr.Literal(nil, types.String())
	}
	switch {
	case c.GetIval() != nil:
		return expr.Literal(c.GetIval().GetIval(), types.Int64())
	case c.GetFval() != nil:
		return expr.Literal(c.GetFval().GetFval(), types.Double())
	case c.GetBoolval() != nil:
		return expr.Literal(c.GetBoolval().GetBoolval(), types.Bool())
	case c.GetSval() != nil:
		return expr.Literal(c.GetSval().GetSval(), types.String())
	case c.GetBsval() != nil:
		return expr.Literal(c.GetBsval().GetBsval(), types.Blob())
	default:
		return expr.Literal(nil, types.String())
	}
}

// columnRefParts splits a ColumnRef's dotted Fields list into an optional
// qualifier and the final column name; "*" is rejected since a star can't
// stand as one projected column.
func columnRefParts(cr *pg_query.ColumnRef) (qualifier, name string, err error) {
	fields := cr.GetFields()
	if len(fields) == 0 {
		return "", "", oriorerr.WithCode(oriorerr.Binder, "BadProjection", "empty column reference")
	}
	last := fields[len(fields)-1]
	if last.GetAStar() != nil {
		return "", "", oriorerr.New(oriorerr.NotImplemented, "COPY TO does not support a * projection")
	}
	name = last.GetString_().GetSval()
	if len(fields) > 1 {
		qualifier = fields[len(fields)-2].GetString_().GetSval()
	}
	return qualifier, name, nil
}

func funcCallName(fc *pg_query.FuncCall) string {
	parts := fc.GetFuncname()
	if len(parts) == 0 {
		return "?column?"
	}
	return parts[len(parts)-1].GetString_().GetSval()
}

func operatorName(ax *pg_query.A_Expr) string {
	names := ax.GetName()
	if len(names) == 0 {
		return "?"
	}
	return names[0].GetString_().GetSval()
}

func typeNameToLogicalType(tn *pg_query.TypeName) (types.LogicalType, error) {
	names := tn.GetNames()
	if len(names) == 0 {
		return types.LogicalType{}, oriorerr.WithCode(oriorerr.Binder, "BadProjection", "empty CAST target type")
	}
	return resolveTypeName(names[len(names)-1].GetString_().GetSval())
}

// defaultProjectionName mirrors Postgres's "?column?" fallback: a bare
// column reference or function call keeps its own name, anything else
// (literals, operators, casts) falls back to the anonymous placeholder.
func defaultProjectionName(e expr.Expr) string {
	switch e.Kind {
	case expr.KindVariable:
		return e.VariableName
	case expr.KindFunctionCall:
		if e.FuncName != "CAST" && !isOperatorToken(e.FuncName) {
			return e.FuncName
		}
		return "?column?"
	default:
		return "?column?"
	}
}

func isOperatorToken(name string) bool {
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' {
			return false
		}
	}
	return name != ""
}
