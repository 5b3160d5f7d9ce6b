package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/madkinsz/jrsonnet/internal/ast"
)

// rawNode is the wire shape every AST node decodes through: a "kind"
// discriminator plus whatever fields that kind needs, left as raw JSON so
// each case can re-decode into its own concrete shape. This format is
// specific to this CLI's demo input — it is not a Jsonnet source format
// and carries no compatibility guarantee beyond this binary.
type rawNode struct {
	Kind string `json:"kind"`

	Value    json.RawMessage `json:"value,omitempty"`
	Name     json.RawMessage `json:"name,omitempty"`
	Target   json.RawMessage `json:"target,omitempty"`
	Index    json.RawMessage `json:"index,omitempty"`
	Start    json.RawMessage `json:"start,omitempty"`
	End      json.RawMessage `json:"end,omitempty"`
	Step     json.RawMessage `json:"step,omitempty"`
	Elements json.RawMessage `json:"elements,omitempty"`
	Binds    json.RawMessage `json:"binds,omitempty"`
	Body     json.RawMessage `json:"body,omitempty"`
	Fields   json.RawMessage `json:"fields,omitempty"`
	Asserts  json.RawMessage `json:"asserts,omitempty"`
	Left     json.RawMessage `json:"left,omitempty"`
	Right    json.RawMessage `json:"right,omitempty"`
	Op       string          `json:"op,omitempty"`
	Operand  json.RawMessage `json:"operand,omitempty"`
	Callee   json.RawMessage `json:"callee,omitempty"`
	Positional json.RawMessage `json:"positional,omitempty"`
	Named    json.RawMessage `json:"named,omitempty"`
	TailStrict bool          `json:"tailstrict,omitempty"`
	Cond     json.RawMessage `json:"cond,omitempty"`
	Msg      json.RawMessage `json:"msg,omitempty"`
	TrueBranch  json.RawMessage `json:"true,omitempty"`
	FalseBranch json.RawMessage `json:"false,omitempty"`
	Path     string          `json:"path,omitempty"`
	Params   json.RawMessage `json:"params,omitempty"`
	KeyExpr  json.RawMessage `json:"key,omitempty"`
	ValueExpr json.RawMessage `json:"valueExpr,omitempty"`
	Specs    json.RawMessage `json:"specs,omitempty"`
}

// DecodeExpr decodes the CLI's JSON AST wire format into an ast.Expr tree.
func DecodeExpr(data []byte) (ast.Expr, error) {
	var n rawNode
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return decodeNode(n)
}

func decodeExprField(raw json.RawMessage) (ast.Expr, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var n rawNode
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, err
	}
	return decodeNode(n)
}

func decodeExprList(raw json.RawMessage) ([]ast.Expr, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(raw, &raws); err != nil {
		return nil, err
	}
	out := make([]ast.Expr, len(raws))
	for i, r := range raws {
		e, err := decodeExprField(r)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func decodeNode(n rawNode) (ast.Expr, error) {
	switch n.Kind {
	case "null":
		return &ast.NullLit{}, nil
	case "boolean":
		var b bool
		if err := json.Unmarshal(n.Value, &b); err != nil {
			return nil, err
		}
		return &ast.BooleanLit{Value: b}, nil
	case "number":
		var f float64
		if err := json.Unmarshal(n.Value, &f); err != nil {
			return nil, err
		}
		return &ast.NumberLit{Value: f}, nil
	case "string":
		var s string
		if err := json.Unmarshal(n.Value, &s); err != nil {
			return nil, err
		}
		return &ast.StringLit{Value: s}, nil
	case "self":
		return &ast.Self{}, nil
	case "super":
		return &ast.Super{}, nil
	case "dollar":
		return &ast.Dollar{}, nil
	case "var":
		var name string
		if err := json.Unmarshal(n.Name, &name); err != nil {
			return nil, err
		}
		return &ast.Var{Name: name}, nil
	case "local":
		return decodeLocal(n)
	case "index":
		target, err := decodeExprField(n.Target)
		if err != nil {
			return nil, err
		}
		idx, err := decodeExprField(n.Index)
		if err != nil {
			return nil, err
		}
		return &ast.Index{Target: target, Index: idx}, nil
	case "slice":
		target, err := decodeExprField(n.Target)
		if err != nil {
			return nil, err
		}
		start, err := decodeExprField(n.Start)
		if err != nil {
			return nil, err
		}
		end, err := decodeExprField(n.End)
		if err != nil {
			return nil, err
		}
		step, err := decodeExprField(n.Step)
		if err != nil {
			return nil, err
		}
		return &ast.Slice{Target: target, Start: start, End: end, Step: step}, nil
	case "array":
		elems, err := decodeExprList(n.Elements)
		if err != nil {
			return nil, err
		}
		return &ast.Array{Elements: elems}, nil
	case "arrayComp":
		return decodeArrayComp(n)
	case "object":
		return decodeObject(n)
	case "objectComp":
		return decodeObjectComp(n)
	case "objectExtend":
		left, err := decodeExprField(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExprField(n.Right)
		if err != nil {
			return nil, err
		}
		return &ast.ObjectExtend{Left: left, Right: right}, nil
	case "binary":
		left, err := decodeExprField(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExprField(n.Right)
		if err != nil {
			return nil, err
		}
		op, err := decodeBinaryOp(n.Op)
		if err != nil {
			return nil, err
		}
		return &ast.Binary{Op: op, Left: left, Right: right}, nil
	case "unary":
		operand, err := decodeExprField(n.Operand)
		if err != nil {
			return nil, err
		}
		op, err := decodeUnaryOp(n.Op)
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: op, Operand: operand}, nil
	case "apply":
		return decodeApply(n)
	case "function":
		return decodeFunction(n)
	case "assert":
		cond, err := decodeExprField(n.Cond)
		if err != nil {
			return nil, err
		}
		msg, err := decodeExprField(n.Msg)
		if err != nil {
			return nil, err
		}
		body, err := decodeExprField(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.Assert{Cond: cond, Msg: msg, Body: body}, nil
	case "error":
		e, err := decodeExprField(n.Value)
		if err != nil {
			return nil, err
		}
		return &ast.ErrorExpr{Expr: e}, nil
	case "if":
		cond, err := decodeExprField(n.Cond)
		if err != nil {
			return nil, err
		}
		tb, err := decodeExprField(n.TrueBranch)
		if err != nil {
			return nil, err
		}
		fb, err := decodeExprField(n.FalseBranch)
		if err != nil {
			return nil, err
		}
		return &ast.If{Cond: cond, TrueBranch: tb, FalseBranch: fb}, nil
	case "import":
		return &ast.Import{Path: n.Path}, nil
	case "importstr":
		return &ast.ImportStr{Path: n.Path}, nil
	case "importbin":
		return &ast.ImportBin{Path: n.Path}, nil
	case "intrinsic":
		var name string
		if err := json.Unmarshal(n.Name, &name); err != nil {
			return nil, err
		}
		return &ast.Intrinsic{Name: name}, nil
	default:
		return nil, fmt.Errorf("astjson: unknown node kind %q", n.Kind)
	}
}

func decodeBinaryOp(op string) (ast.BinaryOp, error) {
	switch op {
	case "+":
		return ast.OpAdd, nil
	case "-":
		return ast.OpSub, nil
	case "*":
		return ast.OpMul, nil
	case "/":
		return ast.OpDiv, nil
	case "%":
		return ast.OpMod, nil
	case "<":
		return ast.OpLt, nil
	case "<=":
		return ast.OpLe, nil
	case ">":
		return ast.OpGt, nil
	case ">=":
		return ast.OpGe, nil
	case "==":
		return ast.OpEq, nil
	case "!=":
		return ast.OpNe, nil
	case "&&":
		return ast.OpAnd, nil
	case "||":
		return ast.OpOr, nil
	case "&":
		return ast.OpBitAnd, nil
	case "|":
		return ast.OpBitOr, nil
	case "^":
		return ast.OpBitXor, nil
	case "<<":
		return ast.OpShl, nil
	case ">>":
		return ast.OpShr, nil
	case "in":
		return ast.OpIn, nil
	default:
		return 0, fmt.Errorf("astjson: unknown binary operator %q", op)
	}
}

func decodeUnaryOp(op string) (ast.UnaryOp, error) {
	switch op {
	case "-":
		return ast.OpNeg, nil
	case "!":
		return ast.OpNot, nil
	case "~":
		return ast.OpBitNot, nil
	case "+":
		return ast.OpPlus, nil
	default:
		return 0, fmt.Errorf("astjson: unknown unary operator %q", op)
	}
}

func decodeLocal(n rawNode) (ast.Expr, error) {
	var rawBinds []struct {
		Pattern json.RawMessage `json:"pattern"`
		Ident   string          `json:"ident"`
		Value   json.RawMessage `json:"value"`
		Fun     json.RawMessage `json:"fun"`
	}
	if len(n.Binds) > 0 {
		if err := json.Unmarshal(n.Binds, &rawBinds); err != nil {
			return nil, err
		}
	}
	binds := make([]ast.LocalBind, len(rawBinds))
	for i, rb := range rawBinds {
		var pattern ast.DestructPattern
		var err error
		if len(rb.Pattern) > 0 {
			pattern, err = decodePattern(rb.Pattern)
			if err != nil {
				return nil, err
			}
		} else {
			pattern = ast.DestructPattern{Kind: ast.DestructIdent, Ident: rb.Ident}
		}
		bind := ast.LocalBind{Pattern: pattern}
		if len(rb.Fun) > 0 {
			fn, err := decodeExprField(rb.Fun)
			if err != nil {
				return nil, err
			}
			fnNode, ok := fn.(*ast.Function)
			if !ok {
				return nil, fmt.Errorf("astjson: local bind %q's \"fun\" must be a function node", rb.Ident)
			}
			bind.Fun = fnNode
		} else {
			v, err := decodeExprField(rb.Value)
			if err != nil {
				return nil, err
			}
			bind.Value = v
		}
		binds[i] = bind
	}
	body, err := decodeExprField(n.Body)
	if err != nil {
		return nil, err
	}
	return &ast.Local{Binds: binds, Body: body}, nil
}

func decodePattern(raw json.RawMessage) (ast.DestructPattern, error) {
	var p struct {
		Kind          string                `json:"kind"`
		Ident         string                `json:"ident"`
		Elements      []json.RawMessage     `json:"elements"`
		HasRest       bool                  `json:"hasRest"`
		RestName      string                `json:"restName"`
		Fields        []struct {
			Name    string          `json:"name"`
			Pattern json.RawMessage `json:"pattern"`
		} `json:"fields"`
		SyntheticName string `json:"syntheticName"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return ast.DestructPattern{}, err
	}
	switch p.Kind {
	case "array":
		elems := make([]ast.DestructPattern, len(p.Elements))
		for i, e := range p.Elements {
			sub, err := decodePattern(e)
			if err != nil {
				return ast.DestructPattern{}, err
			}
			elems[i] = sub
		}
		return ast.DestructPattern{Kind: ast.DestructArray, Elements: elems, HasRest: p.HasRest, RestName: p.RestName, SyntheticName: p.SyntheticName}, nil
	case "object":
		fields := make([]ast.DestructField, len(p.Fields))
		for i, f := range p.Fields {
			sub, err := decodePattern(f.Pattern)
			if err != nil {
				return ast.DestructPattern{}, err
			}
			fields[i] = ast.DestructField{Name: f.Name, Pattern: sub}
		}
		return ast.DestructPattern{Kind: ast.DestructObject, Fields: fields, SyntheticName: p.SyntheticName}, nil
	default:
		return ast.DestructPattern{Kind: ast.DestructIdent, Ident: p.Ident}, nil
	}
}

func decodeParams(raw json.RawMessage) (*ast.Params, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return &ast.Params{}, nil
	}
	var rawParams []struct {
		Pattern json.RawMessage `json:"pattern"`
		Ident   string          `json:"ident"`
		Default json.RawMessage `json:"default"`
	}
	if err := json.Unmarshal(raw, &rawParams); err != nil {
		return nil, err
	}
	list := make([]ast.Param, len(rawParams))
	for i, rp := range rawParams {
		var pattern ast.DestructPattern
		var err error
		if len(rp.Pattern) > 0 {
			pattern, err = decodePattern(rp.Pattern)
			if err != nil {
				return nil, err
			}
		} else {
			pattern = ast.DestructPattern{Kind: ast.DestructIdent, Ident: rp.Ident}
		}
		def, err := decodeExprField(rp.Default)
		if err != nil {
			return nil, err
		}
		list[i] = ast.Param{Pattern: pattern, Default: def}
	}
	return &ast.Params{List: list}, nil
}

func decodeFunction(n rawNode) (ast.Expr, error) {
	params, err := decodeParams(n.Params)
	if err != nil {
		return nil, err
	}
	body, err := decodeExprField(n.Body)
	if err != nil {
		return nil, err
	}
	return &ast.Function{Params: params, Body: body}, nil
}

func decodeApply(n rawNode) (ast.Expr, error) {
	callee, err := decodeExprField(n.Callee)
	if err != nil {
		return nil, err
	}
	positional, err := decodeExprList(n.Positional)
	if err != nil {
		return nil, err
	}
	var named []ast.NamedArg
	if len(n.Named) > 0 {
		var rawNamed []struct {
			Name  string          `json:"name"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(n.Named, &rawNamed); err != nil {
			return nil, err
		}
		named = make([]ast.NamedArg, len(rawNamed))
		for i, rn := range rawNamed {
			v, err := decodeExprField(rn.Value)
			if err != nil {
				return nil, err
			}
			named[i] = ast.NamedArg{Name: rn.Name, Value: v}
		}
	}
	return &ast.Apply{Callee: callee, Positional: positional, Named: named, TailStrict: n.TailStrict}, nil
}

func decodeCompSpecs(raw json.RawMessage) ([]ast.CompSpec, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var rawSpecs []struct {
		For *struct {
			Var string          `json:"var"`
			In  json.RawMessage `json:"in"`
		} `json:"for"`
		If *struct {
			Cond json.RawMessage `json:"cond"`
		} `json:"if"`
	}
	if err := json.Unmarshal(raw, &rawSpecs); err != nil {
		return nil, err
	}
	specs := make([]ast.CompSpec, len(rawSpecs))
	for i, rs := range rawSpecs {
		switch {
		case rs.For != nil:
			in, err := decodeExprField(rs.For.In)
			if err != nil {
				return nil, err
			}
			specs[i] = ast.CompSpec{ForSpec: &ast.ForSpec{VarName: rs.For.Var, In: in}}
		case rs.If != nil:
			cond, err := decodeExprField(rs.If.Cond)
			if err != nil {
				return nil, err
			}
			specs[i] = ast.CompSpec{IfSpec: &ast.IfSpec{Cond: cond}}
		default:
			return nil, fmt.Errorf("astjson: comprehension spec %d has neither \"for\" nor \"if\"", i)
		}
	}
	return specs, nil
}

func decodeArrayComp(n rawNode) (ast.Expr, error) {
	body, err := decodeExprField(n.Body)
	if err != nil {
		return nil, err
	}
	specs, err := decodeCompSpecs(n.Specs)
	if err != nil {
		return nil, err
	}
	return &ast.ArrayComp{Body: body, Specs: specs}, nil
}

func decodeObjectComp(n rawNode) (ast.Expr, error) {
	key, err := decodeExprField(n.KeyExpr)
	if err != nil {
		return nil, err
	}
	val, err := decodeExprField(n.ValueExpr)
	if err != nil {
		return nil, err
	}
	specs, err := decodeCompSpecs(n.Specs)
	if err != nil {
		return nil, err
	}
	return &ast.ObjectComp{KeyExpr: key, ValueExpr: val, Specs: specs}, nil
}

func decodeVisibility(v string) ast.FieldVisibility {
	switch v {
	case "hidden":
		return ast.VisibilityHidden
	case "forceVisible":
		return ast.VisibilityForceVisible
	default:
		return ast.VisibilityNormal
	}
}

func decodeObject(n rawNode) (ast.Expr, error) {
	var rawFields []struct {
		Name       *string         `json:"name"`
		NameExpr   json.RawMessage `json:"nameExpr"`
		Visibility string          `json:"visibility"`
		Plus       bool            `json:"plus"`
		Params     json.RawMessage `json:"params"`
		Value      json.RawMessage `json:"value"`
	}
	if len(n.Fields) > 0 {
		if err := json.Unmarshal(n.Fields, &rawFields); err != nil {
			return nil, err
		}
	}
	fields := make([]ast.ObjectField, len(rawFields))
	for i, rf := range rawFields {
		nameExpr, err := decodeExprField(rf.NameExpr)
		if err != nil {
			return nil, err
		}
		value, err := decodeExprField(rf.Value)
		if err != nil {
			return nil, err
		}
		var params *ast.Params
		if len(rf.Params) > 0 {
			params, err = decodeParams(rf.Params)
			if err != nil {
				return nil, err
			}
		}
		fields[i] = ast.ObjectField{
			Name:       rf.Name,
			NameExpr:   nameExpr,
			Visibility: decodeVisibility(rf.Visibility),
			Plus:       rf.Plus,
			Params:     params,
			Value:      value,
		}
	}

	var rawAsserts []struct {
		Cond json.RawMessage `json:"cond"`
		Msg  json.RawMessage `json:"msg"`
	}
	if len(n.Asserts) > 0 {
		if err := json.Unmarshal(n.Asserts, &rawAsserts); err != nil {
			return nil, err
		}
	}
	asserts := make([]ast.ObjectAssert, len(rawAsserts))
	for i, ra := range rawAsserts {
		cond, err := decodeExprField(ra.Cond)
		if err != nil {
			return nil, err
		}
		msg, err := decodeExprField(ra.Msg)
		if err != nil {
			return nil, err
		}
		asserts[i] = ast.ObjectAssert{Cond: cond, Msg: msg}
	}

	return &ast.Object{Fields: fields, Asserts: asserts}, nil
}
