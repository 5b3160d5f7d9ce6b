package cmd

import (
	"testing"

	"github.com/madkinsz/jrsonnet/internal/ast"
)

func TestDecodeExpr_ArithmeticTree(t *testing.T) {
	// (2 + 3) * 4
	data := []byte(`{
		"kind": "binary", "op": "*",
		"left": {"kind": "binary", "op": "+",
			"left": {"kind": "number", "value": 2},
			"right": {"kind": "number", "value": 3}},
		"right": {"kind": "number", "value": 4}
	}`)
	node, err := DecodeExpr(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bin, ok := node.(*ast.Binary)
	if !ok || bin.Op != ast.OpMul {
		t.Fatalf("expected a top-level '*' binary, got %#v", node)
	}
	left, ok := bin.Left.(*ast.Binary)
	if !ok || left.Op != ast.OpAdd {
		t.Fatalf("expected the left operand to be a '+' binary, got %#v", bin.Left)
	}
}

func TestDecodeExpr_LocalWithFunctionSugar(t *testing.T) {
	data := []byte(`{
		"kind": "local",
		"binds": [{"ident": "double", "fun": {
			"kind": "function",
			"params": [{"ident": "x"}],
			"body": {"kind": "binary", "op": "*",
				"left": {"kind": "var", "name": "x"},
				"right": {"kind": "number", "value": 2}}
		}}],
		"body": {"kind": "apply", "callee": {"kind": "var", "name": "double"},
			"positional": [{"kind": "number", "value": 21}]}
	}`)
	node, err := DecodeExpr(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	local, ok := node.(*ast.Local)
	if !ok || len(local.Binds) != 1 || local.Binds[0].Fun == nil {
		t.Fatalf("expected a local with one function-sugar bind, got %#v", node)
	}
	if len(local.Binds[0].Fun.Params.List) != 1 {
		t.Errorf("expected one parameter, got %d", len(local.Binds[0].Fun.Params.List))
	}
}

func TestDecodeExpr_ObjectWithComputedFieldAndAssert(t *testing.T) {
	data := []byte(`{
		"kind": "object",
		"fields": [
			{"name": "a", "value": {"kind": "number", "value": 1}},
			{"nameExpr": {"kind": "string", "value": "b"}, "value": {"kind": "number", "value": 2}}
		],
		"asserts": [{"cond": {"kind": "boolean", "value": true}}]
	}`)
	node, err := DecodeExpr(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj, ok := node.(*ast.Object)
	if !ok || len(obj.Fields) != 2 || len(obj.Asserts) != 1 {
		t.Fatalf("expected an object with 2 fields and 1 assert, got %#v", node)
	}
	if obj.Fields[0].Name == nil || *obj.Fields[0].Name != "a" {
		t.Errorf("expected fixed field name \"a\", got %+v", obj.Fields[0])
	}
	if obj.Fields[1].NameExpr == nil {
		t.Errorf("expected a computed name expression on the second field")
	}
}

func TestDecodeExpr_ArrayComprehension(t *testing.T) {
	data := []byte(`{
		"kind": "arrayComp",
		"body": {"kind": "var", "name": "x"},
		"specs": [
			{"for": {"var": "x", "in": {"kind": "array", "elements": [
				{"kind": "number", "value": 1}, {"kind": "number", "value": 2}]}}},
			{"if": {"cond": {"kind": "boolean", "value": true}}}
		]
	}`)
	node, err := DecodeExpr(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	comp, ok := node.(*ast.ArrayComp)
	if !ok || len(comp.Specs) != 2 {
		t.Fatalf("expected an array comprehension with 2 specs, got %#v", node)
	}
	if comp.Specs[0].ForSpec == nil || comp.Specs[0].ForSpec.VarName != "x" {
		t.Errorf("expected the first spec to be a for-spec over \"x\"")
	}
	if comp.Specs[1].IfSpec == nil {
		t.Errorf("expected the second spec to be an if-spec")
	}
}

func TestDecodeExpr_UnknownKindErrors(t *testing.T) {
	_, err := DecodeExpr([]byte(`{"kind": "nonsense"}`))
	if err == nil {
		t.Fatalf("expected an error for an unknown node kind")
	}
}

func TestDecodeExpr_DestructuringArrayParam(t *testing.T) {
	data := []byte(`{
		"kind": "function",
		"params": [{"pattern": {"kind": "array", "syntheticName": "$dest0", "elements": [
			{"kind": "ident", "ident": "a"},
			{"kind": "ident", "ident": "b"}
		]}}],
		"body": {"kind": "var", "name": "a"}
	}`)
	node, err := DecodeExpr(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fn, ok := node.(*ast.Function)
	if !ok || len(fn.Params.List) != 1 {
		t.Fatalf("expected a function with one destructured parameter, got %#v", node)
	}
	pattern := fn.Params.List[0].Pattern
	if pattern.Kind != ast.DestructArray || len(pattern.Elements) != 2 {
		t.Fatalf("expected an array-destructuring pattern with 2 elements, got %+v", pattern)
	}
}
