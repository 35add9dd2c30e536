package ast

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON and UnmarshalJSON round-trip ExprI through a {index, kind,
// node} envelope, naming the concrete Expr alternative so module files
// produced by a parser collaborator (or hand-authored fixtures) can be
// decoded straight into the tree Compile expects. encoding/json is used
// directly here rather than through one of the ambient YAML/struct-tag
// libraries: unlike Type (already a flat Kind-tagged struct that decodes
// with zero-value field tags), Expr is a Go interface, and none of the
// retrieved repos carry a library that tags an interface's dynamic type
// into a wire envelope like this one does.
func (e ExprI) MarshalJSON() ([]byte, error) {
	kind, err := exprKind(e.Node)
	if err != nil {
		return nil, err
	}
	node, err := json.Marshal(e.Node)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Index int             `json:"index"`
		Kind  string          `json:"kind"`
		Node  json.RawMessage `json:"node"`
	}{Index: e.Index, Kind: kind, Node: node})
}

func (e *ExprI) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Index int             `json:"index"`
		Kind  string          `json:"kind"`
		Node  json.RawMessage `json:"node"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	node, err := decodeExprNode(envelope.Kind, envelope.Node)
	if err != nil {
		return err
	}
	e.Index = envelope.Index
	e.Node = node
	return nil
}

func exprKind(n Expr) (string, error) {
	switch n.(type) {
	case ImportDecl:
		return "ImportDecl", nil
	case ExportDecl:
		return "ExportDecl", nil
	case SourceDecl:
		return "SourceDecl", nil
	case ValueDecl:
		return "ValueDecl", nil
	case SignatureDecl:
		return "SignatureDecl", nil
	case TypeAliasDecl:
		return "TypeAliasDecl", nil
	case Var:
		return "Var", nil
	case Accessor:
		return "Accessor", nil
	case ListLit:
		return "ListLit", nil
	case TupleLit:
		return "TupleLit", nil
	case RecordLit:
		return "RecordLit", nil
	case Lambda:
		return "Lambda", nil
	case App:
		return "App", nil
	case Annotation:
		return "Annotation", nil
	case NumLit:
		return "NumLit", nil
	case StrLit:
		return "StrLit", nil
	case BoolLit:
		return "BoolLit", nil
	case UnitLit:
		return "UnitLit", nil
	default:
		return "", fmt.Errorf("ast: no wire kind registered for %T", n)
	}
}

func decodeExprNode(kind string, data json.RawMessage) (Expr, error) {
	switch kind {
	case "ImportDecl":
		var n ImportDecl
		err := json.Unmarshal(data, &n)
		return n, err
	case "ExportDecl":
		var n ExportDecl
		err := json.Unmarshal(data, &n)
		return n, err
	case "SourceDecl":
		var n SourceDecl
		err := json.Unmarshal(data, &n)
		return n, err
	case "ValueDecl":
		var n ValueDecl
		err := json.Unmarshal(data, &n)
		return n, err
	case "SignatureDecl":
		var n SignatureDecl
		err := json.Unmarshal(data, &n)
		return n, err
	case "TypeAliasDecl":
		var n TypeAliasDecl
		err := json.Unmarshal(data, &n)
		return n, err
	case "Var":
		var n Var
		err := json.Unmarshal(data, &n)
		return n, err
	case "Accessor":
		var n Accessor
		err := json.Unmarshal(data, &n)
		return n, err
	case "ListLit":
		var n ListLit
		err := json.Unmarshal(data, &n)
		return n, err
	case "TupleLit":
		var n TupleLit
		err := json.Unmarshal(data, &n)
		return n, err
	case "RecordLit":
		var n RecordLit
		err := json.Unmarshal(data, &n)
		return n, err
	case "Lambda":
		var n Lambda
		err := json.Unmarshal(data, &n)
		return n, err
	case "App":
		var n App
		err := json.Unmarshal(data, &n)
		return n, err
	case "Annotation":
		var n Annotation
		err := json.Unmarshal(data, &n)
		return n, err
	case "NumLit":
		var n NumLit
		err := json.Unmarshal(data, &n)
		return n, err
	case "StrLit":
		var n StrLit
		err := json.Unmarshal(data, &n)
		return n, err
	case "BoolLit":
		var n BoolLit
		err := json.Unmarshal(data, &n)
		return n, err
	case "UnitLit":
		var n UnitLit
		err := json.Unmarshal(data, &n)
		return n, err
	default:
		return nil, fmt.Errorf("ast: unknown expression kind %q", kind)
	}
}
