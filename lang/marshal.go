package lang

import "encoding/json"

// MarshalJSON implements json.Marshaler for Expansion.
func (e *Expansion) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.ToMap())
}

// ToMap converts the expansion to a native Go map structure.
func (e *Expansion) ToMap() map[string]any {
	result := map[string]any{
		"kind":   e.Call.Kind.String(),
		"args":   tokenStrings(e.Call.Args),
		"stmts":  stmtMaps(e.Block.Stmts),
		"result": e.String(),
	}

	switch e.Call.Kind {
	case PlainCall:
		result["callee"] = e.Call.Callee.String()

	case MethodCall:
		result["receiver"] = e.Call.Receiver.String()
		result["method"] = e.Call.Method.Text

		if len(e.Call.Generics) > 0 {
			result["generics"] = e.Call.Generics.String()
		}
	}

	if e.Params != nil {
		result["params"] = e.Params.ToMap()
	}

	return result
}

// ToMap converts the parameter list to a native Go map structure.
func (p *Params) ToMap() map[string]any {
	list := make([]any, len(p.List))

	for i, param := range p.List {
		m := map[string]any{"pattern": param.Pattern.String()}
		if param.Typed() {
			m["type"] = param.Type.String()
		}

		list[i] = m
	}

	return map[string]any{
		"style":   p.Style.String(),
		"literal": p.Literal(),
		"list":    list,
	}
}

func tokenStrings(list []Tokens) []any {
	out := make([]any, len(list))

	for i, ts := range list {
		out[i] = ts.String()
	}

	return out
}

func stmtMaps(stmts []Stmt) []any {
	out := make([]any, len(stmts))

	for i, s := range stmts {
		out[i] = map[string]any{
			"kind": s.Kind.String(),
			"text": s.Tokens.String(),
		}
	}

	return out
}
