package minigebra

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ============================================================
// MCP Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result  interface{} `json:"result,omitempty"`
	LaTeX   string      `json:"latex,omitempty"`
	String  string      `json:"string,omitempty"`
	Warning string      `json:"warning,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HandleToolCall dispatches one tool request. Expressions may be given as
// source text or as the objects produced by ToJSON. An optional "functions"
// array of "f(x) = ..." strings is inlined into every expression first.
func HandleToolCall(req ToolRequest) ToolResponse {
	return HandleToolCallWith(req, nil)
}

// HandleToolCallWith is HandleToolCall with the user functions of base in
// scope. base is not modified.
func HandleToolCallWith(req ToolRequest, base *Registry) ToolResponse {
	reg := NewRegistry()
	if base != nil {
		reg = base.Clone()
	}
	if raw, ok := req.Params["functions"]; ok {
		list, ok := raw.([]interface{})
		if !ok {
			return ToolResponse{Error: "param functions must be array"}
		}
		for i, it := range list {
			s, ok := it.(string)
			if !ok {
				return ToolResponse{Error: fmt.Sprintf("param functions[%d] must be string", i)}
			}
			def, err := ParseDefinition(s)
			if err != nil {
				return ToolResponse{Error: err.Error()}
			}
			if err := reg.Define(def); err != nil {
				return ToolResponse{Error: err.Error()}
			}
		}
	}

	toAtom := func(key string, v interface{}) (Atom, error) {
		var a Atom
		var err error
		switch val := v.(type) {
		case string:
			a, err = parseSpaced(val, 0)
		case map[string]interface{}:
			a, err = FromJSON(val)
		default:
			return nil, fmt.Errorf("param %s must be a string or an expression object", key)
		}
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", key, err)
		}
		return Substitute(a, reg)
	}
	getExpr := func(key string) (Atom, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		return toAtom(key, v)
	}
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}
	optString := func(key, def string) (string, error) {
		if _, ok := req.Params[key]; !ok {
			return def, nil
		}
		return getString(key)
	}
	getInt := func(key string) (int, error) {
		v, ok := req.Params[key]
		if !ok {
			return 0, fmt.Errorf("missing param: %s", key)
		}
		f, ok := v.(float64)
		if !ok || f != float64(int(f)) {
			return 0, fmt.Errorf("param %s must be an integer", key)
		}
		return int(f), nil
	}
	getObject := func(key string) (map[string]interface{}, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("param %s must be an object", key)
		}
		return m, nil
	}
	respond := func(a Atom) ToolResponse {
		return ToolResponse{Result: a.toJSON(), LaTeX: a.Print(LaTeX), String: a.String()}
	}
	simplified := func(a Atom) ToolResponse {
		s, err := SimplifyFull(a)
		resp := respond(s)
		var div *SimplifyDivergenceError
		if errors.As(err, &div) {
			resp.Warning = div.Error()
		}
		return resp
	}

	switch req.Tool {
	case "compile":
		text, err := getString("text")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		cmds, exprs, err := Compile(text)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		cs := make([]string, len(cmds))
		for i, c := range cmds {
			cs[i] = c.String()
		}
		es := make([]interface{}, len(exprs))
		strs := make([]string, len(exprs))
		for i, e := range exprs {
			es[i] = e.toJSON()
			strs[i] = e.String()
		}
		return ToolResponse{
			Result: map[string]interface{}{"commands": cs, "expressions": es},
			String: fmt.Sprintf("%d command(s), %d expression(s): %v", len(cs), len(strs), strs),
		}

	case "parse":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(e)

	case "simplify":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return simplified(e)

	case "simplify_step":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(e.Simplify())

	case "diff":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := optString("var", AnyVariable)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return simplified(e.Diff(v))

	case "diffn":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := optString("var", AnyVariable)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		n, err := getInt("n")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		if n < 0 {
			return ToolResponse{Error: "n must be non-negative"}
		}
		cur, warn := SimplifyFull(e)
		for k := 0; k < n; k++ {
			var err error
			if cur, err = SimplifyFull(cur.Diff(v)); err != nil {
				warn = err
			}
		}
		resp := respond(cur)
		if warn != nil {
			resp.Warning = warn.Error()
		}
		return resp

	case "eval":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		env := Bindings{}
		if _, ok := req.Params["bindings"]; ok {
			m, err := getObject("bindings")
			if err != nil {
				return ToolResponse{Error: err.Error()}
			}
			for k, v := range m {
				f, ok := v.(float64)
				if !ok {
					return ToolResponse{Error: fmt.Sprintf("binding %s must be a number", k)}
				}
				env[k] = f
			}
		}
		val, err := e.Eval(env)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{Result: val, String: fmt.Sprintf("%g", val)}

	case "print":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		name, err := optString("style", Plain.String())
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		style, err := ParseStyle(name)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{Result: e.Print(style), String: e.String()}

	case "tree":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{Result: Tree(e), String: e.String()}

	case "substitute":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		m, err := getObject("values")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		values := make(map[string]Atom, len(m))
		for k, v := range m {
			if f, ok := v.(float64); ok {
				if f == float64(int64(f)) {
					values[k] = N(int64(f))
				} else {
					values[k] = NFloat(f)
				}
				continue
			}
			a, err := toAtom("values."+k, v)
			if err != nil {
				return ToolResponse{Error: err.Error()}
			}
			values[k] = a
		}
		return respond(e.Sub(values))

	case "free_vars":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		names := Variables(e)
		return ToolResponse{Result: names, String: fmt.Sprint(names)}

	case "mcp_spec":
		return ToolResponse{Result: MCPToolSpec(), String: "MCP tool specification"}
	}

	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// ToolNames lists the tools HandleToolCall accepts.
func ToolNames() []string {
	return []string{"compile", "parse", "simplify", "simplify_step", "diff", "diffn", "eval", "print", "tree", "substitute", "free_vars", "mcp_spec"}
}

func MCPToolSpec() string {
	expr := map[string]string{"expr": "string|object", "functions": "array"}
	with := func(extra map[string]string) map[string]string {
		out := map[string]string{}
		for k, v := range expr {
			out[k] = v
		}
		for k, v := range extra {
			out[k] = v
		}
		return out
	}
	tools := []map[string]interface{}{
		ts("compile", "Split text into quoted commands and expressions and parse them", []string{"text"}, map[string]string{"text": "string"}),
		ts("parse", "Parse an expression and return its tree", []string{"expr"}, expr),
		ts("simplify", "Simplify to a fixpoint", []string{"expr"}, expr),
		ts("simplify_step", "Apply a single rewrite step", []string{"expr"}, expr),
		ts("diff", "Simplified first derivative. var defaults to every variable", []string{"expr"}, with(map[string]string{"var": "string"})),
		ts("diffn", "Simplified nth derivative. Requires n (int)", []string{"expr", "n"}, with(map[string]string{"var": "string", "n": "integer"})),
		ts("eval", "Evaluate numerically. bindings maps names to numbers", []string{"expr"}, with(map[string]string{"bindings": "object"})),
		ts("print", "Render as plain, latex, inline or block", []string{"expr"}, with(map[string]string{"style": "string"})),
		ts("tree", "Indented outline of the expression tree", []string{"expr"}, expr),
		ts("substitute", "Replace variables simultaneously. values maps names to expressions or numbers", []string{"expr", "values"}, with(map[string]string{"values": "object"})),
		ts("free_vars", "Return free variable names", []string{"expr"}, expr),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
