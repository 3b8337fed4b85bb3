package lang

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
)

func mustRewrite(t *testing.T, src string) *Expansion {
	t.Helper()

	e, err := RewriteString(context.Background(), src)
	if err != nil {
		t.Fatalf("RewriteString(%q) error: %v", src, err)
	}

	return e
}

func TestExpansion_Format(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain call",
			input: "spawn(a, 2) { |x| go(x); x }",
			want: "kind: PlainCall\n" +
				"callee: spawn\n" +
				"args:\n" +
				"  a\n" +
				"  2\n" +
				"params: |x| (Pipe)\n" +
				"stmts:\n" +
				"  Expr: go(x);\n" +
				"  Expr: x\n" +
				"result: spawn(a, 2, |x| { go(x); x })\n",
		},
		{
			name:  "method call",
			input: "it.each::<u8>() (v) -> { let y = v; }",
			want: "kind: MethodCall\n" +
				"receiver: it\n" +
				"method: each::<u8>\n" +
				"args:\n" +
				"params: |v| (Arrow)\n" +
				"stmts:\n" +
				"  Let: let y = v;\n" +
				"result: it.each::<u8>(|v| { let y = v; })\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			if err := mustRewrite(t, tt.input).Format(context.Background(), &buf, 2); err != nil {
				t.Fatalf("Format error: %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("Format() =\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestExpansion_FormatJSON(t *testing.T) {
	e := mustRewrite(t, "pool.run(1) { |a: u8, b| a }")

	for _, indent := range []int{0, 2} {
		var buf bytes.Buffer

		if err := e.FormatJSON(context.Background(), &buf, indent); err != nil {
			t.Fatalf("FormatJSON error: %v", err)
		}

		var got map[string]any
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON %q: %v", buf.String(), err)
		}

		if got["kind"] != "MethodCall" || got["receiver"] != "pool" ||
			got["method"] != "run" || got["result"] != "pool.run(1, |a: u8, b| { a })" {
			t.Errorf("indent %d: unexpected JSON %v", indent, got)
		}

		params, _ := got["params"].(map[string]any)
		if params["literal"] != "|a: u8, b|" || params["style"] != "Pipe" {
			t.Errorf("indent %d: params = %v", indent, params)
		}

		if list, _ := params["list"].([]any); len(list) != 2 {
			t.Errorf("indent %d: params list = %v, want 2 entries", indent, params["list"])
		}

		if indent > 0 && !strings.Contains(buf.String(), "\n  \"") {
			t.Errorf("indent %d: output not indented:\n%s", indent, buf.String())
		}
	}
}

func TestExpansion_FormatYAML(t *testing.T) {
	e := mustRewrite(t, "f(x) { y }")

	var buf bytes.Buffer

	if err := e.FormatYAML(context.Background(), &buf, 2); err != nil {
		t.Fatalf("FormatYAML error: %v", err)
	}

	var got map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid YAML %q: %v", buf.String(), err)
	}

	if got["callee"] != "f" || got["result"] != "f(x, || { y })" {
		t.Errorf("unexpected YAML %v", got)
	}

	if _, ok := got["params"]; ok {
		t.Errorf("params present for block without parameter list: %v", got["params"])
	}

	buf.Reset()

	if err := e.FormatYAML(context.Background(), &buf, 0); err != nil {
		t.Fatalf("FormatYAML flow error: %v", err)
	}

	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("flow YAML = %q, want a flow mapping", buf.String())
	}
}

func TestExpansion_FormatTree(t *testing.T) {
	e := mustRewrite(t, "f(a) { b }")

	var buf bytes.Buffer

	if err := e.FormatTree(context.Background(), &buf, 2); err != nil {
		t.Fatalf("FormatTree error: %v", err)
	}

	want := "Ident f @1:1\n" +
		"Group () @1:2\n" +
		"  Ident a @1:3\n" +
		"Group {} @1:6\n" +
		"  Ident b @1:8\n"

	if got := buf.String(); got != want {
		t.Errorf("FormatTree() =\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatTokens_Joint(t *testing.T) {
	var buf bytes.Buffer

	if err := FormatTokens(&buf, mustLex(t, "a->b"), 0); err != nil {
		t.Fatalf("FormatTokens error: %v", err)
	}

	want := "Ident a @1:1\n" +
		"Punct - (joint) @1:2\n" +
		"Punct > @1:3\n" +
		"Ident b @1:4\n"

	if got := buf.String(); got != want {
		t.Errorf("FormatTokens() =\n%s\nwant:\n%s", got, want)
	}
}
