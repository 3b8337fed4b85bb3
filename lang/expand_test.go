package lang

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/withblock/log"
)

func TestExpandString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		sites int
	}{
		{
			name:  "single site",
			input: "fn main() {\n    with_block! { run(a) { b(); } }\n}\n",
			want:  "fn main() {\n    run(a, || { b(); })\n}\n",
			sites: 1,
		},
		{
			name:  "paren delimiters",
			input: "let x = with_block!(f() { |v| v });",
			want:  "let x = f(|v| { v });",
			sites: 1,
		},
		{
			name:  "two sites",
			input: "with_block![a() { 1 }]; with_block![b() { 2 }];",
			want:  "a(|| { 1 }); b(|| { 2 });",
			sites: 2,
		},
		{
			name:  "nested sites",
			input: "with_block! { outer() { with_block! { inner() { x } } } }",
			want:  "outer(|| { inner(|| { x }) })",
			sites: 2,
		},
		{
			name:  "no sites",
			input: "fn f() { g(1) }  // trailing\n",
			want:  "fn f() { g(1) }  // trailing\n",
		},
		{
			name:  "other macros kept",
			input: "println!(\"{}\", with_block!{ f() { 1 } });",
			want:  "println!(\"{}\", f(|| { 1 }));",
			sites: 1,
		},
		{
			name:  "field named like macro",
			input: "s.with_block != t",
			want:  "s.with_block != t",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ExpandString(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("ExpandString error: %v", err)
			}

			if r.Source != tt.want {
				t.Errorf("Source = %q, want %q", r.Source, tt.want)
			}

			if len(r.Sites) != tt.sites || r.Expanded() != tt.sites {
				t.Errorf("got %d sites (%d expanded), want %d",
					len(r.Sites), r.Expanded(), tt.sites)
			}
		})
	}
}

func TestExpandString_Sites(t *testing.T) {
	src := "with_block! { outer(1) { with_block! { q.inner() { |x: u8| x } } } }"

	r, err := ExpandString(context.Background(), src)
	if err != nil {
		t.Fatalf("ExpandString error: %v", err)
	}

	if len(r.Sites) != 2 {
		t.Fatalf("got %d sites, want 2", len(r.Sites))
	}

	inner, outer := r.Sites[0], r.Sites[1]

	if inner.Depth != 1 || inner.Kind != "MethodCall" || inner.Receiver != "q" ||
		inner.Method != "inner" || inner.Params != 1 || inner.Typed != 1 {
		t.Errorf("inner site = %+v", inner)
	}

	if outer.Depth != 0 || outer.Kind != "PlainCall" || outer.Callee != "outer" ||
		len(outer.Args) != 1 || outer.Args[0] != "1" || outer.Pos.Column != 1 {
		t.Errorf("outer site = %+v", outer)
	}

	if want := "outer(1, || { q.inner(|x: u8| { x }) })"; outer.Rewritten != want {
		t.Errorf("outer Rewritten = %q, want %q", outer.Rewritten, want)
	}
}

func TestExpandString_Macros(t *testing.T) {
	src := "block! { f() { 1 } } with_block! { g() { 2 } }"

	r, err := ExpandString(context.Background(), src, WithMacros("block"))
	if err != nil {
		t.Fatalf("ExpandString error: %v", err)
	}

	if want := "f(|| { 1 }) with_block! { g() { 2 } }"; r.Source != want {
		t.Errorf("Source = %q, want %q", r.Source, want)
	}

	r, err = ExpandString(context.Background(), src, WithMacros("block", "with_block"))
	if err != nil {
		t.Fatalf("ExpandString error: %v", err)
	}

	if want := "f(|| { 1 }) g(|| { 2 })"; r.Source != want {
		t.Errorf("Source = %q, want %q", r.Source, want)
	}
}

func TestExpandString_Filter(t *testing.T) {
	f, err := CompileFilter(`callee == "keep"`)
	if err != nil {
		t.Fatalf("CompileFilter error: %v", err)
	}

	src := "with_block! { keep() { with_block! { skip() { 1 } } } } " +
		"with_block! { skip() { 2 } }"

	r, err := ExpandString(context.Background(), src, WithFilter(f))
	if err != nil {
		t.Fatalf("ExpandString error: %v", err)
	}

	want := "keep(|| { with_block! { skip() { 1 } } }) with_block! { skip() { 2 } }"
	if r.Source != want {
		t.Errorf("Source = %q, want %q", r.Source, want)
	}

	if len(r.Sites) != 3 || r.Expanded() != 1 {
		t.Errorf("got %d sites (%d expanded), want 3 (1 expanded)",
			len(r.Sites), r.Expanded())
	}
}

func TestExpandString_Suggestions(t *testing.T) {
	var buf bytes.Buffer

	logger := log.Make(&buf, log.WithFormat(log.FormatText), log.WithPretty(false))

	src := "with_blok! { f() { 1 } } vec![1] with_block! { g() { 2 } }"

	r, err := ExpandString(context.Background(), src, WithLogger(logger))
	if err != nil {
		t.Fatalf("ExpandString error: %v", err)
	}

	if len(r.Suggestions) != 1 {
		t.Fatalf("got %d suggestions, want 1: %+v", len(r.Suggestions), r.Suggestions)
	}

	s := r.Suggestions[0]
	if s.Name != "with_blok" || s.Macro != DefaultMacro || s.Pos.Column != 1 {
		t.Errorf("suggestion = %+v", s)
	}

	if !strings.Contains(buf.String(), "unknown macro resembles configured macro") {
		t.Errorf("missing warning in log output:\n%s", buf.String())
	}

	if want := "with_blok! { f() { 1 } } vec![1] g(|| { 2 })"; r.Source != want {
		t.Errorf("Source = %q, want %q", r.Source, want)
	}
}

func TestExpandString_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  []Option
		want  error
	}{
		{
			name:  "missing block",
			input: "with_block! { f() }",
			want:  ErrMissingBlock,
		},
		{
			name:  "nested failure",
			input: "with_block! { f() { with_block! { 1 + 2 } } }",
			want:  ErrMissingBlock,
		},
		{
			name:  "unsupported call",
			input: "with_block! { 1 { x } }",
			want:  ErrUnsupportedCall,
		},
		{
			name:  "lex failure",
			input: "with_block! { f() { \"open }",
			want:  ErrLex,
		},
		{
			name:  "depth exceeded",
			input: "with_block! { a() { with_block! { b() { with_block! { c() { 1 } } } } } }",
			opts:  []Option{WithMaxDepth(2)},
			want:  ErrMaxDepthExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExpandString(context.Background(), tt.input, tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Errorf("ExpandString error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestExpandString_MaxDepth(t *testing.T) {
	src := "with_block! { a() { with_block! { b() { 1 } } } }"

	if _, err := ExpandString(context.Background(), src, WithMaxDepth(2)); err != nil {
		t.Errorf("depth 2 with limit 2: unexpected error %v", err)
	}

	_, err := ExpandString(context.Background(), src, WithMaxDepth(1))
	if !errors.Is(err, ErrMaxDepthExceeded) {
		t.Errorf("depth 2 with limit 1: error = %v, want ErrMaxDepthExceeded", err)
	}

	if _, err := ExpandString(context.Background(), src, WithMaxDepth(0)); err != nil {
		t.Errorf("limit 0 should fall back to default: %v", err)
	}
}

func TestExpandString_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExpandString(ctx, "with_block! { f() { 1 } }")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestExpandString_FileAttribute(t *testing.T) {
	_, err := ExpandString(context.Background(), "with_block! { f() }", WithFile("main.rs"))

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("error = %v, want *Error", err)
	}

	found := false

	for _, a := range e.Attrs() {
		if a.Key == "file" && a.Value.String() == "main.rs" {
			found = true
		}
	}

	if !found {
		t.Errorf("attrs %v missing file=main.rs", e.Attrs())
	}
}
