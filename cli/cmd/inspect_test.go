package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/withblock/lang"
)

const inspectInput = "pool.run(1) { |a| a }"

func TestInspect_Formats(t *testing.T) {
	tests := []struct {
		name string
		run  func(ctx context.Context) error
		want []string
	}{
		{
			name: "native",
			run:  (&Native{Indent: 2, Input: inspectInput}).Run,
			want: []string{"kind: MethodCall", "receiver: pool", "result: pool.run(1, |a| { a })"},
		},
		{
			name: "yaml",
			run:  (&YAML{Indent: 2, Input: inspectInput}).Run,
			want: []string{"kind: MethodCall", "method: run"},
		},
		{
			name: "ast",
			run:  (&AST{Indent: 2, Input: inspectInput}).Run,
			want: []string{"Ident pool @1:1", "Punct .", "Ident run", "Group {} "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			if err := tt.run(WithOutput(context.Background(), &buf)); err != nil {
				t.Fatalf("Run error: %v", err)
			}

			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestInspect_JSON(t *testing.T) {
	var buf bytes.Buffer

	err := (&JSON{Indent: 0, Input: inspectInput}).Run(WithOutput(context.Background(), &buf))
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}

	if got["result"] != "pool.run(1, |a| { a })" {
		t.Errorf("result = %v", got["result"])
	}
}

func TestInspect_Error(t *testing.T) {
	err := (&YAML{Input: "f(a)"}).Run(WithOutput(context.Background(), &bytes.Buffer{}))
	if !errors.Is(err, lang.ErrMissingBlock) {
		t.Errorf("error = %v, want ErrMissingBlock", err)
	}
}
