package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/ardnew/withblock/lang"
)

func TestRewrite_Run(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		err   error
	}{
		{"plain", "f(a) { |x| x }", "f(a, |x| { x })\n", nil},
		{"method", "pool.spawn() { work(); }", "pool.spawn(|| { work(); })\n", nil},
		{"blank", "  \n", "", ErrNoInput},
		{"missing block", "f(a)", "", lang.ErrMissingBlock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			err := (&Rewrite{Input: tt.input}).Run(WithOutput(context.Background(), &buf))
			if !errors.Is(err, tt.err) {
				t.Fatalf("Run error = %v, want %v", err, tt.err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}
