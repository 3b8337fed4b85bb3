package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes a readable decomposition of the expansion to the writer.
func (e *Expansion) Format(_ context.Context, w io.Writer, indent int) error {
	pad := strings.Repeat(" ", max(indent, 1))

	var sb strings.Builder

	sb.WriteString("kind: " + e.Call.Kind.String() + "\n")

	switch e.Call.Kind {
	case PlainCall:
		sb.WriteString("callee: " + e.Call.Callee.Compact() + "\n")

	case MethodCall:
		sb.WriteString("receiver: " + e.Call.Receiver.Compact() + "\n")
		sb.WriteString("method: " + e.Call.Method.Text + e.Call.Generics.Compact() + "\n")
	}

	sb.WriteString("args:\n")

	for _, arg := range e.Call.Args {
		sb.WriteString(pad + arg.Compact() + "\n")
	}

	if e.Params != nil {
		sb.WriteString("params: " + e.Params.Literal() + " (" + e.Params.Style.String() + ")\n")
	}

	sb.WriteString("stmts:\n")

	for _, s := range e.Block.Stmts {
		sb.WriteString(pad + s.Kind.String() + ": " + s.Tokens.Compact() + "\n")
	}

	sb.WriteString("result: " + e.String() + "\n")

	_, err := io.WriteString(w, sb.String())

	return err
}

// FormatJSON writes the expansion as JSON to the writer.
func (e *Expansion) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(e, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(e)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the expansion as YAML to the writer.
func (e *Expansion) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, e.ToMap(), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

// FormatTree writes the token tree of the expansion input, one token per
// line, with groups indented by depth.
func (e *Expansion) FormatTree(_ context.Context, w io.Writer, indent int) error {
	input := append(append(Tokens(nil), e.Call.Head()...), e.Call.Group)
	if e.Params != nil && e.Params.Style == ArrowParams {
		input = append(input, Group(DelimParen, " ", e.Params.Source))
	}

	input = append(input, e.Block.Group)

	return FormatTokens(w, input, indent)
}

// FormatTokens writes ts as a tree, one token per line.
func FormatTokens(w io.Writer, ts Tokens, indent int) error {
	var sb strings.Builder

	writeTree(&sb, ts, strings.Repeat(" ", max(indent, 1)), 0)

	_, err := io.WriteString(w, sb.String())

	return err
}

func writeTree(sb *strings.Builder, ts Tokens, pad string, depth int) {
	prefix := strings.Repeat(pad, depth)

	for _, t := range ts {
		sb.WriteString(prefix + t.Kind.String() + " ")

		if t.Kind != KindGroup {
			sb.WriteString(t.Text)

			if t.Kind == KindPunct && t.Joint {
				sb.WriteString(" (joint)")
			}

			sb.WriteString(" @" + t.Pos.String() + "\n")

			continue
		}

		sb.WriteString(t.Delim.Open() + t.Delim.Close() + " @" + t.Pos.String() + "\n")
		writeTree(sb, t.Tokens, pad, depth+1)
	}
}
