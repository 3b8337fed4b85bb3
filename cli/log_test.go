package cli

import (
	"os"
	"testing"

	"github.com/ardnew/withblock/log"
)

func TestLogConfig_Scan(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want logConfig
	}{
		{
			name: "assigned values",
			args: []string{"expand", "--log-level=debug", "--log-format=text", "a.rs"},
			want: logConfig{Level: "debug", Format: "text", Pretty: true},
		},
		{
			name: "separate values",
			args: []string{"--log-level", "warn", "--log-time-layout", "none", "rewrite"},
			want: logConfig{Level: "warn", TimeLayout: "none", Pretty: true},
		},
		{
			name: "value missing",
			args: []string{"--log-level", "--log-caller"},
			want: logConfig{Caller: true, Pretty: true},
		},
		{
			name: "negated booleans",
			args: []string{"--no-log-pretty", "--no-log-caller=false"},
			want: logConfig{Caller: true},
		},
		{
			name: "invalid boolean ignored",
			args: []string{"--log-pretty=maybe"},
			want: logConfig{Pretty: true},
		},
		{
			name: "other flags ignored",
			args: []string{"--macro", "--log-level", "-m", "block"},
			want: logConfig{Pretty: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Cleanup(func() { log.Config(log.WithDefaults(os.Stderr)) })

			f := logConfig{Pretty: true}
			f.scan(tt.args)

			if f != tt.want {
				t.Errorf("scan(%q) = %+v, want %+v", tt.args, f, tt.want)
			}
		})
	}
}
