package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value form",
			args:    []string{"-d", "postgres://x", "-z", "junk"},
			allowed: []string{"-d"},
			want:    []string{"-d", "postgres://x"},
		},
		{
			name:    "equals form",
			args:    []string{"--config=conf.json", "-s=topsecret"},
			allowed: []string{"-s"},
			want:    []string{"-s=topsecret"},
		},
		{
			name:    "flag without value followed by another flag",
			args:    []string{"-v", "-d", "dsn"},
			allowed: []string{"-v"},
			want:    []string{"-v"},
		},
		{
			name:    "nothing allowed",
			args:    []string{"-a", "1", "-b", "2"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "empty args",
			args:    nil,
			allowed: []string{"-a"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowed)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPositional(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		bools []string
		want  []string
	}{
		{
			name:  "bool flag before subcommand",
			args:  []string{"-q", "migrate", "up"},
			bools: []string{"-q"},
			want:  []string{"migrate", "up"},
		},
		{
			name: "subcommand before flags",
			args: []string{"migrate", "up", "-d", "postgres://x"},
			want: []string{"migrate", "up"},
		},
		{
			name: "subcommand after flag with value",
			args: []string{"-d", "postgres://x", "create-user"},
			want: []string{"create-user"},
		},
		{
			name: "equals form does not consume the next arg",
			args: []string{"-d=postgres://x", "migrate"},
			want: []string{"migrate"},
		},
		{
			name: "only flags",
			args: []string{"-d", "dsn", "-q"},
			want: []string{},
		},
		{
			name: "empty args",
			args: nil,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Positional(tt.args, tt.bools...))
		})
	}
}
