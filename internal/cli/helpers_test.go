package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilters(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    map[string]string
		wantErr bool
	}{
		{"empty", nil, map[string]string{}, false},
		{"single", []string{"status=active"}, map[string]string{"status": "active"}, false},
		{"key is lowered and trimmed", []string{" Status = paused "}, map[string]string{"status": "paused"}, false},
		{"later wins", []string{"status=active", "status=failed"}, map[string]string{"status": "failed"}, false},
		{"empty value clears", []string{"severity="}, map[string]string{"severity": ""}, false},
		{"blank ignored", []string{"", "  "}, map[string]string{}, false},
		{"value keeps equals", []string{"organization=a=b"}, map[string]string{"organization": "a=b"}, false},
		{"missing equals", []string{"status"}, nil, true},
		{"missing key", []string{"=active"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFilters(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidFilter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfirmDelete(t *testing.T) {
	tests := []struct {
		input        string
		wantAccepted bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out strings.Builder
			got := ConfirmDelete(&out, strings.NewReader(tt.input), 3, "targets")
			assert.Equal(t, tt.wantAccepted, got.Accepted)
			assert.False(t, got.Cancelled)
			assert.Contains(t, out.String(), "Delete 3 targets?")
		})
	}
}
