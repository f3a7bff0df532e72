//go:build !integration

package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		input time.Duration
		want  string
	}{
		{500 * time.Microsecond, "0ms"},
		{12 * time.Millisecond, "12ms"},
		{3 * time.Second, "3s"},
		{2 * time.Minute, "2m"},
		{90 * time.Minute, "1h"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.input), "input %v", tt.input)
	}
}
