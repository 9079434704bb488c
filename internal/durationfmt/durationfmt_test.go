package durationfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		seconds  int
		expected string
	}{
		{-3, "0s"},
		{0, "0s"},
		{16, "16s"},
		{59, "59s"},
		{60, "1m 00s"},
		{187, "3m 07s"},
		{3599, "59m 59s"},
		{3600, "1h 00m 00s"},
		{3725, "1h 02m 05s"},
		{86399, "23h 59m 59s"},
		{86400, "1d 0h 00m"},
		{2*86400 + 4*3600 + 10*60 + 59, "2d 4h 10m"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Format(tt.seconds), "Format(%d)", tt.seconds)
	}
}
