package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTickerList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "single value",
			input:    "AAPL",
			expected: []string{"AAPL"},
		},
		{
			name:     "comma separated",
			input:    "AAPL, MSFT",
			expected: []string{"AAPL", "MSFT"},
		},
		{
			name:     "varied spacing",
			input:    "AAPL,  MSFT , TSLA",
			expected: []string{"AAPL", "MSFT", "TSLA"},
		},
		{
			name:     "no spaces after comma",
			input:    "NVDA,SMCI",
			expected: []string{"NVDA", "SMCI"},
		},
		{
			name:     "one symbol per line",
			input:    "NVDA\nSMCI\nPLTR",
			expected: []string{"NVDA", "SMCI", "PLTR"},
		},
		{
			name:     "semicolons",
			input:    "NVDA;SMCI",
			expected: []string{"NVDA", "SMCI"},
		},
		{
			name:     "mixed delimiters",
			input:    "NVDA, SMCI\nPLTR;GME",
			expected: []string{"NVDA", "SMCI", "PLTR", "GME"},
		},
		{
			name:     "trailing comma",
			input:    "NVDA,",
			expected: []string{"NVDA"},
		},
		{
			name:     "only spaces",
			input:    "   ",
			expected: nil,
		},
		{
			name:     "delimiters only",
			input:    ",;\n",
			expected: nil,
		},
		{
			name:     "runs of delimiters",
			input:    ",,AAPL,,MSFT,,",
			expected: []string{"AAPL", "MSFT"},
		},
		{
			name:     "dotted share classes preserved",
			input:    "BRK.B, BF.B",
			expected: []string{"BRK.B", "BF.B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitTickerList(tt.input))
		})
	}
}
