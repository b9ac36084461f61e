package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	vars := map[string]any{
		"x":     true,
		"y":     false,
		"count": 3,
		"ratio": 0.5,
		"name":  "alice",
		"empty": "",
	}

	tests := []struct {
		expr string
		want bool
	}{
		// literals and bare variables
		{"true", true},
		{"false", false},
		{"TRUE", true},
		{"x", true},
		{"y", false},
		{"missing", false},
		{"count", true},
		{"empty", false},
		{"name", true},

		// logical operators, symbolic and word forms
		{"x && y", false},
		{"x || y", true},
		{"!y", true},
		{"not y", true},
		{"x and not y", true},
		{"x or y", true},
		{"(x || y) && count", true},
		{"!(x && y)", true},

		// comparisons
		{"count == 3", true},
		{"count != 3", false},
		{"count < 10", true},
		{"count <= 3", true},
		{"count > 5", false},
		{"ratio >= 0.5", true},
		{"name == 'alice'", true},
		{"name == \"alice\"", true},
		{"name != 'bob'", true},
		{"'a' < 'b'", true},
		// equality across types compares printed forms
		{"count == '3'", true},

		// malformed or rejected expressions are false, never panics
		{"", false},
		{"   ", false},
		{"x = 5", false},
		{"x; drop table", false},
		{"count + 1", false},
		{"name == 'unterminated", false},
		{"x x", false},
		{"(x", false},
		{"&& x", false},
		{"count < name", false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.expr, vars), "expr %q", tt.expr)
		})
	}
}

func TestEvaluate_NilVars(t *testing.T) {
	assert.False(t, Evaluate("x", nil))
	assert.True(t, Evaluate("true", nil))
	assert.True(t, Evaluate("!x", nil))
}
