package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "  Python   Programming ", want: "python programming"},
		{in: "C++ / C#", want: "c++ c#"},
		{in: "CI/CD, REST-API!", want: "ci cd rest api"},
		{in: "\t\n", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), tt.in)
	}
}

func TestTokensAndStopwords(t *testing.T) {
	assert.Nil(t, Tokens(""))
	assert.Equal(t, []string{"data", "analysis"}, Tokens("data analysis"))
	assert.True(t, IsStopword("the"))
	assert.False(t, IsStopword("excel"))
}
