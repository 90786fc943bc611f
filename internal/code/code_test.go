package code

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	for i := 0; i < 100; i++ {
		c, err := Generate()
		require.NoError(t, err)
		assert.NoError(t, Validate(c), "generated code %q should validate", c)
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name      string
		code      string
		expectErr bool
	}{
		{name: "valid code", code: "482913", expectErr: false},
		{name: "all zeros", code: "000000", expectErr: false},
		{name: "too short", code: "12345", expectErr: true},
		{name: "too long", code: "1234567", expectErr: true},
		{name: "empty", code: "", expectErr: true},
		{name: "letters", code: "12a456", expectErr: true},
		{name: "whitespace", code: "123 56", expectErr: true},
		{name: "unicode digits", code: "１２３４５６", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.code)
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGeneratePassword(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		p, err := GeneratePassword()
		require.NoError(t, err)
		assert.Len(t, p, PasswordLength)
		for _, c := range []byte(p) {
			isAlnum := (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
			assert.True(t, isAlnum, "password %q contains non-alphanumeric byte %q", p, c)
		}
		assert.False(t, seen[p], "passwords should not repeat")
		seen[p] = true
	}
}
