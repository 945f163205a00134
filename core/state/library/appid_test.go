package library

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAppID(t *testing.T) {
	for _, id := range []string{"app1", "com.example.notes", "my_app-2", "A"} {
		assert.NoError(t, ValidateAppID(id), id)
	}
	for _, id := range []string{"", ".", "..", "../precious", "a/b", `a\b`, "/abs", ".hidden", "-flag", "sp ace", strings.Repeat("a", 129)} {
		assert.ErrorIs(t, ValidateAppID(id), ErrInvalidAppID, id)
	}
}
