package record

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptValidate(t *testing.T) {
	tests := []struct {
		name    string
		prompt  Prompt
		wantErr string
	}{
		{"valid", Prompt{ID: "a", ListName: DefaultListName, Prompt: "Capital of Italy?", Completion: "Rome"}, ""},
		{"empty texts allowed", Prompt{ID: "a", ListName: "x"}, ""},
		{"missing id", Prompt{ListName: "x"}, "id"},
		{"empty list allowed", Prompt{ID: "a"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.prompt.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, "prompt", ve.Kind)
			assert.Equal(t, tt.wantErr, ve.Field)
		})
	}
}

func TestListValidate(t *testing.T) {
	assert.NoError(t, List{Name: DefaultListName}.Validate())

	err := List{}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid list: name")
}

func TestNormalizeName(t *testing.T) {
	decomposed := "Cafe\u0301"
	composed := "Caf\u00e9"

	assert.Equal(t, composed, NormalizeName(decomposed))
	assert.Equal(t, composed, NormalizeName(composed))
}

func TestSameList(t *testing.T) {
	assert.True(t, SameList("Cafe\u0301", "Caf\u00e9"))
	assert.True(t, SameList("Geography", "Geography"))
	assert.True(t, SameList("", ""))
	assert.False(t, SameList("Geography", "geography"))
}

func TestUUIDv7Generator(t *testing.T) {
	gen := UUIDv7Generator{}
	a := gen.Generate()
	b := gen.Generate()

	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}
