package sanitize

import (
	"strings"
	"testing"

	"github.com/aretw0/promowizard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInput_SizeLimit(t *testing.T) {
	limit := DefaultMaxInputSize

	tests := []struct {
		name      string
		inputSize int
		wantErr   bool
	}{
		{"Under Limit", limit - 1, false},
		{"Exact Limit", limit, false},
		{"Over Limit", limit + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Input(strings.Repeat("a", tt.inputSize))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInputTooLarge)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInput_ControlChars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal Text", "Spring Sale", "Spring Sale"},
		{"Safe Controls", "Line1\nLine2\tTabbed", "Line1\nLine2\tTabbed"},
		{"ANSI Code", "\x1b[31mRed\x1b[0m", "[31mRed[0m"},
		{"Null Byte", "Null\x00Byte", "NullByte"},
		{"Bell", "Ding\x07", "Ding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Input(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLine(t *testing.T) {
	got, err := Line("  Spring\tSale\r\n\x1b ")
	require.NoError(t, err)
	assert.Equal(t, "Spring Sale", got)

	got, err = Line("   ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInput_EnvOverride(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "10")

	_, err := Input("12345678901")
	assert.ErrorIs(t, err, ErrInputTooLarge)

	_, err = Line("12345")
	assert.NoError(t, err)
}

func TestInput_InvalidUTF8(t *testing.T) {
	_, err := Input("\xbd\xb2\x3d\xbc\x20\xe2\x8c\x98")
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestStores(t *testing.T) {
	got, err := Stores([]domain.StoreSelection{
		{StoreID: " S1 ", StoreName: "Down\x1btown", LocationGroup: "North\n"},
		{StoreID: "  ", StoreName: "No id"},
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.StoreSelection{{StoreID: "S1", StoreName: "Downtown", LocationGroup: "North"}}, got)

	t.Setenv(EnvMaxInputSize, "3")
	_, err = Stores([]domain.StoreSelection{{StoreID: "S1", StoreName: "Too long"}})
	assert.ErrorIs(t, err, ErrInputTooLarge)
}
