package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *int
	}{
		{"digit", "order 3 samosas", intPtr(3)},
		{"digit wins over numeral", "teen plates but make it 5", intPtr(5)},
		{"hindi ek", "ek chai bhej do", intPtr(1)},
		{"hindi teen", "teen roti chahiye", intPtr(3)},
		{"hindi chaar variant", "chaar samosa", intPtr(4)},
		{"do before food", "do samosa bhej do", intPtr(2)},
		{"do as english verb", "do you have cold coffee", nil},
		{"do not", "do not cancel it", nil},
		{"helper do after bhej", "paneer bhej do", nil},
		{"helper do after mangwa", "pizza mangwa do", nil},
		{"trailing do", "kya karna hai do", nil},
		{"no quantity", "i am hungry", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseQuantity(tt.text)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func intPtr(n int) *int { return &n }
