package expense

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCategory(t *testing.T) {
	t.Run("creates active category with trimmed name", func(t *testing.T) {
		c, err := NewCategory("  Travel ")
		require.NoError(t, err)
		assert.Equal(t, "Travel", c.Name)
		assert.True(t, c.IsActive)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewCategory("   ")
		assert.Error(t, err)
	})

	t.Run("rejects name over 50 characters", func(t *testing.T) {
		_, err := NewCategory(strings.Repeat("x", 51))
		assert.Error(t, err)
	})
}

func TestCategoryRename(t *testing.T) {
	c, err := NewCategory("Travel")
	require.NoError(t, err)

	require.NoError(t, c.Rename("Office"))
	assert.Equal(t, "Office", c.Name)

	assert.Error(t, c.Rename(""))
}

func TestCategoryMarkInactive(t *testing.T) {
	c, err := NewCategory("Travel")
	require.NoError(t, err)

	require.NoError(t, c.MarkInactive())
	assert.False(t, c.IsActive)

	// Second deactivation is an invalid state transition
	assert.Error(t, c.MarkInactive())
}
