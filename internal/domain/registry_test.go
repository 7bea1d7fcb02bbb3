package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-remote/internal/domain"
)

func TestNewRegistry(t *testing.T) {
	t.Run("indexes primary and auxiliary devices by exact name", func(t *testing.T) {
		r, err := domain.NewRegistry(
			domain.DeviceRef{ID: "tv-1", Name: "tv", Label: "Living Room TV"},
			domain.DeviceRef{ID: "light-1", Name: "ceilingLight1", Label: "Ceiling Light 1"},
			domain.DeviceRef{ID: "light-2", Name: "stripLight1"},
		)
		require.NoError(t, err)

		assert.Equal(t, domain.DeviceKindPrimary, r.Primary().Kind)
		assert.Len(t, r.Auxiliary(), 2)

		ref, ok := r.Lookup("ceilingLight1")
		require.True(t, ok)
		assert.Equal(t, "light-1", ref.ID)
		assert.Equal(t, domain.DeviceKindAuxiliary, ref.Kind)

		_, ok = r.Lookup("CeilingLight1")
		assert.False(t, ok)

		ref, ok = r.Lookup("stripLight1")
		require.True(t, ok)
		assert.Equal(t, "stripLight1", ref.Label)
	})

	t.Run("rejects a missing primary id", func(t *testing.T) {
		_, err := domain.NewRegistry(domain.DeviceRef{Name: "tv"})
		assert.Error(t, err)
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		_, err := domain.NewRegistry(
			domain.DeviceRef{ID: "tv-1", Name: "tv"},
			domain.DeviceRef{ID: "light-1", Name: "lamp"},
			domain.DeviceRef{ID: "light-2", Name: "lamp"},
		)
		assert.Error(t, err)
	})

	t.Run("auxiliary list is a copy", func(t *testing.T) {
		r, err := domain.NewRegistry(
			domain.DeviceRef{ID: "tv-1", Name: "tv"},
			domain.DeviceRef{ID: "light-1", Name: "lamp"},
		)
		require.NoError(t, err)

		aux := r.Auxiliary()
		aux[0].ID = "changed"

		ref, _ := r.Lookup("lamp")
		assert.Equal(t, "light-1", ref.ID)
	})
}
