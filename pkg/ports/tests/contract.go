package tests

import (
	"context"
	"testing"

	"github.com/aretw0/simflow/pkg/domain"
	"github.com/aretw0/simflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// FormLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.FormLoader.
// expected maps each form id the loader must serve to the number of blocks it declares.
func FormLoaderContractTest(t *testing.T, loader ports.FormLoader, expected map[string]int) {
	t.Helper()
	ctx := context.Background()

	t.Run("LoadForm_Success", func(t *testing.T) {
		for id, blocks := range expected {
			form, err := loader.LoadForm(ctx, id)
			require.NoError(t, err, "loading %s", id)
			assert.Equal(t, id, form.ID)
			assert.Len(t, form.Blocks, blocks)
		}
	})

	t.Run("LoadForm_NotFound", func(t *testing.T) {
		_, err := loader.LoadForm(ctx, "non-existent-form")
		assert.ErrorIs(t, err, domain.ErrFormNotFound)
	})

	t.Run("ListForms", func(t *testing.T) {
		ids, err := loader.ListForms(ctx)
		require.NoError(t, err)
		for id := range expected {
			assert.Contains(t, ids, id)
		}
	})

	t.Run("Forms are isolated copies", func(t *testing.T) {
		for id := range expected {
			first, err := loader.LoadForm(ctx, id)
			require.NoError(t, err)
			if len(first.Blocks) == 0 {
				continue
			}
			first.Blocks[0].ID = "mutated"

			second, err := loader.LoadForm(ctx, id)
			require.NoError(t, err)
			assert.NotEqual(t, "mutated", second.Blocks[0].ID)
		}
	})
}
