package memory_test

import (
	"testing"

	"github.com/aretw0/simflow/pkg/adapters/memory"
	"github.com/aretw0/simflow/pkg/domain"
	contract "github.com/aretw0/simflow/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryLoader_Contract(t *testing.T) {
	loader, err := memory.NewLoader(
		&domain.Form{ID: "home", Blocks: []domain.Block{{ID: "intro"}, {ID: "details"}}},
		&domain.Form{ID: "empty"},
	)
	require.NoError(t, err)

	contract.FormLoaderContractTest(t, loader, map[string]int{"home": 2, "empty": 0})
}

func TestInMemoryLoader_RejectsAnonymousForms(t *testing.T) {
	_, err := memory.NewLoader(&domain.Form{})
	assert.Error(t, err)

	_, err = memory.NewLoader(nil)
	assert.Error(t, err)
}
