package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/promowizard/pkg/adapters/memory"
	"github.com/aretw0/promowizard/pkg/wizard"
	"github.com/stretchr/testify/assert"
)

func TestManager_LockLifecycle(t *testing.T) {
	factory := func(sessionID, accountID string) *wizard.Controller {
		return wizard.New(memory.NewCatalog(5), memory.NewSubmitter(), wizard.WithAccountID(accountID))
	}
	mgr := NewManager(memory.NewStore(), factory)
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		id, err := mgr.Open(ctx, fmt.Sprintf("acc-%d", i))
		assert.NoError(t, err)
		assert.NoError(t, mgr.Close(ctx, id))
	}

	assert.Empty(t, mgr.locks, "locks must be released once unused")
	assert.Empty(t, mgr.live)
}
