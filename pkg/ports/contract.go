package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/promowizard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		// 1. Create a record
		record := &domain.SessionRecord{
			SessionID:   sessionID,
			AccountID:   "001ACC",
			Step:        domain.StepProducts,
			CatalogPage: 2,
			Snapshot: domain.Snapshot{
				PromotionName: "Spring Sale",
				Products: []domain.ProductSelection{
					{ProductID: "P1", ProductName: "Widget", Category: "Tools", DiscountPercent: 25},
				},
				Stores:  []domain.StoreSelection{{StoreID: "S1", StoreName: "Main St"}},
				Version: 7,
			},
			Draft: &domain.StepDraft{
				PromotionName: "Spring Sale 2",
				Stores:        []domain.StoreSelection{{StoreID: "S2", StoreName: "Harbor"}},
			},
		}

		// 2. Save
		err := store.Save(ctx, sessionID, record)
		require.NoError(t, err, "Save should not return error")

		// 3. Load
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, record.AccountID, loaded.AccountID)
		assert.Equal(t, domain.StepProducts, loaded.Step)
		assert.Equal(t, 2, loaded.CatalogPage)
		assert.Equal(t, "Spring Sale", loaded.Snapshot.PromotionName)
		require.Len(t, loaded.Snapshot.Products, 1)
		assert.Equal(t, 25.0, loaded.Snapshot.Products[0].DiscountPercent)
		assert.Equal(t, uint64(7), loaded.Snapshot.Version)
		require.NotNil(t, loaded.Draft)
		assert.Equal(t, record.Draft.Key(), loaded.Draft.Key())
	})

	t.Run("Load Is Isolated", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Snapshot.Products[0].DiscountPercent = 99
		loaded.Draft.Stores[0].StoreID = "tampered"

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, 25.0, again.Snapshot.Products[0].DiscountPercent, "mutating a loaded record must not leak into the store")
		assert.Equal(t, "S2", again.Draft.Stores[0].StoreID)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		// Setup
		err := store.Save(ctx, sessionID, &domain.SessionRecord{SessionID: sessionID, Step: domain.StepName})
		require.NoError(t, err)

		// Delete
		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		// Verify gone
		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		// Setup: Create 2 sessions
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, &domain.SessionRecord{SessionID: id1, Step: domain.StepName})
		_ = store.Save(ctx, id2, &domain.SessionRecord{SessionID: id2, Step: domain.StepName})

		// Ensure cleanup
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		// List
		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
