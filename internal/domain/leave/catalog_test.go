package leave

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestCatalog() (*Catalog, *memStore) {
	store := newMemStore()
	return NewCatalog(store), store
}

func TestCatalogCreateRejectsDuplicateName(t *testing.T) {
	catalog, store := newTestCatalog()
	store.addType(LeaveType{Name: "Study Leave", IsActive: true})

	_, err := catalog.Create(context.Background(), TypeSpec{Name: "study leave"})
	require.ErrorIs(t, err, ErrDuplicateName, "name collision check is case-insensitive")

	_, err = catalog.Create(context.Background(), TypeSpec{Name: "  "})
	require.Error(t, err)
}

func TestCatalogCreateActivatesNewType(t *testing.T) {
	catalog, _ := newTestCatalog()

	created, err := catalog.Create(context.Background(), TypeSpec{
		Name:                   "Study Leave",
		DefaultAnnualAllowance: dec("5"),
		MaxDaysPerYear:         dec("5"),
	})
	require.NoError(t, err)
	require.True(t, created.IsActive)
	require.NotEmpty(t, created.ID)
}

func TestCatalogUpdateRenameCollision(t *testing.T) {
	catalog, store := newTestCatalog()
	store.addType(LeaveType{Name: "Study Leave", IsActive: true})
	target := store.addType(LeaveType{Name: "Garden Leave", IsActive: true})

	name := "STUDY LEAVE"
	_, err := catalog.Update(context.Background(), target.ID, TypePatch{Name: &name})
	require.ErrorIs(t, err, ErrDuplicateName)

	// Renaming to a different casing of its own name is not a collision.
	own := "garden leave"
	updated, err := catalog.Update(context.Background(), target.ID, TypePatch{Name: &own})
	require.NoError(t, err)
	require.Equal(t, "Garden Leave", updated.Name)
}

func TestCatalogUpdatePatchesOnlyProvidedFields(t *testing.T) {
	catalog, store := newTestCatalog()
	created := store.addType(LeaveType{
		Name:                   "Study Leave",
		Description:            "For exams",
		DefaultAnnualAllowance: dec("5"),
		IsActive:               true,
	})

	allowance := dec("8")
	updated, err := catalog.Update(context.Background(), created.ID, TypePatch{
		DefaultAnnualAllowance: &allowance,
	})
	require.NoError(t, err)
	require.True(t, updated.DefaultAnnualAllowance.Equal(dec("8")))
	require.Equal(t, "Study Leave", updated.Name)
	require.Equal(t, "For exams", updated.Description)
}

func TestCatalogDeleteProtectsSystemTypes(t *testing.T) {
	catalog, store := newTestCatalog()
	paid := store.addType(LeaveType{Name: TypePaidLeave, IsActive: true})
	custom := store.addType(LeaveType{Name: "Study Leave", IsActive: true})

	err := catalog.Delete(context.Background(), paid.ID)
	require.ErrorIs(t, err, ErrProtectedType)

	require.NoError(t, catalog.Delete(context.Background(), custom.ID))
	_, err = store.GetType(context.Background(), custom.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogToggleActive(t *testing.T) {
	catalog, store := newTestCatalog()
	paid := store.addType(LeaveType{Name: TypePaidLeave, IsActive: true})

	toggled, err := catalog.ToggleActive(context.Background(), paid.ID)
	require.NoError(t, err)
	require.False(t, toggled.IsActive, "system types can be deactivated even though they cannot be deleted")

	toggled, err = catalog.ToggleActive(context.Background(), paid.ID)
	require.NoError(t, err)
	require.True(t, toggled.IsActive)
}

func TestCatalogIsNameAvailable(t *testing.T) {
	catalog, store := newTestCatalog()
	existing := store.addType(LeaveType{Name: "Study Leave", IsActive: true})

	available, err := catalog.IsNameAvailable(context.Background(), "Study leave", "")
	require.NoError(t, err)
	require.False(t, available)

	available, err = catalog.IsNameAvailable(context.Background(), "Study leave", existing.ID)
	require.NoError(t, err)
	require.True(t, available, "a type never collides with itself")
}
