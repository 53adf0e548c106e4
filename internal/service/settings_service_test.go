package service

import (
	"context"
	"testing"

	"backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type settingsServiceFixture struct {
	svc       SettingsService
	repo      *stubSettingsRepo
	auditRepo *stubAuditRepo
}

func newSettingsServiceFixture(defaults SettingsDefaults) *settingsServiceFixture {
	f := &settingsServiceFixture{
		repo:      newStubSettingsRepo(),
		auditRepo: &stubAuditRepo{},
	}
	f.svc = NewSettingsService(f.repo, f.auditRepo, defaults)
	return f
}

func TestGetUpiSettings_FallsBackWhenUnset(t *testing.T) {
	f := newSettingsServiceFixture(SettingsDefaults{UpiID: "fallback@okhdfcbank", BusinessName: "Tailor Shop"})

	got := f.svc.GetUpiSettings(context.Background())
	assert.Equal(t, "fallback@okhdfcbank", got.UpiID)
	assert.Equal(t, "Tailor Shop", got.BusinessName)
}

func TestGetUpiSettings_FallsBackWhenStoreUnreachable(t *testing.T) {
	f := newSettingsServiceFixture(SettingsDefaults{UpiID: "fallback@okhdfcbank", BusinessName: "Tailor Shop"})
	f.repo.getErr = errDatabaseDown

	// a broken settings store must never propagate as an error
	got := f.svc.GetUpiSettings(context.Background())
	assert.Equal(t, "fallback@okhdfcbank", got.UpiID)
}

func TestGetUpiSettings_StoredValueWins(t *testing.T) {
	f := newSettingsServiceFixture(SettingsDefaults{UpiID: "fallback@okhdfcbank", BusinessName: "Tailor Shop"})
	f.repo.values[model.SettingUpiID] = "configured@okicici"
	f.repo.values[model.SettingBusinessName] = "Sharma Tailors"

	got := f.svc.GetUpiSettings(context.Background())
	assert.Equal(t, "configured@okicici", got.UpiID)
	assert.Equal(t, "Sharma Tailors", got.BusinessName)
}

func TestGetUpiSettings_EmptyStoredValueFallsBack(t *testing.T) {
	f := newSettingsServiceFixture(SettingsDefaults{UpiID: "fallback@okhdfcbank"})
	f.repo.values[model.SettingUpiID] = ""

	got := f.svc.GetUpiSettings(context.Background())
	assert.Equal(t, "fallback@okhdfcbank", got.UpiID)
}

func TestUpdateUpiSettings_RoundTrip(t *testing.T) {
	f := newSettingsServiceFixture(SettingsDefaults{UpiID: "fallback@okhdfcbank", BusinessName: "Tailor Shop"})

	updated, err := f.svc.UpdateUpiSettings(context.Background(), UpdateUpiSettingsRequest{
		UpiID:        "new@okaxis",
		BusinessName: "New Name",
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "new@okaxis", updated.UpiID)
	assert.Equal(t, "New Name", updated.BusinessName)

	got := f.svc.GetUpiSettings(context.Background())
	assert.Equal(t, "new@okaxis", got.UpiID)

	if assert.Len(t, f.auditRepo.entries, 1) {
		assert.Equal(t, model.ActionUpdateSettings, f.auditRepo.entries[0].Action)
	}
}

func TestUpdateUpiSettings_BusinessNameOptional(t *testing.T) {
	f := newSettingsServiceFixture(SettingsDefaults{UpiID: "fallback@okhdfcbank", BusinessName: "Tailor Shop"})

	updated, err := f.svc.UpdateUpiSettings(context.Background(), UpdateUpiSettingsRequest{UpiID: "new@okaxis"}, "")
	require.NoError(t, err)
	assert.Equal(t, "new@okaxis", updated.UpiID)
	assert.Equal(t, "Tailor Shop", updated.BusinessName)
}
