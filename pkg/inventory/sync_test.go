package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/driftwatch/driftwatch/pkg/logger"
	"github.com/driftwatch/driftwatch/pkg/models"
)

var errRemoteDown = errors.New("remote down")

type fakeIntegration struct {
	cfg     *models.SourceConfig
	devices map[string]models.Device
	err     error
}

func (f *fakeIntegration) FetchDevices(_ context.Context) (map[string]models.Device, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.devices, nil
}

func newTestSyncer(t *testing.T, integ *fakeIntegration) (*Syncer, *FileStore) {
	t.Helper()

	store := newTestStore(t)

	sources := map[string]*models.SourceConfig{
		"netbox": {
			Type:        "netbox",
			Endpoint:    "http://netbox.local",
			Credentials: map[string]string{"api_token": "configured-token"},
		},
	}

	registry := map[string]IntegrationFactory{
		"netbox": func(cfg *models.SourceConfig, _ logger.Logger) Integration {
			integ.cfg = cfg
			return integ
		},
	}

	return NewSyncer(store, sources, registry, logger.NewTestLogger()), store
}

func TestSyncReplacesInventory(t *testing.T) {
	integ := &fakeIntegration{devices: map[string]models.Device{
		"edge-01": {Name: "edge-01", Hostname: "10.2.0.1"},
		"edge-02": {Name: "edge-02", Hostname: "10.2.0.2"},
		"edge-03": {Name: "edge-03", Hostname: "10.2.0.3"},
	}}

	syncer, store := newTestSyncer(t, integ)

	count, err := syncer.Sync(context.Background(), "netbox")
	require.NoError(t, err)
	require.Equal(t, 3, count)

	inv, err := store.Load()
	require.NoError(t, err)

	// Last sync wins: the seeded devices are gone.
	require.Len(t, inv.Devices, 3)
	require.NotContains(t, inv.Devices, "rtr-01")
	require.Contains(t, inv.Devices, "edge-01")
}

func TestSyncUnknownSource(t *testing.T) {
	syncer, _ := newTestSyncer(t, &fakeIntegration{})

	_, err := syncer.Sync(context.Background(), "solarwinds")
	require.ErrorIs(t, err, ErrUnknownSource)
}

func TestSyncRemoteFailureLeavesInventoryUntouched(t *testing.T) {
	integ := &fakeIntegration{err: errRemoteDown}

	syncer, store := newTestSyncer(t, integ)

	_, err := syncer.Sync(context.Background(), "netbox")
	require.ErrorIs(t, err, ErrSyncFailed)
	require.ErrorIs(t, err, errRemoteDown)

	inv, err := store.Load()
	require.NoError(t, err)
	require.Contains(t, inv.Devices, "rtr-01")
	require.Contains(t, inv.Devices, "sw-01")
}

func TestSyncWithTokenOverridesCredentialsForOneCall(t *testing.T) {
	integ := &fakeIntegration{devices: map[string]models.Device{}}

	syncer, _ := newTestSyncer(t, integ)

	_, err := syncer.SyncWithToken(context.Background(), "netbox", "one-off-token")
	require.NoError(t, err)
	require.Equal(t, "one-off-token", integ.cfg.Credentials["api_token"])

	// The stored source config keeps the configured token.
	_, err = syncer.Sync(context.Background(), "netbox")
	require.NoError(t, err)
	require.Equal(t, "configured-token", integ.cfg.Credentials["api_token"])
}
