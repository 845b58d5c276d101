package inventory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/driftwatch/driftwatch/pkg/logger"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()

	store, err := NewFileStore(t.TempDir(), logger.NewTestLogger())
	require.NoError(t, err)

	return store
}

func TestNewFileStoreSeedsDefaultInventory(t *testing.T) {
	store := newTestStore(t)

	inv, err := store.Load()
	require.NoError(t, err)

	require.Len(t, inv.Devices, 2)
	require.Contains(t, inv.Devices, "rtr-01")
	require.Contains(t, inv.Devices, "sw-01")

	rtr := inv.Devices["rtr-01"]
	require.Equal(t, "rtr-01", rtr.Name)
	require.Equal(t, "192.168.1.1", rtr.Hostname)
	require.Equal(t, []string{"routers", "cisco"}, rtr.Groups)
	require.Equal(t, "cisco", rtr.Data.Vendor)
	require.Equal(t, "ios", rtr.Data.DeviceType)

	require.Contains(t, inv.Groups, "routers")
	require.Contains(t, inv.Groups, "switches")
	require.Contains(t, inv.Groups, "cisco")

	require.Equal(t, "admin", inv.Defaults.Username)
	require.Equal(t, 22, inv.Defaults.Port)
}

func TestNewFileStoreDoesNotOverwriteExistingInventory(t *testing.T) {
	dir := t.TempDir()

	store, err := NewFileStore(dir, logger.NewTestLogger())
	require.NoError(t, err)

	require.NoError(t, store.AddDevice("fw-01", "10.0.0.5", []string{"firewalls"}, "fortinet", "fortios", nil))
	require.NoError(t, store.RemoveDevice("rtr-01"))

	// Reopening the same directory must keep the modified device set.
	store, err = NewFileStore(dir, logger.NewTestLogger())
	require.NoError(t, err)

	inv, err := store.Load()
	require.NoError(t, err)

	require.NotContains(t, inv.Devices, "rtr-01")
	require.Contains(t, inv.Devices, "fw-01")
}

func TestAddDeviceInsertsAndReplaces(t *testing.T) {
	store := newTestStore(t)

	err := store.AddDevice("core-sw", "10.1.1.1", []string{"switches"}, "arista", "eos", map[string]string{"site": "dc1"})
	require.NoError(t, err)

	inv, err := store.Load()
	require.NoError(t, err)

	dev, ok := inv.Devices["core-sw"]
	require.True(t, ok)
	require.Equal(t, "10.1.1.1", dev.Hostname)
	require.Equal(t, "eos", dev.Data.DeviceType)
	require.Equal(t, "dc1", dev.Data.Extra["site"])

	// A second add under the same name replaces the record.
	err = store.AddDevice("core-sw", "10.1.1.2", []string{"switches"}, "arista", "eos", nil)
	require.NoError(t, err)

	inv, err = store.Load()
	require.NoError(t, err)
	require.Equal(t, "10.1.1.2", inv.Devices["core-sw"].Hostname)
}

func TestRemoveDeviceUnknownName(t *testing.T) {
	store := newTestStore(t)

	err := store.RemoveDevice("no-such-device")
	require.ErrorIs(t, err, ErrDeviceNotFound)

	// The registry must be untouched.
	inv, err := store.Load()
	require.NoError(t, err)
	require.Len(t, inv.Devices, 2)
}

func TestGroupNamesAndDevicesByGroup(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.AddDevice("fw-01", "10.0.0.5", []string{"firewalls", "fortinet"}, "fortinet", "fortios", nil))

	groups, err := store.GroupNames()
	require.NoError(t, err)
	require.Equal(t, []string{"cisco", "firewalls", "fortinet", "routers", "switches"}, groups)

	devices, err := store.DevicesByGroup("cisco")
	require.NoError(t, err)
	require.Equal(t, []string{"rtr-01", "sw-01"}, devices)

	devices, err = store.DevicesByGroup("firewalls")
	require.NoError(t, err)
	require.Equal(t, []string{"fw-01"}, devices)

	devices, err = store.DevicesByGroup("empty-group")
	require.NoError(t, err)
	require.Empty(t, devices)
}
