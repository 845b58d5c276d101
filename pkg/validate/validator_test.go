package validate

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/driftwatch/driftwatch/pkg/baseline"
	"github.com/driftwatch/driftwatch/pkg/drift"
	"github.com/driftwatch/driftwatch/pkg/gateway"
	"github.com/driftwatch/driftwatch/pkg/inventory"
	"github.com/driftwatch/driftwatch/pkg/logger"
	"github.com/driftwatch/driftwatch/pkg/models"
)

type testHarness struct {
	validator *Validator
	gw        *gateway.MockGateway
	baselines *baseline.Store
	invDir    string
	resultDir string
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	ctrl := gomock.NewController(t)
	log := logger.NewTestLogger()

	invDir := t.TempDir()
	resultDir := t.TempDir()

	store, err := inventory.NewFileStore(invDir, log)
	require.NoError(t, err)

	baselines, err := baseline.NewStore(t.TempDir(), log)
	require.NoError(t, err)

	gw := gateway.NewMockGateway(ctrl)
	detector := drift.NewDetector(gw, baselines, log)

	validator, err := NewValidator(store, detector, resultDir, nil, log)
	require.NoError(t, err)

	return &testHarness{
		validator: validator,
		gw:        gw,
		baselines: baselines,
		invDir:    invDir,
		resultDir: resultDir,
	}
}

func (h *testHarness) expectFetch(device string, configType models.ConfigType, text string) {
	h.gw.EXPECT().
		Fetch(gomock.Any(), deviceNamed(device), []models.ConfigType{configType}).
		Return(map[models.ConfigType]string{configType: text}, nil)
}

func deviceNamed(name string) gomock.Matcher {
	return gomock.Cond(func(x any) bool {
		d, ok := x.(*models.Device)
		return ok && d.Name == name
	})
}

func TestRunValidatesSeededInventoryInNameOrder(t *testing.T) {
	h := newTestHarness(t)

	require.NoError(t, h.baselines.Save("rtr-01", models.ConfigTypeRunning, "line1", "manual"))
	require.NoError(t, h.baselines.Save("sw-01", models.ConfigTypeRunning, "line1", "manual"))

	h.expectFetch("rtr-01", models.ConfigTypeRunning, "line1")
	h.expectFetch("sw-01", models.ConfigTypeRunning, "line1\nline2")

	batch, err := h.validator.Run(context.Background(), GroupAll, string(models.ConfigTypeRunning), true)
	require.NoError(t, err)
	require.Len(t, batch.Results, 2)

	require.Equal(t, "rtr-01", batch.Results[0].Device)
	require.False(t, batch.Results[0].DriftDetected)

	require.Equal(t, "sw-01", batch.Results[1].Device)
	require.True(t, batch.Results[1].DriftDetected)
	require.Equal(t, []string{"Extra 1 lines not in source of truth"}, batch.Results[1].Issues)
}

func TestRunExpandsAllConfigTypes(t *testing.T) {
	h := newTestHarness(t)

	for _, device := range []string{"rtr-01", "sw-01"} {
		h.expectFetch(device, models.ConfigTypeRunning, "line1")
		h.expectFetch(device, models.ConfigTypeStartup, "line1")
	}

	batch, err := h.validator.Run(context.Background(), GroupAll, models.ConfigTypeAll, true)
	require.NoError(t, err)
	require.Len(t, batch.Results, 4)

	// "all" expands to running and startup only; candidate must never appear.
	for _, r := range batch.Results {
		require.NotEqual(t, models.ConfigTypeCandidate, r.ConfigType)
	}

	require.Equal(t, models.ConfigTypeRunning, batch.Results[0].ConfigType)
	require.Equal(t, models.ConfigTypeStartup, batch.Results[1].ConfigType)
}

func TestRunFiltersByGroup(t *testing.T) {
	h := newTestHarness(t)

	require.NoError(t, h.baselines.Save("rtr-01", models.ConfigTypeRunning, "line1", "manual"))
	h.expectFetch("rtr-01", models.ConfigTypeRunning, "line1")

	batch, err := h.validator.Run(context.Background(), "routers", string(models.ConfigTypeRunning), true)
	require.NoError(t, err)
	require.Len(t, batch.Results, 1)
	require.Equal(t, "rtr-01", batch.Results[0].Device)
}

func TestRunEmptyGroupYieldsEmptyBatch(t *testing.T) {
	h := newTestHarness(t)

	batch, err := h.validator.Run(context.Background(), "no-such-group", string(models.ConfigTypeRunning), true)
	require.NoError(t, err)
	require.Empty(t, batch.Results)
}

func TestRunIsolatesPerDeviceFailures(t *testing.T) {
	h := newTestHarness(t)

	store, err := inventory.NewFileStore(h.invDir, logger.NewTestLogger())
	require.NoError(t, err)
	require.NoError(t, store.AddDevice("zz-01", "192.168.1.3", []string{"routers"}, "cisco", "ios", nil))

	require.NoError(t, h.baselines.Save("rtr-01", models.ConfigTypeRunning, "line1", "manual"))
	require.NoError(t, h.baselines.Save("zz-01", models.ConfigTypeRunning, "line1", "manual"))

	// The middle device's fetch fails; its neighbors still get results.
	h.expectFetch("rtr-01", models.ConfigTypeRunning, "line1")
	h.gw.EXPECT().
		Fetch(gomock.Any(), deviceNamed("sw-01"), gomock.Any()).
		Return(nil, errors.New("dial tcp 192.168.1.2:22: connection refused"))
	h.expectFetch("zz-01", models.ConfigTypeRunning, "line1\nline2")

	batch, err := h.validator.Run(context.Background(), GroupAll, string(models.ConfigTypeRunning), true)
	require.NoError(t, err)
	require.Len(t, batch.Results, 3)

	require.Equal(t, models.StatusSuccess, batch.Results[0].Status)
	require.False(t, batch.Results[0].DriftDetected)

	require.Equal(t, models.StatusError, batch.Results[1].Status)
	require.Contains(t, batch.Results[1].Message, "connection refused")

	require.Equal(t, models.StatusSuccess, batch.Results[2].Status)
	require.True(t, batch.Results[2].DriftDetected)
}

func TestRunMissingBaselineIsolated(t *testing.T) {
	h := newTestHarness(t)

	require.NoError(t, h.baselines.Save("sw-01", models.ConfigTypeRunning, "line1", "manual"))

	// rtr-01 has no baseline, sw-01 compares clean.
	h.expectFetch("rtr-01", models.ConfigTypeRunning, "line1")
	h.expectFetch("sw-01", models.ConfigTypeRunning, "line1")

	batch, err := h.validator.Run(context.Background(), GroupAll, string(models.ConfigTypeRunning), true)
	require.NoError(t, err)
	require.Len(t, batch.Results, 2)

	require.Equal(t, models.StatusError, batch.Results[0].Status)
	require.Equal(t, "no source of truth configuration found", batch.Results[0].Message)

	require.Equal(t, models.StatusSuccess, batch.Results[1].Status)
	require.False(t, batch.Results[1].DriftDetected)
}

func TestRunSentinelOnInventoryFailure(t *testing.T) {
	h := newTestHarness(t)

	// Corrupt the hosts record so device resolution fails outright.
	hostsPath := filepath.Join(h.invDir, "hosts.yaml")
	require.NoError(t, os.WriteFile(hostsPath, []byte("{not yaml: ["), 0o600))

	batch, err := h.validator.Run(context.Background(), GroupAll, string(models.ConfigTypeRunning), true)
	require.NoError(t, err)
	require.Len(t, batch.Results, 1)

	sentinel := batch.Results[0]
	require.Equal(t, "unknown", sentinel.Device)
	require.Equal(t, models.StatusError, sentinel.Status)
	require.Len(t, sentinel.Issues, 1)
	require.Contains(t, sentinel.Issues[0], "Validation error:")
}

func TestRunPersistsBatch(t *testing.T) {
	h := newTestHarness(t)

	require.NoError(t, h.baselines.Save("rtr-01", models.ConfigTypeRunning, "line1", "manual"))
	h.expectFetch("rtr-01", models.ConfigTypeRunning, "line1")

	batch, err := h.validator.Run(context.Background(), "routers", string(models.ConfigTypeRunning), true)
	require.NoError(t, err)
	require.Regexp(t, `^\d{8}_\d{6}$`, batch.ID)

	path := filepath.Join(h.resultDir, "validation_results_"+batch.ID+".json")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var persisted []models.ValidationResult
	require.NoError(t, json.Unmarshal(data, &persisted))
	require.Len(t, persisted, 1)
	require.Equal(t, "rtr-01", persisted[0].Device)
}

func TestHistoryListsBatchesNewestFirst(t *testing.T) {
	h := newTestHarness(t)

	for _, id := range []string{"20240101_000000", "20240301_000000", "20240201_000000"} {
		path := filepath.Join(h.resultDir, "validation_results_"+id+".json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"device":"rtr-01"}]`), 0o600))
	}

	history, err := h.validator.History()
	require.NoError(t, err)
	require.Len(t, history, 3)

	require.Equal(t, "20240301_000000", history[0].Timestamp)
	require.Equal(t, "20240201_000000", history[1].Timestamp)
	require.Equal(t, "20240101_000000", history[2].Timestamp)
	require.Len(t, history[0].Results, 1)
}

func TestExpandConfigTypes(t *testing.T) {
	require.Equal(t,
		[]models.ConfigType{models.ConfigTypeRunning, models.ConfigTypeStartup},
		expandConfigTypes(models.ConfigTypeAll))
	require.Equal(t,
		[]models.ConfigType{models.ConfigTypeStartup},
		expandConfigTypes(string(models.ConfigTypeStartup)))
	require.Equal(t,
		[]models.ConfigType{models.ConfigTypeCandidate},
		expandConfigTypes(string(models.ConfigTypeCandidate)))
}
