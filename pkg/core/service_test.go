package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/driftwatch/driftwatch/pkg/config"
	"github.com/driftwatch/driftwatch/pkg/gateway"
	"github.com/driftwatch/driftwatch/pkg/inventory"
	"github.com/driftwatch/driftwatch/pkg/logger"
	"github.com/driftwatch/driftwatch/pkg/models"
)

func newTestService(t *testing.T) (*Service, *gateway.MockGateway) {
	t.Helper()

	ctrl := gomock.NewController(t)
	gw := gateway.NewMockGateway(ctrl)

	cfg := &config.Config{
		InventoryDir: t.TempDir(),
		ConfigDir:    t.TempDir(),
		ReportsDir:   t.TempDir(),
	}

	svc, err := NewWithGateway(cfg, gw, nil, logger.NewTestLogger())
	require.NoError(t, err)

	return svc, gw
}

func TestSaveBaselineCapturesLiveConfig(t *testing.T) {
	svc, gw := newTestService(t)

	gw.EXPECT().
		Fetch(gomock.Any(), gomock.Any(), []models.ConfigType{models.ConfigTypeRunning}).
		Return(map[models.ConfigType]string{models.ConfigTypeRunning: "hostname rtr-01"}, nil)

	require.NoError(t, svc.SaveBaseline(context.Background(), "rtr-01", models.ConfigTypeRunning))

	// The saved baseline makes the next comparison clean.
	gw.EXPECT().
		Fetch(gomock.Any(), gomock.Any(), []models.ConfigType{models.ConfigTypeRunning}).
		Return(map[models.ConfigType]string{models.ConfigTypeRunning: "hostname rtr-01"}, nil)

	result, err := svc.CompareOne(context.Background(), "rtr-01", models.ConfigTypeRunning)
	require.NoError(t, err)
	require.Equal(t, models.StatusSuccess, result.Status)
	require.False(t, result.DriftDetected)
}

func TestSaveBaselineRejectsEmptyConfig(t *testing.T) {
	svc, gw := newTestService(t)

	gw.EXPECT().
		Fetch(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(map[models.ConfigType]string{models.ConfigTypeRunning: ""}, nil)

	err := svc.SaveBaseline(context.Background(), "rtr-01", models.ConfigTypeRunning)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no running configuration found")
}

func TestSaveBaselineUnknownDevice(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.SaveBaseline(context.Background(), "ghost", models.ConfigTypeRunning)
	require.ErrorIs(t, err, inventory.ErrDeviceNotFound)
}

func TestCompareOneUnknownDevice(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CompareOne(context.Background(), "ghost", models.ConfigTypeRunning)
	require.ErrorIs(t, err, inventory.ErrDeviceNotFound)
}
