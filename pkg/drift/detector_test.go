package drift

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/driftwatch/driftwatch/pkg/baseline"
	"github.com/driftwatch/driftwatch/pkg/gateway"
	"github.com/driftwatch/driftwatch/pkg/logger"
	"github.com/driftwatch/driftwatch/pkg/models"
)

var errConnectionRefused = errors.New("dial tcp 192.168.1.1:22: connection refused")

func newTestDetector(t *testing.T) (*Detector, *gateway.MockGateway, *baseline.Store) {
	t.Helper()

	ctrl := gomock.NewController(t)

	baselines, err := baseline.NewStore(t.TempDir(), logger.NewTestLogger())
	require.NoError(t, err)

	gw := gateway.NewMockGateway(ctrl)

	return NewDetector(gw, baselines, logger.NewTestLogger()), gw, baselines
}

func expectFetch(gw *gateway.MockGateway, configType models.ConfigType, text string) {
	gw.EXPECT().
		Fetch(gomock.Any(), gomock.Any(), []models.ConfigType{configType}).
		Return(map[models.ConfigType]string{configType: text}, nil)
}

func TestCompareIdenticalConfigs(t *testing.T) {
	detector, gw, baselines := newTestDetector(t)
	device := &models.Device{Name: "rtr-01", Hostname: "192.168.1.1"}

	text := "hostname rtr-01\ninterface Gi0/0\n ip address 10.0.0.1 255.255.255.0"

	require.NoError(t, baselines.Save("rtr-01", models.ConfigTypeRunning, text, "manual"))
	expectFetch(gw, models.ConfigTypeRunning, text)

	result := detector.Compare(context.Background(), device, models.ConfigTypeRunning)

	require.Equal(t, models.StatusSuccess, result.Status)
	require.False(t, result.DriftDetected)
	require.Empty(t, result.Issues)
	require.Empty(t, result.MissingLines)
	require.Empty(t, result.ExtraLines)
}

func TestCompareDetectsMissingAndExtraLines(t *testing.T) {
	detector, gw, baselines := newTestDetector(t)
	device := &models.Device{Name: "rtr-01", Hostname: "192.168.1.1"}

	sot := "line1\nline2\nline3"
	live := "line1\nline3\nline4"

	require.NoError(t, baselines.Save("rtr-01", models.ConfigTypeRunning, sot, "manual"))
	expectFetch(gw, models.ConfigTypeRunning, live)

	result := detector.Compare(context.Background(), device, models.ConfigTypeRunning)

	require.Equal(t, models.StatusSuccess, result.Status)
	require.True(t, result.DriftDetected)
	require.Equal(t, []string{"line2"}, result.MissingLines)
	require.Equal(t, []string{"line4"}, result.ExtraLines)
	require.Equal(t, []string{
		"Missing 1 lines from source of truth",
		"Extra 1 lines not in source of truth",
	}, result.Issues)
}

func TestCompareIgnoresLineOrder(t *testing.T) {
	detector, gw, baselines := newTestDetector(t)
	device := &models.Device{Name: "rtr-01", Hostname: "192.168.1.1"}

	require.NoError(t, baselines.Save("rtr-01", models.ConfigTypeRunning, "line1\nline2\nline3", "manual"))
	expectFetch(gw, models.ConfigTypeRunning, "line3\nline1\nline2")

	result := detector.Compare(context.Background(), device, models.ConfigTypeRunning)

	require.Equal(t, models.StatusSuccess, result.Status)
	require.False(t, result.DriftDetected)
}

func TestCompareIgnoresDuplicateLines(t *testing.T) {
	detector, gw, baselines := newTestDetector(t)
	device := &models.Device{Name: "rtr-01", Hostname: "192.168.1.1"}

	require.NoError(t, baselines.Save("rtr-01", models.ConfigTypeRunning, "line1\nline2", "manual"))
	expectFetch(gw, models.ConfigTypeRunning, "line1\nline1\nline2\nline2\nline2")

	result := detector.Compare(context.Background(), device, models.ConfigTypeRunning)

	require.False(t, result.DriftDetected)
	require.Empty(t, result.Issues)
}

func TestComparePreservesLineIndentation(t *testing.T) {
	detector, gw, baselines := newTestDetector(t)
	device := &models.Device{Name: "rtr-01", Hostname: "192.168.1.1"}

	// Leading whitespace on an individual line is significant; only the
	// surrounding whitespace of the whole text is trimmed.
	require.NoError(t, baselines.Save("rtr-01", models.ConfigTypeRunning, "interface Gi0/0\n ip address 10.0.0.1", "manual"))
	expectFetch(gw, models.ConfigTypeRunning, "\n\ninterface Gi0/0\nip address 10.0.0.1\n\n")

	result := detector.Compare(context.Background(), device, models.ConfigTypeRunning)

	require.True(t, result.DriftDetected)
	require.Equal(t, []string{" ip address 10.0.0.1"}, result.MissingLines)
	require.Equal(t, []string{"ip address 10.0.0.1"}, result.ExtraLines)
}

func TestCompareMissingBaseline(t *testing.T) {
	detector, gw, _ := newTestDetector(t)
	device := &models.Device{Name: "rtr-01", Hostname: "192.168.1.1"}

	expectFetch(gw, models.ConfigTypeRunning, "hostname rtr-01")

	result := detector.Compare(context.Background(), device, models.ConfigTypeRunning)

	require.Equal(t, models.StatusError, result.Status)
	require.False(t, result.DriftDetected)
	require.Equal(t, "no source of truth configuration found", result.Message)
	require.Equal(t, []string{"no source of truth configuration found"}, result.Issues)
}

func TestCompareFetchFailure(t *testing.T) {
	detector, gw, baselines := newTestDetector(t)
	device := &models.Device{Name: "rtr-01", Hostname: "192.168.1.1"}

	require.NoError(t, baselines.Save("rtr-01", models.ConfigTypeRunning, "hostname rtr-01", "manual"))

	gw.EXPECT().
		Fetch(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errConnectionRefused)

	result := detector.Compare(context.Background(), device, models.ConfigTypeRunning)

	require.Equal(t, models.StatusError, result.Status)
	require.False(t, result.DriftDetected)
	require.Equal(t, errConnectionRefused.Error(), result.Message)
	require.Equal(t, []string{errConnectionRefused.Error()}, result.Issues)
}

func TestCompareIsIdempotent(t *testing.T) {
	detector, gw, baselines := newTestDetector(t)
	device := &models.Device{Name: "rtr-01", Hostname: "192.168.1.1"}

	require.NoError(t, baselines.Save("rtr-01", models.ConfigTypeRunning, "line1\nline2", "manual"))

	expectFetch(gw, models.ConfigTypeRunning, "line2\nline5")
	first := detector.Compare(context.Background(), device, models.ConfigTypeRunning)

	expectFetch(gw, models.ConfigTypeRunning, "line2\nline5")
	second := detector.Compare(context.Background(), device, models.ConfigTypeRunning)

	require.Equal(t, first.DriftDetected, second.DriftDetected)
	require.Equal(t, first.MissingLines, second.MissingLines)
	require.Equal(t, first.ExtraLines, second.ExtraLines)
	require.Equal(t, first.Issues, second.Issues)
}

func TestLineSet(t *testing.T) {
	tests := []struct {
		name string
		text string
		want map[string]struct{}
	}{
		{
			name: "plain lines",
			text: "a\nb",
			want: map[string]struct{}{"a": {}, "b": {}},
		},
		{
			name: "surrounding whitespace trimmed",
			text: "\n\na\nb\n\n",
			want: map[string]struct{}{"a": {}, "b": {}},
		},
		{
			name: "empty text yields the empty line",
			text: "",
			want: map[string]struct{}{"": {}},
		},
		{
			name: "interior blank lines survive",
			text: "a\n\nb",
			want: map[string]struct{}{"a": {}, "": {}, "b": {}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, lineSet(tt.text))
		})
	}
}
