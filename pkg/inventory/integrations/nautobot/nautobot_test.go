package nautobot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/driftwatch/driftwatch/pkg/logger"
	"github.com/driftwatch/driftwatch/pkg/models"
)

const devicesPayload = `{
  "count": 1,
  "results": [
    {
      "id": "1f9030e1-9f4f-4c36-b25b-1a1302f0f0a2",
      "url": "http://nautobot.local/api/dcim/devices/1f9030e1/",
      "name": "dc2-sw-01",
      "display": "dc2-sw-01",
      "serial": "JPE456",
      "asset_tag": "B-7",
      "device_type": {"model": "EX4300", "manufacturer": {"name": "Juniper"}},
      "device_role": {"name": "Switch"},
      "site": {"name": "dc2"},
      "status": {"value": "active"},
      "primary_ip4": {"address": "10.1.0.1/24"}
    }
  ]
}`

func newTestIntegration(endpoint string) *Integration {
	return &Integration{
		Config: &models.SourceConfig{
			Type:        "nautobot",
			Endpoint:    endpoint,
			Credentials: map[string]string{"api_token": "secret-token"},
		},
		Logger: logger.NewTestLogger(),
	}
}

func TestFetchDevices(t *testing.T) {
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(devicesPayload))
	}))
	defer srv.Close()

	integ := newTestIntegration(srv.URL)

	devices, err := integ.FetchDevices(context.Background())
	require.NoError(t, err)

	require.Equal(t, "Token secret-token", gotAuth)
	require.Len(t, devices, 1)

	dev, ok := devices["dc2-sw-01"]
	require.True(t, ok)

	// Nautobot exposes the primary address under primary_ip4 and uses UUID
	// string IDs.
	require.Equal(t, "10.1.0.1", dev.Hostname)
	require.Equal(t, []string{"switch", "juniper"}, dev.Groups)
	require.Equal(t, "juniper", dev.Data.Vendor)
	require.Equal(t, "junos", dev.Data.DeviceType)
	require.Equal(t, "1f9030e1-9f4f-4c36-b25b-1a1302f0f0a2", dev.Data.Extra["nautobot_id"])
}

func TestFetchDevicesUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	integ := newTestIntegration(srv.URL)

	_, err := integ.FetchDevices(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "401")
}
