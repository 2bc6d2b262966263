package daemon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/battcal/battcal/pkg/calibration"
	"github.com/battcal/battcal/pkg/config"
	"github.com/battcal/battcal/pkg/version"
)

func TestStatusHandler(t *testing.T) {
	e, src, _, conf := newTestEngine(t, 15)
	e.Bootstrap()
	src.charge = 2250000
	runStatuses(e, src, "Charging", "Discharging")

	router := setupRoutes(e, conf)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var st calibration.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, 4500, st.State.MaxChargeCapacityMah)
	assert.Equal(t, "Discharging", st.State.PreviousStatus)
	assert.Equal(t, calibration.ActionSetLevel, st.LastAction)
	assert.Equal(t, 50, st.LastLevel)
	assert.Equal(t, int64(2), st.Cycles)
	assert.Equal(t, "Good", st.LastReading.Health)
	assert.Equal(t, 4000000, st.LastReading.VoltageUv)
}

func TestConfigHandler(t *testing.T) {
	e, _, _, conf := newTestEngine(t, 20)

	w := httptest.NewRecorder()
	setupRoutes(e, conf).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/config", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var raw config.RawFileConfig
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	require.NotNil(t, raw.DischargeRepeatThreshold)
	assert.Equal(t, 20, *raw.DischargeRepeatThreshold)
	require.NotNil(t, raw.EnableMonitor)
	assert.True(t, *raw.EnableMonitor)
}

func TestVersionHandler(t *testing.T) {
	e, _, _, conf := newTestEngine(t, 15)

	w := httptest.NewRecorder()
	setupRoutes(e, conf).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/version", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var v string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.Equal(t, version.Version, v)
}
