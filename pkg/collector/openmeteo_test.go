package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMeteoWeather_Collect(t *testing.T) {
	var gotQuery string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"hourly": {
				"time": ["2025-10-25T00:00", "2025-10-25T01:00"],
				"temperature_2m": [12.5, 11.9],
				"cloud_cover": [80, 75],
				"wind_speed_10m": [14.2, 13.8]
			}
		}`))
	}))
	defer server.Close()

	c := NewOpenMeteoWeather(server.Client(), 52.37, 4.89)
	c.baseURL = server.URL

	start := time.Date(2025, 10, 25, 0, 0, 0, 0, time.UTC)

	ds, err := c.Collect(context.Background(), start, start.Add(24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, "weather_forecast", ds.DataType)
	require.Len(t, ds.Points, 2)

	assert.Equal(t, time.Date(2025, 10, 25, 0, 0, 0, 0, time.UTC), ds.Points[0].Time)
	assert.Equal(t, 12.5, ds.Points[0].Values["temperature_2m"])
	assert.Equal(t, 75.0, ds.Points[1].Values["cloud_cover"])

	assert.Contains(t, gotQuery, "latitude=52.37")
	assert.Contains(t, gotQuery, "longitude=4.89")
	assert.Contains(t, gotQuery, "timezone=UTC")
}

func TestOpenMeteoSolar_Collect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("hourly"), "shortwave_radiation")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"hourly": {
				"time": ["2025-10-25T12:00"],
				"shortwave_radiation": [450.5],
				"direct_radiation": [320.0],
				"diffuse_radiation": [130.5]
			}
		}`))
	}))
	defer server.Close()

	c := NewOpenMeteoSolar(server.Client(), 52.37, 4.89)
	c.baseURL = server.URL

	start := time.Date(2025, 10, 25, 0, 0, 0, 0, time.UTC)

	ds, err := c.Collect(context.Background(), start, start.Add(24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, "sun_forecast", ds.DataType)
	require.Len(t, ds.Points, 1)
	assert.Equal(t, 450.5, ds.Points[0].Values["shortwave_radiation"])
	assert.Equal(t, 130.5, ds.Points[0].Values["diffuse_radiation"])
}

func TestOpenMeteo_MalformedTimestamp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hourly": {"time": ["yesterday"], "temperature_2m": [1.0]}}`))
	}))
	defer server.Close()

	c := NewOpenMeteoWeather(server.Client(), 52.37, 4.89)
	c.baseURL = server.URL

	_, err := c.Collect(context.Background(), time.Now(), time.Now().Add(time.Hour))
	assert.ErrorContains(t, err, "parsing Open-Meteo timestamp")
}
