package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

const openMeteoBaseURL = "https://api.open-meteo.com/v1/forecast"

// openMeteo is the shared transport for the Open-Meteo collectors: the same
// forecast endpoint serves both weather and solar radiation variables.
type openMeteo struct {
	client    *http.Client
	baseURL   string
	latitude  float64
	longitude float64
	backoff   backoffConfig
	breaker   *gobreaker.CircuitBreaker
}

// fetchHourly queries the forecast endpoint for the given hourly variables
// and zips the response's time axis with each variable series.
func (o *openMeteo) fetchHourly(ctx context.Context, start, end time.Time, variables []string) ([]Point, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(o.latitude, 'f', -1, 64))
		values.Set("longitude", strconv.FormatFloat(o.longitude, 'f', -1, 64))
		values.Set("hourly", strings.Join(variables, ","))
		values.Set("start_date", start.UTC().Format("2006-01-02"))
		values.Set("end_date", end.UTC().Format("2006-01-02"))
		values.Set("timezone", "UTC")

		return http.NewRequest(http.MethodGet, o.baseURL+"?"+values.Encode(), nil)
	}

	resp, err := doWithResilience(ctx, o.client, o.backoff, o.breaker, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("fetching Open-Meteo forecast: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var payload struct {
		Hourly map[string]json.RawMessage `json:"hourly"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding Open-Meteo response: %w", err)
	}

	var times []string
	if raw, ok := payload.Hourly["time"]; ok {
		if err := json.Unmarshal(raw, &times); err != nil {
			return nil, fmt.Errorf("decoding Open-Meteo time axis: %w", err)
		}
	}

	series := make(map[string][]float64, len(variables))

	for _, name := range variables {
		raw, ok := payload.Hourly[name]
		if !ok {
			continue
		}

		var vals []float64
		if err := json.Unmarshal(raw, &vals); err != nil {
			return nil, fmt.Errorf("decoding Open-Meteo series %s: %w", name, err)
		}

		series[name] = vals
	}

	points := make([]Point, 0, len(times))

	for i, ts := range times {
		// Open-Meteo emits local-less timestamps like 2025-10-25T16:00.
		t, err := time.Parse("2006-01-02T15:04", ts)
		if err != nil {
			return nil, fmt.Errorf("parsing Open-Meteo timestamp %q: %w", ts, err)
		}

		values := make(map[string]float64, len(series))

		for name, vals := range series {
			if i < len(vals) {
				values[name] = vals[i]
			}
		}

		points = append(points, Point{Time: t.UTC(), Values: values})
	}

	return points, nil
}

// OpenMeteoWeather collects hourly temperature, cloud cover and wind speed
// forecasts.
type OpenMeteoWeather struct {
	openMeteo
}

func NewOpenMeteoWeather(client *http.Client, latitude, longitude float64) *OpenMeteoWeather {
	return &OpenMeteoWeather{openMeteo{
		client:    client,
		baseURL:   openMeteoBaseURL,
		latitude:  latitude,
		longitude: longitude,
		backoff:   defaultBackoff(),
		breaker:   newBreaker("openmeteo-weather"),
	}}
}

func (c *OpenMeteoWeather) Name() string { return "open_meteo_weather" }

func (c *OpenMeteoWeather) Collect(ctx context.Context, start, end time.Time) (*Dataset, error) {
	points, err := c.fetchHourly(ctx, start, end, []string{
		"temperature_2m", "cloud_cover", "wind_speed_10m",
	})
	if err != nil {
		return nil, err
	}

	return &Dataset{
		Source:   "Open-Meteo",
		DataType: "weather_forecast",
		Units: map[string]string{
			"temperature_2m": "°C",
			"cloud_cover":    "%",
			"wind_speed_10m": "km/h",
		},
		Points: points,
	}, nil
}

// OpenMeteoSolar collects hourly solar radiation forecasts used for the sun
// forecast snapshot.
type OpenMeteoSolar struct {
	openMeteo
}

func NewOpenMeteoSolar(client *http.Client, latitude, longitude float64) *OpenMeteoSolar {
	return &OpenMeteoSolar{openMeteo{
		client:    client,
		baseURL:   openMeteoBaseURL,
		latitude:  latitude,
		longitude: longitude,
		backoff:   defaultBackoff(),
		breaker:   newBreaker("openmeteo-solar"),
	}}
}

func (c *OpenMeteoSolar) Name() string { return "open_meteo_solar" }

func (c *OpenMeteoSolar) Collect(ctx context.Context, start, end time.Time) (*Dataset, error) {
	points, err := c.fetchHourly(ctx, start, end, []string{
		"shortwave_radiation", "direct_radiation", "diffuse_radiation",
	})
	if err != nil {
		return nil, err
	}

	return &Dataset{
		Source:   "Open-Meteo",
		DataType: "sun_forecast",
		Units: map[string]string{
			"shortwave_radiation": "W/m²",
			"direct_radiation":    "W/m²",
			"diffuse_radiation":   "W/m²",
		},
		Points: points,
	}, nil
}
