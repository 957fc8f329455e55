package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/sony/gobreaker"
)

const energyZeroBaseURL = "https://api.energyzero.nl/v1/energyprices"

// EnergyZero collects Dutch day-ahead electricity prices including VAT.
type EnergyZero struct {
	client  *http.Client
	baseURL string
	backoff backoffConfig
	breaker *gobreaker.CircuitBreaker
}

func NewEnergyZero(client *http.Client) *EnergyZero {
	return &EnergyZero{
		client:  client,
		baseURL: energyZeroBaseURL,
		backoff: defaultBackoff(),
		breaker: newBreaker("energyzero"),
	}
}

func (c *EnergyZero) Name() string { return "energy_zero" }

func (c *EnergyZero) Collect(ctx context.Context, start, end time.Time) (*Dataset, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("fromDate", start.UTC().Format(time.RFC3339))
		values.Set("tillDate", end.UTC().Format(time.RFC3339))
		values.Set("interval", "4") // hourly prices
		values.Set("usageType", "1")
		values.Set("inclBtw", "true")

		return http.NewRequest(http.MethodGet, c.baseURL+"?"+values.Encode(), nil)
	}

	resp, err := doWithResilience(ctx, c.client, c.backoff, c.breaker, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("fetching EnergyZero prices: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var payload struct {
		Prices []struct {
			Price       float64   `json:"price"`
			ReadingDate time.Time `json:"readingDate"`
		} `json:"Prices"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding EnergyZero response: %w", err)
	}

	points := make([]Point, 0, len(payload.Prices))
	for _, p := range payload.Prices {
		points = append(points, Point{
			Time:   p.ReadingDate.UTC(),
			Values: map[string]float64{"price": p.Price},
		})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })

	return &Dataset{
		Source:   "EnergyZero API",
		DataType: "energy_price",
		Units:    map[string]string{"price": "EUR/kWh (incl. VAT)"},
		Points:   points,
	}, nil
}
