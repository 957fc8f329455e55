package snapshot

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/enerhub/enerhub/pkg/collector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCollector struct {
	name string
	ds   *collector.Dataset
	err  error
}

func (s *stubCollector) Name() string { return s.name }

func (s *stubCollector) Collect(_ context.Context, _, _ time.Time) (*collector.Dataset, error) {
	return s.ds, s.err
}

func priceDataset() *collector.Dataset {
	return &collector.Dataset{
		Source:   "stub",
		DataType: "energy_price",
		Points: []collector.Point{
			{Time: time.Now().UTC(), Values: map[string]float64{"price": 0.2}},
		},
	}
}

func TestService_WritesOneFilePerGroup(t *testing.T) {
	w := NewWriter(testLogger(), t.TempDir())

	svc := NewService(testLogger(), w, []Group{
		{Suffix: SuffixEnergyPrice, Collectors: []collector.Collector{
			&stubCollector{name: "a", ds: priceDataset()},
		}},
		{Suffix: SuffixWeather, Collectors: []collector.Collector{
			&stubCollector{name: "b", ds: priceDataset()},
		}},
	})

	written, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, written, 2)

	assert.Contains(t, filepath.Base(written[0]), SuffixEnergyPrice)
	assert.Contains(t, filepath.Base(written[1]), SuffixWeather)
}

func TestService_FailedCollectorDegradesGroup(t *testing.T) {
	w := NewWriter(testLogger(), t.TempDir())

	svc := NewService(testLogger(), w, []Group{
		{Suffix: SuffixEnergyPrice, Collectors: []collector.Collector{
			&stubCollector{name: "ok", ds: priceDataset()},
			&stubCollector{name: "broken", err: errors.New("api down")},
		}},
	})

	written, err := svc.RunOnce(context.Background())
	require.NoError(t, err, "one failing collector must not abort the run")
	require.Len(t, written, 1)
}

func TestService_EmptyGroupSkipped(t *testing.T) {
	w := NewWriter(testLogger(), t.TempDir())

	svc := NewService(testLogger(), w, []Group{
		{Suffix: SuffixSun, Collectors: []collector.Collector{
			&stubCollector{name: "broken", err: errors.New("api down")},
		}},
	})

	written, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, written, "a group with no data produces no file")
}
