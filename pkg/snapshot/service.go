package snapshot

import (
	"context"
	"sync"
	"time"

	"github.com/enerhub/enerhub/pkg/collector"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Snapshot file suffixes, fixed so downstream tooling can glob for them.
const (
	SuffixEnergyPrice = "energy_price_forecast"
	SuffixWeather     = "weather_forecast"
	SuffixSun         = "sun_forecast"
)

// Group maps a set of collectors onto one snapshot file.
type Group struct {
	Suffix     string
	Collectors []collector.Collector
}

// Service runs every collector of every group concurrently and writes one
// snapshot document per group. A failing collector degrades its group
// instead of aborting the run, mirroring the archiver's best-effort
// batch semantics.
type Service struct {
	log    logrus.FieldLogger
	writer *Writer
	groups []Group
	window time.Duration
}

func NewService(log logrus.FieldLogger, writer *Writer, groups []Group) *Service {
	return &Service{
		log:    log.WithField("component", "fetch"),
		writer: writer,
		groups: groups,
		window: 24 * time.Hour,
	}
}

// DefaultGroups wires the standard collectors for the given location.
func DefaultGroups(latitude, longitude float64) []Group {
	client := collector.DefaultHTTPClient()

	return []Group{
		{
			Suffix:     SuffixEnergyPrice,
			Collectors: []collector.Collector{collector.NewEnergyZero(client)},
		},
		{
			Suffix:     SuffixWeather,
			Collectors: []collector.Collector{collector.NewOpenMeteoWeather(client, latitude, longitude)},
		},
		{
			Suffix:     SuffixSun,
			Collectors: []collector.Collector{collector.NewOpenMeteoSolar(client, latitude, longitude)},
		},
	}
}

// RunOnce collects the next 24 hours of data and writes the snapshot files.
// It returns the paths written. An error is returned only when nothing at
// all could be collected or a write failed.
func (s *Service) RunOnce(ctx context.Context) ([]string, error) {
	start := time.Now().UTC()
	end := start.Add(s.window)

	type collected struct {
		group string
		name  string
		ds    *collector.Dataset
	}

	var (
		mu      sync.Mutex
		results []collected
	)

	g, gctx := errgroup.WithContext(ctx)

	for _, group := range s.groups {
		for _, c := range group.Collectors {
			group, c := group, c

			g.Go(func() error {
				ds, err := c.Collect(gctx, start, end)
				if err != nil {
					// Degrade, don't abort: the other sources still count.
					s.log.WithError(err).WithField("collector", c.Name()).Error("Collector failed")

					return nil
				}

				s.log.WithFields(logrus.Fields{
					"collector": c.Name(),
					"points":    len(ds.Points),
				}).Debug("Collector finished")

				mu.Lock()
				results = append(results, collected{group: group.Suffix, name: c.Name(), ds: ds})
				mu.Unlock()

				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	docs := make(map[string]*Document, len(s.groups))
	for _, r := range results {
		doc, ok := docs[r.group]
		if !ok {
			doc = &Document{
				GeneratedAt: start,
				Datasets:    make(map[string]*collector.Dataset),
			}
			docs[r.group] = doc
		}

		doc.Datasets[r.name] = r.ds
	}

	var written []string

	for _, group := range s.groups {
		doc, ok := docs[group.Suffix]
		if !ok {
			s.log.WithField("snapshot", group.Suffix).Warn("No data collected, skipping snapshot")

			continue
		}

		path, err := s.writer.Write(group.Suffix, doc)
		if err != nil {
			return written, err
		}

		written = append(written, path)
	}

	return written, nil
}
