package simulation

import (
	"context"
	"sync"
	"time"

	"github.com/nfvri/ris-simulator/pkg/fading"
	"github.com/nfvri/ris-simulator/pkg/links"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// Builder assembles a fresh simulator and link collection drawing from the
// given stream. It is called once per run and must not share mutable state
// between calls.
type Builder func(stream *fading.Stream) (*Simulator, *links.Collection, error)

// Batch repeats independent runs in parallel and averages their curves.
// Run i draws from the stream seeded with Seed+i, so the outcome does not
// depend on Workers.
type Batch struct {
	Runs    int
	Workers int
	Seed    uint64
	Metrics *Metrics
}

func (b *Batch) observe(outcome string, start time.Time) {
	if b.Metrics == nil {
		return
	}
	b.Metrics.Runs.WithLabelValues(outcome).Inc()
	b.Metrics.RunDuration.Observe(time.Since(start).Seconds())
}

func (b *Batch) runOne(i int, build Builder, params Params) (*Results, error) {
	start := time.Now()
	sim, lc, err := build(fading.NewStream(b.Seed + uint64(i)))
	if err == nil {
		var res *Results
		res, err = sim.Run(lc, params)
		if err == nil {
			b.observe("success", start)
			return res, nil
		}
	}
	b.observe("failure", start)
	return nil, err
}

// Run executes the batch. The first failing run cancels the remaining ones
// and its error is returned.
func (b *Batch) Run(ctx context.Context, build Builder, params Params) (*Results, error) {
	if b.Runs < 1 {
		return nil, errors.NewInvalid("batch needs at least one run, got %d", b.Runs)
	}
	workers := b.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > b.Runs {
		workers = b.Runs
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]*Results, b.Runs)
	jobs := make(chan int)
	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := b.runOne(i, build, params)
				if err != nil {
					once.Do(func() {
						firstErr = err
						cancel()
					})
					continue
				}
				results[i] = res
			}
		}()
	}

feed:
	for i := 0; i < b.Runs; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCanceled("batch interrupted: %v", err)
	}
	avg, err := Average(results)
	if err != nil {
		return nil, err
	}
	if b.Metrics != nil {
		b.Metrics.PeakSumRate.Set(floats.Max(avg.SumRate))
	}
	log.Infof("batch of %d runs on %d workers done", b.Runs, workers)
	return avg, nil
}

// Average returns the element-wise mean of results sharing the same power
// grid and users.
func Average(results []*Results) (*Results, error) {
	if len(results) == 0 || results[0] == nil {
		return nil, errors.NewInvalid("nothing to average")
	}
	first := results[0]
	users := make([]string, 0, len(first.Rates))
	for u := range first.Rates {
		users = append(users, u)
	}
	avg := newResults(users, first.TxPower)
	for _, r := range results {
		if r == nil || !floats.Equal(r.TxPower, first.TxPower) || len(r.Rates) != len(first.Rates) {
			return nil, errors.NewInvalid("results do not share the same layout")
		}
		floats.Add(avg.SumRate, r.SumRate)
		floats.Add(avg.SpectralEfficiency, r.SpectralEfficiency)
		floats.Add(avg.EnergyEfficiency, r.EnergyEfficiency)
		for _, u := range users {
			rate, ok := r.Rates[u]
			out, ok2 := r.Outage[u]
			analytical, ok3 := r.AnalyticalOutage[u]
			if !ok || !ok2 || !ok3 {
				return nil, errors.NewInvalid("results are missing user %s", u)
			}
			floats.Add(avg.Rates[u], rate)
			floats.Add(avg.Outage[u], out)
			floats.Add(avg.AnalyticalOutage[u], analytical)
		}
	}
	scale := 1 / float64(len(results))
	floats.Scale(scale, avg.SumRate)
	floats.Scale(scale, avg.SpectralEfficiency)
	floats.Scale(scale, avg.EnergyEfficiency)
	for _, u := range users {
		floats.Scale(scale, avg.Rates[u])
		floats.Scale(scale, avg.Outage[u])
		floats.Scale(scale, avg.AnalyticalOutage[u])
	}
	return avg, nil
}
