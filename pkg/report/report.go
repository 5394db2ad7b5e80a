package report

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/nfvri/ris-simulator/pkg/simulation"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	RatesFile  = "rates.png"
	OutageFile = "outage.png"

	width  = 8 * vg.Inch
	height = 5 * vg.Inch
)

func curve(x, y []float64) plotter.XYs {
	xys := make(plotter.XYs, len(x))
	for i := range x {
		xys[i].X = x[i]
		xys[i].Y = y[i]
	}
	return xys
}

func users(m map[string][]float64) []string {
	names := make([]string, 0, len(m))
	for u := range m {
		names = append(names, u)
	}
	sort.Strings(names)
	return names
}

func addCurve(p *plot.Plot, idx int, name string, xys plotter.XYs) error {
	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return err
	}
	line.Color = plotutil.Color(idx)
	points.Color = plotutil.Color(idx)
	points.Shape = plotutil.Shape(idx)
	p.Add(line, points)
	p.Legend.Add(name, line, points)
	return nil
}

// addDashed draws a companion curve in the colour of curve idx
func addDashed(p *plot.Plot, idx int, name string, xys plotter.XYs) error {
	line, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	line.Color = plotutil.Color(idx)
	line.Dashes = plotutil.Dashes(1)
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}

func check(res *simulation.Results) error {
	if res == nil || len(res.TxPower) == 0 {
		return errors.NewInvalid("no results to plot")
	}
	return nil
}

func save(p *plot.Plot, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", err
	}
	filename := filepath.Join(dir, name)
	if err := p.Save(width, height, filename); err != nil {
		return "", err
	}
	log.Infof("Plot saved to %s", filename)
	return filename, nil
}

// SaveRateCurves draws the per user and sum rates against transmit power
// into dir and returns the file written.
func SaveRateCurves(res *simulation.Results, dir string) (string, error) {
	if err := check(res); err != nil {
		return "", err
	}
	p := plot.New()
	p.Title.Text = "Achievable rate"
	p.X.Label.Text = "Transmit power (dBm)"
	p.Y.Label.Text = "Rate (bit/s/Hz)"
	p.Add(plotter.NewGrid())

	names := users(res.Rates)
	for i, u := range names {
		if err := addCurve(p, i, u, curve(res.TxPower, res.Rates[u])); err != nil {
			return "", err
		}
	}
	if err := addCurve(p, len(names), "Sum", curve(res.TxPower, res.SumRate)); err != nil {
		return "", err
	}
	p.Legend.Top = true
	p.Legend.Left = true
	return save(p, dir, RatesFile)
}

// SaveOutageCurves draws the per user outage probability, with the Gaussian
// fit of each user dashed when the results carry one.
func SaveOutageCurves(res *simulation.Results, dir string) (string, error) {
	if err := check(res); err != nil {
		return "", err
	}
	p := plot.New()
	p.Title.Text = "Outage probability"
	p.X.Label.Text = "Transmit power (dBm)"
	p.Y.Label.Text = "Outage"
	p.Y.Min = 0
	p.Y.Max = 1
	p.Add(plotter.NewGrid())

	for i, u := range users(res.Outage) {
		if err := addCurve(p, i, u, curve(res.TxPower, res.Outage[u])); err != nil {
			return "", err
		}
		analytical, ok := res.AnalyticalOutage[u]
		if !ok || len(analytical) != len(res.TxPower) {
			continue
		}
		if err := addDashed(p, i, u+" (fit)", curve(res.TxPower, analytical)); err != nil {
			return "", err
		}
	}
	return save(p, dir, OutageFile)
}
