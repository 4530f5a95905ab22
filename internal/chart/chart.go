package chart

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"cryptiq/internal/dto"
	"cryptiq/internal/model"

	"github.com/samber/lo"
	gochart "github.com/wcharczuk/go-chart/v2"
)

const (
	width  = 800
	height = 600
)

var (
	ErrNoData         = errors.New("nothing to plot")
	ErrNotEnoughData  = errors.New("at least two points are needed")
	ErrZeroTimeWindow = errors.New("all points share one timestamp")
)

// Allocation renders the portfolio split by value as a PNG pie chart. Lines
// without value are left out.
func Allocation(lines []dto.PortfolioLine) ([]byte, error) {
	values := lo.FilterMap(lines, func(l dto.PortfolioLine, _ int) (gochart.Value, bool) {
		return gochart.Value{Label: strings.ToUpper(l.Symbol), Value: l.Value}, l.Value > 0
	})
	if len(values) == 0 {
		return nil, ErrNoData
	}

	pie := gochart.PieChart{
		Title:  "Portfolio Allocation",
		Width:  width,
		Height: height,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render allocation chart: %w", err)
	}
	return buf.Bytes(), nil
}

// History renders recorded portfolio values as a PNG line chart with dates
// shown in loc.
func History(points []model.PortfolioPoint, loc *time.Location) ([]byte, error) {
	if len(points) < 2 {
		return nil, ErrNotEnoughData
	}
	if loc == nil {
		loc = time.UTC
	}

	series := gochart.TimeSeries{
		Name:    "Value",
		XValues: make([]time.Time, 0, len(points)),
		YValues: make([]float64, 0, len(points)),
	}
	for _, p := range points {
		series.XValues = append(series.XValues, p.Timestamp.In(loc))
		series.YValues = append(series.YValues, p.Value)
	}
	if lo.EveryBy(series.XValues, func(t time.Time) bool { return t.Equal(series.XValues[0]) }) {
		return nil, ErrZeroTimeWindow
	}

	graph := gochart.Chart{
		Title:  "Portfolio Value Over Time",
		Width:  width,
		Height: height,
		XAxis: gochart.XAxis{
			Name:           fmt.Sprintf("Date (%s)", loc.String()),
			ValueFormatter: dateFormatter(loc),
		},
		YAxis: gochart.YAxis{
			Name:  "USD Value",
			Range: flatRange(series.YValues),
		},
		Series: []gochart.Series{series},
	}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render history chart: %w", err)
	}
	return buf.Bytes(), nil
}

func dateFormatter(loc *time.Location) gochart.ValueFormatter {
	return func(v interface{}) string {
		switch t := v.(type) {
		case time.Time:
			return t.In(loc).Format("01-02 15:04")
		case float64:
			return time.Unix(0, int64(t)).In(loc).Format("01-02 15:04")
		}
		return ""
	}
}

// flatRange pads a series of identical values, which go-chart cannot scale.
func flatRange(values []float64) gochart.Range {
	lowest, highest := lo.Min(values), lo.Max(values)
	if lowest != highest {
		return nil
	}
	pad := math.Abs(lowest) * 0.05
	if pad == 0 {
		pad = 1
	}
	return &gochart.ContinuousRange{Min: lowest - pad, Max: highest + pad}
}
