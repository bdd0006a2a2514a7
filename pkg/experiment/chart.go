package experiment

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteChart renders an HTML page with the return of every episode and the
// total number of visits to each state.
func WriteChart(w io.Writer, title string, results []EpisodeStats) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: "Episode returns",
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)

	episodes := make([]string, 0, len(results))
	returns := make([]opts.LineData, 0, len(results))
	var visits []int
	for _, r := range results {
		episodes = append(episodes, fmt.Sprintf("%d", r.Episode))
		returns = append(returns, opts.LineData{Value: r.Return})
		if visits == nil {
			visits = make([]int, len(r.Visits))
		}
		for s, v := range r.Visits {
			visits[s] += v
		}
	}
	line.SetXAxis(episodes).AddSeries("return", returns)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "State visits",
		}),
	)
	states := make([]string, len(visits))
	counts := make([]opts.BarData, len(visits))
	for s, v := range visits {
		states[s] = fmt.Sprintf("%d", s)
		counts[s] = opts.BarData{Value: v}
	}
	bar.SetXAxis(states).AddSeries("visits", counts)

	page := components.NewPage()
	page.AddCharts(line, bar)
	return page.Render(w)
}
