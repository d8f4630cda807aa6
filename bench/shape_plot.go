package bench

import (
	"cmp"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"bptree"
)

// PlotShape charts Stats().Depth and Stats().NodeCount against tree size
// for a range of insert counts, saving a PNG to path. It's a standalone
// diagnostic (not run by `go test`) for eyeballing how node fanout
// affects tree shape; see cmd-less usage via `go run` of a small driver,
// or call it directly from an ad-hoc test.
func PlotShape(path string, maxNodeSize int, sizes []int) error {
	depthPts := make(plotter.XYs, len(sizes))
	nodeCountPts := make(plotter.XYs, len(sizes))

	for i, n := range sizes {
		idx, err := bptree.New[int, int](func(a, b int) int { return cmp.Compare(a, b) }, maxNodeSize)
		if err != nil {
			return fmt.Errorf("shape_plot: %w", err)
		}
		for k := 0; k < n; k++ {
			if err := idx.Put(k, k); err != nil {
				return fmt.Errorf("shape_plot: %w", err)
			}
		}
		s := idx.Stats()
		depthPts[i] = plotter.XY{X: float64(n), Y: float64(s.Depth)}
		nodeCountPts[i] = plotter.XY{X: float64(n), Y: float64(s.NodeCount)}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("tree shape vs size (max node size %d)", maxNodeSize)
	p.X.Label.Text = "entries"
	p.Y.Label.Text = "depth / node count"

	depthLine, err := plotter.NewLine(depthPts)
	if err != nil {
		return fmt.Errorf("shape_plot: %w", err)
	}
	depthLine.Color = plotter.DefaultLineStyle.Color

	nodeCountLine, err := plotter.NewLine(nodeCountPts)
	if err != nil {
		return fmt.Errorf("shape_plot: %w", err)
	}

	p.Add(depthLine, nodeCountLine)
	p.Legend.Add("depth", depthLine)
	p.Legend.Add("node count", nodeCountLine)

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
