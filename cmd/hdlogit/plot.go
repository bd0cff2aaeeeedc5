package main

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/YuminosukeSato/hdlogit/linear/cga"
	"github.com/YuminosukeSato/hdlogit/pkg/errors"
)

// hdicPoints はステップ番号（1始まり）と HDIC の組
func hdicPoints(res *cga.Result) plotter.XYs {
	pts := make(plotter.XYs, len(res.HDIC))
	for k, v := range res.HDIC {
		pts[k].X = float64(k + 1)
		pts[k].Y = v
	}
	return pts
}

// plotHDIC は CGA パス上の HDIC の推移を描き、選ばれたステップに印を付けて保存する
func plotHDIC(res *cga.Result, filename string) error {
	if len(res.HDIC) == 0 {
		return errors.NewValidationError("plot", "the path is empty", filename)
	}

	p := plot.New()
	p.Title.Text = "HDIC along the CGA path"
	p.X.Label.Text = "Number of selected features"
	p.Y.Label.Text = "HDIC"

	pts := hdicPoints(res)
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return errors.Wrap(err, "hdic line")
	}
	line.Width = vg.Points(1.5)
	p.Add(line, points)
	p.Legend.Add("HDIC", line)

	// 切片のみのモデルが選ばれた場合は印を付けない
	if res.SelectedStep >= 0 {
		marker, err := plotter.NewScatter(plotter.XYs{pts[res.SelectedStep]})
		if err != nil {
			return errors.Wrap(err, "selected step")
		}
		marker.GlyphStyle.Shape = draw.CircleGlyph{}
		marker.GlyphStyle.Radius = vg.Points(5)
		marker.GlyphStyle.Color = color.RGBA{R: 220, A: 255}
		p.Add(marker)
		p.Legend.Add("selected", marker)
	}
	p.Add(plotter.NewGrid())

	if err := p.Save(8*vg.Inch, 5*vg.Inch, filename); err != nil {
		return errors.Wrapf(err, "save %s", filename)
	}
	return nil
}
