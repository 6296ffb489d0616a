package main

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/plus3/voxelvolution/render"
)

// quadDrawer draws every quad of a batch as a square at its projected centre, sized by depth.
type quadDrawer struct {
	screen *ebiten.Image
	quads  int
}

func (d *quadDrawer) Draw(frame render.Frame) {
	d.quads = 0
	if d.screen == nil {
		return
	}
	viewProjection := frame.Projection.Mul4(frame.View)
	width, height := float32(frame.Width), float32(frame.Height)

	for _, batch := range frame.Batches {
		vertices := batch.Buffer.Vertices
		for _, model := range batch.Models {
			mvp := viewProjection.Mul4(model)
			for i := 0; i+4 <= len(vertices); i += 4 {
				quad := vertices[i : i+4]
				center := quad[0].Position.Add(quad[1].Position).Add(quad[2].Position).Add(quad[3].Position).Mul(0.25)

				clip := mvp.Mul4x1(center.Vec4(1))
				if clip.W() <= nearClip {
					continue
				}
				ndc := clip.Vec3().Mul(1 / clip.W())
				if ndc.X() < -1 || ndc.X() > 1 || ndc.Y() < -1 || ndc.Y() > 1 {
					continue
				}
				sx := (ndc.X() + 1) / 2 * width
				sy := (1 - ndc.Y()) / 2 * height
				size := quadSize / clip.W()

				c := quadColor(quad[0])
				if batch.Material.FillMode() == render.Line {
					vector.StrokeRect(d.screen, sx-size/2, sy-size/2, size, size, 1, c, false)
				} else {
					vector.DrawFilledRect(d.screen, sx-size/2, sy-size/2, size, size, c, false)
				}
				d.quads++
			}
		}
	}
}

const (
	nearClip = 0.1
	quadSize = 400
)

// quadColor shades a quad from the color packed into its UV, dimmed for faces that point down.
func quadColor(v render.Vertex) color.Color {
	shade := float32(0.8) + 0.2*v.Normal.Dot(mgl32.Vec3{0, 1, 0})
	return color.RGBA{
		R: uint8(255 * v.UV.X() * shade),
		G: uint8(255 * v.UV.Y() * shade),
		B: uint8(255 * 0.6 * shade),
		A: 255,
	}
}
