package overlay

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"gioui.org/f32"
	"gioui.org/font"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/mofa-org/mofa-input/internal/i18n"
)

// drawRecording draws the waveform, timer and pulsing dot during recording.
func drawRecording(gtx layout.Context, samples []float32, elapsed time.Duration, cfg Config) {
	drawBackground(gtx, cfg.BGColor)

	layout.UniformInset(unit.Dp(12)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			// Top row: recording indicator + timer
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						return drawRecordingDot(gtx, elapsed, cfg.VolumeColor)
					}),
					layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						th := material.NewTheme()
						th.Palette.Fg = cfg.TextColor
						lbl := material.Label(th, unit.Sp(14), i18n.T("overlay_recording"))
						lbl.Font.Weight = font.Medium
						return lbl.Layout(gtx)
					}),
					layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
						return layout.Dimensions{}
					}),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						return drawTimerBadge(gtx, elapsed, cfg)
					}),
				)
			}),

			layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),

			// Waveform area
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return drawWaveformPanel(gtx, samples, cfg)
			}),
		)
	})
}

// drawStage draws a processing stage: spinner, title and the live
// preview text below.
func drawStage(gtx layout.Context, elapsed time.Duration, cfg Config, title, preview string) {
	drawBackground(gtx, cfg.BGColor)

	layout.UniformInset(unit.Dp(12)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						return drawSpinner(gtx, elapsed, cfg.AccentColor)
					}),
					layout.Rigid(layout.Spacer{Width: unit.Dp(12)}.Layout),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						th := material.NewTheme()
						th.Palette.Fg = cfg.TextColor
						lbl := material.Label(th, unit.Sp(14), title)
						lbl.Font.Weight = font.Medium
						return lbl.Layout(gtx)
					}),
				)
			}),

			layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),

			// Live preview of transcript or streaming tokens
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return drawPreviewPanel(gtx, cfg, preview)
			}),
		)
	})
}

// drawError draws the error state.
func drawError(gtx layout.Context, cfg Config, title, msg string) {
	drawBackground(gtx, cfg.BGColor)

	layout.UniformInset(unit.Dp(12)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				th := material.NewTheme()
				th.Palette.Fg = cfg.ErrorColor
				lbl := material.Label(th, unit.Sp(14), title)
				lbl.Font.Weight = font.Bold
				return lbl.Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(6)}.Layout),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return drawPreviewPanel(gtx, cfg, msg)
			}),
		)
	})
}

// drawBackground draws a rectangle background.
func drawBackground(gtx layout.Context, col color.NRGBA) {
	rect := clip.Rect{Max: gtx.Constraints.Max}
	paint.FillShape(gtx.Ops, col, rect.Op())
}

// drawRecordingDot draws a pulsing recording indicator.
func drawRecordingDot(gtx layout.Context, elapsed time.Duration, col color.NRGBA) layout.Dimensions {
	size := gtx.Dp(unit.Dp(10))

	// Pulsing effect
	pulse := float32(math.Sin(float64(elapsed.Milliseconds())/200.0)*0.3 + 0.7)
	alpha := uint8(float32(col.A) * pulse)
	pulseCol := color.NRGBA{R: col.R, G: col.G, B: col.B, A: alpha}

	circle := clip.Ellipse{
		Min: image.Pt(0, 0),
		Max: image.Pt(size, size),
	}
	paint.FillShape(gtx.Ops, pulseCol, circle.Op(gtx.Ops))

	return layout.Dimensions{Size: image.Pt(size, size)}
}

// drawTimerBadge draws the elapsed time in a badge.
func drawTimerBadge(gtx layout.Context, elapsed time.Duration, cfg Config) layout.Dimensions {
	seconds := int(elapsed.Seconds())
	timeText := fmt.Sprintf("%d:%02d", seconds/60, seconds%60)

	// Record content to measure
	macro := op.Record(gtx.Ops)
	dims := layout.Inset{
		Top: unit.Dp(4), Bottom: unit.Dp(4),
		Left: unit.Dp(10), Right: unit.Dp(10),
	}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		th := material.NewTheme()
		th.Palette.Fg = cfg.TextColor
		lbl := material.Label(th, unit.Sp(13), timeText)
		lbl.Font.Weight = font.Bold
		return lbl.Layout(gtx)
	})
	call := macro.Stop()

	rr := gtx.Dp(unit.Dp(6))
	rect := clip.RRect{
		Rect: image.Rectangle{Max: dims.Size},
		NE:   rr, NW: rr, SE: rr, SW: rr,
	}
	paint.FillShape(gtx.Ops, cfg.PanelColor, rect.Op(gtx.Ops))

	call.Add(gtx.Ops)
	return dims
}

// drawWaveformPanel draws the waveform and volume bar in a panel.
func drawWaveformPanel(gtx layout.Context, samples []float32, cfg Config) layout.Dimensions {
	rr := gtx.Dp(unit.Dp(8))
	rect := clip.RRect{
		Rect: image.Rectangle{Max: image.Pt(gtx.Constraints.Max.X, gtx.Constraints.Max.Y)},
		NE:   rr, NW: rr, SE: rr, SW: rr,
	}
	paint.FillShape(gtx.Ops, cfg.PanelColor, rect.Op(gtx.Ops))

	return layout.UniformInset(unit.Dp(6)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
			// Volume bar
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				gtx.Constraints.Max.X = gtx.Dp(unit.Dp(20))
				gtx.Constraints.Min.X = gtx.Constraints.Max.X
				return drawVolumeBar(gtx, samples, cfg)
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
			// Waveform
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return drawWaveform(gtx, samples, cfg.WaveColor)
			}),
		)
	})
}

// volumeLevel computes a 0-1 volume level from the tail of the buffer.
func volumeLevel(samples []float32) float32 {
	if len(samples) == 0 {
		return 0
	}

	// Use only last 1024 samples for responsiveness
	start := 0
	if len(samples) > 1024 {
		start = len(samples) - 1024
	}
	subset := samples[start:]

	var sum float64
	for _, s := range subset {
		sum += float64(s) * float64(s)
	}

	rms := float32(math.Sqrt(sum / float64(len(subset))))

	// Typical speech is around 0.1-0.3 RMS
	level := rms * 3
	if level > 1 {
		level = 1
	}
	return level
}

// drawVolumeBar renders vertical volume indicator.
func drawVolumeBar(gtx layout.Context, samples []float32, cfg Config) layout.Dimensions {
	level := volumeLevel(samples)
	width := gtx.Constraints.Max.X
	height := gtx.Constraints.Max.Y

	// Background
	rr := gtx.Dp(unit.Dp(4))
	bgRect := clip.RRect{
		Rect: image.Rectangle{Max: image.Pt(width, height)},
		NE:   rr, NW: rr, SE: rr, SW: rr,
	}
	paint.FillShape(gtx.Ops, color.NRGBA{R: 35, G: 35, B: 40, A: 255}, bgRect.Op(gtx.Ops))

	// Active bar (from bottom)
	barHeight := int(level * float32(height))
	if barHeight > 0 {
		barRect := clip.RRect{
			Rect: image.Rectangle{
				Min: image.Pt(2, height-barHeight),
				Max: image.Pt(width-2, height-2),
			},
			NE: rr - 1, NW: rr - 1, SE: rr - 1, SW: rr - 1,
		}
		barColor := cfg.WaveColor
		if level > 0.7 {
			barColor = color.NRGBA{R: 255, G: 80, B: 80, A: 255} // Red for high volume
		} else if level > 0.4 {
			barColor = color.NRGBA{R: 255, G: 180, B: 0, A: 255} // Yellow for medium
		}
		paint.FillShape(gtx.Ops, barColor, barRect.Op(gtx.Ops))
	}

	return layout.Dimensions{Size: image.Pt(width, height)}
}

// drawWaveform renders oscilloscope-style waveform.
func drawWaveform(gtx layout.Context, samples []float32, col color.NRGBA) layout.Dimensions {
	width := float32(gtx.Constraints.Max.X)
	height := float32(gtx.Constraints.Max.Y)
	centerY := height / 2

	// Center line (dim)
	centerLine := clip.Rect{
		Min: image.Pt(0, int(centerY)),
		Max: image.Pt(int(width), int(centerY)+1),
	}
	paint.FillShape(gtx.Ops, color.NRGBA{R: 60, G: 60, B: 65, A: 255}, centerLine.Op())

	if len(samples) < 2 {
		return layout.Dimensions{Size: image.Pt(int(width), int(height))}
	}

	// Use only last N samples that fit the width
	displaySamples := samples
	maxSamples := int(width)
	if len(samples) > maxSamples {
		displaySamples = samples[len(samples)-maxSamples:]
	}

	var path clip.Path
	path.Begin(gtx.Ops)

	step := width / float32(len(displaySamples))
	for i, sample := range displaySamples {
		x := float32(i) * step
		y := centerY - (sample * centerY * 0.85)

		if i == 0 {
			path.MoveTo(f32.Pt(x, y))
		} else {
			path.LineTo(f32.Pt(x, y))
		}
	}

	paint.FillShape(gtx.Ops, col, clip.Stroke{
		Path:  path.End(),
		Width: 2,
	}.Op())

	return layout.Dimensions{Size: image.Pt(int(width), int(height))}
}

// drawSpinner draws a circular dotted spinner.
func drawSpinner(gtx layout.Context, elapsed time.Duration, col color.NRGBA) layout.Dimensions {
	size := gtx.Dp(unit.Dp(24))
	thickness := gtx.Dp(unit.Dp(3))

	rotation := float64(elapsed.Milliseconds()) / 800.0 * 2 * math.Pi

	center := image.Pt(size/2, size/2)
	radius := size/2 - thickness

	numDots := 12
	for i := 0; i < numDots; i++ {
		angle := rotation + float64(i)*2*math.Pi/float64(numDots)
		x := center.X + int(float64(radius)*math.Cos(angle))
		y := center.Y + int(float64(radius)*math.Sin(angle))

		// Fade based on position
		alpha := uint8(255 - i*20)
		if alpha < 40 {
			alpha = 40
		}
		dotColor := color.NRGBA{R: col.R, G: col.G, B: col.B, A: alpha}

		dotRadius := thickness / 2
		dot := clip.Ellipse{
			Min: image.Pt(x-dotRadius, y-dotRadius),
			Max: image.Pt(x+dotRadius, y+dotRadius),
		}
		paint.FillShape(gtx.Ops, dotColor, dot.Op(gtx.Ops))
	}

	return layout.Dimensions{Size: image.Pt(size, size)}
}

// drawPreviewPanel draws the live text preview in a panel. The text
// is trimmed from the front so the newest part stays visible.
func drawPreviewPanel(gtx layout.Context, cfg Config, text string) layout.Dimensions {
	rr := gtx.Dp(unit.Dp(8))
	rect := clip.RRect{
		Rect: image.Rectangle{Max: image.Pt(gtx.Constraints.Max.X, gtx.Constraints.Max.Y)},
		NE:   rr, NW: rr, SE: rr, SW: rr,
	}
	paint.FillShape(gtx.Ops, cfg.PanelColor, rect.Op(gtx.Ops))

	const maxPreview = 160
	if runes := []rune(text); len(runes) > maxPreview {
		text = "..." + string(runes[len(runes)-maxPreview:])
	}

	return layout.UniformInset(unit.Dp(8)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		th := material.NewTheme()
		th.Palette.Fg = cfg.TextDimColor
		lbl := material.Label(th, unit.Sp(12), text)
		return lbl.Layout(gtx)
	})
}
