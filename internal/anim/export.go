package anim

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/png"
	"log"

	"github.com/neuroviz-data/scalpview/internal/headmap"
)

// ErrEmptySequence is returned when an export is requested for a sequence
// with no frames.
var ErrEmptySequence = errors.New("anim: no frames to export")

// ExportOptions controls one GIF export pass.
type ExportOptions struct {
	// Size is the square raster edge for data-mode frames.
	Size int
	// ColorRange normalises data-mode frames; typically symmetric across
	// the whole sequence so colours stay comparable between frames.
	ColorRange headmap.ColorRange
	// Positions supplies electrode montage for data-mode rendering,
	// aligned with the sequence's ChannelNames.
	Positions []*headmap.Position3D
	// OnProgress, when set, receives values in [0,1] as frames complete.
	OnProgress func(float64)
}

// ExportGIF walks every frame once, renders it (through the scalp field
// chain in data mode, or by decoding the stored PNG in image mode), and
// encodes the sequence into a single animated GIF. This is strictly an
// export: playback state is never touched. The context aborts the walk
// between frames, leaving no partial artifact.
func ExportGIF(ctx context.Context, seq *Sequence, opts ExportOptions) ([]byte, error) {
	if seq == nil || len(seq.Frames) == 0 {
		return nil, ErrEmptySequence
	}
	if opts.Size <= 0 {
		opts.Size = 300
	}

	// Centiseconds, the GIF timebase. Floor at 2 so viewers honour it.
	delay := int(seq.IntervalMs / 10)
	if delay < 2 {
		delay = 2
	}

	out := &gif.GIF{LoopCount: 0}
	pal := exportPalette()

	for i, frame := range seq.Frames {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("export aborted at frame %d/%d: %w", i, len(seq.Frames), err)
		}

		rgba, err := renderExportFrame(seq, frame, opts)
		if err != nil {
			return nil, fmt.Errorf("frame %d/%d: %w", i, len(seq.Frames), err)
		}

		paletted := image.NewPaletted(rgba.Bounds(), pal)
		draw.FloydSteinberg.Draw(paletted, rgba.Bounds(), rgba, image.Point{})
		out.Image = append(out.Image, paletted)
		out.Delay = append(out.Delay, delay)

		if opts.OnProgress != nil {
			opts.OnProgress(float64(i+1) / float64(len(seq.Frames)))
		}
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, out); err != nil {
		return nil, fmt.Errorf("encoding gif: %w", err)
	}
	log.Printf("[anim] exported %d frames, %d bytes", len(seq.Frames), buf.Len())
	return buf.Bytes(), nil
}

func renderExportFrame(seq *Sequence, frame Frame, opts ExportOptions) (*image.RGBA, error) {
	switch seq.Mode {
	case ModeImage:
		img, err := png.Decode(bytes.NewReader(frame.Image))
		if err != nil {
			return nil, fmt.Errorf("decoding stored frame image: %w", err)
		}
		rgba := image.NewRGBA(img.Bounds())
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
		return rgba, nil

	case ModeData:
		if len(frame.Values) != len(seq.ChannelNames) {
			return nil, fmt.Errorf("frame has %d values for %d channels", len(frame.Values), len(seq.ChannelNames))
		}
		samples := make([]headmap.SensorSample, len(frame.Values))
		for ci, v := range frame.Values {
			var pos *headmap.Position3D
			if ci < len(opts.Positions) {
				pos = opts.Positions[ci]
			}
			samples[ci] = headmap.SensorSample{Name: seq.ChannelNames[ci], Pos: pos, Value: v}
		}
		res, err := headmap.Render(samples, opts.ColorRange, headmap.RenderOptions{Size: opts.Size, Zoom: 1})
		if err != nil {
			return nil, err
		}
		return res.Image, nil

	default:
		return nil, fmt.Errorf("unknown sequence mode %q", seq.Mode)
	}
}

// exportPalette covers the diverging ramp plus the neutral overlay tones
// used for contours and sensor marks.
func exportPalette() color.Palette {
	pal := make(color.Palette, 0, 252)
	for i := 0; i < 248; i++ {
		pal = append(pal, headmap.MapColor(float64(i)/247))
	}
	pal = append(pal,
		color.RGBA{A: 255},                         // black
		color.RGBA{R: 255, G: 255, B: 255, A: 255}, // white
		color.RGBA{R: 210, G: 210, B: 210, A: 255}, // placeholder grey
		color.RGBA{R: 30, G: 30, B: 30, A: 255},    // sensor marks
	)
	return pal
}

// SequenceRange computes a symmetric colour range across every data-mode
// frame so exported colours are comparable over time.
func SequenceRange(seq *Sequence) headmap.ColorRange {
	var all []float64
	for _, f := range seq.Frames {
		all = append(all, f.Values...)
	}
	return headmap.RangeFromValues(all, true)
}
