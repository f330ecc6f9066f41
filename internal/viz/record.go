package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
)

const (
	dotPixels  = 4
	frameDelay = 2 // hundredths of a second
	maxFrames  = 1800
)

// Recorder collects canvas frames into an animated GIF.
type Recorder struct {
	palette color.Palette
	frames  []*image.Paletted
}

func NewRecorder(particle color.Color) *Recorder {
	return &Recorder{
		palette: color.Palette{color.Black, particle},
		frames:  make([]*image.Paletted, 0, 64),
	}
}

func (r *Recorder) Len() int { return len(r.frames) }

// Capture rasterises every lit dot as a dotPixels square. Frames past
// maxFrames are ignored.
func (r *Recorder) Capture(c *Canvas) {
	if len(r.frames) >= maxFrames {
		return
	}
	w, h := c.DotsWide(), c.DotsHigh()
	img := image.NewPaletted(image.Rect(0, 0, w*dotPixels, h*dotPixels), r.palette)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !c.IsSet(x, y) {
				continue
			}
			for py := 0; py < dotPixels; py++ {
				for px := 0; px < dotPixels; px++ {
					img.SetColorIndex(x*dotPixels+px, y*dotPixels+py, 1)
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

func (r *Recorder) Save(path string) error {
	if len(r.frames) == 0 {
		return fmt.Errorf("no frames recorded")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, frameDelay)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}

// hexColor parses "#rrggbb"; anything else is white.
func hexColor(hex string) color.RGBA {
	c := color.RGBA{255, 255, 255, 255}
	if len(hex) != 7 || hex[0] != '#' {
		return c
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return c
	}
	return color.RGBA{r, g, b, 255}
}
