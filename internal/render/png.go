// Package render produces PNG previews of redacted frames for visual
// spot-checks of the banner boundary.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	dcm "ultrasound-deid/internal/dicom"
)

// FirstFramePNG encodes the first native frame as a PNG. Single-sample
// frames render as grayscale, three-sample frames as RGB.
func FirstFramePNG(ds *dcm.Dataset) ([]byte, error) {
	info, err := ds.PixelInfo()
	if err != nil {
		return nil, err
	}
	if len(info.Frames) == 0 {
		return nil, fmt.Errorf("no frames to render")
	}
	fr := info.Frames[0]
	if fr.Encapsulated || fr.NativeData.Data == nil {
		return nil, fmt.Errorf("first frame is not native")
	}

	rows, cols := ds.Rows(), ds.Cols()
	if rows <= 0 || cols <= 0 || rows*cols > len(fr.NativeData.Data) {
		return nil, fmt.Errorf("frame geometry %dx%d does not match %d pixels", cols, rows, len(fr.NativeData.Data))
	}

	img := image.NewRGBA(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			pixel := fr.NativeData.Data[y*cols+x]
			var c color.RGBA
			switch {
			case len(pixel) >= 3:
				c = color.RGBA{R: uint8(pixel[0]), G: uint8(pixel[1]), B: uint8(pixel[2]), A: 255}
			case len(pixel) == 1:
				v := uint8(pixel[0])
				c = color.RGBA{R: v, G: v, B: v, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("could not encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
