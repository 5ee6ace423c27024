package redact

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	_ "image/jpeg" // baseline JPEG, the only encapsulated codec handled in-process

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"

	dcm "ultrasound-deid/internal/dicom"
)

// FallbackBoundary is the number of top rows blacked out when a record gives
// no region geometry of its own. Ultrasound banners sit in roughly the top
// hundred rows across the supported scanner fleet.
const FallbackBoundary = 101

// ErrUnsupportedCodec marks pixel data compressed with a codec this engine
// cannot decode. Callers skip such records rather than fail the batch.
var ErrUnsupportedCodec = errors.New("unsupported pixel codec")

// Boundary computes the first row of clinically relevant pixels. Everything
// above it is banner territory and gets zeroed. Secondary captures carry no
// trustworthy region geometry, so they always use the fallback.
func Boundary(ds *dcm.Dataset) int {
	if ds.Classify() == dcm.MediaSecondaryCapture {
		return FallbackBoundary
	}
	if y0, ok := ds.RegionMinY0(); ok {
		return y0
	}
	return FallbackBoundary
}

// Pixels blacks out the banner rows of every frame. Compressed pixel data is
// decoded to native form first and the transfer syntax rewritten to match
// the uncompressed bytes that will actually be serialized. The transfer
// syntax is set explicitly even when unchanged, so the header can never
// disagree with the payload.
func Pixels(ds *dcm.Dataset) error {
	info, err := ds.PixelInfo()
	if err != nil {
		return err
	}

	syntax := ds.TransferSyntax()
	if info.IsEncapsulated || dcm.IsCompressedSyntax(syntax) {
		if err := decompress(ds, &info); err != nil {
			return err
		}
		elem, err := dicom.NewElement(tag.PixelData, info)
		if err != nil {
			return fmt.Errorf("could not rebuild pixel data element: %w", err)
		}
		ds.ReplaceElement(elem)
		syntax = dcm.ExplicitVRLittleEndian
	}

	y0 := Boundary(ds)
	cols := ds.Cols()
	for _, fr := range info.Frames {
		zeroTopRows(fr, cols, y0)
	}

	return ds.SetTransferSyntax(syntax)
}

// zeroTopRows blacks out rows [0, y0) of one native frame. Frame data is
// pixel-major with one inner slice of samples per pixel.
func zeroTopRows(fr *frame.Frame, cols, y0 int) {
	if fr.NativeData.Data == nil || cols <= 0 {
		return
	}
	n := y0 * cols
	if n > len(fr.NativeData.Data) {
		n = len(fr.NativeData.Data)
	}
	for i := 0; i < n; i++ {
		for j := range fr.NativeData.Data[i] {
			fr.NativeData.Data[i][j] = 0
		}
	}
}

// decompress decodes every encapsulated frame into native form. Any codec
// the image registry cannot handle surfaces as ErrUnsupportedCodec.
func decompress(ds *dcm.Dataset, info *dicom.PixelDataInfo) error {
	bits := ds.BitsAllocated()
	frames := make([]*frame.Frame, 0, len(info.Frames))
	samples := ds.SamplesPerPixel()
	rows, cols := ds.Rows(), ds.Cols()
	decoded := false

	for i, fr := range info.Frames {
		if !fr.Encapsulated {
			frames = append(frames, fr)
			continue
		}

		img, _, err := image.Decode(bytes.NewReader(fr.EncapsulatedData.Data))
		if err != nil {
			return fmt.Errorf("%w: frame %d: %v", ErrUnsupportedCodec, i, err)
		}

		native, nSamples := nativeFromImage(img, bits)
		samples = nSamples
		rows, cols = native.Rows, native.Cols
		decoded = true
		frames = append(frames, &frame.Frame{
			Encapsulated: false,
			NativeData:   *native,
		})
	}

	info.Frames = frames
	info.IsEncapsulated = false
	if !decoded {
		return nil
	}
	return syncGeometryTags(ds, samples, rows, cols)
}

// nativeFromImage converts a decoded image to a native frame, returning the
// frame and its channel count. Grayscale sources stay single-channel, all
// other color models land as RGB.
func nativeFromImage(img image.Image, bits int) (*frame.NativeFrame, int) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	gray, isGray := img.(*image.Gray)
	samples := 3
	if isGray {
		samples = 1
	}

	data := make([][]int, 0, w*h)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if isGray {
				data = append(data, []int{int(gray.GrayAt(x, y).Y)})
			} else {
				r, g, b, _ := img.At(x, y).RGBA()
				data = append(data, []int{int(r >> 8), int(g >> 8), int(b >> 8)})
			}
		}
	}

	return &frame.NativeFrame{
		BitsPerSample: bits,
		Rows:          h,
		Cols:          w,
		Data:          data,
	}, samples
}

// syncGeometryTags updates the geometry elements after decoding: a
// YBR-compressed source decodes to plain RGB, and the decoded bounds are
// authoritative over whatever Rows and Columns claimed. Row addressing
// during zeroing reads these tags, so they must match the frames.
func syncGeometryTags(ds *dcm.Dataset, samples, rows, cols int) error {
	for _, g := range []struct {
		t tag.Tag
		v int
	}{
		{tag.SamplesPerPixel, samples},
		{tag.Rows, rows},
		{tag.Columns, cols},
	} {
		elem, err := dicom.NewElement(g.t, []int{g.v})
		if err != nil {
			return fmt.Errorf("could not rewrite %v: %w", g.t, err)
		}
		ds.ReplaceElement(elem)
	}

	interpretation := "RGB"
	if samples == 1 {
		interpretation = "MONOCHROME2"
	}
	pi, err := dicom.NewElement(tag.PhotometricInterpretation, []string{interpretation})
	if err != nil {
		return fmt.Errorf("could not rewrite photometric interpretation: %w", err)
	}
	ds.ReplaceElement(pi)
	return nil
}
