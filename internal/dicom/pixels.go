package dicom

import (
	"fmt"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Rows returns the image height in pixels.
func (d *Dataset) Rows() int {
	return d.GetInt(tag.Rows)
}

// Cols returns the image width in pixels.
func (d *Dataset) Cols() int {
	return d.GetInt(tag.Columns)
}

// SamplesPerPixel returns the channel count, defaulting to 1 (grayscale).
func (d *Dataset) SamplesPerPixel() int {
	if v := d.GetInt(tag.SamplesPerPixel); v > 0 {
		return v
	}
	return 1
}

// BitsAllocated returns the storage width per sample, defaulting to 8.
func (d *Dataset) BitsAllocated() int {
	if v := d.GetInt(tag.BitsAllocated); v > 0 {
		return v
	}
	return 8
}

// PixelInfo returns the parsed pixel-data payload.
func (d *Dataset) PixelInfo() (dicom.PixelDataInfo, error) {
	elem, err := d.Data.FindElementByTag(tag.PixelData)
	if err != nil {
		return dicom.PixelDataInfo{}, fmt.Errorf("no pixel data found: %w", err)
	}
	info, ok := elem.Value.GetValue().(dicom.PixelDataInfo)
	if !ok {
		return dicom.PixelDataInfo{}, fmt.Errorf("unexpected pixel data value type %T", elem.Value.GetValue())
	}
	return info, nil
}

// PixelBytes flattens every native frame into one deterministic byte string,
// sample values little-endian in frame order. Encapsulated frames have no
// canonical byte form and are rejected.
func (d *Dataset) PixelBytes() ([]byte, error) {
	info, err := d.PixelInfo()
	if err != nil {
		return nil, err
	}
	if len(info.Frames) == 0 {
		return nil, fmt.Errorf("no frames in pixel data")
	}

	bytesPerSample := (d.BitsAllocated() + 7) / 8
	perFrame := d.Rows() * d.Cols() * d.SamplesPerPixel() * bytesPerSample
	out := make([]byte, 0, perFrame*len(info.Frames))

	for i, fr := range info.Frames {
		if fr.Encapsulated {
			return nil, fmt.Errorf("frame %d is still encapsulated", i)
		}
		if fr.NativeData.Data == nil {
			return nil, fmt.Errorf("frame %d has no native data", i)
		}
		for _, pixel := range fr.NativeData.Data {
			for _, sample := range pixel {
				if bytesPerSample == 1 {
					out = append(out, byte(sample))
				} else {
					out = append(out, byte(sample), byte(sample>>8))
				}
			}
		}
	}
	return out, nil
}
