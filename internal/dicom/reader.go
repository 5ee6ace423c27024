package dicom

import (
	"bytes"
	"fmt"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Dataset wraps a parsed DICOM dataset together with the blob name it was
// read from.
type Dataset struct {
	Data dicom.Dataset
	Name string
}

// ReadBytes parses a full DICOM record, pixel data included.
func ReadBytes(name string, data []byte) (*Dataset, error) {
	ds, err := dicom.Parse(bytes.NewReader(data), int64(len(data)), nil)
	if err != nil {
		return nil, fmt.Errorf("could not parse DICOM %s: %w", name, err)
	}
	return &Dataset{Data: ds, Name: name}, nil
}

// ReadBytesMetadataOnly parses a record skipping the pixel-data payload.
func ReadBytesMetadataOnly(name string, data []byte) (*Dataset, error) {
	ds, err := dicom.Parse(bytes.NewReader(data), int64(len(data)), nil, dicom.SkipPixelData())
	if err != nil {
		return nil, fmt.Errorf("could not parse DICOM %s: %w", name, err)
	}
	return &Dataset{Data: ds, Name: name}, nil
}

// GetString returns the first string value for a tag, or "" if not found.
func (d *Dataset) GetString(t tag.Tag) string {
	elem, err := d.Data.FindElementByTag(t)
	if err != nil || elem.Value == nil {
		return ""
	}

	val := elem.Value.GetValue()
	switch v := val.(type) {
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	case string:
		return v
	}
	return ""
}

// GetInt returns the first integer value for a tag, or 0 if not found.
func (d *Dataset) GetInt(t tag.Tag) int {
	elem, err := d.Data.FindElementByTag(t)
	if err != nil {
		return 0
	}
	return intValue(elem)
}

// HasTag reports whether the dataset contains a top-level element with the
// given tag.
func (d *Dataset) HasTag(t tag.Tag) bool {
	_, err := d.Data.FindElementByTag(t)
	return err == nil
}

// PatientID returns the original patient identifier.
func (d *Dataset) PatientID() string {
	return d.GetString(tag.PatientID)
}

// AccessionNumber returns the original accession identifier.
func (d *Dataset) AccessionNumber() string {
	return d.GetString(tag.AccessionNumber)
}

// TransferSyntax returns the transfer syntax UID from the file meta header.
func (d *Dataset) TransferSyntax() string {
	return d.GetString(tag.TransferSyntaxUID)
}

// RegionMinY0 returns the minimum Y origin of the first entry of the
// ultrasound region sequence. The first region describes the clinical
// viewport; later entries are auxiliary panels whose geometry must not move
// the redaction boundary.
func (d *Dataset) RegionMinY0() (int, bool) {
	seq, err := d.Data.FindElementByTag(tag.SequenceOfUltrasoundRegions)
	if err != nil {
		return 0, false
	}

	if items, ok := seq.Value.GetValue().([]*dicom.SequenceItemValue); ok && len(items) > 0 {
		if elems, ok := items[0].GetValue().([]*dicom.Element); ok {
			for _, e := range elems {
				if e.Tag == tag.RegionLocationMinY0 {
					return intValue(e), true
				}
			}
		}
	}

	// First item without the element: take the first match in document
	// order instead.
	elem, err := d.Data.FindElementByTagNested(tag.RegionLocationMinY0)
	if err != nil {
		return 0, false
	}
	return intValue(elem), true
}

// intValue extracts an integer from a DICOM element. Integer-valued elements
// surface as []int or []uint16 depending on VR.
func intValue(elem *dicom.Element) int {
	if elem == nil || elem.Value == nil {
		return 0
	}

	switch v := elem.Value.GetValue().(type) {
	case []int:
		if len(v) > 0 {
			return v[0]
		}
	case int:
		return v
	case []uint16:
		if len(v) > 0 {
			return int(v[0])
		}
	case uint16:
		return int(v)
	}
	return 0
}
