package dicom

import (
	"bytes"
	"fmt"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// SetString replaces the value of an existing string element. Missing
// elements are left missing; callers that require the element to exist must
// check with HasTag first.
func (d *Dataset) SetString(t tag.Tag, value string) error {
	elem, err := d.Data.FindElementByTag(t)
	if err != nil {
		return nil
	}

	newValue, err := dicom.NewValue([]string{value})
	if err != nil {
		return fmt.Errorf("could not create value: %w", err)
	}

	newElem := &dicom.Element{
		Tag:                    t,
		ValueRepresentation:    elem.ValueRepresentation,
		RawValueRepresentation: elem.RawValueRepresentation,
		ValueLength:            uint32(len(value)),
		Value:                  newValue,
	}

	for i, e := range d.Data.Elements {
		if e.Tag == t {
			d.Data.Elements[i] = newElem
			return nil
		}
	}
	return nil
}

// RemoveTag deletes every top-level element with the given tag.
func (d *Dataset) RemoveTag(t tag.Tag) {
	kept := d.Data.Elements[:0]
	for _, e := range d.Data.Elements {
		if e.Tag != t {
			kept = append(kept, e)
		}
	}
	d.Data.Elements = kept
}

// ReplaceElement swaps the element with the given tag for elem, or appends
// elem when no element with that tag exists.
func (d *Dataset) ReplaceElement(elem *dicom.Element) {
	for i, e := range d.Data.Elements {
		if e.Tag == elem.Tag {
			d.Data.Elements[i] = elem
			return
		}
	}
	d.Data.Elements = append(d.Data.Elements, elem)
}

// SetTransferSyntax rewrites the transfer-syntax UID in the file meta header
// so it reflects the encoding of the pixel bytes actually present.
func (d *Dataset) SetTransferSyntax(uid string) error {
	if d.HasTag(tag.TransferSyntaxUID) {
		return d.SetString(tag.TransferSyntaxUID, uid)
	}
	elem, err := dicom.NewElement(tag.TransferSyntaxUID, []string{uid})
	if err != nil {
		return fmt.Errorf("could not create transfer syntax element: %w", err)
	}
	d.ReplaceElement(elem)
	return nil
}

// Bytes serializes the dataset. Verification is relaxed because real-world
// DICOM files routinely violate strict VR rules.
func (d *Dataset) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := dicom.Write(&buf, d.Data,
		dicom.SkipVRVerification(),
		dicom.SkipValueTypeVerification(),
		dicom.DefaultMissingTransferSyntax(),
	); err != nil {
		return nil, fmt.Errorf("could not write DICOM: %w", err)
	}
	return buf.Bytes(), nil
}
