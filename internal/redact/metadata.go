package redact

import (
	"fmt"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	dcm "ultrasound-deid/internal/dicom"
)

const blankTime = "000000"

// Metadata applies the element policy across the whole dataset: private
// blocks and deny-listed elements are dropped, dates collapse to January 1st
// of their year, and times collapse to midnight. Sequence elements are
// descended into with the same policy, so identifiers inside items (a
// referenced-image sequence carrying source instance UIDs, say) cannot
// survive. The element list is rebuilt aside and swapped in only once every
// rewrite succeeded, so a failure leaves the dataset untouched. Running
// Metadata on already-redacted output is a no-op.
func Metadata(ds *dcm.Dataset) error {
	kept, err := redactElements(ds.Data.Elements)
	if err != nil {
		return err
	}
	ds.Data.Elements = kept
	return nil
}

func redactElements(elems []*dicom.Element) ([]*dicom.Element, error) {
	kept := make([]*dicom.Element, 0, len(elems))

	for _, e := range elems {
		switch actionFor(e) {
		case ActionRemove:
			continue
		case ActionGeneralizeDate:
			ne, err := rewriteString(e, generalizeDate(firstString(e)))
			if err != nil {
				return nil, fmt.Errorf("could not generalize date %v: %w", e.Tag, err)
			}
			kept = append(kept, ne)
		case ActionGeneralizeTime:
			ne, err := rewriteString(e, blankTime)
			if err != nil {
				return nil, fmt.Errorf("could not generalize time %v: %w", e.Tag, err)
			}
			kept = append(kept, ne)
		default:
			if e.RawValueRepresentation == "SQ" {
				ne, err := redactSequence(e)
				if err != nil {
					return nil, fmt.Errorf("could not redact sequence %v: %w", e.Tag, err)
				}
				kept = append(kept, ne)
				continue
			}
			kept = append(kept, e)
		}
	}
	return kept, nil
}

// redactSequence rebuilds a sequence element with the policy applied inside
// every item. Items with an unrecognized layout leave the sequence as read.
func redactSequence(e *dicom.Element) (*dicom.Element, error) {
	if e.Value == nil {
		return e, nil
	}
	items, ok := e.Value.GetValue().([]*dicom.SequenceItemValue)
	if !ok {
		return e, nil
	}

	rebuilt := make([][]*dicom.Element, 0, len(items))
	for _, item := range items {
		itemElems, ok := item.GetValue().([]*dicom.Element)
		if !ok {
			return e, nil
		}
		kept, err := redactElements(itemElems)
		if err != nil {
			return nil, err
		}
		rebuilt = append(rebuilt, kept)
	}

	newValue, err := dicom.NewValue(rebuilt)
	if err != nil {
		return nil, err
	}
	return &dicom.Element{
		Tag:                    e.Tag,
		ValueRepresentation:    e.ValueRepresentation,
		RawValueRepresentation: e.RawValueRepresentation,
		ValueLength:            tag.VLUndefinedLength,
		Value:                  newValue,
	}, nil
}

// generalizeDate keeps the year and pins month and day to January 1st.
// Values too short to carry a year are blanked rather than passed through.
func generalizeDate(v string) string {
	if len(v) < 4 {
		return ""
	}
	return v[:4] + "0101"
}

func firstString(e *dicom.Element) string {
	if e.Value == nil {
		return ""
	}
	switch v := e.Value.GetValue().(type) {
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	case string:
		return v
	}
	return ""
}

// rewriteString returns a copy of e carrying value, preserving the original
// VR so the element round-trips through serialization unchanged in form.
func rewriteString(e *dicom.Element, value string) (*dicom.Element, error) {
	newValue, err := dicom.NewValue([]string{value})
	if err != nil {
		return nil, err
	}
	return &dicom.Element{
		Tag:                    e.Tag,
		ValueRepresentation:    e.ValueRepresentation,
		RawValueRepresentation: e.RawValueRepresentation,
		ValueLength:            uint32(len(value)),
		Value:                  newValue,
	}, nil
}
