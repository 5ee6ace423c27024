package dicom

import (
	"strings"

	"github.com/suyashkumar/dicom/pkg/tag"
)

// MediaType classifies a record by its SOP class. PixelRedactor and the
// content addresser both consume this classification; deriving it in one
// place keeps the redaction-boundary branch and the filename token
// consistent for any given record.
type MediaType int

const (
	MediaOther MediaType = iota
	MediaSingleImage
	MediaMultiFrameVideo
	MediaSecondaryCapture
)

// SOP class UIDs for ultrasound storage.
const (
	SOPClassUSImage      = "1.2.840.10008.5.1.4.1.1.6.1"
	SOPClassUSMultiFrame = "1.2.840.10008.5.1.4.1.1.3.1"
)

// sopClassNames maps SOP class UID prefixes to their standard labels. The
// secondary-capture family is matched by label substring, mirroring how the
// class is identified in practice across its subvariants.
var sopClassNames = map[string]string{
	SOPClassUSImage:               "Ultrasound Image Storage",
	SOPClassUSMultiFrame:          "Ultrasound Multi-frame Image Storage",
	"1.2.840.10008.5.1.4.1.1.7":   "Secondary Capture Image Storage",
	"1.2.840.10008.5.1.4.1.1.7.1": "Multi-frame Single Bit Secondary Capture Image Storage",
	"1.2.840.10008.5.1.4.1.1.7.2": "Multi-frame Grayscale Byte Secondary Capture Image Storage",
	"1.2.840.10008.5.1.4.1.1.7.3": "Multi-frame Grayscale Word Secondary Capture Image Storage",
	"1.2.840.10008.5.1.4.1.1.7.4": "Multi-frame True Color Secondary Capture Image Storage",
}

// SOPClassUID returns the media-storage SOP class UID from the file meta
// header.
func (d *Dataset) SOPClassUID() string {
	return d.GetString(tag.MediaStorageSOPClassUID)
}

// Classify derives the media type from the SOP class identifier. Secondary
// captures are recognized by a substring check on the class label.
func (d *Dataset) Classify() MediaType {
	uid := d.SOPClassUID()

	switch uid {
	case SOPClassUSImage:
		return MediaSingleImage
	case SOPClassUSMultiFrame:
		return MediaMultiFrameVideo
	}

	label := sopClassNames[uid]
	if strings.Contains(label, "Secondary") {
		return MediaSecondaryCapture
	}
	if strings.Contains(label, "Multi-frame") {
		return MediaMultiFrameVideo
	}
	return MediaOther
}

// Token returns the filename component for a media type.
func (m MediaType) Token() string {
	switch m {
	case MediaSingleImage:
		return "image"
	case MediaMultiFrameVideo:
		return "video"
	case MediaSecondaryCapture:
		return "second"
	}
	return "other"
}

func (m MediaType) String() string {
	switch m {
	case MediaSingleImage:
		return "single-image"
	case MediaMultiFrameVideo:
		return "multi-frame-video"
	case MediaSecondaryCapture:
		return "secondary-capture"
	}
	return "other"
}
