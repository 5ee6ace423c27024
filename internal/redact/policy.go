// Package redact strips protected health information from ultrasound DICOM
// records, both from the metadata header and from the pixel area where
// scanners burn in patient banners.
package redact

import (
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Action is the redaction decision for a single element.
type Action int

const (
	// ActionKeep passes the element through unchanged.
	ActionKeep Action = iota
	// ActionRemove drops the element entirely.
	ActionRemove
	// ActionGeneralizeDate coarsens a date to January 1st of its year.
	ActionGeneralizeDate
	// ActionGeneralizeTime blanks a time to midnight.
	ActionGeneralizeTime
)

// removeTags are elements whose values identify the patient, the visit, the
// operator or the device, or whose UIDs could link output back to source
// archives. Private creator blocks are handled separately by group parity.
var removeTags = []tag.Tag{
	tag.MediaStorageSOPInstanceUID,
	tag.ImplementationClassUID,
	tag.SOPInstanceUID,
	tag.StudyTime,
	tag.SeriesTime,
	tag.ContentTime,
	tag.StudyInstanceUID,
	tag.SeriesInstanceUID,
	tag.PatientName,
	tag.ReferringPhysicianName,
	tag.AcquisitionDateTime,
	tag.InstitutionName,
	tag.StationName,
	tag.PhysiciansOfRecord,
	tag.ReferencedSOPClassUID,
	tag.ReferencedSOPInstanceUID,
	tag.DeviceSerialNumber,
	tag.PatientComments,
	tag.IssuerOfPatientID,
	tag.StudyID,
	// Study Comments (0032,4000) is retired and missing from the library
	// dictionary, so it is addressed by value.
	{Group: 0x0032, Element: 0x4000},
	tag.CurrentPatientLocation,
	tag.RequestedProcedureID,
	tag.PerformedProcedureStepID,
	tag.OtherPatientIDs,
	tag.OperatorsName,
	tag.InstitutionalDepartmentName,
	tag.Manufacturer,
	tag.OriginalAttributesSequence,
}

// timeAllowTags are TM elements exempt from time generalization. The study,
// series and content times are removed outright by removeTags, so the
// exemption only matters if that ever changes; keeping the list makes the
// policy explicit.
var timeAllowTags = []tag.Tag{
	tag.StudyTime,
	tag.SeriesTime,
	tag.ContentTime,
}

var (
	removeSet    = make(map[tag.Tag]bool, len(removeTags))
	timeAllowSet = make(map[tag.Tag]bool, len(timeAllowTags))
)

func init() {
	for _, t := range removeTags {
		removeSet[t] = true
	}
	for _, t := range timeAllowTags {
		timeAllowSet[t] = true
	}
}

// actionFor resolves the policy for one element. Removal is keyed on the tag
// value itself, never on element names, so dictionary differences between
// toolkits cannot change the outcome. Dates and times not explicitly removed
// are generalized based on their VR.
func actionFor(e *dicom.Element) Action {
	if e.Tag.Group%2 == 1 {
		return ActionRemove
	}
	if removeSet[e.Tag] {
		return ActionRemove
	}
	switch e.RawValueRepresentation {
	case "DA":
		return ActionGeneralizeDate
	case "TM":
		if !timeAllowSet[e.Tag] {
			return ActionGeneralizeTime
		}
	}
	return ActionKeep
}
