package batch

import (
	"errors"
	"fmt"

	"github.com/suyashkumar/dicom/pkg/tag"

	"ultrasound-deid/internal/address"
	dcm "ultrasound-deid/internal/dicom"
	"ultrasound-deid/internal/pseudonym"
	"ultrasound-deid/internal/redact"
	"ultrasound-deid/internal/render"
)

// Result is the full output of processing one record.
type Result struct {
	Outcome    Outcome
	OutputName string
	Output     []byte
	PNGName    string
	PNG        []byte
	Err        error
}

// Pipeline runs the de-identification sequence for a single record. It holds
// no per-record state, so one Pipeline serves all workers concurrently.
type Pipeline struct {
	ids       pseudonym.Transformer
	renderPNG bool
}

func NewPipeline(ids pseudonym.Transformer, renderPNG bool) *Pipeline {
	return &Pipeline{ids: ids, renderPNG: renderPNG}
}

// Process de-identifies one record. The order is fixed: parse, qualify,
// pseudonymize, redact metadata, redact pixels, then hash the final pixel
// bytes for the output name. Hashing earlier would bake soon-to-be-removed
// PHI into the name.
func (p *Pipeline) Process(name string, data []byte) Result {
	ds, err := dcm.ReadBytes(name, data)
	if err != nil {
		return failed(fmt.Errorf("could not parse record: %w", err))
	}

	media := ds.Classify()
	if !qualifies(ds, media) {
		return Result{Outcome: OutcomeSkippedNonQualifying}
	}

	patientID, accession := ds.PatientID(), ds.AccessionNumber()
	if patientID == "" || accession == "" {
		return failed(fmt.Errorf("record is missing patient or accession identifier"))
	}

	anonPatient, err := p.ids.Pseudonymize(patientID)
	if err != nil {
		return failed(fmt.Errorf("could not pseudonymize patient identifier: %w", err))
	}
	anonAccession, err := p.ids.Pseudonymize(accession)
	if err != nil {
		return failed(fmt.Errorf("could not pseudonymize accession identifier: %w", err))
	}

	if err := ds.SetString(tag.PatientID, anonPatient); err != nil {
		return failed(err)
	}
	if err := ds.SetString(tag.AccessionNumber, anonAccession); err != nil {
		return failed(err)
	}

	if err := redact.Metadata(ds); err != nil {
		return failed(fmt.Errorf("metadata redaction failed: %w", err))
	}

	if err := redact.Pixels(ds); err != nil {
		if errors.Is(err, redact.ErrUnsupportedCodec) {
			return Result{Outcome: OutcomeSkippedUnsupportedCodec, Err: err}
		}
		return failed(fmt.Errorf("pixel redaction failed: %w", err))
	}

	pixelBytes, err := ds.PixelBytes()
	if err != nil {
		return failed(fmt.Errorf("could not extract pixel bytes: %w", err))
	}
	outName := address.Filename(media, anonPatient, anonAccession, address.PixelDigest(pixelBytes))

	out, err := ds.Bytes()
	if err != nil {
		return failed(fmt.Errorf("could not serialize record: %w", err))
	}

	res := Result{Outcome: OutcomeWritten, OutputName: outName, Output: out}
	if p.renderPNG {
		// Preview failures never block the record itself.
		if png, err := render.FirstFramePNG(ds); err == nil {
			res.PNGName = outName[:len(outName)-len(dcm.Extension)] + ".png"
			res.PNG = png
		}
	}
	return res
}

// qualifies gates the pipeline to records worth de-identifying: single
// ultrasound images must carry region geometry so the banner boundary is
// known, while multi-frame video always passes.
func qualifies(ds *dcm.Dataset, media dcm.MediaType) bool {
	switch media {
	case dcm.MediaSingleImage:
		return ds.HasTag(tag.SequenceOfUltrasoundRegions)
	case dcm.MediaMultiFrameVideo:
		return true
	}
	return false
}

func failed(err error) Result {
	return Result{Outcome: OutcomeFailed, Err: err}
}
