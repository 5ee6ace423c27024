package batch

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"

	dcm "ultrasound-deid/internal/dicom"
	"ultrasound-deid/internal/pseudonym"
)

var testKey = []byte("0123456789abcdef")

func mustElement(t *testing.T, tg tag.Tag, data interface{}) *dicom.Element {
	t.Helper()
	e, err := dicom.NewElement(tg, data)
	require.NoError(t, err)
	return e
}

func grayFrames(rows, cols, n int) []*frame.Frame {
	frames := make([]*frame.Frame, n)
	for i := range frames {
		data := make([][]int, rows*cols)
		for p := range data {
			data[p] = []int{128}
		}
		frames[i] = &frame.Frame{
			NativeData: frame.NativeFrame{
				BitsPerSample: 8,
				Rows:          rows,
				Cols:          cols,
				Data:          data,
			},
		}
	}
	return frames
}

// buildRecord serializes a minimal but complete ultrasound record.
func buildRecord(t *testing.T, sopClass, pid, acc string, rows, cols, nframes int, extra ...*dicom.Element) []byte {
	t.Helper()
	elems := []*dicom.Element{
		mustElement(t, tag.MediaStorageSOPClassUID, []string{sopClass}),
		mustElement(t, tag.MediaStorageSOPInstanceUID, []string{"1.2.3.4.5.6.7"}),
		mustElement(t, tag.TransferSyntaxUID, []string{dcm.ExplicitVRLittleEndian}),
	}
	if acc != "" {
		elems = append(elems, mustElement(t, tag.AccessionNumber, []string{acc}))
	}
	if pid != "" {
		elems = append(elems, mustElement(t, tag.PatientID, []string{pid}))
	}
	elems = append(elems,
		mustElement(t, tag.NumberOfFrames, []string{strconv.Itoa(nframes)}),
		mustElement(t, tag.SamplesPerPixel, []int{1}),
		mustElement(t, tag.Rows, []int{rows}),
		mustElement(t, tag.Columns, []int{cols}),
		mustElement(t, tag.BitsAllocated, []int{8}),
	)
	elems = append(elems, extra...)
	elems = append(elems, mustElement(t, tag.PixelData, dicom.PixelDataInfo{Frames: grayFrames(rows, cols, nframes)}))

	ds := &dcm.Dataset{Data: dicom.Dataset{Elements: elems}}
	data, err := ds.Bytes()
	require.NoError(t, err)
	return data
}

func newTestPipeline(t *testing.T, renderPNG bool) *Pipeline {
	t.Helper()
	ids, err := pseudonym.NewPseudonymizer(testKey)
	require.NoError(t, err)
	return NewPipeline(ids, renderPNG)
}

func TestQualifies(t *testing.T) {
	region := &dicom.Element{Tag: tag.SequenceOfUltrasoundRegions, RawValueRepresentation: "SQ"}
	withRegion := &dcm.Dataset{Data: dicom.Dataset{Elements: []*dicom.Element{region}}}
	empty := &dcm.Dataset{Data: dicom.Dataset{}}

	assert.True(t, qualifies(withRegion, dcm.MediaSingleImage))
	assert.False(t, qualifies(empty, dcm.MediaSingleImage), "single image needs region geometry")
	assert.True(t, qualifies(empty, dcm.MediaMultiFrameVideo))
	assert.False(t, qualifies(withRegion, dcm.MediaSecondaryCapture))
	assert.False(t, qualifies(empty, dcm.MediaOther))
}

func TestProcessWritesVideo(t *testing.T) {
	data := buildRecord(t, dcm.SOPClassUSMultiFrame, "12345678", "87654321", 130, 40, 3,
		mustElement(t, tag.PatientName, []string{"Doe^Jane"}),
	)

	res := newTestPipeline(t, false).Process("in.dcm", data)
	require.Equal(t, OutcomeWritten, res.Outcome, "err: %v", res.Err)
	assert.True(t, strings.HasPrefix(res.OutputName, "video_"), "name = %q", res.OutputName)
	assert.True(t, strings.HasSuffix(res.OutputName, ".dcm"))

	out, err := dcm.ReadBytes(res.OutputName, res.Output)
	require.NoError(t, err, "output must re-parse")

	assert.NotEqual(t, "12345678", out.PatientID(), "patient identifier must be pseudonymized")
	assert.Len(t, out.PatientID(), 8)
	assert.False(t, out.HasTag(tag.PatientName), "name must be stripped")
	assert.False(t, out.HasTag(tag.MediaStorageSOPInstanceUID))

	// Banner rows of the output must be black.
	info, err := out.PixelInfo()
	require.NoError(t, err)
	require.Len(t, info.Frames, 3)
	for _, fr := range info.Frames {
		for p := 0; p < 101*40; p++ {
			require.Zero(t, fr.NativeData.Data[p][0], "pixel %d should be redacted", p)
		}
		require.NotZero(t, fr.NativeData.Data[120*40][0], "clinical area should survive")
	}
}

func TestProcessOutputNameStable(t *testing.T) {
	data := buildRecord(t, dcm.SOPClassUSMultiFrame, "12345678", "87654321", 130, 40, 1)
	p := newTestPipeline(t, false)

	a := p.Process("in.dcm", data)
	b := p.Process("copy-of-in.dcm", data)
	require.Equal(t, OutcomeWritten, a.Outcome)
	require.Equal(t, OutcomeWritten, b.Outcome)
	assert.Equal(t, a.OutputName, b.OutputName, "same content must address to one name")
}

func TestProcessSkipsNonQualifying(t *testing.T) {
	ct := buildRecord(t, "1.2.840.10008.5.1.4.1.1.2", "12345678", "87654321", 130, 40, 1)
	res := newTestPipeline(t, false).Process("ct.dcm", ct)
	assert.Equal(t, OutcomeSkippedNonQualifying, res.Outcome)

	// Single ultrasound image without region geometry does not qualify.
	plain := buildRecord(t, dcm.SOPClassUSImage, "12345678", "87654321", 130, 40, 1)
	res = newTestPipeline(t, false).Process("plain.dcm", plain)
	assert.Equal(t, OutcomeSkippedNonQualifying, res.Outcome)
}

func TestProcessCorruptInput(t *testing.T) {
	res := newTestPipeline(t, false).Process("junk.dcm", []byte("this is not a DICOM file"))
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Error(t, res.Err)
}

func TestProcessMissingIdentifiers(t *testing.T) {
	data := buildRecord(t, dcm.SOPClassUSMultiFrame, "", "", 130, 40, 1)
	res := newTestPipeline(t, false).Process("noid.dcm", data)
	assert.Equal(t, OutcomeFailed, res.Outcome)
}

func TestProcessRendersPreview(t *testing.T) {
	data := buildRecord(t, dcm.SOPClassUSMultiFrame, "12345678", "87654321", 130, 40, 1)
	res := newTestPipeline(t, true).Process("in.dcm", data)

	require.Equal(t, OutcomeWritten, res.Outcome, "err: %v", res.Err)
	assert.NotEmpty(t, res.PNG)
	assert.True(t, strings.HasSuffix(res.PNGName, ".png"))
}
