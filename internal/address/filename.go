// Package address derives content-addressed output names for de-identified
// records. The name carries the media class, both pseudonymized identifiers
// and a digest of the redacted pixel bytes, so re-runs of the same input
// land on the same name and exact pixel duplicates collapse to one object.
package address

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	dcm "ultrasound-deid/internal/dicom"
)

const idWidth = 8

// PixelDigest hashes the final redacted pixel bytes. Hashing anything
// earlier in the pipeline would let two records differing only in stripped
// metadata produce distinct names for identical images.
func PixelDigest(pixelBytes []byte) string {
	sum := sha256.Sum256(pixelBytes)
	return hex.EncodeToString(sum[:])
}

// Filename assembles the output object name. Identifiers shorter than eight
// characters are zero-padded on the left; longer ones are kept whole, since
// truncation could collide two distinct patients.
func Filename(media dcm.MediaType, patientID, accession, digest string) string {
	return fmt.Sprintf("%s_%s_%s_%s%s",
		media.Token(), padID(patientID), padID(accession), digest, dcm.Extension)
}

func padID(id string) string {
	if len(id) >= idWidth {
		return id
	}
	return strings.Repeat("0", idWidth-len(id)) + id
}
