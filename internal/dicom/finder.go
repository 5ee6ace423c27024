package dicom

import (
	"path"
	"strings"
)

// Extension is the expected extension for candidate input files.
const Extension = ".dcm"

// IsCandidate reports whether a blob name looks like a DICOM input file.
// Discovery filters on extension; content is validated at parse time.
func IsCandidate(name string) bool {
	return strings.EqualFold(path.Ext(name), Extension)
}

// HasMagic reports whether data carries the DICOM preamble marker, "DICM" at
// byte offset 128.
func HasMagic(data []byte) bool {
	if len(data) < 132 {
		return false
	}
	return string(data[128:132]) == "DICM"
}
