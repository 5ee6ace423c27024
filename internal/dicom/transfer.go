package dicom

// Transfer syntax UIDs.
const (
	ImplicitVRLittleEndian = "1.2.840.10008.1.2"
	ExplicitVRLittleEndian = "1.2.840.10008.1.2.1"
	ExplicitVRBigEndian    = "1.2.840.10008.1.2.2"
)

var uncompressedSyntaxes = map[string]bool{
	ImplicitVRLittleEndian: true,
	ExplicitVRLittleEndian: true,
	ExplicitVRBigEndian:    true,
}

// IsCompressedSyntax reports whether a transfer syntax UID denotes an
// encapsulated (compressed) pixel encoding.
func IsCompressedSyntax(uid string) bool {
	return uid != "" && !uncompressedSyntaxes[uid]
}
