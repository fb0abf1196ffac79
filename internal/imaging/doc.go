// Package imaging handles image I/O around the spot detector.
//
// It decodes uploaded or on-disk images into Go image.Image values, parses
// annotation colors, and persists annotated results. No analysis happens
// here; see package spots for the detection pipeline.
//
// # Decoding
//
// Decode and Open accept JPEG, PNG, GIF, BMP and TIFF. EXIF orientation tags
// are honored so that camera photos are analyzed the right way up. Input that
// cannot be decoded, or that decodes to an image without pixels, is reported
// as ErrInvalidImage. Callers map that sentinel to a client error.
//
// # Output
//
// AnnotationStore writes JPEG files named annot_<32 hex digits>.jpg into one
// directory. The random part comes from a version 4 UUID, so concurrent
// requests never collide. URL builds the relative URL under which the HTTP
// server exposes a stored file.
//
// # Thread Safety
//
// ImageCache and AnnotationStore are safe for concurrent use. Decoded images
// are treated as read-only once returned.
package imaging
