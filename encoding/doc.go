// Package encoding implements the primitive field codecs of the XDF format.
//
// # Variable-length integers
//
// Chunk lengths, sample counts and string lengths are written as a width
// indicator byte (1, 4 or 8) followed by an unsigned little-endian integer of
// that many bytes. ReadLength decodes one from an io.Reader, distinguishing a
// clean end of input (io.EOF) from a corrupt indicator
// (errs.ErrInvalidLengthIndicator) and a cut-off value (errs.ErrTruncated).
//
// # Payload accounting
//
// Chunk payloads are not self-delimiting: only the outer length is declared.
// PayloadReader wraps one payload and fails any read that would cross its end.
//
// # Event records
//
// EventRecordEncoder writes string sample records with fixed 8-byte
// timestamps and 4-byte lengths for the event writer.
package encoding
