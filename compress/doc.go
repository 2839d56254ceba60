// Package compress provides whole-file compression codecs for XDF containers.
//
// XDF itself stores samples uncompressed. Recordings are commonly archived
// compressed, so the loader accepts plain, Zstandard, S2 and LZ4 framed
// streams and detects which one it is looking at from the leading magic
// bytes:
//   - None: plain "XDF:" container
//   - Zstd: best ratio, the default for ".xdfz" archives
//   - S2: fast, good ratio
//   - LZ4: fastest decompression
//
// Every codec is stream oriented:
//
//	codec, _ := compress.GetCodec(format.CompressionZstd)
//	w, _ := codec.NewWriter(file)
//	_, _ = io.Copy(w, plain)
//	_ = w.Close()
//
//	rc, ct, err := compress.NewDetectingReader(file)
//	if err != nil {
//		return err
//	}
//	defer rc.Close()
//
// Readers and writers are backed by pooled decoders and encoders; Close
// returns them to the pool and never closes the underlying stream.
package compress
