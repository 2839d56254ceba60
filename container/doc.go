// Package container decodes XDF containers into an in-memory model.
//
// An XDF container is the literal "XDF:" followed by chunks of the form
//
//	[width:1][length:1|4|8][tag:2][payload:length-2]
//
// carrying a file header, per-stream headers and footers, sample runs and
// clock offset measurements for any number of independently clocked streams.
//
// # Core Types
//
//   - Decoder: Reads a container into a File
//   - File: Streams, the global event log, dictionary and statistics
//   - Stream: One channel group with its samples, timestamps and clock table
//   - Event: One string sample, routed to the global event log
//   - Dictionary: Interned event texts
//
// # Decoding Workflow
//
//	dec, err := container.NewDecoder(container.WithLogger(logger))
//	f, err := dec.Decode(r)
//
//	// Post-processing, in this order
//	err = f.Synchronize()      // apply clock offsets
//	f.LoadDictionary()         // intern event texts
//	stats := f.ComputeStatistics()
//
// Streams are registered on the first chunk of any type that references
// them, so Samples may precede their StreamHeader. Such samples cannot be
// interpreted and are skipped (see ChunkCounts.SkippedSamples).
//
// # Appending Events
//
// WriteEvents emits a StreamHeader and a Samples chunk for a new string
// stream; appending its output to a container adds the events to the file:
//
//	header := container.NewMarkerHeader("Annotations", "Markers")
//	_, err := container.WriteEvents(w, f.NextStreamID(), header, events)
//
// # Error Handling
//
// Framing errors are fatal and returned wrapped around the sentinels of the
// errs package. Unknown tags, samples for streams without a usable header
// and malformed XML are logged through the configured zap logger and
// skipped.
package container
