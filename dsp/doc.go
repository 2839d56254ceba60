// Package dsp implements the rational sample rate converter used to bring
// streams to a common rate.
//
// A Factory turns an (inRate, outRate, resample.Quality) triple into a
// Polyphase converter: the ratio is approximated by L/M with continued
// fractions, a Kaiser-windowed sinc prototype is designed at L*inRate, and
// the prototype is split into L phases. Each output sample is one dot
// product of a phase against the recent input.
//
//	factory, _ := dsp.NewFactory()
//	orch, _ := resample.NewOrchestrator(factory)
//	report, err := orch.Run(ctx, file, 256)
package dsp
