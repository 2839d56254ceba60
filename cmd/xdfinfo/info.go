package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/xlab/treeprint"
	"go.uber.org/zap"

	"github.com/arloliu/xdf"
	"github.com/arloliu/xdf/container"
	"github.com/arloliu/xdf/internal/cli"
	"github.com/arloliu/xdf/resample"
)

type infoOptions struct {
	stats       bool
	tree        bool
	resample    float64
	concurrency int
}

func (o *infoOptions) opts() []cli.Opt {
	return []cli.Opt{
		cli.NewOpt(&o.stats, "stats", false, "print recording statistics"),
		cli.NewOpt(&o.tree, "tree", false, "print streams and channels as a tree"),
		cli.NewOpt(&o.resample, "resample", 0.0, "resample regular streams to this rate in Hz"),
		cli.NewOpt(&o.concurrency, "concurrency", 0, "streams resampled in parallel (0: one per CPU)"),
	}
}

func (a *app) runInfo(ctx context.Context, w io.Writer, path string, o infoOptions) error {
	if o.resample < 0 {
		return fmt.Errorf("--resample must not be negative, got %g", o.resample)
	}

	f, err := xdf.LoadFile(path, xdf.WithLogger(a.log))
	if err != nil {
		return err
	}

	for _, s := range f.Streams {
		fmt.Fprintf(w, "Stream: %s %d channels %d samples\n", s.Info.Name, s.Info.ChannelCount, s.SampleCount())
	}

	if o.stats {
		if err := printStats(w, path, f); err != nil {
			return err
		}
	}
	if o.tree {
		printTree(w, path, f)
	}
	if o.resample > 0 {
		return a.runResample(ctx, w, f, o)
	}

	return nil
}

func printStats(w io.Writer, path string, f *container.File) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}

	st := f.Stats
	fmt.Fprintf(w, "File: %s (%s, %s chunks)\n", filepath.Base(path), humanize.Bytes(uint64(fi.Size())), humanize.Comma(int64(f.Chunks.Total())))
	fmt.Fprintf(w, "Streams: %d, channels: %d, events: %s\n", len(f.Streams), st.TotalChannels, humanize.Comma(int64(len(f.Events))))
	fmt.Fprintf(w, "Major rate: %g Hz, max rate: %g Hz\n", st.MajorSrate, st.MaxSrate)
	if st.HasBounds {
		fmt.Fprintf(w, "Time span: %.3f .. %.3f (%.3f s)\n", st.MinTimestamp, st.MaxTimestamp, st.MaxTimestamp-st.MinTimestamp)
	}
	if n := f.Chunks.Unknown + f.Chunks.SkippedSamples; n > 0 {
		fmt.Fprintf(w, "Skipped: %d unknown chunks, %d samples chunks\n", f.Chunks.Unknown, f.Chunks.SkippedSamples)
	}

	return nil
}

func printTree(w io.Writer, path string, f *container.File) {
	tree := treeprint.New()
	root := tree.AddBranch(filepath.Base(path))
	for _, s := range f.Streams {
		br := root.AddBranch(fmt.Sprintf("%s (%s) id=%d", s.Info.Name, s.Info.Type, s.ID))
		br.AddNode("format: " + s.Info.ChannelFormat.String())
		br.AddNode(fmt.Sprintf("nominal rate: %g Hz", s.Info.NominalSrate))
		if s.HasEffectiveSrate {
			br.AddNode(fmt.Sprintf("effective rate: %.3f Hz", s.EffectiveSrate))
		}
		br.AddNode("samples: " + humanize.Comma(int64(s.SampleCount())))

		if len(s.Info.Channels) == 0 {
			continue
		}
		channels := br.AddBranch("channels")
		for i, c := range s.Info.Channels {
			channels.AddNode(channelLabel(i, c))
		}
	}

	fmt.Fprint(w, tree.String())
}

func channelLabel(i int, c container.ChannelDesc) string {
	label := c.Label
	if label == "" {
		label = fmt.Sprintf("ch%d", i)
	}

	var extra []string
	if c.Type != "" {
		extra = append(extra, c.Type)
	}
	if c.Unit != "" {
		extra = append(extra, c.Unit)
	}
	if len(extra) == 0 {
		return label
	}

	return label + " [" + strings.Join(extra, ", ") + "]"
}

func (a *app) runResample(ctx context.Context, w io.Writer, f *container.File, o infoOptions) error {
	opts := []resample.Option{resample.WithLogger(a.log)}
	if o.concurrency > 0 {
		opts = append(opts, resample.WithConcurrency(o.concurrency))
	}

	report, err := xdf.Resample(ctx, f, o.resample, opts...)
	if err != nil {
		return err
	}
	if err := report.Err(); err != nil {
		a.log.Warn("some streams were not resampled", zap.Error(err))
	}

	fmt.Fprintf(w, "Resampled to %g Hz: %d streams, %d skipped, total length %s samples\n",
		report.TargetRate, len(report.Resampled), len(report.Skipped), humanize.Comma(int64(report.TotalLength)))
	for _, i := range report.Resampled {
		s := f.Streams[i]
		fmt.Fprintf(w, "  %s: %s samples\n", s.Info.Name, humanize.Comma(int64(len(s.TimeSeries[0]))))
	}
	for _, e := range report.Skipped {
		fmt.Fprintf(w, "  %s: skipped: %v\n", f.Streams[e.StreamIndex].Info.Name, e.Err)
	}

	return nil
}
