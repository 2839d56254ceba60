package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/arloliu/xdf"
	"github.com/arloliu/xdf/compress"
	"github.com/arloliu/xdf/errs"
	"github.com/arloliu/xdf/format"
	"github.com/arloliu/xdf/internal/cli"
)

var codecNames = map[string]format.CompressionType{
	"none": format.CompressionNone,
	"zstd": format.CompressionZstd,
	"s2":   format.CompressionS2,
	"lz4":  format.CompressionLZ4,
}

func (a *app) newPackCommand(v *viper.Viper) (*cobra.Command, error) {
	var codec string
	cmd := &cobra.Command{
		Use:   "pack <in> <out>",
		Short: "Recompress an XDF recording",
		Long: `Recompress an XDF recording.

The input may be plain or compressed; it is fully decoded first so a
corrupt recording is never packed. The output codec defaults to the one
implied by the output extension (.xdfz/.zst: zstd, .s2: s2, .lz4: lz4).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPack(cmd.OutOrStdout(), args[0], args[1], codec)
		},
	}

	err := cli.BindOptions(v, cmd.Flags(), []cli.Opt{
		cli.NewOpt(&codec, "codec", "", "output codec: none, zstd, s2 or lz4"),
	})

	return cmd, err
}

func resolveCodec(name, out string) (compress.Codec, error) {
	ct := compress.ByExtension(out)
	if name != "" {
		var ok bool
		if ct, ok = codecNames[strings.ToLower(name)]; !ok {
			return nil, fmt.Errorf("%w: %q", errs.ErrUnsupportedCompression, name)
		}
	}

	return compress.GetCodec(ct)
}

func (a *app) runPack(w io.Writer, in, out, codecName string) (err error) {
	codec, err := resolveCodec(codecName, out)
	if err != nil {
		return err
	}
	if sameFile(in, out) {
		return fmt.Errorf("input and output are the same file: %s", in)
	}

	if _, err := xdf.LoadFile(in, xdf.WithLogger(a.log)); err != nil {
		return err
	}

	start := time.Now()
	src, err := os.Open(in)
	if err != nil {
		return err
	}
	defer src.Close()

	plain, _, err := compress.NewDetectingReader(src)
	if err != nil {
		return err
	}
	defer plain.Close()

	dst, err := os.Create(out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := dst.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(out)
		}
	}()

	cw, err := codec.NewWriter(dst)
	if err != nil {
		return err
	}
	n, err := io.Copy(cw, plain)
	if err != nil {
		_ = cw.Close()
		return fmt.Errorf("%s: %w", out, err)
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("%s: %w", out, err)
	}

	fi, err := dst.Stat()
	if err != nil {
		return err
	}
	stats := compress.CompressionStats{
		Algorithm:         codec.Type(),
		OriginalSize:      n,
		CompressedSize:    fi.Size(),
		CompressionTimeNs: time.Since(start).Nanoseconds(),
	}

	a.log.Debug("packed recording",
		zap.String("in", in),
		zap.String("out", out),
		zap.Stringer("codec", stats.Algorithm),
		zap.Float64("ratio", stats.CompressionRatio()),
		zap.Duration("took", time.Duration(stats.CompressionTimeNs)),
	)
	fmt.Fprintf(w, "Packed %s -> %s (%s): %s -> %s, %.1f%% saved\n",
		filepath.Base(in), filepath.Base(out), stats.Algorithm,
		humanize.Bytes(uint64(stats.OriginalSize)), humanize.Bytes(uint64(stats.CompressedSize)), stats.SpaceSavings())

	return nil
}

func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}

	return os.SameFile(ai, bi)
}
