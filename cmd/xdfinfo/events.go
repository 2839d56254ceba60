package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arloliu/xdf"
	"github.com/arloliu/xdf/container"
	"github.com/arloliu/xdf/errs"
	"github.com/arloliu/xdf/internal/cli"
)

type eventsOptions struct {
	limit      int
	stream     int
	dictionary bool
}

func (a *app) newEventsCommand(v *viper.Viper) (*cobra.Command, error) {
	var o eventsOptions
	cmd := &cobra.Command{
		Use:   "events <file>",
		Short: "List the markers of an XDF recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEvents(cmd.OutOrStdout(), args[0], o)
		},
	}

	err := cli.BindOptions(v, cmd.Flags(), []cli.Opt{
		cli.NewOpt(&o.limit, "limit", 0, "print at most this many events (0: all)"),
		cli.NewOpt(&o.stream, "stream", -1, "only print events of the stream with this id (-1: all)"),
		cli.NewOpt(&o.dictionary, "dictionary", false, "print distinct event texts with their counts instead"),
	})

	return cmd, err
}

func (a *app) runEvents(w io.Writer, path string, o eventsOptions) error {
	f, err := xdf.LoadFile(path, xdf.WithLogger(a.log))
	if err != nil {
		return err
	}

	if o.dictionary {
		printDictionary(w, f)
		return nil
	}

	events := f.Events
	if o.stream >= 0 {
		s, ok := f.StreamByID(uint32(o.stream)) //nolint:gosec
		if !ok {
			return fmt.Errorf("%w: id %d", errs.ErrStreamNotFound, o.stream)
		}
		events = streamEvents(f.Events, s.Index)
	}

	for i, e := range events {
		if o.limit > 0 && i >= o.limit {
			fmt.Fprintf(w, "... %s more\n", humanize.Comma(int64(len(events)-i)))
			break
		}
		fmt.Fprintf(w, "%.6f\t%s\t%s\n", e.Timestamp, f.Streams[e.StreamIndex].Info.Name, e.Text)
	}

	return nil
}

func streamEvents(events []container.Event, index int) []container.Event {
	var out []container.Event
	for _, e := range events {
		if e.StreamIndex == index {
			out = append(out, e)
		}
	}

	return out
}

func printDictionary(w io.Writer, f *container.File) {
	counts := make([]int, f.Dictionary.Len())
	for _, id := range f.EventType {
		counts[id]++
	}
	for _, entry := range f.Dictionary.Entries() {
		fmt.Fprintf(w, "%d\t%d\t%s\n", entry.ID, counts[entry.ID], entry.Text)
	}
}
