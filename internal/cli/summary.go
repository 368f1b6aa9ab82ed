package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/olekukonko/tablewriter"

	"github.com/ytget/ytdown/internal/download"
	"github.com/ytget/ytdown/internal/model"
	"github.com/ytget/ytdown/internal/platform"
)

// commandArgs returns the yt-dlp command line for opts, replaced in tests
var commandArgs = func(ctx context.Context, opts *download.Options, url string) []string {
	return displayArgs(opts.Command(nil).BuildCommand(ctx, url).Args)
}

// displayArgs names the executable yt-dlp, the first argument is empty or a
// cache path depending on how the library resolved it
func displayArgs(args []string) []string {
	out := []string{platform.YTDLPCommand}
	if len(args) > 1 {
		out = append(out, args[1:]...)
	}
	return out
}

// writeSummary prints the configuration record and the equivalent command line
func writeSummary(ctx context.Context, w io.Writer, mode model.Mode, req download.Request, opts *download.Options) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Option", "Value"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(summaryRows(mode, req, opts))
	table.Render()

	_, err := fmt.Fprintln(w, shellescape.QuoteCommand(commandArgs(ctx, opts, req.URL)))
	return err
}

func summaryRows(mode model.Mode, req download.Request, opts *download.Options) [][]string {
	rows := [][]string{
		{"type", mode.String()},
		{"url", req.URL},
		{"output", opts.OutputTemplate},
		{"format", orNone(opts.Format)},
	}
	if mode == model.ModePlaylist {
		rows = append(rows, []string{"playlist mode", req.PlaylistMode.String()})
	}

	pp := make([]string, 0, len(opts.PostProcessors))
	for _, p := range opts.PostProcessors {
		pp = append(pp, p.String())
	}
	rows = append(rows, []string{"post-processors", orNone(strings.Join(pp, ", "))})

	subs := "off"
	if opts.WriteSubs {
		subs = strings.Join(opts.SubLangs, ",")
		if opts.EmbedSubs {
			subs += " (embedded)"
		}
	}
	rows = append(rows,
		[]string{"subtitles", subs},
		[]string{"skip download", strconv.FormatBool(opts.SkipDownload)},
		[]string{"rate limit", orNone(opts.RateLimit)},
		[]string{"concurrent fragments", strconv.Itoa(opts.ConcurrentFragments)},
		[]string{"retries", fmt.Sprintf("%d (fragments %d)", opts.Retries, opts.FragmentRetries)},
		[]string{"socket timeout", opts.SocketTimeout.String()},
		[]string{"cache dir", opts.CacheDir},
		[]string{"progress", strconv.FormatBool(!opts.NoProgress)},
	)
	return rows
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
