package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/Digital-Shane/libby/internal/media"
	"github.com/Digital-Shane/libby/internal/skill"
	"github.com/mattn/go-runewidth"
	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"
)

var libraryFilter string

var libraryCmd = &cobra.Command{
	Use:       "library [movies|shows]",
	Short:     "List what is queued in Radarr and Sonarr",
	Long:      `Print the queued library. With no argument both movies and shows are fetched at the same time.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"movies", "shows"},
	RunE:      runLibraryCommand,
}

// libraryListing is one kind's library or the error that prevented listing it.
type libraryListing struct {
	Kind    media.Kind
	Results []media.MediaResult
	Err     error
}

// fetchLibraries lists every kind concurrently, keeping the order of kinds.
func fetchLibraries(ctx context.Context, providers skill.Providers, kinds []media.Kind, filter string) []libraryListing {
	listings := make([]libraryListing, len(kinds))

	var wg conc.WaitGroup
	for i, kind := range kinds {
		wg.Go(func() {
			listings[i].Kind = kind
			client, err := providers.Resolve(kind)
			if err != nil {
				listings[i].Err = err
				return
			}
			listings[i].Results, listings[i].Err = client.List(ctx, filter)
		})
	}
	wg.Wait()
	return listings
}

// writeLibrary prints each listing as an aligned title/year/quality table.
func writeLibrary(w io.Writer, listings []libraryListing) {
	for i, l := range listings {
		if i > 0 {
			fmt.Fprintln(w)
		}
		header := strings.ToUpper(string(l.Kind))
		if l.Err != nil {
			fmt.Fprintf(w, "%s: %v\n", header, l.Err)
			continue
		}
		fmt.Fprintf(w, "%s (%d)\n", header, len(l.Results))
		if len(l.Results) == 0 {
			fmt.Fprintln(w, "  nothing queued")
			continue
		}

		results := append([]media.MediaResult(nil), l.Results...)
		sort.SliceStable(results, func(a, b int) bool {
			return strings.ToLower(results[a].Title) < strings.ToLower(results[b].Title)
		})

		width := 0
		for _, r := range results {
			width = max(width, runewidth.StringWidth(r.Title))
		}
		width = min(width, 60)

		for _, r := range results {
			title := runewidth.FillRight(runewidth.Truncate(r.Title, width, "…"), width)
			line := fmt.Sprintf("  %s  %4s", title, r.YearString())
			if r.QualityLabel != "" {
				line += "  " + r.QualityLabel
			}
			fmt.Fprintln(w, strings.TrimRight(line, " "))
		}
	}
}

func runLibraryCommand(cmd *cobra.Command, args []string) error {
	kinds := media.Kinds
	if len(args) == 1 {
		kind, err := media.ParseKind(args[0])
		if err != nil {
			return err
		}
		kinds = []media.Kind{kind}
	}

	a, err := newApp(os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	listings := fetchLibraries(cmd.Context(), a.registry, kinds, libraryFilter)
	writeLibrary(cmd.OutOrStdout(), listings)

	for _, l := range listings {
		if l.Err != nil {
			return fmt.Errorf("failed to list %s", l.Kind)
		}
	}
	return nil
}

func init() {
	libraryCmd.Flags().StringVarP(&libraryFilter, "filter", "f", "", "Only show titles containing this text")
	rootCmd.AddCommand(libraryCmd)
}
