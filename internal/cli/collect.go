package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MinhaKim02/protest-crawling-database/internal/assembly"
	"github.com/MinhaKim02/protest-crawling-database/internal/collector"
	"github.com/MinhaKim02/protest-crawling-database/internal/region"
	"github.com/MinhaKim02/protest-crawling-database/internal/scraper"
	"github.com/MinhaKim02/protest-crawling-database/internal/smpa"
	"github.com/MinhaKim02/protest-crawling-database/internal/storage"
)

// Source constructors, replaced in tests
var (
	newSpaticSource = func() collector.Source {
		return scraper.New()
	}
	newBoardSource = func(attachmentsDir string) collector.Source {
		return smpa.NewSource(attachmentsDir)
	}
)

func newCollectCmd() *cobra.Command {
	var format, policyName string

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Scrape the SPATIC schedule and merge it into the daily snapshots",
		Long: `Fetches the latest "행사 및 집회" post from SPATIC, geocodes its places and
merges the records into the day's snapshot: existing rows are kept and only their
empty fields are filled. The Jongno subset is written alongside.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			of, err := parseFormat(format, FormatText, FormatJSON)
			if err != nil {
				return err
			}
			policy, err := assembly.ParsePolicy(policyName)
			if err != nil {
				return err
			}

			c := &collector.Collector{
				Source:   newSpaticSource(),
				Geocoder: newGeocoder(region.JongnoJung),
				Policy:   policy,
			}
			return runCollector(cmd, c, storage.MainPrefix, of)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&policyName, "policy", string(assembly.PolicyMerge), "Reconcile policy: merge or overwrite")
	return cmd
}

func newIntegratedCmd() *cobra.Command {
	var (
		format         string
		pdfPath        string
		dateText       string
		attachmentsDir string
		prefix         string
		policyName     string
		noSeoulFilter  bool
	)

	cmd := &cobra.Command{
		Use:   "integrated",
		Short: "Parse the police agency's daily PDF and overwrite the integrated snapshots",
		Long: `Downloads today's "오늘의 집회" PDF from the Seoul Metropolitan Police Agency
board (or reads a local one with --pdf), parses it, geocodes within Seoul and replaces
the day's integrated snapshot and its Jongno subset.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			of, err := parseFormat(format, FormatText, FormatJSON)
			if err != nil {
				return err
			}
			policy, err := assembly.ParsePolicy(policyName)
			if err != nil {
				return err
			}

			var source collector.Source
			if pdfPath != "" {
				if _, err := os.Stat(pdfPath); err != nil {
					return fmt.Errorf("input PDF not found: %s", pdfPath)
				}
				date, err := resolveDate(dateText)
				if err != nil {
					return err
				}
				source = smpa.NewFileSource(pdfPath, date)
			} else {
				source = newBoardSource(attachmentsDir)
			}

			area := region.Seoul
			if noSeoulFilter {
				area = region.Anywhere
			}

			c := &collector.Collector{
				Source:   source,
				Geocoder: newGeocoder(area),
				Policy:   policy,
			}
			return runCollector(cmd, c, prefix, of)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "Parse a local PDF instead of downloading today's")
	cmd.Flags().StringVar(&dateText, "date", "", "Date of the local PDF (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&attachmentsDir, "attachments-dir", "attachments", "Directory downloaded PDFs are saved in")
	cmd.Flags().StringVar(&prefix, "prefix", storage.IntegratedPrefix, "Snapshot name prefix")
	cmd.Flags().StringVar(&policyName, "policy", string(assembly.PolicyOverwrite), "Reconcile policy: merge or overwrite")
	cmd.Flags().BoolVar(&noSeoulFilter, "no-seoul-filter", false, "Accept geocoding results outside Seoul")
	return cmd
}

// runCollector opens the stores for prefix, runs one collection and prints the report
func runCollector(cmd *cobra.Command, c *collector.Collector, prefix string, format OutputFormat) error {
	prefix = strings.TrimSpace(prefix)

	store, err := storage.New(flagDataDir, prefix)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	district, err := storage.New(flagDataDir, storage.DistrictPrefix(prefix))
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	c.Store = store
	c.DistrictStore = district

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := c.Run(ctx)
	if err != nil {
		if ctx.Err() == context.Canceled {
			return fmt.Errorf("interrupted: %w", err)
		}
		return err
	}

	if err := WriteReport(cmd.OutOrStdout(), report, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// resolveDate parses a --date value; empty means today in Seoul
func resolveDate(text string) (assembly.Date, error) {
	if strings.TrimSpace(text) == "" {
		return assembly.DateOf(now()), nil
	}
	date := assembly.ParseDate(text)
	if !date.Valid() {
		return assembly.Date{}, fmt.Errorf("invalid date: %s (expected YYYY-MM-DD)", text)
	}
	return date, nil
}
