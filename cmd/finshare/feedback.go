package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/finshare-ai/internal/cli"
	"github.com/Veraticus/finshare-ai/internal/config"
	"github.com/Veraticus/finshare-ai/internal/model"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func feedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Record and inspect category corrections",
		Long: `Corrections teach finshare a user's own merchant keywords. Every batch of
corrections (personalization.batch_size) updates that user's keywords.`,
	}

	cmd.AddCommand(feedbackAddCmd())
	cmd.AddCommand(feedbackImportCmd())
	cmd.AddCommand(feedbackListCmd())

	return cmd
}

func feedbackAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add <user> <merchant text> <corrected category>",
		Short:   "Record one correction",
		Example: `  finshare feedback add alice "Local Bike Shop" Shopping`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			predicted, _ := cmd.Flags().GetString("predicted")

			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if predicted == "" {
				predicted = string(a.categorizer.Categorize(requestFor(args[0], args[1])).Category)
			}

			receipt, err := a.feedback.Record(ctx, model.FeedbackRecord{
				UserID:            args[0],
				MerchantText:      args[1],
				PredictedCategory: model.Category(predicted),
				CorrectedCategory: model.Category(args[2]),
			})
			if err != nil {
				return err
			}

			msg := fmt.Sprintf("Recorded correction %d for %s", receipt.Count, args[0])
			if receipt.Adapted {
				msg += " (keywords updated)"
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(msg))
			return nil
		},
	}

	cmd.Flags().String("predicted", "", "category that was predicted (default: categorize the text now)")

	return cmd
}

// csvColumns is the header the import expects; the timestamp column is optional.
var csvColumns = []string{"user_id", "merchant_text", "predicted_category", "corrected_category", "timestamp"}

func feedbackImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import corrections from a CSV file",
		Long: `Import corrections from CSV with the columns
user_id, merchant_text, predicted_category, corrected_category[, timestamp].
A header row is detected and skipped. Timestamps are RFC 3339.`,
		Args: cobra.ExactArgs(1),
		RunE: runFeedbackImport,
	}

	cmd.Flags().Bool("skip-invalid", false, "skip rows that fail validation instead of stopping")

	return cmd
}

func runFeedbackImport(cmd *cobra.Command, args []string) error {
	skipInvalid, _ := cmd.Flags().GetBool("skip-invalid")

	f, err := os.Open(config.ExpandPath(args[0]))
	if err != nil {
		return fmt.Errorf("failed to open CSV: %w", err)
	}
	defer func() { _ = f.Close() }()

	records, err := readFeedbackCSV(f)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	bar := progressbar.NewOptions(len(records),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Importing corrections...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(cmd.ErrOrStderr())
		}),
	)

	var imported, skipped, adapted int
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		receipt, err := a.feedback.Record(ctx, rec)
		if err != nil {
			if !skipInvalid {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
			slog.Warn("skipping invalid correction", "row", i+1, "error", err)
			skipped++
		} else {
			imported++
			if receipt.Adapted {
				adapted++
			}
		}
		if err := bar.Add(1); err != nil {
			slog.Warn("failed to update progress bar", "error", err)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d corrections (%d keyword updates)", imported, adapted)))
	if skipped > 0 {
		fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("Skipped %d invalid rows", skipped)))
	}
	return nil
}

// readFeedbackCSV parses every row up front so a malformed file fails before
// anything is recorded.
func readFeedbackCSV(r io.Reader) ([]model.FeedbackRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records []model.FeedbackRecord
	for line := 1; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), csvColumns[0]) {
			continue
		}
		if len(row) < 4 {
			return nil, fmt.Errorf("line %d: expected at least 4 columns, got %d", line, len(row))
		}

		rec := model.FeedbackRecord{
			UserID:            row[0],
			MerchantText:      row[1],
			PredictedCategory: model.Category(strings.TrimSpace(row[2])),
			CorrectedCategory: model.Category(strings.TrimSpace(row[3])),
		}
		if len(row) > 4 && strings.TrimSpace(row[4]) != "" {
			ts, err := time.Parse(time.RFC3339, strings.TrimSpace(row[4]))
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid timestamp: %w", line, err)
			}
			rec.Timestamp = ts
		}
		records = append(records, rec)
	}
	return records, nil
}

func feedbackListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <user>",
		Short: "List a user's corrections and learned keywords",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if err := a.warm(ctx); err != nil {
				return err
			}

			examples, err := a.feedback.Examples(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(examples) == 0 {
				fmt.Fprintln(out, cli.FormatWarning("No corrections recorded for "+args[0]))
				return nil
			}

			rows := make([][]string, len(examples))
			for i, ex := range examples {
				rows[i] = []string{
					ex.Timestamp.Format(time.DateTime),
					ex.MerchantText,
					string(ex.PredictedCategory),
					string(ex.CorrectedCategory),
				}
			}
			fmt.Fprintln(out, cli.RenderTable([]string{"Recorded", "Merchant", "Predicted", "Corrected"}, rows))

			overlay := a.adapter.Overlay(args[0])
			if len(overlay) == 0 {
				return nil
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, cli.FormatTitle("Learned keywords"))
			for _, c := range a.catalog.List() {
				if tokens := overlay[c]; len(tokens) > 0 {
					fmt.Fprintf(out, "%s: %s\n", c, strings.Join(tokens, ", "))
				}
			}
			return nil
		},
	}
}
