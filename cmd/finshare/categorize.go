package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Veraticus/finshare-ai/internal/categorizer"
	"github.com/Veraticus/finshare-ai/internal/cli"
	"github.com/Veraticus/finshare-ai/internal/config"
	"github.com/Veraticus/finshare-ai/internal/model"
	"github.com/Veraticus/finshare-ai/internal/ofx"
	"github.com/spf13/cobra"
)

func categorizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categorize [merchant text]",
		Short: "Categorize merchant text or an OFX statement",
		Long: `Categorize a single merchant description, or every transaction in an
OFX/QFX statement with --ofx. Pass --user to apply that user's learned keywords.`,
		Example: `  finshare categorize "Starbucks Coffee #4521"
  finshare categorize --user alice --ofx ~/Downloads/checking.qfx`,
		RunE: runCategorize,
	}

	cmd.Flags().String("ofx", "", "OFX/QFX statement to categorize")
	cmd.Flags().String("user", "", "user whose personal keywords apply")
	cmd.Flags().String("type", string(model.TransactionDebit), "transaction type for merchant text (DEBIT or CREDIT)")
	cmd.Flags().Bool("explain", false, "show the keyword score of every matching category")

	return cmd
}

func runCategorize(cmd *cobra.Command, args []string) error {
	ofxPath, _ := cmd.Flags().GetString("ofx")
	userID, _ := cmd.Flags().GetString("user")
	typeFlag, _ := cmd.Flags().GetString("type")
	explain, _ := cmd.Flags().GetBool("explain")

	text := strings.TrimSpace(strings.Join(args, " "))
	if ofxPath == "" && text == "" {
		return fmt.Errorf("provide merchant text or --ofx")
	}
	txType, err := model.ParseTransactionType(typeFlag)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.warm(ctx); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	categorize := func(text string, txType model.TransactionType, amount *float64) model.CategorizationResult {
		result := a.categorizer.Categorize(categorizer.Request{
			MerchantText:    text,
			TransactionType: txType,
			Amount:          amount,
			UserID:          userID,
		})
		return a.refiner.Refine(ctx, text, result)
	}

	if ofxPath == "" {
		fmt.Fprintln(out, cli.FormatResult(text, categorize(text, txType, nil)))
		if explain {
			printScores(out, a.categorizer.Scores(text, userID))
		}
		return nil
	}

	f, err := os.Open(config.ExpandPath(ofxPath))
	if err != nil {
		return fmt.Errorf("failed to open statement: %w", err)
	}
	defer func() { _ = f.Close() }()

	stmt, err := ofx.NewParser(a.logger).Parse(ctx, f)
	if err != nil {
		return err
	}
	if len(stmt.Transactions) == 0 {
		fmt.Fprintln(out, cli.FormatWarning("No transactions found in statement"))
		return nil
	}

	rows := make([][]string, 0, len(stmt.Transactions))
	for _, tx := range stmt.Transactions {
		amount := tx.Amount
		result := categorize(tx.MerchantText(), tx.Type, &amount)
		rows = append(rows, []string{
			tx.Date.Format("2006-01-02"),
			tx.MerchantText(),
			string(tx.Type),
			fmt.Sprintf("%.2f", tx.Amount),
			string(result.Category),
			fmt.Sprintf("%.2f", result.Confidence),
		})
	}

	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("%d transactions from %s", len(stmt.Transactions), strings.Join(stmt.Accounts, ", "))))
	fmt.Fprintln(out, cli.RenderTable([]string{"Date", "Merchant", "Type", "Amount", "Category", "Confidence"}, rows))
	return nil
}

func printScores(out io.Writer, scores model.CategoryScores) {
	if len(scores) == 0 {
		fmt.Fprintln(out, cli.FormatWarning("No keywords matched"))
		return
	}
	rows := make([][]string, 0, len(scores))
	for _, s := range scores {
		rows = append(rows, []string{string(s.Category), fmt.Sprintf("%.2f", s.Score)})
	}
	fmt.Fprintln(out, cli.RenderTable([]string{"Category", "Score"}, rows))
}
