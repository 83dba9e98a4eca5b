package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/taxmate/taxmate-backend/internal/domain"
	"github.com/taxmate/taxmate-backend/internal/repository/postgres"
	"github.com/taxmate/taxmate-backend/internal/service"
	"github.com/taxmate/taxmate-backend/internal/util"
	"github.com/xuri/excelize/v2"
)

var (
	period      string
	workspaceID int32
	outputPath  string
)

var rootCmd = &cobra.Command{
	Use:   "basexport",
	Short: "Export a workspace's BAS report to an XLSX worksheet",
	Long: `basexport builds the Business Activity Statement figures for a workspace
and tax period (e.g. 2024Q3) and writes them to an XLSX file ready to
transcribe onto the ATO form.`,
	RunE: runExport,
}

func init() {
	rootCmd.Flags().StringVarP(&period, "period", "p", "", "tax period label, e.g. 2024Q3 (default: current quarter)")
	rootCmd.Flags().Int32VarP(&workspaceID, "workspace", "w", 0, "workspace ID (required)")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file path (default: bas-<period>.xlsx)")
	rootCmd.MarkFlagRequired("workspace")
}

func runExport(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if period == "" {
		period = util.CurrentTaxPeriod(time.Now().UTC())
	}
	if _, err := util.ParseTaxPeriod(period); err != nil {
		return fmt.Errorf("invalid period %q: %w", period, err)
	}
	if outputPath == "" {
		outputPath = fmt.Sprintf("bas-%s.xlsx", period)
	}

	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	basService := service.NewBASService(service.NewGSTService(), postgres.NewTransactionRepository(pool))
	report, err := basService.BuildWorkspaceReport(workspaceID, period)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	if err := writeWorkbook(report, outputPath); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	log.Info().
		Int32("workspace_id", workspaceID).
		Str("period", period).
		Int("transactions", report.TransactionCount).
		Str("output", outputPath).
		Msg("BAS report exported")
	return nil
}

// writeWorkbook lays the report out as label/figure rows, one BAS field per
// row, using the ATO box codes.
func writeWorkbook(report *domain.BASReport, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "BAS"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Tax period", report.TaxPeriod},
		{"Generated at", report.GeneratedAt.Format(time.RFC3339)},
		{"Transactions", report.TransactionCount},
		{},
		{"G1 Total sales", report.G1.StringFixed(2)},
		{"G10 Capital purchases", report.G10.StringFixed(2)},
		{"G11 Total purchases", report.G11.StringFixed(2)},
		{"1A GST on sales", report.OneA.StringFixed(2)},
		{"1B GST on purchases", report.OneB.StringFixed(2)},
		{},
		{"Net GST", report.NetGST.StringFixed(2)},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return err
	}

	return f.SaveAs(path)
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Export failed")
		os.Exit(1)
	}
}
