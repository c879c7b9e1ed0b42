// Package analyze contains the command that runs the full cash flow
// analysis over one or more statement files.
package analyze

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"finlight/cashflow-analyzer/cmd/root"
	"finlight/cashflow-analyzer/internal/docai"
	"finlight/cashflow-analyzer/internal/models"
	"finlight/cashflow-analyzer/internal/pipeline"
	"finlight/cashflow-analyzer/internal/report"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	housingFlag string
	formatFlag  string
	outputFlag  string
	rulesFlag   string

	// Cmd is the analyze command.
	Cmd = &cobra.Command{
		Use:   "analyze [files...]",
		Short: "Analyze bank statement files into a cash flow profile",
		Long: `Analyze extracts transactions from the given statement files (CSV, XLSX,
PDF or images), categorizes them, removes duplicates and reports monthly
deposits, expenses and leftover together with a confidence score.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAnalyze,
	}
)

func init() {
	Cmd.Flags().StringVar(&housingFlag, "housing", "", "applicant's stated monthly housing payment")
	Cmd.Flags().StringVarP(&formatFlag, "format", "f", "json", "output format: json, csv or xlsx")
	Cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "output file (default: stdout)")
	Cmd.Flags().StringVar(&rulesFlag, "rules", "", "YAML file overriding categorization and flag rules")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := root.Config()
	logger := root.Logger()

	housing := decimal.Zero
	if housingFlag != "" {
		parsed, err := decimal.NewFromString(housingFlag)
		if err != nil {
			return fmt.Errorf("invalid --housing value %q: %w", housingFlag, err)
		}
		housing = parsed
	}

	rulesPath := rulesFlag
	if rulesPath == "" {
		rulesPath = cfg.Flags.RulesFile
	}
	rules, err := docai.LoadRules(rulesPath)
	if err != nil {
		return err
	}

	files, err := readInputs(args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client, err := docai.NewGeminiClient(ctx, cfg.AI.APIKey, cfg.AI.Model, rules, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	analyzer := pipeline.NewAnalyzer(client, logger, cfg, rules)
	analysis, err := analyzer.Analyze(ctx, files, housing)
	if err != nil {
		return err
	}

	for _, warning := range analysis.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", warning)
	}

	out, err := report.NewGenerator(logger).Generate(analysis, formatFlag)
	if err != nil {
		return err
	}

	if outputFlag == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	return os.WriteFile(outputFlag, out, 0o600)
}

func readInputs(paths []string) ([]models.FileInput, error) {
	var files []models.FileInput
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("could not read %s: %w", path, err)
		}
		files = append(files, models.FileInput{
			Filename:  filepath.Base(path),
			Data:      data,
			Extension: strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
		})
	}
	return files, nil
}
