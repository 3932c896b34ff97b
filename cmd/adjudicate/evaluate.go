package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/claims-intake/internal/domain/adjudication"
)

// snapshotFile is the evaluate input: the four engine inputs in one document
type snapshotFile struct {
	Claim      adjudication.ClaimSnapshot      `json:"claim"`
	Policy     adjudication.PolicySnapshot     `json:"policy"`
	AIAnalysis adjudication.AIAnalysisSnapshot `json:"ai_analysis"`
	FraudScore adjudication.Number             `json:"fraud_score"`
}

type evaluateFlags struct {
	input              string
	maxAutoApprove     float64
	requiredConfidence float64
	maxFraudScore      float64
	compact            bool
}

func newEvaluateCmd(app *cli) *cobra.Command {
	flags := &evaluateFlags{}

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a claim snapshot and print the verdict",
		Long: `Reads a JSON document of the form

  {
    "claim":       {"estimated_damage_cost": 1500},
    "policy":      {"status": "Active", "coverage_limit": 50000, "deductible": 500},
    "ai_analysis": {"confidence": 0.95, "red_flags": []},
    "fraud_score": 5
  }

and prints the verdict. The exit status is 0 for every verdict; only unreadable
input or invalid thresholds fail.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			thresholds := app.cfg.Adjudication
			if cmd.Flags().Changed("max-auto-approve") {
				thresholds.MaxAutoApproveAmount = flags.maxAutoApprove
			}
			if cmd.Flags().Changed("required-confidence") {
				thresholds.RequiredAIConfidence = flags.requiredConfidence
			}
			if cmd.Flags().Changed("max-fraud-score") {
				thresholds.MaxFraudScore = flags.maxFraudScore
			}

			engine, err := adjudication.New(thresholds)
			if err != nil {
				return err
			}

			in, closeInput, err := openInput(flags.input, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer closeInput()

			verdict, err := evaluate(engine, in)
			if err != nil {
				return err
			}

			app.logger.Info("Claim snapshot evaluated",
				zap.String("input", flags.input),
				zap.String("status", verdict.Status.String()),
				zap.Int("findings", len(verdict.Findings)))

			return writeVerdict(cmd.OutOrStdout(), verdict, flags.compact)
		},
	}

	defaults := adjudication.DefaultThresholds()
	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "snapshot JSON file, or - for stdin")
	cmd.Flags().Float64Var(&flags.maxAutoApprove, "max-auto-approve", defaults.MaxAutoApproveAmount, "override adjudication.max_auto_approve_amount")
	cmd.Flags().Float64Var(&flags.requiredConfidence, "required-confidence", defaults.RequiredAIConfidence, "override adjudication.required_ai_confidence")
	cmd.Flags().Float64Var(&flags.maxFraudScore, "max-fraud-score", defaults.MaxFraudScore, "override adjudication.max_fraud_score")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "print the verdict on a single line")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "-" {
		return stdin, func() {}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func evaluate(engine adjudication.Engine, r io.Reader) (adjudication.Verdict, error) {
	var snapshot snapshotFile
	if err := json.NewDecoder(r).Decode(&snapshot); err != nil {
		return adjudication.Verdict{}, fmt.Errorf("decode snapshot: %w", err)
	}

	return engine.Evaluate(snapshot.Claim, snapshot.Policy, snapshot.AIAnalysis, snapshot.FraudScore), nil
}

func writeVerdict(w io.Writer, verdict adjudication.Verdict, compact bool) error {
	enc := json.NewEncoder(w)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(verdict)
}
