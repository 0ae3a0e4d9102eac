package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/guisu-dotfiles/guisu/cmd"
	"github.com/guisu-dotfiles/guisu/pkg/engine"
)

// applyFlags holds applyCommand's flags.
var applyFlags struct {
	pipelineFlags
	force bool
}

var applyCommand = &cobra.Command{
	Use:   "apply",
	Short: "Reconcile the destination tree with the source repository",
	Args:  cmd.DisallowArguments,
	Run:   cmd.Mainify(runApply),
}

func init() {
	applyFlags.register(applyCommand.Flags())
	applyCommand.Flags().BoolVar(&applyFlags.force, "force", false, "overwrite unmanaged conflicting destination files")
}

func runApply(command *cobra.Command, _ []string) error {
	return runProfile(rootFlags.profile, "apply", func() error {
		p, err := buildPipeline(&applyFlags.pipelineFlags, rootFlags.logLevel)
		if err != nil {
			return err
		}
		defer p.ledger.Close()

		classifications, err := runReadPath(p)
		if err != nil {
			return err
		}

		decisions := decisionPolicy(classifications, applyFlags.force)

		applier := &engine.Applier{
			Root:   p.config.DestinationRoot,
			Ledger: p.ledger,
			Logger: p.config.Logger,
		}
		report := applier.Apply(classifications, decisions, nil)

		if applyFlags.json {
			return renderReportJSON(report)
		}
		renderReportHuman(report)
		return reportToExitError(report)
	})
}

// decisionPolicy implements the fixed decision policy SPEC_FULL.md §4
// describes: Apply for Added/Modified-source/Removed, Skip for
// Modified-dest/Conflict/Added-conflict. --force flips Added-conflict to
// Apply (overwrite), matching spec.md §4.7's "explicit override".
// Interactive, per-conflict prompting is out of scope (spec.md §1).
func decisionPolicy(classifications []engine.Classification, force bool) map[string]engine.Decision {
	decisions := make(map[string]engine.Decision, len(classifications))
	for _, c := range classifications {
		key := c.Path.String()
		switch c.Status {
		case engine.StatusAdded, engine.StatusModifiedSource, engine.StatusRemoved:
			decisions[key] = engine.Apply
		case engine.StatusAddedConflict:
			if force {
				decisions[key] = engine.Apply
			} else {
				decisions[key] = engine.Skip
			}
		case engine.StatusModifiedDest, engine.StatusConflict:
			decisions[key] = engine.Skip
		default:
			decisions[key] = engine.Skip
		}
	}
	return decisions
}

func renderReportHuman(report engine.Report) {
	total := report.Added + report.Modified + report.Removed + report.Skipped
	fmt.Printf(
		"%s added, %s modified, %s removed, %s skipped (%s paths considered)\n",
		humanize.Comma(int64(report.Added)),
		humanize.Comma(int64(report.Modified)),
		humanize.Comma(int64(report.Removed)),
		humanize.Comma(int64(report.Skipped)),
		humanize.Comma(int64(total)),
	)
	for _, failure := range report.Errors {
		fmt.Fprintf(os.Stderr, "error: %s: %v\n", failure.Path.String(), failure.Err)
	}
}

type jsonReport struct {
	Added    int      `json:"added"`
	Modified int      `json:"modified"`
	Removed  int      `json:"removed"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

func renderReportJSON(report engine.Report) error {
	out := jsonReport{
		Added:    report.Added,
		Modified: report.Modified,
		Removed:  report.Removed,
		Skipped:  report.Skipped,
	}
	for _, failure := range report.Errors {
		out.Errors = append(out.Errors, fmt.Sprintf("%s: %v", failure.Path.String(), failure.Err))
	}
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// reportToExitError surfaces per-path apply failures as a command error so
// the process exits non-zero, without losing the report already printed.
func reportToExitError(report engine.Report) error {
	if len(report.Errors) == 0 {
		return nil
	}
	return fmt.Errorf("%d path(s) failed to apply", len(report.Errors))
}
