package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/guisu-dotfiles/guisu/cmd"
	"github.com/guisu-dotfiles/guisu/pkg/engine"
)

// diffFlags holds diffCommand's flags.
var diffFlags struct {
	pipelineFlags
}

var diffCommand = &cobra.Command{
	Use:   "diff",
	Short: "Show what apply would change without changing anything",
	Args:  cmd.DisallowArguments,
	Run:   cmd.Mainify(runDiff),
}

func init() {
	diffFlags.register(diffCommand.Flags())
}

func runDiff(command *cobra.Command, _ []string) error {
	return runProfile(rootFlags.profile, "diff", func() error {
		p, err := buildPipeline(&diffFlags.pipelineFlags, rootFlags.logLevel)
		if err != nil {
			return err
		}
		defer p.ledger.Close()

		classifications, err := runReadPath(p)
		if err != nil {
			return err
		}

		if diffFlags.json {
			return renderJSON(classifications)
		}
		renderHuman(classifications)
		return nil
	})
}

// runReadPath drives Source Reader -> Content Processor -> Target State ->
// Reconciler, without any Applier invocation, per SPEC_FULL.md §4's
// description of "diff".
func runReadPath(p *pipeline) ([]engine.Classification, error) {
	source, err := engine.ReadSourceState(p.config)
	if err != nil {
		return nil, err
	}

	target, err := engine.BuildTargetState(source, p.processor, p.config)
	if err != nil {
		return nil, err
	}

	reader := engine.NewDestinationReader(p.config.DestinationRoot)
	classifications, err := engine.Reconcile(target, reader, p.ledger, p.config.Logger)
	if err != nil {
		return nil, err
	}

	sort.Slice(classifications, func(i, j int) bool {
		return classifications[i].Path.Less(classifications[j].Path)
	})

	return classifications, nil
}

// renderHuman prints one colored line per non-Synced path, matching the
// teacher's dual human/machine output convention.
func renderHuman(classifications []engine.Classification) {
	counts := map[engine.Status]int{}
	for _, c := range classifications {
		counts[c.Status]++
		if c.Status == engine.StatusSynced {
			continue
		}
		fmt.Println(colorForStatus(c.Status)(statusLabel(c.Status)), c.Path.String())
	}
	fmt.Printf(
		"\n%d added, %d modified-source, %d modified-dest, %d conflict, %d removed, %d synced\n",
		counts[engine.StatusAdded]+counts[engine.StatusAddedConflict],
		counts[engine.StatusModifiedSource],
		counts[engine.StatusModifiedDest],
		counts[engine.StatusConflict]+counts[engine.StatusAddedConflict],
		counts[engine.StatusRemoved],
		counts[engine.StatusSynced],
	)
}

// colorForStatus maps a Status to the color used to render it.
func colorForStatus(s engine.Status) func(format string, a ...interface{}) string {
	switch s {
	case engine.StatusAdded:
		return color.GreenString
	case engine.StatusRemoved:
		return color.RedString
	case engine.StatusConflict, engine.StatusAddedConflict:
		return color.YellowString
	case engine.StatusModifiedSource, engine.StatusModifiedDest:
		return color.CyanString
	default:
		return fmt.Sprintf
	}
}

// jsonClassification is the machine-readable rendering of a Classification.
type jsonClassification struct {
	Path   string `json:"path"`
	Status string `json:"status"`
}

func renderJSON(classifications []engine.Classification) error {
	out := make([]jsonClassification, 0, len(classifications))
	for _, c := range classifications {
		out = append(out, jsonClassification{Path: c.Path.String(), Status: c.Status.String()})
	}
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
