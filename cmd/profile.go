package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/agentops-cli/internal/analysis"
	"github.com/KaramelBytes/agentops-cli/internal/parser"
	"github.com/KaramelBytes/agentops-cli/internal/report"
)

var profileFormat string

type profileOutput struct {
	File      string             `json:"file" yaml:"file"`
	Profile   analysis.Profile   `json:"profile" yaml:"profile"`
	Findings  []string           `json:"findings" yaml:"findings"`
	Anomalies []string           `json:"anomalies" yaml:"anomalies"`
	Charts    []report.ChartSpec `json:"charts" yaml:"charts"`
}

var profileCmd = &cobra.Command{
	Use:   "profile <file>",
	Short: "Profile a CSV/Excel dataset without producing a report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := parser.LoadTabularFile(args[0])
		if err != nil {
			return err
		}
		charts := analysis.SuggestCharts(ds)
		if charts == nil {
			charts = []report.ChartSpec{}
		}
		out := profileOutput{
			File:      ds.Name(),
			Profile:   analysis.ProfileDataset(ds),
			Findings:  analysis.BasicFindings(ds),
			Anomalies: analysis.DetectAnomalies(ds),
			Charts:    charts,
		}
		return writeOutput(cmd.OutOrStdout(), out, profileFormat)
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().StringVar(&profileFormat, "format", "json", "output format: json or yaml")
}
