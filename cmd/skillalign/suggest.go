package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var (
	suggestTaxonomy string
	suggestTop      int
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <skill>",
	Short: "Show the taxonomy entries nearest to a skill",
	Long:  "Rank taxonomy entries by similarity to a skill phrase, ignoring the match threshold. Useful for tuning.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSuggest,
}

var taxonomiesCmd = &cobra.Command{
	Use:   "taxonomies",
	Short: "List configured taxonomies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeOutput(cmd.OutOrStdout(), outputFormat, newLoader(globalConfig).Names())
	},
}

func init() {
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(taxonomiesCmd)

	suggestCmd.Flags().StringVar(&suggestTaxonomy, "taxonomy", "", "Taxonomy name (default from config)")
	suggestCmd.Flags().IntVar(&suggestTop, "top", 5, "Number of entries to show")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	svc, err := buildService(globalConfig, serviceParts{embedder: true})
	if err != nil {
		return err
	}
	res, err := svc.Suggest(strings.Join(args, " "), taxonomyOrDefault(suggestTaxonomy), suggestTop)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), outputFormat, res)
}
