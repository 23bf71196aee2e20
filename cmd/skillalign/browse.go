package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"skillalign/internal/tui"
)

var browseTaxonomy string

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactively extract and align skills",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildService(globalConfig, serviceParts{extractor: true, embedder: true})
		if err != nil {
			return err
		}
		m := tui.New(svc, taxonomyOrDefault(browseTaxonomy))
		_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
	browseCmd.Flags().StringVar(&browseTaxonomy, "taxonomy", "", "Taxonomy to start with (default from config)")
}
