package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"skillalign/internal/service"
)

var extractText string

var extractCmd = &cobra.Command{
	Use:   "extract [files...]",
	Short: "Extract skill phrases from text",
	Long:  "Extract skill phrases from --text or from .txt files (globs allowed). Nothing is aligned.",
	RunE:  runExtract,
}

type extractedDocument struct {
	Path   string   `json:"path" yaml:"path"`
	Skills []string `json:"skills" yaml:"skills"`
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVar(&extractText, "text", "", "Text to extract skills from")
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractText == "" && len(args) == 0 {
		return fmt.Errorf("provide --text or at least one file")
	}
	svc, err := buildService(globalConfig, serviceParts{extractor: true})
	if err != nil {
		return err
	}
	if extractText != "" {
		return writeOutput(cmd.OutOrStdout(), outputFormat, svc.Extract(extractText))
	}
	docs, err := service.ReadDocuments(args)
	if err != nil {
		return err
	}
	out := make([]extractedDocument, 0, len(docs))
	for _, d := range docs {
		out = append(out, extractedDocument{Path: d.Path, Skills: svc.Extract(d.Content)})
	}
	return writeOutput(cmd.OutOrStdout(), outputFormat, out)
}
