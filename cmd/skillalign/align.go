package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	alignTaxonomy   string
	alignSkillsFile string
)

var alignCmd = &cobra.Command{
	Use:   "align [skills...]",
	Short: "Align skill phrases to a taxonomy",
	Long: `Align skill phrases, given as arguments or one per line in --skills-file,
to the entries of a taxonomy. Skills are matched greedily in the order given
and every taxonomy entry is used at most once.

The minimum similarity comes from aligner.threshold in the config file or
SKILLALIGN_THRESHOLD. It defaults to 0.85 when unset; an explicit 0 is used
as given.`,
	RunE: runAlign,
}

var runCmd = &cobra.Command{
	Use:   "run <files...>",
	Short: "Extract skills from files and align them",
	Long:  "Extract skills from each .txt file (globs allowed) and align them to a taxonomy. Files are handled independently.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(alignCmd)
	rootCmd.AddCommand(runCmd)

	alignCmd.Flags().StringVar(&alignTaxonomy, "taxonomy", "", "Taxonomy name (default from config)")
	alignCmd.Flags().StringVar(&alignSkillsFile, "skills-file", "", "File with one skill per line")
	runCmd.Flags().StringVar(&alignTaxonomy, "taxonomy", "", "Taxonomy name (default from config)")
}

func taxonomyOrDefault(name string) string {
	if name != "" {
		return name
	}
	return globalConfig.Taxonomy.Default
}

func runAlign(cmd *cobra.Command, args []string) error {
	skills := args
	if alignSkillsFile != "" {
		lines, err := readLines(alignSkillsFile)
		if err != nil {
			return fmt.Errorf("read skills: %w", err)
		}
		skills = append(skills, lines...)
	}
	if len(skills) == 0 {
		return fmt.Errorf("provide skills as arguments or via --skills-file")
	}
	svc, err := buildService(globalConfig, serviceParts{embedder: true})
	if err != nil {
		return err
	}
	matches, err := svc.Align(skills, taxonomyOrDefault(alignTaxonomy))
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), outputFormat, matches)
}

func runRun(cmd *cobra.Command, args []string) error {
	svc, err := buildService(globalConfig, serviceParts{extractor: true, embedder: true})
	if err != nil {
		return err
	}
	results, err := svc.ProcessFiles(args, taxonomyOrDefault(alignTaxonomy))
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), outputFormat, results)
}
