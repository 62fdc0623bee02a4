package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/imports"
)

var importsCmd = &cobra.Command{
	Use:   "imports",
	Short: "Print the early import list",
	Long: `Print the public configuration classes whose conditions matched, in
the order they appear in the report. With --annotation the @Import
declaration is printed as it appears in the report.`,
	Args: cobra.NoArgs,
	RunE: runImports,
}

var importsAnnotation bool

func init() {
	importsCmd.Flags().BoolVarP(&importsAnnotation, "annotation", "a", false, "print the @Import declaration")
	rootCmd.AddCommand(importsCmd)
}

func runImports(cmd *cobra.Command, args []string) error {
	opt, err := buildOptimizer(cmd.Context(), appConfig)
	if err != nil {
		return err
	}
	res := opt.Analyze()

	out := cmd.OutOrStdout()
	if importsAnnotation {
		fmt.Fprintln(out, imports.Render(res.Imports, res.Separator()))
		return nil
	}
	for _, name := range res.Imports {
		fmt.Fprintln(out, name)
	}
	printInfo("%d classes", len(res.Imports))
	return nil
}
