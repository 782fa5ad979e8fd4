package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pkgscout/introspect"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pkgscout",
		Short:         "quick introspection for installed Go packages",
		Long:          "pkgscout finds the most likely import path, type, method, or function inside an installed Go package from fuzzy name hints, and diagnoses broken imports in code snippets.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newIntrospectCmd())
	return root
}

func newIntrospectCmd() *cobra.Command {
	var (
		opts     introspect.Options
		codeFile string
	)

	cmd := &cobra.Command{
		Use:   "introspect",
		Short: "search an installed package for symbols and import fixes",
		Example: `  pkgscout introspect --repo github.com/spf13/cobra --type Comand
  pkgscout introspect --repo go.uber.org/zap --func NewProducton
  pkgscout introspect --dir /path/to/pkg --code-file broken.go`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if codeFile != "" {
				if opts.Code != "" {
					return fmt.Errorf("provide only one of --code or --code-file")
				}
				data, err := os.ReadFile(codeFile)
				if err != nil {
					return fmt.Errorf("reading code file: %w", err)
				}
				opts.Code = string(data)
			}

			report, err := introspect.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Code, "code", "", "code snippet to run import diagnostics on")
	cmd.Flags().StringVar(&codeFile, "code-file", "", "file containing the code snippet")
	cmd.Flags().StringVar(&opts.TypeHint, "type", "", "fuzzy exported type name")
	cmd.Flags().StringVar(&opts.MethodHint, "method", "", "fuzzy method name (module-wide when --type is absent)")
	cmd.Flags().StringVar(&opts.FuncHint, "func", "", "fuzzy package-level function name")
	cmd.Flags().StringVar(&opts.PkgHint, "pkg", "", "subpackage hint narrowing a --func search")
	cmd.Flags().StringVar(&opts.Repo, "repo", "", "import path of the target package or module")
	cmd.Flags().StringVar(&opts.Dir, "dir", "", "path to the package source root (absolute, or relative to the module cache)")
	cmd.Flags().IntVar(&opts.MaxSuggestions, "max-suggestions", 0, "truncate every candidate list to this many entries")
	cmd.Flags().BoolVar(&opts.NoImports, "no-imports", false, "skip import diagnostics even when code is provided")

	return cmd
}
