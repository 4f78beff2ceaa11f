package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/roast/internal/app"
	"go.trai.ch/roast/internal/core/domain"
)

func (c *CLI) newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [patterns...]",
		Short: "Compile sources whose outputs are missing or out of date",
		Long: "Compile a single source file or every file matched by the configured file sets.\n" +
			"Positional patterns form an additional file set rooted at --dir.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Run(cmd.Context(), runOptions(cmd, args))
		},
	}
	addCompileFlags(cmd)
	return cmd
}

// addCompileFlags registers the flags shared by compile and watch.
func addCompileFlags(cmd *cobra.Command) {
	cmd.Flags().String("srcfile", "", "Compile a single source file")
	cmd.Flags().String("destfile", "", "Output path for --srcfile")
	cmd.Flags().String("destdir", "", "Directory for compiled outputs (created if missing)")
	cmd.Flags().BoolP("force", "f", false, "Recompile even if outputs are up-to-date")
	cmd.Flags().Bool("suffix", false, "Insert the suffix value before the .js extension")
	cmd.Flags().String("suffix-value", "", "Suffix inserted with --suffix (default \""+domain.DefaultSuffixValue+"\")")
	cmd.Flags().BoolP("bare", "b", false, "Compile without the top-level function wrapper")
	cmd.Flags().StringP("dir", "C", ".", "Base directory for positional patterns")
	cmd.Flags().String("compiler", "", "Compiler command (default \"coffee\")")
}

// runOptions collects the command line into app.RunOptions.
func runOptions(cmd *cobra.Command, args []string) app.RunOptions {
	configPath, _ := cmd.Flags().GetString("config")
	logFormat, _ := cmd.Flags().GetString("log-format")

	srcFile, _ := cmd.Flags().GetString("srcfile")
	destFile, _ := cmd.Flags().GetString("destfile")
	destDir, _ := cmd.Flags().GetString("destdir")
	suffixValue, _ := cmd.Flags().GetString("suffix-value")
	dir, _ := cmd.Flags().GetString("dir")
	compiler, _ := cmd.Flags().GetString("compiler")

	overrides := domain.Overrides{
		SrcFile:     srcFile,
		DestFile:    destFile,
		DestDir:     destDir,
		Force:       changedBool(cmd, "force"),
		Suffix:      changedBool(cmd, "suffix"),
		SuffixValue: suffixValue,
		Bare:        changedBool(cmd, "bare"),
		Compiler:    strings.Fields(compiler),
	}
	if len(args) > 0 {
		overrides.FileSets = []domain.FileSet{{Dir: dir, Includes: args}}
	}

	return app.RunOptions{
		ConfigPath:     configPath,
		ConfigRequired: cmd.Flags().Changed("config"),
		Overrides:      overrides,
		LogFormat:      logFormat,
	}
}

// changedBool returns the flag value when it was given on the command line.
func changedBool(cmd *cobra.Command, name string) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetBool(name)
	return &v
}
