package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is the application version, set via ldflags.
var version = "dev"

// loadTokenizer is replaced in tests; tiktoken fetches its encodings over
// the network on first use.
var loadTokenizer = loadTiktoken

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	v := viper.New()
	setDefaults(v)
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "codesum [DIR]",
		Short: "Concatenate every file under a directory into one text file.",
		Long: `codesum walks DIR recursively and writes the text of every file it finds
into a single summary file, each entry labeled with its index and path.

Without DIR, it asks for the directory and the output file name on stdin.
DIR may also be a git URL, which is cloned into a temporary directory first.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			con := newConsole(cmd.OutOrStdout(), cmd.OutOrStdout())

			home, _ := os.UserHomeDir()
			used, err := readConfig(v, cfgFile, home)
			if err != nil {
				con.Warnf("Error reading config file: %v", err)
			} else if used != "" {
				con.Infof("Using config file: %s", used)
			}

			return run(cmd, con, loadOptions(v), args)
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/codesum/config.toml)")

	cmd.Flags().StringP("output", "f", "", "Output file name (default code_summary.txt; .txt is appended if missing)")
	v.BindPFlag("output", cmd.Flags().Lookup("output"))
	cmd.Flags().StringSlice("exclude-dir", nil, "Directory names to skip during traversal (repeatable or comma-separated)")
	v.BindPFlag("exclude_dirs", cmd.Flags().Lookup("exclude-dir"))
	cmd.Flags().Bool("gitignore", false, "Skip files matched by the root .gitignore")
	v.BindPFlag("gitignore", cmd.Flags().Lookup("gitignore"))
	cmd.Flags().Bool("skip-output", false, "Leave the output file out of the summary when it lies inside DIR")
	v.BindPFlag("skip_output", cmd.Flags().Lookup("skip-output"))
	cmd.Flags().BoolP("clipboard", "c", false, "Also copy the summary to the clipboard")
	v.BindPFlag("clipboard", cmd.Flags().Lookup("clipboard"))
	cmd.Flags().Bool("tokens", false, "Report the token count of the summary")
	v.BindPFlag("tokens", cmd.Flags().Lookup("tokens"))
	cmd.Flags().String("model", defaultTiktokenModel, "Model whose tokenizer is used by --tokens")
	v.BindPFlag("model", cmd.Flags().Lookup("model"))
	cmd.Flags().String("pdf", "", "Also render the summary as a PDF at this path")
	v.BindPFlag("pdf", cmd.Flags().Lookup("pdf"))
	cmd.Flags().Bool("tree", false, "Print a tree of the summarized files")
	v.BindPFlag("tree", cmd.Flags().Lookup("tree"))
	cmd.Flags().Bool("pick", false, "Choose DIR with a fuzzy finder instead of typing it")
	v.BindPFlag("pick", cmd.Flags().Lookup("pick"))

	return cmd
}

// run resolves the inputs, extracts the tree and feeds the optional sinks.
// Only an invalid root is returned as an error; everything else is
// reported on the console.
func run(cmd *cobra.Command, con *console, opts Options, args []string) error {
	p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())

	var root string
	switch {
	case len(args) == 1:
		root = args[0]
	case opts.Pick:
		picked, err := pickDirectory(".")
		if errors.Is(err, errAborted) {
			con.Infof("Directory selection aborted.")
			return nil
		}
		if err != nil {
			return err
		}
		root = picked
	default:
		answer, err := p.askRoot()
		if err != nil {
			return err
		}
		root = answer
	}

	output := opts.Output
	if output == "" && len(args) == 0 {
		answer, err := p.askOutput()
		if err != nil {
			return err
		}
		output = answer
	}
	output = normalizeOutputName(output)

	if isGitURL(root) {
		con.Infof("Cloning Git repository '%s'...", root)
		dir, err := cloneGitRepo(root, cmd.OutOrStdout())
		if err != nil {
			con.Errorf("%v", err)
			return fmt.Errorf("%w: %v", ErrInvalidRoot, err)
		}
		defer func() {
			con.Infof("Cleaning up temporary directory: %s", dir)
			_ = os.RemoveAll(dir)
		}()
		root = dir
	}

	extractor := NewExtractor(con, walkOptions{
		ExcludeDirs:  opts.ExcludeDirs,
		UseGitignore: opts.Gitignore,
		SkipOutput:   opts.SkipOutput,
	})
	summary, err := extractor.Run(root, output)
	if err != nil {
		if errors.Is(err, ErrInvalidRoot) {
			return err
		}
		return nil
	}
	if !summary.Written {
		return nil
	}

	if opts.Tree {
		fmt.Fprint(cmd.OutOrStdout(), printTree(buildTree(summary.Records, filepath.Base(filepath.Clean(root)))))
	}
	if opts.Tokens {
		tk, err := loadTokenizer(opts.Model, con)
		if err != nil {
			con.Warnf("Token counting disabled: %v", err)
		} else {
			summary.Tokens = tk.CountTokens(summary.Text)
			con.Infof("Total tokens: %d", summary.Tokens)
		}
	}
	if opts.Clipboard {
		if err := copyToClipboard(summary.Text); err != nil {
			con.Warnf("Error writing to clipboard: %v", err)
		} else {
			con.Infof("Output copied to clipboard.")
		}
	}
	if opts.PDF != "" {
		if err := generatePDF(summary.Records, opts.PDF); err != nil {
			con.Warnf("Error generating PDF: %v", err)
		} else {
			con.Successf("Successfully saved PDF to %s", opts.PDF)
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, ErrInvalidRoot) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
