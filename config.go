package main

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Options is the resolved configuration of one run: defaults, then the
// config file, then CODESUM_* environment variables, then flags.
type Options struct {
	Output      string
	ExcludeDirs []string
	Gitignore   bool
	SkipOutput  bool
	Clipboard   bool
	Tokens      bool
	Model       string
	PDF         string
	Tree        bool
	Pick        bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output", "")
	v.SetDefault("exclude_dirs", []string{})
	v.SetDefault("gitignore", false)
	v.SetDefault("skip_output", false)
	v.SetDefault("clipboard", false)
	v.SetDefault("tokens", false)
	v.SetDefault("model", defaultTiktokenModel)
	v.SetDefault("pdf", "")
	v.SetDefault("tree", false)
}

// readConfig loads cfgFile, or config.toml from $HOME/.config/codesum and
// the working directory. A missing config file is not an error.
func readConfig(v *viper.Viper, cfgFile, home string) (string, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home != "" {
			v.AddConfigPath(filepath.Join(home, ".config", "codesum"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("toml")
	}

	v.SetEnvPrefix("CODESUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", err
	}
	return v.ConfigFileUsed(), nil
}

// loadOptions reads the resolved values out of v.
func loadOptions(v *viper.Viper) Options {
	return Options{
		Output:      v.GetString("output"),
		ExcludeDirs: splitList(v.GetStringSlice("exclude_dirs")),
		Gitignore:   v.GetBool("gitignore"),
		SkipOutput:  v.GetBool("skip_output"),
		Clipboard:   v.GetBool("clipboard"),
		Tokens:      v.GetBool("tokens"),
		Model:       v.GetString("model"),
		PDF:         v.GetString("pdf"),
		Tree:        v.GetBool("tree"),
		Pick:        v.GetBool("pick"),
	}
}

// splitList flattens comma-separated entries, as they arrive from the
// environment, and drops blanks.
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
