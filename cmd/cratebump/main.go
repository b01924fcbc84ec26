// Command cratebump sets the package version of one or more Cargo manifests.
//
// Usage:
//
//	cratebump [flags] <version>
//
// By default ./Cargo.toml is updated. Targets can be chosen with repeated
// --manifest flags, a built-in --preset, or a .cratebump.yaml file listing
// manifests. A successful run prints nothing.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/obentoo/cratebump/internal/common/config"
	"github.com/obentoo/cratebump/internal/common/logger"
	"github.com/obentoo/cratebump/internal/common/output"
	"github.com/obentoo/cratebump/internal/common/version"
	"github.com/obentoo/cratebump/internal/updater"
	"github.com/spf13/cobra"
)

// ErrUsage is returned when the command line does not carry exactly one
// version argument.
var ErrUsage = errors.New("must pass 1 positional argument, ex: cratebump 1.0.1")

// dashVersionRe matches flag errors caused by a version that starts with '-'
var dashVersionRe = regexp.MustCompile(`^unknown (shorthand )?flag: ('[0-9]'|--[0-9])`)

// flags holds per-invocation flag state
type flags struct {
	manifests  []string
	preset     string
	configPath string
	verbose    bool
	quiet      bool
	noColor    bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "cratebump [flags] <version>",
		Short: "Set the package version in Cargo manifests",
		Long: `Set package.version in one or more Cargo.toml files to the given string.

The version is written exactly as given; it is not validated. Manifests are
updated one after another and the first failure stops the run. Formatting and
comments of each manifest are kept. A version starting with '-' must follow
'--' so that it is not read as a flag.

Targets, first match wins:
  --manifest   explicit list, in order (repeatable)
  --preset     built-in list: ` + strings.Join(config.PresetNames(), ", ") + `
  ` + config.FileName + `  "manifests:" list in the working directory (or --config)
  default      ./` + config.DefaultManifest + `

Examples:
  cratebump 1.0.1
  cratebump --preset workspace 0.40.2
  cratebump -f momento-cli-opts/Cargo.toml -f momento/Cargo.toml 0.40.2
  cratebump -- -1`,
		Version:       version.Info(),
		Args:          exactlyOneVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if f.verbose {
				logger.SetVerbose(true)
			}
			if f.quiet {
				logger.SetQuiet(true)
			}
			if f.noColor {
				output.NoColor()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, f, args[0])
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.SetFlagErrorFunc(flagError)

	cmd.Flags().StringArrayVarP(&f.manifests, "manifest", "f", nil, "Manifest to update (repeatable, keeps order)")
	cmd.Flags().StringVarP(&f.preset, "preset", "p", "", "Built-in manifest list: "+strings.Join(config.PresetNames(), ", "))
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Project config file (default ./"+config.FileName+")")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Report every updated manifest")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "Suppress non-error output")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	cmd.MarkFlagsMutuallyExclusive("manifest", "preset")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	return cmd
}

// exactlyOneVersion echoes the received arguments before rejecting a
// command line that does not hold exactly one version.
func exactlyOneVersion(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return nil
	}
	fmt.Fprintln(cmd.ErrOrStderr(), append([]string{cmd.Root().Name()}, args...))
	return ErrUsage
}

// flagError points at '--' when a version such as -1 was parsed as a flag
func flagError(cmd *cobra.Command, err error) error {
	if dashVersionRe.MatchString(err.Error()) {
		return fmt.Errorf("%w (pass a version starting with '-' after '--', ex: %s -- -1)", err, cmd.Root().Name())
	}
	return err
}

func runUpdate(cmd *cobra.Command, f *flags, newVersion string) error {
	paths, err := resolveManifests(cmd, f)
	if err != nil {
		return err
	}
	logger.Info("manifests: %s", strings.Join(paths, ", "))

	result, err := updater.Run(newVersion, &updater.Options{Manifests: paths})
	if err != nil {
		if result != nil && len(result.Files) > 0 && !f.quiet {
			output.PrintWarning(cmd.ErrOrStderr(), "%s", updater.FormatResult(result))
		}
		return err
	}
	if f.verbose {
		reportUpdates(cmd, result)
	}
	return nil
}

// reportUpdates prints one line per manifest of a successful run
func reportUpdates(cmd *cobra.Command, result *updater.Result) {
	for _, fr := range result.Files {
		if fr.Changed() {
			output.PrintSuccess(cmd.OutOrStdout(), "updated %s: %s",
				output.FormatPath(fr.Path), output.FormatVersionChange(fr.OldVersion, fr.NewVersion))
		} else {
			output.PrintSuccess(cmd.OutOrStdout(), "%s already at %s",
				output.FormatPath(fr.Path), output.Sprintf(output.NewVersion, "%s", fr.NewVersion))
		}
	}
	if !result.Semver {
		output.PrintWarning(cmd.ErrOrStderr(), "%q is not a MAJOR.MINOR.PATCH semantic version; cargo may reject it", result.Version)
	}
}

func resolveManifests(cmd *cobra.Command, f *flags) ([]string, error) {
	switch {
	case len(f.manifests) > 0:
		return f.manifests, nil
	case f.preset != "":
		return config.PresetManifests(f.preset)
	}

	var cfg *config.Config
	var err error
	if cmd.Flags().Changed("config") {
		if _, statErr := os.Stat(f.configPath); statErr != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrConfigNotReadable, statErr)
		}
		cfg, err = config.LoadFrom(f.configPath)
	} else {
		cfg, err = config.Load(".")
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg.ManifestPaths(), nil
}

// execute runs the command line and returns the process exit status
func execute(args []string, stdout, stderr io.Writer) int {
	logger.Default().SetLevel(logger.LevelWarn)
	logger.SetOutput(stderr)

	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		output.PrintError(stderr, "%v", err)
		if errors.Is(err, ErrUsage) {
			fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", cmd.Name())
		}
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}
