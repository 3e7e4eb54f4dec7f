// Package cli provides the image-prep command line: the circle, rename and
// undo commands, the MCP server, and the shared config and logging setup.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// BuildInfo is stamped into the binary by ldflags.
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

const rootLongDescription = `image-prep prepares image assets.

  circle   cut an image to the ellipse inscribed in its bounds
  rename   number the images of a directory 1.jpg, 2.jpg, ...
  undo     reverse a rename from its journal
  serve    expose the same operations as MCP tools over stdio

Settings come from flags, IMAGE_PREP_* environment variables and an
optional image-prep.yaml in the working directory.`

// app carries the state shared by every subcommand of one root command.
type app struct {
	v     *viper.Viper
	fs    afero.Fs
	build BuildInfo

	configFile string
}

func newRootCmd(build BuildInfo) *cobra.Command {
	return newRootCmdWithFs(build, afero.NewOsFs())
}

// newRootCmdWithFs builds the command tree. fs backs the rename commands
// and the MCP server's renamer.
func newRootCmdWithFs(build BuildInfo, fs afero.Fs) *cobra.Command {
	a := &app{v: newConfig(), fs: fs, build: build}

	cmd := &cobra.Command{
		Use:           "image-prep",
		Short:         "Image asset preparation tools",
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := readConfig(a.v, a.configFile); err != nil {
				return err
			}
			return configureLogger(a.v, cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	a.configureRootFlags(cmd)

	cmd.AddCommand(
		newCircleCmd(a),
		newRenameCmd(a),
		newUndoCmd(a),
		newServeCmd(a),
		newVersionCmd(a),
	)
	return cmd
}

func (a *app) configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&a.configFile, configFlagName, "", "config file (default ./image-prep.yaml)")

	cmd.PersistentFlags().String(logLevelFlagName, a.v.GetString(logLevelKey), "log level: debug, info, warn, error")
	a.bindFlagToConfig(cmd.PersistentFlags().Lookup(logLevelFlagName), logLevelKey)

	cmd.PersistentFlags().String(logFileFlagName, a.v.GetString(logFileKey), "also write logs to this rotated file")
	a.bindFlagToConfig(cmd.PersistentFlags().Lookup(logFileFlagName), logFileKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config and env
// values feed the flag.
func (a *app) bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(a.v.BindPFlag(key, flag))
}

// Execute runs the root command and exits 1 on error. It is called once by
// main.main.
func Execute(build BuildInfo) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(build)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		stop()
		os.Exit(1)
	}
}
