package cli

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/image-prep/internal/sequence"
)

const renameLongDescription = `Rename the images of DIR to 1.jpg, 2.jpg, 3.jpg, ... in sorted order.

Only files whose name ends with --ext (case sensitive, default .jpg) are
renamed. With --journal the batch is recorded so "image-prep undo" can
reverse it.`

func newRenameCmd(a *app) *cobra.Command {
	var dryRun bool
	var journal string

	cmd := &cobra.Command{
		Use:   "rename DIR",
		Short: "Number the images of a directory",
		Long:  renameLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := sequence.NewRenamer(a.fs)
			r.Out = cmd.OutOrStdout()

			_, err := r.Run(cmd.Context(), args[0], sequence.Options{
				Ext:         a.v.GetString(renameExtKey),
				Start:       a.v.GetInt(renameStartKey),
				DryRun:      dryRun,
				JournalPath: journal,
			})
			return err
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&dryRun, "dry-run", "n", false, "print the renames without doing them")
	flags.StringVar(&journal, "journal", "", "record the batch here for undo")

	flags.String("ext", a.v.GetString(renameExtKey), "extension to select, matched case sensitively")
	a.bindFlagToConfig(flags.Lookup("ext"), renameExtKey)

	flags.Int("start", a.v.GetInt(renameStartKey), "number of the first file")
	a.bindFlagToConfig(flags.Lookup("start"), renameStartKey)

	return cmd
}

func newUndoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "undo JOURNAL",
		Short: "Reverse a rename recorded in a journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := sequence.NewRenamer(a.fs)
			r.Out = cmd.OutOrStdout()

			_, err := r.Undo(cmd.Context(), args[0])
			return err
		},
	}
}
