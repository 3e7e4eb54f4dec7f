package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ironsheep/image-prep/internal/imaging"
)

const (
	outDirFlagName = "out-dir"
	outExtFlagName = "out-ext"

	defaultOutExt = ".png"
)

const circleLongDescription = `Cut an image to the ellipse inscribed in its bounds.

Pixels inside the ellipse keep their colour, pixels outside become fully
transparent. A square input gives a circle; use --square to crop any input
to a centred square first. The output format follows the output extension.
Formats without alpha (JPEG) need --background.

Single image:  image-prep circle logo.jpg circular-logo.png
Batch:         image-prep circle --out-dir out/ a.jpg b.jpg c.jpg`

func newCircleCmd(a *app) *cobra.Command {
	var outDir, outExt string

	cmd := &cobra.Command{
		Use:   "circle INPUT OUTPUT | --out-dir DIR INPUT...",
		Short: "Cut images to their inscribed circle",
		Long:  circleLongDescription,
		Args: func(_ *cobra.Command, args []string) error {
			if outDir != "" {
				if len(args) < 1 {
					return errors.New("at least one INPUT is required with --out-dir")
				}
				return nil
			}
			if len(args) != 2 {
				return fmt.Errorf("expected INPUT OUTPUT, got %d argument(s)", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.circleOptions()
			out := cmd.OutOrStdout()
			softFail := a.v.GetBool(circleSoftFailKey)

			var err error
			if outDir == "" {
				err = a.circleOne(out, args[0], args[1], opts)
			} else {
				err = a.circleBatch(cmd, args, outDir, outExt, opts)
			}

			if err != nil && softFail {
				fmt.Fprintf(out, "Error: %v\n", err)
				return nil
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&outDir, outDirFlagName, "", "write one output per INPUT into this directory")
	flags.StringVar(&outExt, outExtFlagName, defaultOutExt, "extension of batch outputs")

	flags.Bool("antialias", a.v.GetBool(circleAntialiasKey), "give edge pixels partial coverage")
	a.bindFlagToConfig(flags.Lookup("antialias"), circleAntialiasKey)

	flags.Bool("square", a.v.GetBool(circleSquareKey), "crop to a centred square first so the mask is a true circle")
	a.bindFlagToConfig(flags.Lookup("square"), circleSquareKey)

	flags.Float64("feather", a.v.GetFloat64(circleFeatherKey), "blur radius of the mask edge in pixels")
	a.bindFlagToConfig(flags.Lookup("feather"), circleFeatherKey)

	flags.String("background", a.v.GetString(circleBackgroundKey), "flatten onto this hex colour (required for JPEG output)")
	a.bindFlagToConfig(flags.Lookup("background"), circleBackgroundKey)

	flags.String("filter", a.v.GetString(circleFilterKey), "resample filter: lanczos, catmullrom, linear, box, nearest")
	a.bindFlagToConfig(flags.Lookup("filter"), circleFilterKey)

	flags.IntP("parallel", "p", a.v.GetInt(circleParallelKey), "images processed at once in batch mode")
	a.bindFlagToConfig(flags.Lookup("parallel"), circleParallelKey)

	flags.Bool("soft-fail", a.v.GetBool(circleSoftFailKey), "print errors and exit 0")
	a.bindFlagToConfig(flags.Lookup("soft-fail"), circleSoftFailKey)

	return cmd
}

func (a *app) circleOptions() imaging.CircleOptions {
	return imaging.CircleOptions{
		Antialias:  a.v.GetBool(circleAntialiasKey),
		Square:     a.v.GetBool(circleSquareKey),
		Feather:    a.v.GetFloat64(circleFeatherKey),
		Background: a.v.GetString(circleBackgroundKey),
		Filter:     a.v.GetString(circleFilterKey),
	}
}

func (a *app) circleOne(out io.Writer, input, output string, opts imaging.CircleOptions) error {
	res, err := imaging.MakeCircleFile(nil, input, output, opts)
	if err != nil {
		return err
	}
	log.Info().Str("input", input).Int("width", res.Width).Int("height", res.Height).Msg("Circle written")
	fmt.Fprintf(out, "Circular image saved to %s\n", res.OutputPath)
	return nil
}

func (a *app) circleBatch(cmd *cobra.Command, inputs []string, outDir, outExt string, opts imaging.CircleOptions) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	jobs, err := batchJobs(inputs, outDir, outExt)
	if err != nil {
		return err
	}

	items, err := imaging.MakeCircleBatch(cmd.Context(), imaging.NewImageCache(), jobs, opts, a.v.GetInt(circleParallelKey))
	for _, item := range items {
		if item.Err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Circular image saved to %s\n", item.Result.OutputPath)
		}
	}
	if err != nil {
		log.Error().Err(err).Int("jobs", len(jobs)).Msg("Batch finished with errors")
	}
	return err
}

// batchJobs maps each input to outDir/<stem><ext>. Two inputs with the same
// stem would overwrite each other and are refused.
func batchJobs(inputs []string, outDir, ext string) ([]imaging.CircleJob, error) {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	seen := make(map[string]string, len(inputs))
	jobs := make([]imaging.CircleJob, 0, len(inputs))
	for _, input := range inputs {
		base := filepath.Base(input)
		output := filepath.Join(outDir, strings.TrimSuffix(base, filepath.Ext(base))+ext)
		if prev, ok := seen[output]; ok {
			return nil, fmt.Errorf("%s and %s both map to %s", prev, input, output)
		}
		seen[output] = input
		jobs = append(jobs, imaging.CircleJob{Input: input, Output: output})
	}
	return jobs, nil
}
