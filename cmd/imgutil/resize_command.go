package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"imgutil/internal/batch"
	"imgutil/internal/resize"
)

func newResizeCommand(ctx *commandContext) *cobra.Command {
	var (
		flags      batchFlags
		width      int
		height     int
		mode       string
		filter     string
		background string
		quality    int
		noAspect   bool
	)

	cmd := &cobra.Command{
		Use:   "resize SRC DEST",
		Short: "Resize images from SRC into DEST",
		Long: `Resize every image in SRC and write it to DEST under the same name and format.

Modes: max (fit inside the box, default), min (cover the box), crop (cover
then centre-crop), pad (fit then centre on a canvas), fill (pad without
upscaling), stretch (exact size). Setting only --width or --height keeps the
aspect ratio.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts := resize.Options{
				Width:      width,
				Height:     height,
				Mode:       resize.ParseMode(cfg.Resize.Mode),
				KeepAspect: cfg.Resize.KeepAspect,
				Filter:     cfg.Resize.Filter,
				Background: cfg.Resize.Background,
				Quality:    cfg.Resize.Quality,
				AVIF:       avifOptions(cfg),
			}
			if cmd.Flags().Changed("mode") {
				opts.Mode = resize.ParseMode(mode)
			}
			if cmd.Flags().Changed("filter") {
				opts.Filter = filter
			}
			if cmd.Flags().Changed("background") {
				opts.Background = background
			}
			if cmd.Flags().Changed("quality") {
				opts.Quality = quality
			}
			if noAspect {
				opts.KeepAspect = false
			}
			if err := opts.Validate(); err != nil {
				return err
			}

			return runBatch(cmd, ctx, batchRequest{
				operation: batch.OperationResize,
				sourceDir: args[0],
				destDir:   args[1],
				distinct:  true,
				flags:     &flags,
				build: func(_ context.Context, items []batch.Item, dest string, logger *slog.Logger) (batch.Job, error) {
					opts.Move = flags.move
					opts.Overwrite = flags.overwrite
					resizer, err := resize.New(newCodec(cfg, logger), opts, logger)
					if err != nil {
						return nil, err
					}
					return resizer.Job(dest, items), nil
				},
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&width, "width", "W", 0, "Target width in pixels")
	cmd.Flags().IntVarP(&height, "height", "H", 0, "Target height in pixels")
	cmd.Flags().StringVarP(&mode, "mode", "m", "max", "Resize mode: max, min, crop, pad, fill, stretch")
	cmd.Flags().StringVar(&filter, "filter", "lanczos", "Resampling filter: lanczos, catmullrom, linear, box, nearest")
	cmd.Flags().StringVar(&background, "background", "transparent", "Canvas colour for pad/fill: transparent, white, black, #rrggbb")
	cmd.Flags().IntVarP(&quality, "quality", "q", 85, "JPEG/WebP quality (1-100)")
	cmd.Flags().BoolVar(&noAspect, "no-aspect", false, "Stretch to the exact size, ignoring aspect ratio")
	return cmd
}
