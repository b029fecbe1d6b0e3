package main

import (
	"context"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"imgutil/internal/batch"
	"imgutil/internal/codec"
	"imgutil/internal/convert"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var (
		flags    batchFlags
		format   string
		quality  int
		lossless bool
	)

	cmd := &cobra.Command{
		Use:   "convert SRC DEST",
		Short: "Convert images from SRC into another format in DEST",
		Long: `Convert every image in SRC to --format and write <name><ext> into DEST.

Formats: jpeg, png, webp, avif, gif, tiff, bmp. AVIF encoding and decoding
run through ffmpeg (libaom-av1). SRC and DEST may be the same directory;
files already in the target format are reported as errors.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("format") {
				format = cfg.Convert.Format
			}
			target, err := codec.ParseFormat(format)
			if err != nil {
				return err
			}
			opts := convert.Options{
				Format:   target,
				Quality:  cfg.Convert.Quality,
				Lossless: cfg.Convert.Lossless,
				AVIF:     avifOptions(cfg),
			}
			if cmd.Flags().Changed("quality") {
				opts.Quality = quality
			}
			if cmd.Flags().Changed("lossless") {
				opts.Lossless = lossless
			}
			if err := opts.Validate(); err != nil {
				return err
			}

			return runBatch(cmd, ctx, batchRequest{
				operation: batch.OperationConvert,
				sourceDir: args[0],
				destDir:   args[1],
				flags:     &flags,
				build: func(_ context.Context, items []batch.Item, dest string, logger *slog.Logger) (batch.Job, error) {
					opts.Move = flags.move
					opts.Overwrite = flags.overwrite
					c := newCodec(cfg, logger)
					if target == codec.AVIF {
						if err := ffmpegAvailable(cfg, logger); err != nil {
							return nil, err
						}
					}
					converter, err := convert.New(c, opts, logger)
					if err != nil {
						return nil, err
					}
					return converter.Job(dest, items), nil
				},
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "", "Target format: "+formatNames()+" (default from config)")
	cmd.Flags().IntVarP(&quality, "quality", "q", 85, "JPEG/WebP quality (1-100)")
	cmd.Flags().BoolVar(&lossless, "lossless", false, "Lossless WebP output")
	return cmd
}

func formatNames() string {
	names := make([]string, 0, len(codec.Formats()))
	for _, f := range codec.Formats() {
		names = append(names, f.String())
	}
	return strings.Join(names, ", ")
}
