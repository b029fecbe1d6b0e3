package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"imgutil/internal/logging"
	"imgutil/internal/services"
)

const (
	defaultBinary  = "ffmpeg"
	stderrTailSize = 512
	waitDelay      = 2 * time.Second
)

// Runner executes ffmpeg with a per-invocation timeout.
type Runner struct {
	Binary  string
	Timeout time.Duration
	Logger  *slog.Logger
}

// AVIFOptions controls libaom-av1 still-image encoding.
type AVIFOptions struct {
	CRF     int
	CPUUsed int
}

// New constructs a runner. An empty binary resolves to ffmpeg on PATH.
func New(binary string, timeout time.Duration, logger *slog.Logger) *Runner {
	if strings.TrimSpace(binary) == "" {
		binary = defaultBinary
	}
	return &Runner{
		Binary:  binary,
		Timeout: timeout,
		Logger:  logging.NewComponentLogger(logger, "ffmpeg"),
	}
}

// Available reports whether the configured binary can be resolved.
func (r *Runner) Available() error {
	if _, err := exec.LookPath(r.binary()); err != nil {
		return services.Wrap(services.ErrConfiguration, "ffmpeg", "lookup", fmt.Sprintf("binary %q not found", r.binary()), err)
	}
	return nil
}

// Run executes ffmpeg with args. Failures carry the tail of stderr.
func (r *Runner) Run(ctx context.Context, args ...string) error {
	if err := r.Available(); err != nil {
		return err
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	full := append([]string{"-hide_banner", "-loglevel", "error", "-nostdin", "-y"}, args...)
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.binary(), full...) //nolint:gosec
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	started := time.Now()
	err := cmd.Run()
	if r.Logger != nil {
		r.Logger.Debug("ffmpeg finished",
			logging.String("args", strings.Join(args, " ")),
			logging.Duration("elapsed", time.Since(started)),
			logging.Bool("ok", err == nil),
		)
	}
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return services.Wrap(services.ErrTimeout, "ffmpeg", "run", fmt.Sprintf("exceeded %s", r.Timeout), ctx.Err())
	case errors.Is(ctx.Err(), context.Canceled):
		return services.Wrap(services.ErrCancelled, "ffmpeg", "run", "", ctx.Err())
	}
	return services.Wrap(services.ErrExternalTool, "ffmpeg", "run", tail(stderr.String()), err)
}

// EncodeAVIF encodes input (any format ffmpeg reads) into an AVIF still image.
func (r *Runner) EncodeAVIF(ctx context.Context, input, output string, opts AVIFOptions) error {
	return r.Run(ctx, AVIFArgs(input, output, opts)...)
}

// DecodeToPNG converts input into a single-frame PNG.
func (r *Runner) DecodeToPNG(ctx context.Context, input, output string) error {
	return r.Run(ctx, "-i", input, "-frames:v", "1", "-f", "image2", "-c:v", "png", output)
}

// AVIFArgs builds the libaom-av1 argument list used for still images.
func AVIFArgs(input, output string, opts AVIFOptions) []string {
	return []string{
		"-i", input,
		"-c:v", "libaom-av1",
		"-crf", strconv.Itoa(opts.CRF),
		"-b:v", "0",
		"-cpu-used", strconv.Itoa(opts.CPUUsed),
		"-pix_fmt", "yuv420p",
		"-still-picture", "1",
		"-frames:v", "1",
		"-f", "avif",
		output,
	}
}

func (r *Runner) binary() string {
	if r == nil || strings.TrimSpace(r.Binary) == "" {
		return defaultBinary
	}
	return r.Binary
}

func tail(stderr string) string {
	trimmed := strings.TrimSpace(stderr)
	if trimmed == "" {
		return "no stderr output"
	}
	if len(trimmed) > stderrTailSize {
		trimmed = "..." + trimmed[len(trimmed)-stderrTailSize:]
	}
	return trimmed
}
