package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/42Wor/Compress-image-M-dev/codec"
	"github.com/42Wor/Compress-image-M-dev/core"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newCompressCmd() *cobra.Command {
	var (
		output        string
		format        string
		quality       int
		targetSize    string
		preserveAlpha bool
	)

	cmd := &cobra.Command{
		Use:   "compress <input>",
		Short: "Compress a single image file without starting the server",
		Long: `Re-encodes <input> at --quality, or, with --target-size, steps quality down
from 95 in increments of 5 until the result fits (or quality reaches 5).

Sizes accept units: 200KB = 200,000 bytes; 200KiB = 204,800 bytes.
Without -o, the result is written next to the input as <name>.compressed.<ext>.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]

			f, err := codec.ParseFormat(format)
			if err != nil {
				return err
			}
			req := codec.Request{
				Format:        f,
				Quality:       quality,
				Filename:      input,
				PreserveAlpha: preserveAlpha,
			}
			if targetSize != "" {
				n, err := humanize.ParseBytes(targetSize)
				if err != nil {
					return fmt.Errorf("invalid --target-size: %w", err)
				}
				if n == 0 {
					return fmt.Errorf("invalid --target-size: must be positive")
				}
				req.TargetSize = int64(n)
			}

			data, err := os.ReadFile(input)
			if err != nil {
				return err
			}
			res, err := codec.NewCompressor().Compress(cmd.Context(), data, req)
			if err != nil {
				return err
			}

			if output == "" {
				output = defaultOutputPath(input, res.Format)
			}
			if err := core.WriteFileAtomic(output, res.Data); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s → %s: %s → %s (%s, quality %d, %d attempt(s))\n",
				input, output,
				humanize.Bytes(uint64(len(data))), humanize.Bytes(uint64(res.Size)),
				res.Format, res.Quality, res.Attempts)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <name>.compressed.<ext>)")
	cmd.Flags().StringVarP(&format, "format", "f", "auto", "output format: auto, "+strings.Join(formatNames(), ", "))
	cmd.Flags().IntVarP(&quality, "quality", "q", codec.DefaultQuality, "quality 1-100, used without --target-size")
	cmd.Flags().StringVarP(&targetSize, "target-size", "t", "", "target size, e.g. 200KB or 1.5MiB")
	cmd.Flags().BoolVar(&preserveAlpha, "preserve-alpha", false, "keep transparency when the output format supports it")
	return cmd
}

func defaultOutputPath(input string, format codec.Format) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + ".compressed." + format.Extension()
}

func formatNames() []string {
	names := make([]string, 0, len(codec.Formats))
	for _, f := range codec.Formats {
		names = append(names, string(f))
	}
	return names
}
