// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdf2md/internal/convert"
	"github.com/pdiddy/pdf2md/internal/httputil"
	"github.com/pdiddy/pdf2md/internal/output"
	"github.com/pdiddy/pdf2md/internal/pdfreader"
	"github.com/pdiddy/pdf2md/pkg/types"
)

const defaultFetchTimeout = 60 * time.Second

var convertCmd = &cobra.Command{
	Use:   "convert <file.pdf|URL>",
	Short: "Convert a PDF file to Markdown",
	Long: `Convert reads a PDF from a local path or an http(s) URL and writes the
result as Markdown, JSON or YAML. Output goes to stdout unless --output is
given; "-o DIR/" writes DIR/<name>.<ext>. An existing output file is kept
unless --force is set.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().Bool("include-images", false, "extract images")
	convertCmd.Flags().Bool("embed-images", false, "embed extracted images in the Markdown as data URIs")
	convertCmd.Flags().String("format", "markdown", "output format: markdown, json, or yaml")
	convertCmd.Flags().Bool("frontmatter", false, "prepend YAML frontmatter to Markdown output")
	convertCmd.Flags().StringP("output", "o", "", "output file or directory (default: stdout)")
	convertCmd.Flags().Bool("force", false, "overwrite an existing output file")
	convertCmd.Flags().Duration("timeout", defaultFetchTimeout, "timeout for fetching a URL")

	viper.BindPFlag("convert.include_images", convertCmd.Flags().Lookup("include-images"))
	viper.BindPFlag("convert.embed_images", convertCmd.Flags().Lookup("embed-images"))
	viper.BindPFlag("convert.format", convertCmd.Flags().Lookup("format"))
	viper.BindPFlag("convert.frontmatter", convertCmd.Flags().Lookup("frontmatter"))

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConversionConfig(viper.GetViper())
	if err != nil {
		return err
	}
	outPath, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	source := args[0]
	data, name, err := readSource(cmd.Context(), source, timeout)
	if err != nil {
		return err
	}

	engine := convert.NewEngine(pdfreader.New(), convert.WithLogger(logger))
	res, err := engine.Convert(data, convert.Options{
		IncludeImages: cfg.IncludeImages,
		EmbedImages:   cfg.EmbedImages,
	})
	if err != nil {
		return fmt.Errorf("converting %s: %w", name, err)
	}

	rendered, err := output.Render(res, cfg.Format, output.Metadata{
		Source:      source,
		ConvertedAt: time.Now(),
	}, cfg.Frontmatter)
	if err != nil {
		return err
	}

	if outPath == "" {
		_, err := cmd.OutOrStdout().Write(rendered)
		return err
	}
	if isDir(outPath) {
		outPath = output.DefaultPath(name, outPath, cfg.Format)
	}
	if err := output.WriteFile(outPath, rendered, force); err != nil {
		if errors.Is(err, output.ErrExists) {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipped: %s (already exists, use --force)\n", outPath)
			return nil
		}
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "converted: %s -> %s (%d pages", name, outPath, res.Pages)
	if cfg.IncludeImages {
		fmt.Fprintf(cmd.ErrOrStderr(), ", %d images", len(res.Images))
		if res.SkippedImages > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), ", %d skipped", res.SkippedImages)
		}
	}
	fmt.Fprintln(cmd.ErrOrStderr(), ")")
	return nil
}

// loadConversionConfig reads the convert.* keys and validates the format.
func loadConversionConfig(v *viper.Viper) (types.ConversionConfig, error) {
	format, err := output.ParseFormat(v.GetString("convert.format"))
	if err != nil {
		return types.ConversionConfig{}, err
	}
	return types.ConversionConfig{
		IncludeImages: v.GetBool("convert.include_images"),
		EmbedImages:   v.GetBool("convert.embed_images"),
		Format:        format,
		Frontmatter:   v.GetBool("convert.frontmatter"),
	}, nil
}

// readSource loads the PDF named by source, fetching it when source is an
// http(s) URL. It returns the bytes and a display name.
func readSource(ctx context.Context, source string, timeout time.Duration) ([]byte, string, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		if ctx == nil {
			ctx = context.Background()
		}
		client := &http.Client{Timeout: timeout}
		maxBytes := viper.GetInt64("server.max_upload_bytes")
		return httputil.FetchPDF(ctx, client, source, maxBytes, logger)
	}

	var (
		data []byte
		err  error
	)
	if source == "-" {
		data, err = io.ReadAll(os.Stdin)
		source = "stdin.pdf"
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", source, err)
	}
	return data, filepath.Base(source), nil
}

// isDir reports whether path names a directory, existing or marked by a
// trailing separator.
func isDir(path string) bool {
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return true
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
