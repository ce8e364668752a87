package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-preprocess-mcp/internal/preprocess"
	"github.com/ironsheep/image-preprocess-mcp/internal/source"
)

func newResolveCmd(flags *rootFlags) *cobra.Command {
	var (
		noDiskCache bool
		iconSize    int
		output      string
	)

	cmd := &cobra.Command{
		Use:   "resolve <uri>",
		Short: "Preprocess one image source and print the result",
		Long: `Run the matching preprocessor for uri and print the result as JSON.
Sources that no preprocessor handles are reported with status "no_match".

Examples:
  image-preprocess resolve /sdcard/Download/app.apk
  image-preprocess resolve app.icon://com.example.app -o icon.png
  image-preprocess resolve --no-disk-cache 'data:image/png;base64,...'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if iconSize < 0 {
				return fmt.Errorf("--icon-size must not be negative, got %d", iconSize)
			}
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}

			src := source.New(args[0], &source.LoadOptions{
				DisableDiskCache: noDiskCache,
				IconMaxSize:      iconSize,
			})
			res, err := a.registry.Resolve(cmd.Context(), src)
			if errors.Is(err, preprocess.ErrNoMatch) {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"uri":    src.URI,
					"scheme": src.Scheme.String(),
					"status": "no_match",
				})
			}
			if err != nil {
				return err
			}

			if output != "" {
				if err := writeResult(res, output); err != nil {
					return err
				}
			}
			return printJSON(cmd.OutOrStdout(), struct {
				URI    string `json:"uri"`
				Scheme string `json:"scheme"`
				Status string `json:"status"`
				*preprocess.Result
				Size int64 `json:"size"`
			}{src.URI, src.Scheme.String(), "resolved", res, res.Size()})
		},
	}

	cmd.Flags().BoolVar(&noDiskCache, "no-disk-cache", false, "keep extracted icons in memory only")
	cmd.Flags().IntVar(&iconSize, "icon-size", 0, "maximum icon edge in pixels (0 = configured size)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the resource bytes to this file")
	return cmd
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <uri>",
		Short: "Print the scheme and content of an image source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := source.New(args[0], nil)
			match := ""
			if p, ok := preprocess.NewDefault(preprocess.Deps{}).Lookup(src); ok {
				match = p.Key()
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{
				"uri":          src.URI,
				"scheme":       src.Scheme.String(),
				"content":      src.Content,
				"preprocessor": match,
			})
		},
	}
}

func writeResult(res *preprocess.Result, path string) error {
	rc, err := res.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
