package commands

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/tagscrape/internal/logger"
	"github.com/jmylchreest/tagscrape/internal/output"
	"github.com/jmylchreest/tagscrape/internal/scraper"
	"github.com/jmylchreest/tagscrape/pkg/tagscrape"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Extract element text from a rendered page",
	Long: `Render a page, wait for the element with id "element" (up to 10s by
default) and write the text of every matching element to a file.

Failures are logged and the command exits successfully; pass --strict to
exit non-zero instead.

Examples:
  tagscrape scrape -u "https://example.com" -t li
  tagscrape scrape -u "https://example.com" -t div --id main -d out -f main.txt
  tagscrape scrape -u "https://example.com" -t h2 -H "Accept-Language: en-GB"`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	flags := scrapeCmd.Flags()

	// Target
	flags.StringP("url", "u", "", "URL to scrape (required)")
	flags.StringP("tag", "t", "", "tag name of the elements to extract (required)")
	flags.String("id", "", "only extract elements with this exact id")

	// Output settings
	flags.StringP("output-dir", "d", output.DefaultDir, "directory for the output file (created if missing)")
	flags.StringP("output-file", "f", output.DefaultFile, "output file name (overwritten)")
	flags.String("format", string(output.FormatText), "output format: "+formatNames())
	flags.Bool("compact", false, "write JSON on a single line")
	flags.String("indent", "  ", "JSON indentation")

	// Fetch settings
	flags.String("fetch-mode", string(scraper.FetchModeDynamic), "fetch mode: dynamic, static")
	flags.String("wait-for-id", scraper.DefaultWaitForID, "element id to wait for after navigation (empty disables the wait)")
	flags.Duration("wait-timeout", scraper.DefaultWaitTimeout, "how long to wait for --wait-for-id")
	flags.Duration("timeout", scraper.DefaultTimeout, "page load timeout")
	flags.String("user-agent", scraper.DefaultUserAgent, "browser user agent")
	flags.String("chrome-path", "", "Chrome/Chromium binary (default: search PATH)")
	flags.StringArrayP("header", "H", nil, `extra request header "Name: value" (can be repeated)`)

	flags.Bool("strict", false, "exit non-zero when the scrape fails")

	// Bind to viper so the config file and TAGSCRAPE_* env vars apply
	for key, name := range map[string]string{
		"output_dir":   "output-dir",
		"output_file":  "output-file",
		"format":       "format",
		"compact":      "compact",
		"indent":       "indent",
		"fetch_mode":   "fetch-mode",
		"wait_for_id":  "wait-for-id",
		"wait_timeout": "wait-timeout",
		"timeout":      "timeout",
		"user_agent":   "user-agent",
		"chrome_path":  "chrome-path",
		"strict":       "strict",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(name))
	}
}

func formatNames() string {
	names := make([]string, len(output.Formats))
	for i, f := range output.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func runScrape(cmd *cobra.Command, args []string) error {
	logOpts, levelErr := logOptions(cmd)
	logger.Init(logOpts)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.With("command", cmd.Name()).Debug("scrape command starting")

	err := levelErr
	if err == nil {
		err = scrape(ctx, cmd)
	}
	if err == nil {
		return nil
	}
	logger.ErrorContext(ctx, "an error occurred", "error", err)
	if viper.GetBool("strict") {
		return err
	}
	return nil
}

func scrape(ctx context.Context, cmd *cobra.Command) error {
	url, _ := cmd.Flags().GetString("url")
	tag, _ := cmd.Flags().GetString("tag")
	id, _ := cmd.Flags().GetString("id")

	req := tagscrape.Request{
		URL:        url,
		Tag:        tag,
		ID:         id,
		OutputDir:  viper.GetString("output_dir"),
		OutputFile: viper.GetString("output_file"),
	}

	rawHeaders, _ := cmd.Flags().GetStringArray("header")
	opts, err := buildOptions(rawHeaders)
	if err != nil {
		return err
	}

	logger.Debug("request", "url", req.URL, "tag", req.Tag, "id", req.ID,
		"output_dir", req.OutputDir, "output_file", req.OutputFile)

	res, err := tagscrape.Scrape(ctx, req, opts...)
	if err != nil {
		return err
	}
	if res.WaitTimedOut {
		logger.Debug("page was captured without the wait element", "url", res.URL)
	}
	return nil
}

// logOptions resolves --log-level, then lets --debug and --quiet raise or
// lower it. An unknown level falls back to info and is returned as an error.
func logOptions(cmd *cobra.Command) (logger.Options, error) {
	opts, err := logger.ParseLevel(viper.GetString("log_level"))
	if viper.GetBool("debug") {
		opts.Debug = true
	}
	if viper.GetBool("quiet") {
		opts.Quiet = true
	}
	opts.JSON = viper.GetBool("log_json")
	opts.Output = cmd.ErrOrStderr()
	return opts, err
}

// buildOptions turns viper-resolved settings into pipeline options.
func buildOptions(rawHeaders []string) ([]tagscrape.Option, error) {
	format, err := output.ParseFormat(viper.GetString("format"))
	if err != nil {
		return nil, err
	}
	mode, err := scraper.ParseFetchMode(viper.GetString("fetch_mode"))
	if err != nil {
		return nil, err
	}
	headers, err := parseHeaders(rawHeaders)
	if err != nil {
		return nil, err
	}

	return []tagscrape.Option{
		tagscrape.WithFormat(format),
		tagscrape.WithCompact(viper.GetBool("compact")),
		tagscrape.WithIndent(viper.GetString("indent")),
		tagscrape.WithFetchMode(mode),
		tagscrape.WithWaitForID(viper.GetString("wait_for_id")),
		tagscrape.WithWaitTimeout(viper.GetDuration("wait_timeout")),
		tagscrape.WithTimeout(viper.GetDuration("timeout")),
		tagscrape.WithUserAgent(viper.GetString("user_agent")),
		tagscrape.WithExecPath(viper.GetString("chrome_path")),
		tagscrape.WithHeaders(headers),
	}, nil
}

// parseHeaders parses "Name: value" pairs. Later duplicates win.
func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q (want \"Name: value\")", h)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}
