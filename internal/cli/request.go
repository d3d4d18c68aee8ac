package cli

import (
	"context"
	"fmt"
	"io/ioutil"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ansel1/merry"
	"github.com/gemalto/fetchax"
	"github.com/gemalto/fetchax/internal/config"
	"github.com/gemalto/fetchax/internal/output"
	"github.com/gemalto/fetchax/internal/schema"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

func newRequestCmd(method string, withBody bool, f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   strings.ToLower(method) + " URL",
		Short: fmt.Sprintf("Send a %s request", method),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, method, args[0], f)
		},
	}
	if withBody {
		cmd.Flags().StringVarP(&f.data, "data", "d", "", `request body; "@file" reads it from a file, "@-" from stdin`)
	}
	return cmd
}

func run(cmd *cobra.Command, method, rawURL string, f *flags) error {
	out := cmd.OutOrStdout()
	formatter := output.NewFormatter(f.verbose, output.UseColor(out, f.noColor))

	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	defaults, err := profileOptions(f)
	if err != nil {
		return err
	}
	// read the body whole, so it can be printed and needn't be a JSON value
	defaults = append([]fetchax.Option{fetchax.WithResponseType(fetchax.ResponseTypeArrayBuffer)}, defaults...)
	defaults = append(defaults, fetchax.Logger(logger))
	if f.verbose {
		defaults = append(defaults, fetchax.Use(fetchax.LogExchanges(logger)))
	}

	client, err := fetchax.Create(defaults...)
	if err != nil {
		return err
	}

	opts, err := callOptions(cmd, f)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	if f.verbose {
		req, err := client.Request(ctx, method, rawURL, opts...)
		if err != nil {
			return err
		}
		fmt.Fprint(out, formatter.FormatRequest(req))
	}

	start := time.Now()
	resp, err := client.Do(ctx, method, rawURL, opts...)
	elapsed := time.Since(start)
	if err != nil {
		if se, ok := fetchax.AsStatusError(err); ok && se.Response != nil && f.query == "" {
			fmt.Fprint(out, formatter.FormatResponse(se.Response, elapsed))
		}
		return err
	}
	defer resp.Close()

	body, err := output.Body(resp)
	if err != nil {
		return err
	}

	if f.query != "" {
		if err := printQuery(cmd, body, f.query); err != nil {
			return err
		}
	} else {
		fmt.Fprint(out, formatter.FormatResponse(resp, elapsed))
	}

	if f.schemaPath != "" {
		s, err := schema.Load(f.schemaPath)
		if err != nil {
			return err
		}
		return s.Validate(body)
	}
	return nil
}

// profileOptions returns the options of the selected profile, which become
// the client's defaults.
func profileOptions(f *flags) ([]fetchax.Option, error) {
	if f.configPath == "" {
		if f.profile != "" {
			return nil, merry.New("--profile requires --config")
		}
		return nil, nil
	}
	file, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	p, err := file.Profile(f.profile)
	if err != nil {
		return nil, err
	}
	return p.Options()
}

// callOptions converts the request flags into per-call options, which win
// over the profile.
func callOptions(cmd *cobra.Command, f *flags) ([]fetchax.Option, error) {
	var opts []fetchax.Option
	if f.baseURL != "" {
		opts = append(opts, fetchax.BaseURL(f.baseURL))
	}
	for _, h := range f.headers {
		parts := strings.SplitN(h, ":", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
			return nil, merry.Errorf("invalid header %q, expected \"Key: value\"", h)
		}
		opts = append(opts, fetchax.AddHeader(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])))
	}
	for _, p := range f.params {
		parts := strings.SplitN(p, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, merry.Errorf("invalid query parameter %q, expected \"key=value\"", p)
		}
		opts = append(opts, fetchax.QueryParam(parts[0], parts[1]))
	}
	if f.responseType != "" {
		t, err := fetchax.ParseResponseType(f.responseType)
		if err != nil {
			return nil, err
		}
		opts = append(opts, fetchax.WithResponseType(t))
	}
	if f.noThrow {
		opts = append(opts, fetchax.ThrowError(false))
	}
	if cmd.Flags().Lookup("data") != nil && f.data != "" {
		data, err := readData(cmd, f.data)
		if err != nil {
			return nil, err
		}
		opts = append(opts, fetchax.Data(data))
	}
	return opts, nil
}

func readData(cmd *cobra.Command, data string) ([]byte, error) {
	switch {
	case data == "@-":
		b, err := ioutil.ReadAll(cmd.InOrStdin())
		return b, merry.Prepend(err, "reading body from stdin")
	case strings.HasPrefix(data, "@"):
		b, err := os.ReadFile(data[1:])
		return b, merry.Prepend(err, "reading body file")
	}
	return []byte(data), nil
}

func printQuery(cmd *cobra.Command, body []byte, query string) error {
	r := gjson.GetBytes(body, query)
	if !r.Exists() {
		return merry.Errorf("no value at %q in the response body", query)
	}
	if r.IsObject() || r.IsArray() {
		fmt.Fprintln(cmd.OutOrStdout(), output.FormatJSON([]byte(r.Raw)))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), r.String())
	return nil
}
