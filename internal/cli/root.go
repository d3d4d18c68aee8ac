// Package cli implements the fetchax command.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var version = "dev"

// EnvConfig names the environment variable holding the default --config path.
const EnvConfig = "FETCHAX_CONFIG"

type flags struct {
	headers      []string
	params       []string
	data         string
	baseURL      string
	responseType string
	noThrow      bool
	configPath   string
	profile      string
	query        string
	schemaPath   string
	noColor      bool
	verbose      bool
	timeout      time.Duration
}

// NewRootCmd builds the fetchax command tree.
func NewRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:     "fetchax",
		Short:   "Send HTTP requests from the terminal",
		Version: version,
		Long: `fetchax sends a single HTTP request and prints the response.

Client defaults can be kept in named profiles, in a YAML or JSON file given
with --config (or $` + EnvConfig + `).  JSON responses can be filtered with a
gjson path (--query) and checked against a JSON schema (--schema).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	pf := root.PersistentFlags()
	pf.StringArrayVarP(&f.headers, "header", "H", nil, `request header, as "Key: value" (can be used multiple times)`)
	pf.StringArrayVarP(&f.params, "param", "q", nil, `query parameter, as "key=value" (can be used multiple times)`)
	pf.StringVar(&f.baseURL, "base-url", "", "base URL which relative request URLs are joined to")
	pf.StringVar(&f.responseType, "response-type", "", "decode the body as arraybuffer, blob, json, text, stream or formdata")
	pf.BoolVar(&f.noThrow, "no-throw", false, "don't fail on status codes of 300 or more")
	pf.StringVar(&f.configPath, "config", os.Getenv(EnvConfig), "profile file (YAML or JSON)")
	pf.StringVar(&f.profile, "profile", "", "profile to use from the config file")
	pf.StringVar(&f.query, "query", "", "print only the value at this gjson path of the response body")
	pf.StringVar(&f.schemaPath, "schema", "", "JSON schema file the response body must match")
	pf.BoolVar(&f.noColor, "no-color", false, "disable colored output")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "print the request, headers, and debug logs")
	pf.DurationVarP(&f.timeout, "timeout", "t", 30*time.Second, "request timeout, 0 for none")

	root.AddCommand(
		newRequestCmd("GET", false, f),
		newRequestCmd("HEAD", false, f),
		newRequestCmd("DELETE", false, f),
		newRequestCmd("POST", true, f),
		newRequestCmd("PUT", true, f),
		newRequestCmd("PATCH", true, f),
	)
	return root
}

// Execute runs the fetchax command with the process arguments.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}
