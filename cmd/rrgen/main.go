// Command rrgen generates remote resource functions for Go packages.
//
// It loads the named packages (default "./..."), finds properties marked
// with @remoteresource.RemoteResource in doc comments and writes one
// generated function per marked type, next to the type's source:
//
//	rrgen ./...
//	rrgen -A allowedTypes=string,time.Time --output-dir gen ./api/...
//
// Settings may also be given in an rrgen.toml file, found in the current
// directory or one of its parents. Flags override the file.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/brsample/remoteresource/processor"
)

func init() {
	processor.RegisterProvider("remoteresource", processor.NewProvider())
}

// errFailed is returned when processing finished but reported errors. The
// errors have already been printed.
var errFailed = errors.New("generation failed")

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "rrgen [packages...]",
		Short:         "Generate remote resource functions from annotated Go types",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runGenerate,
	}
	f := cmd.Flags()
	f.Bool("tests", false, "also process test files")
	f.String("output-dir", "", "root directory for generated files, organized by package import path (default: next to the sources)")
	f.String("output-url", "", "storage URL for generated files, e.g. mem://localhost/gen or s3://bucket/gen")
	f.StringArrayP("option", "A", nil, "processor option as key=value (repeatable)")
	f.String("config", "", "path to rrgen.toml (default: search the current directory and its parents)")
	f.Int("max-rounds", 3, "maximum number of processing rounds")
	f.Int("parallel", 0, "maximum number of packages processed concurrently (0=number of CPUs)")
	f.String("color", "auto", "colorize output (auto|on|off)")
	f.String("log-level", "warn", "log level (debug|info|warn|error)")
	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
