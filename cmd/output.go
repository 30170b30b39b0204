package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/s0up4200/uslcheck/report"
)

// reportFormat resolves the output format from the flag or config. Commands
// call it before logging in so a bad format costs no session.
func reportFormat() (report.Format, error) {
	name := cfg.Output.Format
	if outputFormat != "" {
		name = outputFormat
	}
	return report.ParseFormat(name)
}

// writeReport renders results with fn, to --output when set or to stdout.
// The file is only created here, once results are ready, and a failed
// close is returned.
func writeReport(stdout io.Writer, format report.Format, fn func(*report.Writer) error) (err error) {
	if outputFile == "" {
		return fn(report.NewWriter(stdout, format))
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	logger.Debug().Str("path", outputFile).Str("format", string(format)).Msg("Writing results to file")
	return fn(report.NewWriter(f, format))
}
