package commands

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dotcommander/pai/internal/app"
	"github.com/dotcommander/pai/internal/output"
	"github.com/dotcommander/pai/internal/store"
)

type printedError struct {
	err error
}

func (e printedError) Error() string {
	// Intentionally hide the original error: the JSON error response is the output.
	return "error already printed"
}

func (e printedError) Unwrap() error { return e.err }

// openStore builds the signal store for the resolved root and time zone.
func openStore() (*store.Store, error) {
	root, err := app.GetRootDir()
	if err != nil {
		return nil, err
	}
	return store.New(root, store.WithLocation(app.Location())), nil
}

func outputConfig(cmd *cobra.Command) output.Config {
	cfg := output.DefaultConfig()
	cfg.Writer = cmd.OutOrStdout()
	return cfg
}

func printSuccess(cmd *cobra.Command, data any) error {
	return output.PrintWith(outputConfig(cmd), output.Success(data))
}

// cmdErr logs err, prints the JSON error envelope and returns a printedError
// so Execute does not log it twice.
func cmdErr(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	attrs := []any{"error", err.Error()}
	type slogAttrError interface {
		SlogAttrs() []any
	}
	var detailed slogAttrError
	if errors.As(err, &detailed) {
		attrs = append(attrs, detailed.SlogAttrs()...)
	}
	slog.Error("command error", attrs...)
	_ = output.PrintWith(outputConfig(cmd), output.Error(err))
	return printedError{err: err}
}
