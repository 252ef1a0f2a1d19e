package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/compose/internal/inspect"
	"github.com/mesh-intelligence/compose/internal/journal"
	"github.com/mesh-intelligence/compose/internal/manifest"
)

// callResult is the JSON shape of a call.
type callResult struct {
	Type   string   `json:"type"`
	Method string   `json:"method"`
	Trace  []string `json:"trace"`
	Result any      `json:"result,omitempty"`
	Error  string   `json:"error,omitempty"`
}

func (a *app) newCallCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "call -f <manifest> <type> <method> [args...]",
		Short: "Instantiate a type and call one of its methods",
		Long: `Call builds the manifest, creates a new instance of the type, and invokes
the method with the given arguments. Arguments that parse as JSON are passed
decoded; anything else is passed as a string.

The trace lists every initializer, method, and advice that ran, in order.
A conflicted, still required, or unapplied method fails the call.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCall(cmd, file, args[0], args[1], args[2:])
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "composition manifest")
	return cmd
}

func (a *app) runCall(cmd *cobra.Command, file, typeName, method string, rawArgs []string) error {
	trace := &manifest.Trace{}
	m, r, err := a.loadRegistry(file, trace)
	if err != nil {
		return err
	}
	t, err := r.Get(typeName)
	if err != nil {
		return err
	}

	out := callResult{Type: typeName, Method: method}
	obj, callErr := t.New()
	if callErr == nil {
		out.Result, callErr = obj.Call(method, parseArgs(rawArgs)...)
	}
	out.Trace = trace.Steps()
	if out.Trace == nil {
		out.Trace = []string{}
	}
	detail := fmt.Sprintf("%s.%s", typeName, method)
	if callErr != nil {
		out.Error = callErr.Error()
		detail += ": " + out.Error
		a.logger.Debug("call failed", zap.String("type", typeName), zap.String("method", method), zap.Error(callErr))
	}

	run := journal.Run{
		Command:  "call",
		Manifest: m.Path,
		Detail:   detail,
		Reports:  []inspect.Report{inspect.Describe(typeName, t)},
	}
	if err := a.record(run); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if a.flags.jsonMode {
		if err := writeJSON(w, out); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(w, "trace: %s\n", strings.Join(out.Trace, " "))
		if callErr == nil {
			fmt.Fprintf(w, "result: %v\n", out.Result)
		}
	}
	return callErr
}
