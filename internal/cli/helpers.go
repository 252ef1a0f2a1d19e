package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/compose/internal/journal"
	"github.com/mesh-intelligence/compose/internal/manifest"
)

// loadRegistry parses the manifest at path and builds every type it
// declares, recording runtime labels on trace.
func (a *app) loadRegistry(path string, trace *manifest.Trace) (*manifest.Manifest, *manifest.Registry, error) {
	if path == "" {
		return nil, nil, fmt.Errorf("a manifest is required (-f)")
	}
	m, err := manifest.Load(path)
	if err != nil {
		return nil, nil, err
	}
	r, err := m.Build(trace)
	if err != nil {
		return nil, nil, fmt.Errorf("build %s: %w", path, err)
	}
	a.logger.Debug("manifest built", zap.String("path", path), zap.Strings("types", r.Names()))
	return m, r, nil
}

// withJournal attaches the journal for the duration of fn.
func (a *app) withJournal(fn func(j *journal.Journal) error) error {
	dataDir, err := a.dataDir()
	if err != nil {
		return sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	j := journal.NewJournal(a.logger)
	if err := j.Attach(dataDir); err != nil {
		return sysError(fmt.Errorf("attach journal: %w", err))
	}
	defer j.Detach()
	return fn(j)
}

// record stores run in the journal unless journaling is disabled in
// config.yaml.
func (a *app) record(run journal.Run) error {
	if a.cfg != nil && !a.cfg.GetBool(cfgKeyJournal) {
		return nil
	}
	return a.withJournal(func(j *journal.Journal) error {
		if _, err := j.Record(run); err != nil {
			return sysError(fmt.Errorf("record run: %w", err))
		}
		return nil
	})
}

func writeJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

// parseArgs turns command-line arguments into method arguments: valid JSON
// is decoded, anything else is passed as a string.
func parseArgs(raw []string) []any {
	args := make([]any, len(raw))
	for i, s := range raw {
		var parsed any
		if err := json.Unmarshal([]byte(s), &parsed); err != nil {
			parsed = s
		}
		args[i] = parsed
	}
	return args
}
