package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	spectra "github.com/lucasjlepore/spectra-analyzer"
	"github.com/lucasjlepore/spectra-analyzer/fitsource"
)

// Run reads one input, applies the plan and writes the output bundle plus
// notes.md.
func Run(opts Options) (*Result, error) {
	in := strings.TrimSpace(opts.InputDir)
	fitPath := strings.TrimSpace(opts.FitPath)
	if (in == "") == (fitPath == "") {
		return nil, fmt.Errorf("exactly one of input directory and fit path is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}

	plan := opts.Plan
	if plan == nil && strings.TrimSpace(opts.PlanPath) != "" {
		p, err := LoadPlan(opts.PlanPath)
		if err != nil {
			return nil, err
		}
		plan = p
	}

	var tableOpts []spectra.Option
	if opts.Logger != nil {
		tableOpts = append(tableOpts, spectra.WithLogger(opts.Logger))
	}

	var (
		table  *spectra.Table
		format = opts.Format
	)
	if fitPath != "" {
		var fitOpts []fitsource.Option
		if opts.Logger != nil {
			fitOpts = append(fitOpts, fitsource.WithLogger(opts.Logger))
		}
		t, err := fitsource.LoadFile(fitPath, fitOpts...)
		if err != nil {
			return nil, fmt.Errorf("load fit file: %w", err)
		}
		table = t
	} else {
		t, manifest, err := ReadBundle(in, tableOpts...)
		if err != nil {
			return nil, fmt.Errorf("read bundle: %w", err)
		}
		table = t
		if format == "" {
			format = manifest.DataFormat
		}
	}

	out, err := Apply(table, plan)
	if err != nil {
		return nil, fmt.Errorf("apply plan: %w", err)
	}

	manifest, err := WriteBundle(opts.OutDir, out, WriteOptions{
		Format:    format,
		Overwrite: opts.Overwrite,
		Plan:      plan,
	})
	if err != nil {
		return nil, err
	}

	summary := spectra.Summarize(out)
	notesPath := filepath.Join(opts.OutDir, notesName)
	if err := os.WriteFile(notesPath, []byte(spectra.BuildNotes(summary)+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", notesName, err)
	}

	return &Result{
		OutputDir:    opts.OutDir,
		ManifestPath: filepath.Join(opts.OutDir, manifestName),
		DataPath:     filepath.Join(opts.OutDir, manifest.DataFile),
		NotesPath:    notesPath,
		Summary:      summary,
	}, nil
}

// RunAll runs independent jobs with at most limit in flight (no limit when
// limit <= 0). Results keep the order of jobs; the first error cancels the
// jobs that have not started.
func RunAll(ctx context.Context, jobs []Options, limit int) ([]*Result, error) {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	results := make([]*Result, len(jobs))
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := Run(job)
			if err != nil {
				return fmt.Errorf("job %d (%s): %w", i, jobLabel(job), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func jobLabel(o Options) string {
	if o.FitPath != "" {
		return o.FitPath
	}
	return o.InputDir
}
