package prover

import (
	"context"
	"fmt"

	"github.com/deepfamily/identity-zk/common"
	"github.com/deepfamily/identity-zk/models"
	"golang.org/x/sync/errgroup"
)

// Job is one independent proving request of a batch
type Job struct {
	ID        string
	Circuit   Circuit
	Witness   any
	Artifacts Artifacts
	// OutDir receives input.json, proof.json and public.json when set.
	// Jobs must not share an OutDir.
	OutDir string
}

// ProveBatch proves jobs concurrently, at most limit at a time (unbounded if
// limit <= 0). Results keep the order of jobs. The first failure cancels the
// jobs that have not finished.
func (e *Engine) ProveBatch(ctx context.Context, jobs []Job, limit int) ([]*models.ProofBundle, error) {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	results := make([]*models.ProofBundle, len(jobs))
	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			bundle, err := e.Prove(ctx, job.Circuit, job.Witness, job.Artifacts)
			if err != nil {
				return fmt.Errorf("job %s: %w", job.ID, err)
			}
			if job.OutDir != "" {
				if err := common.SaveBundle(job.OutDir, job.Witness, bundle); err != nil {
					return fmt.Errorf("job %s: %w", job.ID, err)
				}
			}
			results[i] = bundle
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
