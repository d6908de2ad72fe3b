package sync

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/staffsense/staffsense-engine/pkg/repositories"
)

// Detector computes which employees' denormalized documents are stale
// relative to a checkpoint. Staleness is not local to the changed row: a
// changed skill definition invalidates every employee holding that skill,
// one hop along the association graph and no further.
type Detector struct {
	repo repositories.EmployeeRepository
}

// NewDetector creates a Detector over the HR repository.
func NewDetector(repo repositories.EmployeeRepository) *Detector {
	return &Detector{repo: repo}
}

// StaleEmployees returns the sorted union of:
//
//	(a) employees whose own row changed after checkpoint;
//	(b) employees on skill associations changed after checkpoint;
//	(c) employees associated with skills whose definition changed after
//	    checkpoint, regardless of the association's own timestamp.
//
// An empty result means the index is already up to date.
func (d *Detector) StaleEmployees(ctx context.Context, checkpoint time.Time) ([]int64, error) {
	stale := make(map[int64]struct{})

	own, err := d.repo.ModifiedSince(ctx, checkpoint)
	if err != nil {
		return nil, fmt.Errorf("detect modified employees: %w", err)
	}
	for _, id := range own {
		stale[id] = struct{}{}
	}

	associated, err := d.repo.AssociationsModifiedSince(ctx, checkpoint)
	if err != nil {
		return nil, fmt.Errorf("detect modified skill associations: %w", err)
	}
	for _, id := range associated {
		stale[id] = struct{}{}
	}

	cascaded, err := d.repo.SkillCascadeModifiedSince(ctx, checkpoint)
	if err != nil {
		return nil, fmt.Errorf("detect skill cascade: %w", err)
	}
	for _, id := range cascaded {
		stale[id] = struct{}{}
	}

	ids := make([]int64, 0, len(stale))
	for id := range stale {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids, nil
}
