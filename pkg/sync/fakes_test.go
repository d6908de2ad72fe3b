package sync

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/staffsense/staffsense-engine/pkg/apperrors"
	"github.com/staffsense/staffsense-engine/pkg/models"
	"github.com/staffsense/staffsense-engine/pkg/repositories"
)

// fakeRepo is an in-memory EmployeeRepository for engine and detector tests.
type fakeRepo struct {
	employees map[int64]*models.Employee
	skills    map[int64][]models.SkillAssociation

	modified      []int64
	assocModified []int64
	skillCascade  []int64

	getErr map[int64]error // per-id GetByID failures

	listAllCalls       int
	modifiedSinceCalls int
}

var _ repositories.EmployeeRepository = (*fakeRepo)(nil)

func newFakeRepo(employees ...*models.Employee) *fakeRepo {
	r := &fakeRepo{
		employees: make(map[int64]*models.Employee),
		skills:    make(map[int64][]models.SkillAssociation),
		getErr:    make(map[int64]error),
	}
	for _, e := range employees {
		r.employees[e.EmployeeID] = e
	}
	return r
}

func (r *fakeRepo) ListAll(ctx context.Context) ([]*models.Employee, error) {
	r.listAllCalls++
	out := make([]*models.Employee, 0, len(r.employees))
	for _, e := range r.employees {
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeRepo) GetByID(ctx context.Context, employeeID int64) (*models.Employee, error) {
	if err := r.getErr[employeeID]; err != nil {
		return nil, err
	}
	e, ok := r.employees[employeeID]
	if !ok {
		return nil, fmt.Errorf("employee %d: %w", employeeID, apperrors.ErrNotFound)
	}
	return e, nil
}

func (r *fakeRepo) SkillsFor(ctx context.Context, employeeID int64) ([]models.SkillAssociation, error) {
	return r.skills[employeeID], nil
}

func (r *fakeRepo) ModifiedSince(ctx context.Context, since time.Time) ([]int64, error) {
	r.modifiedSinceCalls++
	return r.modified, nil
}

func (r *fakeRepo) AssociationsModifiedSince(ctx context.Context, since time.Time) ([]int64, error) {
	return r.assocModified, nil
}

func (r *fakeRepo) SkillCascadeModifiedSince(ctx context.Context, since time.Time) ([]int64, error) {
	return r.skillCascade, nil
}

func (r *fakeRepo) ExecuteReadOnly(ctx context.Context, sqlText string) ([]map[string]any, error) {
	return nil, nil
}

// fakeIndex records index mutations in call order.
type fakeIndex struct {
	upserts   []models.Document
	deletes   []int64
	ops       []string // "delete:<id>" / "upsert:<doc id>" interleaved
	upsertErr error
}

var _ DocumentIndex = (*fakeIndex)(nil)

func (f *fakeIndex) Upsert(ctx context.Context, doc models.Document, embedding []float32) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, doc)
	f.ops = append(f.ops, "upsert:"+doc.ID)
	return nil
}

func (f *fakeIndex) DeleteByEmployee(ctx context.Context, employeeID int64) error {
	f.deletes = append(f.deletes, employeeID)
	f.ops = append(f.ops, fmt.Sprintf("delete:%d", employeeID))
	return nil
}

// memCheckpoint is an in-memory CheckpointStore.
type memCheckpoint struct {
	t         time.Time
	ok        bool
	saves     []time.Time
	loadCalls atomic.Int32

	loadStarted chan struct{} // closed-once signal, nil to disable
	loadRelease chan struct{} // Load blocks on this when set
}

var _ CheckpointStore = (*memCheckpoint)(nil)

func (m *memCheckpoint) Load(ctx context.Context) (time.Time, bool, error) {
	m.loadCalls.Add(1)
	if m.loadStarted != nil {
		close(m.loadStarted)
		m.loadStarted = nil
	}
	if m.loadRelease != nil {
		<-m.loadRelease
	}
	return m.t, m.ok, nil
}

func (m *memCheckpoint) Save(ctx context.Context, t time.Time) error {
	m.t = t
	m.ok = true
	m.saves = append(m.saves, t)
	return nil
}
