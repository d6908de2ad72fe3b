package vectorstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffsense/staffsense-engine/pkg/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "index.db"), 4)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testDoc(employeeID int64, content string) models.Document {
	return models.Document{
		ID:         models.DocumentID(employeeID),
		EmployeeID: employeeID,
		Content:    content,
		Metadata:   map[string]string{"table": "employee", "row_id": models.DocumentID(employeeID)[len("employee:"):]},
	}
}

func TestStore_UpsertAndSearch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, testDoc(1, "python expert"), []float32{1, 0, 0, 0}))
	require.NoError(t, s.Upsert(ctx, testDoc(2, "java expert"), []float32{0, 1, 0, 0}))

	neighbors, err := s.Search(ctx, []float32{1, 0, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, neighbors, 2)

	assert.Equal(t, "employee:1", neighbors[0].ID)
	assert.Equal(t, int64(1), neighbors[0].EmployeeID)
	assert.Equal(t, "python expert", neighbors[0].Content)
	assert.Equal(t, "1", neighbors[0].Metadata["row_id"])
	require.NotNil(t, neighbors[0].Distance)
	require.NotNil(t, neighbors[1].Distance)
	assert.Less(t, *neighbors[0].Distance, *neighbors[1].Distance)
}

func TestStore_UpsertReplacesExisting(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, testDoc(1, "old content"), []float32{1, 0, 0, 0}))
	require.NoError(t, s.Upsert(ctx, testDoc(1, "new content"), []float32{0, 0, 0, 1}))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "same id must not duplicate")

	neighbors, err := s.Search(ctx, []float32{0, 0, 0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, "new content", neighbors[0].Content)
}

func TestStore_DeleteByEmployee(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, testDoc(1, "doc one"), []float32{1, 0, 0, 0}))
	require.NoError(t, s.Upsert(ctx, testDoc(2, "doc two"), []float32{0, 1, 0, 0}))

	require.NoError(t, s.DeleteByEmployee(ctx, 1))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	neighbors, err := s.Search(ctx, []float32{1, 0, 0, 0}, 5)
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, "employee:2", neighbors[0].ID)
}

func TestStore_DeleteAbsentIsNoOp(t *testing.T) {
	s := openTestStore(t)

	assert.NoError(t, s.DeleteByEmployee(context.Background(), 999))
}

func TestStore_DimensionMismatch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.Upsert(ctx, testDoc(1, "doc"), []float32{1, 0})
	assert.Error(t, err)

	_, err = s.Search(ctx, []float32{1, 0}, 5)
	assert.Error(t, err)
}

func TestStore_SearchEmptyIndex(t *testing.T) {
	s := openTestStore(t)

	neighbors, err := s.Search(context.Background(), []float32{0, 0, 0, 1}, 5)
	require.NoError(t, err)
	assert.Empty(t, neighbors)
}

func TestStore_TopKLimits(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		require.NoError(t, s.Upsert(ctx, testDoc(i, "doc"), []float32{float32(i), 0, 0, 0}))
	}

	neighbors, err := s.Search(ctx, []float32{1, 0, 0, 0}, 3)
	require.NoError(t, err)
	assert.Len(t, neighbors, 3)
}

func TestOpen_RejectsBadDimensions(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "index.db"), 0)
	assert.Error(t, err)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	s, err := Open(path, 4)
	require.NoError(t, err)
	require.NoError(t, s.Upsert(context.Background(), testDoc(1, "persisted"), []float32{1, 0, 0, 0}))
	require.NoError(t, s.Close())

	s2, err := Open(path, 4)
	require.NoError(t, err)
	defer s2.Close()

	count, err := s2.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
