// Package vectorstore is the embedded similarity index: an sqlite database
// with a vec0 virtual table holding one embedding per denormalized employee
// document.
package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/ncruces"
	_ "github.com/ncruces/go-sqlite3/driver"

	"github.com/staffsense/staffsense-engine/pkg/models"
)

// Store holds documents and their embeddings. Writes come from the
// synchronization engine, reads from the fallback retriever; the two share
// the store without locking, so a reader may momentarily miss a document
// that is between its delete and reinsert.
type Store struct {
	db         *sql.DB
	dimensions int
}

// Open opens (creating if necessary) the index database at path. dimensions
// must match the embedding model's output length and the existing file, if
// any.
func Open(path string, dimensions int) (*Store, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive, got %d", dimensions)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open vector store: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}

	s := &Store{db: db, dimensions: dimensions}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(documentSchema); err != nil {
		return fmt.Errorf("create document schema: %w", err)
	}
	if _, err := s.db.Exec(fmt.Sprintf(vecSchema, s.dimensions)); err != nil {
		return fmt.Errorf("create vector schema: %w", err)
	}
	return nil
}

// Upsert replaces the stored document and embedding for doc.ID. The vector
// row is deleted before reinsertion so the index never pairs an old vector
// with new metadata.
func (s *Store) Upsert(ctx context.Context, doc models.Document, embedding []float32) error {
	if len(embedding) != s.dimensions {
		return fmt.Errorf("embedding has %d dimensions, store expects %d", len(embedding), s.dimensions)
	}

	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata for %s: %w", doc.ID, err)
	}

	blob, err := sqlite_vec.SerializeFloat32(embedding)
	if err != nil {
		return fmt.Errorf("serialize embedding for %s: %w", doc.ID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert for %s: %w", doc.ID, err)
	}
	defer tx.Rollback()

	var rowid int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO documents (id, employee_id, content, metadata)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id = excluded.employee_id,
			content = excluded.content,
			metadata = excluded.metadata
		RETURNING rowid`,
		doc.ID, doc.EmployeeID, doc.Content, string(metadata),
	).Scan(&rowid)
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", doc.ID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM vec_documents WHERE document_rowid = ?`, rowid); err != nil {
		return fmt.Errorf("clear vector for %s: %w", doc.ID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO vec_documents (document_rowid, embedding) VALUES (?, ?)`, rowid, blob); err != nil {
		return fmt.Errorf("insert vector for %s: %w", doc.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert for %s: %w", doc.ID, err)
	}
	return nil
}

// DeleteByEmployee removes the employee's document and its embedding.
// Deleting an absent id is a no-op.
func (s *Store) DeleteByEmployee(ctx context.Context, employeeID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete for employee %d: %w", employeeID, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM vec_documents WHERE document_rowid IN
			(SELECT rowid FROM documents WHERE employee_id = ?)`, employeeID); err != nil {
		return fmt.Errorf("delete vectors for employee %d: %w", employeeID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM documents WHERE employee_id = ?`, employeeID); err != nil {
		return fmt.Errorf("delete documents for employee %d: %w", employeeID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete for employee %d: %w", employeeID, err)
	}
	return nil
}

// Search returns up to topK nearest neighbors for the query embedding,
// ordered by ascending distance.
func (s *Store) Search(ctx context.Context, embedding []float32, topK int) ([]models.Neighbor, error) {
	if len(embedding) != s.dimensions {
		return nil, fmt.Errorf("query embedding has %d dimensions, store expects %d", len(embedding), s.dimensions)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	blob, err := sqlite_vec.SerializeFloat32(embedding)
	if err != nil {
		return nil, fmt.Errorf("serialize query embedding: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.employee_id, d.content, d.metadata, v.distance
		FROM vec_documents v
		JOIN documents d ON d.rowid = v.document_rowid
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance`, blob, topK)
	if err != nil {
		return nil, fmt.Errorf("similarity query: %w", err)
	}
	defer rows.Close()

	var neighbors []models.Neighbor
	for rows.Next() {
		var (
			n        models.Neighbor
			metadata string
			distance sql.NullFloat64
		)
		if err := rows.Scan(&n.ID, &n.EmployeeID, &n.Content, &metadata, &distance); err != nil {
			return nil, fmt.Errorf("scan neighbor: %w", err)
		}
		if metadata != "" {
			if err := json.Unmarshal([]byte(metadata), &n.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata for %s: %w", n.ID, err)
			}
		}
		if distance.Valid {
			d := distance.Float64
			n.Distance = &d
		}
		neighbors = append(neighbors, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read neighbors: %w", err)
	}

	return neighbors, nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
