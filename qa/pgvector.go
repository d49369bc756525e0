package qa

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PostgresStore keeps question-scoped chunk indexes in Postgres with
// pgvector similarity search.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Upsert(ctx context.Context, docID string, chunks []string, vectors [][]float32) (err error) {
	if s.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(chunks), len(vectors))
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `
		INSERT INTO qa_documents (id, created_at)
		VALUES ($1, NOW())
		ON CONFLICT (id) DO NOTHING
	`, docID); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	if _, err = tx.Exec(ctx, "DELETE FROM qa_chunks WHERE document_id = $1", docID); err != nil {
		return fmt.Errorf("clear existing chunks: %w", err)
	}

	for idx, content := range chunks {
		if _, err = tx.Exec(ctx, `
			INSERT INTO qa_chunks (id, document_id, chunk_index, content, embedding, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
		`, uuid.New(), docID, idx, content, pgvector.NewVector(vectors[idx])); err != nil {
			return fmt.Errorf("insert chunk %d: %w", idx, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) Search(ctx context.Context, docID string, vector []float32, limit int) ([]Chunk, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("query vector is empty")
	}
	if limit <= 0 {
		limit = 5
	}

	rows, err := s.pool.Query(ctx, `
        SELECT
            qc.document_id,
            qc.chunk_index,
            qc.content,
            (qc.embedding <-> $1::vector) AS distance
        FROM qa_chunks qc
        WHERE qc.document_id = $2
        ORDER BY qc.embedding <-> $1::vector
        LIMIT $3
    `, pgvector.NewVector(vector), docID, limit)
	if err != nil {
		return nil, fmt.Errorf("query similar chunks: %w", err)
	}
	defer rows.Close()

	results := make([]Chunk, 0)
	for rows.Next() {
		var item Chunk
		var distance float64
		if scanErr := rows.Scan(&item.DocumentID, &item.Index, &item.Content, &distance); scanErr != nil {
			return nil, fmt.Errorf("scan similar chunk: %w", scanErr)
		}
		item.Score = 1 / (1 + distance)
		results = append(results, item)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return results, nil
}

func (s *PostgresStore) Delete(ctx context.Context, docID string) error {
	if s.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if _, err := s.pool.Exec(ctx, "DELETE FROM qa_documents WHERE id = $1", docID); err != nil {
		return fmt.Errorf("delete document index: %w", err)
	}
	return nil
}

var _ VectorStore = (*PostgresStore)(nil)
