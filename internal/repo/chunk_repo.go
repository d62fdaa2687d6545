package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"
	"github.com/pgvector/pgvector-go"

	"github.com/Not-Buddy/HackerXAPI/internal/model"
	"github.com/Not-Buddy/HackerXAPI/internal/pkg/dbutil"
	apperr "github.com/Not-Buddy/HackerXAPI/internal/pkg/errors"
)

// ChunkRepo owns the persisted chunk cache. One row per chunk, unique on
// (document_key, chunk_index).
type ChunkRepo struct {
	db *sql.DB
}

func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// HasEmbeddings reports whether a document is already fully cached. Callers
// check this before any fetch, conversion or embedding work.
func (r *ChunkRepo) HasEmbeddings(ctx context.Context, documentKey string) (bool, error) {
	const query = `SELECT 1 FROM document_chunks WHERE document_key = $1 LIMIT 1`
	row := r.db.QueryRowContext(ctx, query, documentKey)
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, &apperr.CacheStoreError{DocumentKey: documentKey, Op: "has_embeddings", Err: err}
	}
	return true, nil
}

// GetChunks returns every cached chunk for a document ordered by chunk index.
func (r *ChunkRepo) GetChunks(ctx context.Context, documentKey string) ([]model.Chunk, error) {
	where := map[string]interface{}{
		"document_key": documentKey,
		"_orderby":     "chunk_index ASC",
	}
	sqlStr, args, err := builder.BuildSelect("document_chunks",
		where, []string{"document_key", "chunk_index", "chunk_text", "embedding", "ctime"})
	if err != nil {
		return nil, &apperr.CacheStoreError{DocumentKey: documentKey, Op: "get_chunks", Err: err}
	}
	rows, err := r.db.QueryContext(ctx, dbutil.Rebind(sqlStr), args...)
	if err != nil {
		return nil, &apperr.CacheStoreError{DocumentKey: documentKey, Op: "get_chunks", Err: err}
	}
	defer rows.Close()
	var results []model.Chunk
	for rows.Next() {
		var item model.Chunk
		var embedding pgvector.Vector
		if err := rows.Scan(&item.DocumentKey, &item.ChunkIndex, &item.Text, &embedding, &item.Ctime); err != nil {
			return nil, &apperr.CacheStoreError{DocumentKey: documentKey, Op: "get_chunks", Err: err}
		}
		item.Embedding = embedding.Slice()
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, &apperr.CacheStoreError{DocumentKey: documentKey, Op: "get_chunks", Err: err}
	}
	return results, nil
}

// BatchInsert persists all chunks of a document in one transaction. Either
// the whole batch commits or none of it does, so a document is never
// partially cached. A unique violation means another request won the race;
// the batch is rolled back and ErrConflict returned so the caller can
// re-read instead of retrying.
func (r *ChunkRepo) BatchInsert(ctx context.Context, documentKey string, chunks []model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &apperr.CacheStoreError{DocumentKey: documentKey, Op: "batch_insert", Err: err}
	}
	const query = `
		INSERT INTO document_chunks (document_key, chunk_index, chunk_text, embedding, ctime)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, chunk := range chunks {
		if _, err := tx.ExecContext(ctx, query,
			documentKey,
			chunk.ChunkIndex,
			chunk.Text,
			pgvector.NewVector(chunk.Embedding),
			chunk.Ctime,
		); err != nil {
			_ = tx.Rollback()
			if dbutil.IsUniqueViolation(err) {
				return apperr.ErrConflict
			}
			return &apperr.CacheStoreError{DocumentKey: documentKey, Op: "batch_insert", Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		if dbutil.IsUniqueViolation(err) {
			return apperr.ErrConflict
		}
		return &apperr.CacheStoreError{DocumentKey: documentKey, Op: "batch_insert", Err: err}
	}
	return nil
}

// DescribeDocument summarizes a document's cache state from its chunk rows.
func (r *ChunkRepo) DescribeDocument(ctx context.Context, documentKey string) (*model.Document, error) {
	count, err := r.CountChunks(ctx, documentKey)
	if err != nil {
		return nil, err
	}
	status := model.DocumentStatusUnprocessed
	if count > 0 {
		status = model.DocumentStatusCached
	}
	return &model.Document{Key: documentKey, Status: status, ChunkCount: count}, nil
}

func (r *ChunkRepo) CountChunks(ctx context.Context, documentKey string) (int, error) {
	const query = `SELECT COUNT(*) FROM document_chunks WHERE document_key = $1`
	row := r.db.QueryRowContext(ctx, query, documentKey)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, &apperr.CacheStoreError{DocumentKey: documentKey, Op: "count_chunks", Err: err}
	}
	return count, nil
}

// DeleteBefore removes chunks older than cutoff. Used only by the optional
// cache cleanup job; the cache otherwise persists indefinitely.
func (r *ChunkRepo) DeleteBefore(ctx context.Context, cutoff int64) (int64, error) {
	const query = `DELETE FROM document_chunks WHERE ctime < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, &apperr.CacheStoreError{Op: "delete_before", Err: err}
	}
	return res.RowsAffected()
}
