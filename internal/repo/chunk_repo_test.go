package repo

import (
	"context"
	"database/sql"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Not-Buddy/HackerXAPI/internal/config"
	"github.com/Not-Buddy/HackerXAPI/internal/db"
	"github.com/Not-Buddy/HackerXAPI/internal/model"
	apperr "github.com/Not-Buddy/HackerXAPI/internal/pkg/errors"
)

// Tests in this file need a real postgres with the vector extension; set
// TEST_DB_HOST (and optionally TEST_DB_PORT/USER/PASSWORD/NAME) to run them.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set")
	}
	port := 5432
	if v := os.Getenv("TEST_DB_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		require.NoError(t, err)
		port = p
	}
	conn, err := db.Open(config.DatabaseConfig{
		Host:     host,
		Port:     port,
		User:     envOr("TEST_DB_USER", "postgres"),
		Password: os.Getenv("TEST_DB_PASSWORD"),
		DBName:   envOr("TEST_DB_NAME", "hackerx_test"),
	})
	require.NoError(t, err)
	require.NoError(t, db.ApplyMigrations(conn))
	t.Cleanup(func() { conn.Close() })
	return conn
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testChunks(documentKey string, n int) []model.Chunk {
	now := time.Now().Unix()
	chunks := make([]model.Chunk, n)
	for i := range chunks {
		chunks[i] = model.Chunk{
			DocumentKey: documentKey,
			ChunkIndex:  i,
			Text:        "chunk " + strconv.Itoa(i),
			Embedding:   []float32{float32(i), 1, 0},
			Ctime:       now,
		}
	}
	return chunks
}

func TestChunkRepo_InsertAndGet(t *testing.T) {
	repo := NewChunkRepo(testDB(t))
	ctx := context.Background()
	key := "test://doc/" + uuid.NewString()

	cached, err := repo.HasEmbeddings(ctx, key)
	require.NoError(t, err)
	assert.False(t, cached)

	require.NoError(t, repo.BatchInsert(ctx, key, testChunks(key, 3)))

	cached, err = repo.HasEmbeddings(ctx, key)
	require.NoError(t, err)
	assert.True(t, cached)

	got, err := repo.GetChunks(ctx, key)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, chunk := range got {
		assert.Equal(t, i, chunk.ChunkIndex)
		assert.Equal(t, key, chunk.DocumentKey)
		assert.Equal(t, []float32{float32(i), 1, 0}, chunk.Embedding)
	}
}

func TestChunkRepo_DuplicateInsertIsConflict(t *testing.T) {
	repo := NewChunkRepo(testDB(t))
	ctx := context.Background()
	key := "test://doc/" + uuid.NewString()

	require.NoError(t, repo.BatchInsert(ctx, key, testChunks(key, 2)))

	err := repo.BatchInsert(ctx, key, testChunks(key, 2))
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))

	count, err := repo.CountChunks(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "losing batch must leave the cache untouched")
}

func TestChunkRepo_DescribeDocument(t *testing.T) {
	repo := NewChunkRepo(testDB(t))
	ctx := context.Background()
	key := "test://doc/" + uuid.NewString()

	doc, err := repo.DescribeDocument(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentStatusUnprocessed, doc.Status)
	assert.Zero(t, doc.ChunkCount)

	require.NoError(t, repo.BatchInsert(ctx, key, testChunks(key, 4)))

	doc, err = repo.DescribeDocument(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentStatusCached, doc.Status)
	assert.Equal(t, 4, doc.ChunkCount)
}

func TestChunkRepo_EmptyBatchIsNoOp(t *testing.T) {
	repo := NewChunkRepo(testDB(t))
	require.NoError(t, repo.BatchInsert(context.Background(), "test://doc/empty", nil))
}

func TestChunkRepo_DeleteBefore(t *testing.T) {
	repo := NewChunkRepo(testDB(t))
	ctx := context.Background()
	key := "test://doc/" + uuid.NewString()

	old := testChunks(key, 2)
	for i := range old {
		old[i].Ctime = 1000
	}
	require.NoError(t, repo.BatchInsert(ctx, key, old))

	deleted, err := repo.DeleteBefore(ctx, 2000)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, deleted, int64(2))

	cached, err := repo.HasEmbeddings(ctx, key)
	require.NoError(t, err)
	assert.False(t, cached)
}
