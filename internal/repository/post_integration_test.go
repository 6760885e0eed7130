//go:build integration

package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/lib/pq"

	"github.com/quillpost/quillpost/internal/model"
	"github.com/quillpost/quillpost/internal/testutil"
)

// ============================================================================
// Post Repository Integration Tests
// ============================================================================

func TestIntegrationPostRepository_CreatePost(t *testing.T) {
	ctx, repo, owner := newPostTestEnv(t)

	post := testutil.NewTestPost(t, owner.ID, "First Post")

	if err := repo.CreatePost(ctx, post); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	retrieved, err := repo.GetPostByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetPostByID failed: %v", err)
	}

	if retrieved.Title != post.Title {
		t.Errorf("Title mismatch: got %q, want %q", retrieved.Title, post.Title)
	}
	if retrieved.Body != post.Body {
		t.Errorf("Body mismatch: got %q, want %q", retrieved.Body, post.Body)
	}
	if retrieved.UserID != owner.ID {
		t.Errorf("UserID mismatch: got %q, want %q", retrieved.UserID, owner.ID)
	}
	if retrieved.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestIntegrationPostRepository_GetByID_NotFound(t *testing.T) {
	ctx, repo, _ := newPostTestEnv(t)

	_, err := repo.GetPostByID(ctx, "nonexistent-id")
	if !errors.Is(err, ErrPostNotFound) {
		t.Errorf("Expected ErrPostNotFound, got: %v", err)
	}
}

func TestIntegrationPostRepository_ListPostsByOwner(t *testing.T) {
	ctx, repo, owner := newPostTestEnv(t)

	other := testutil.NewTestUser(t, testutil.UniqueEmail("other"))
	if err := repo.CreateUser(ctx, other); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	// Create out of id order but with ascending timestamps.
	base := time.Now().UTC().Add(-time.Hour)
	titles := []string{"Oldest", "Middle", "Newest"}
	for i, title := range titles {
		post := testutil.NewTestPost(t, owner.ID, title)
		post.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		post.UpdatedAt = post.CreatedAt
		if err := repo.CreatePost(ctx, post); err != nil {
			t.Fatalf("CreatePost failed: %v", err)
		}
	}
	foreign := testutil.NewTestPost(t, other.ID, "Foreign")
	if err := repo.CreatePost(ctx, foreign); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	posts, err := repo.ListPostsByOwner(ctx, owner.ID)
	if err != nil {
		t.Fatalf("ListPostsByOwner failed: %v", err)
	}

	if len(posts) != 3 {
		t.Fatalf("expected 3 posts for owner, got %d", len(posts))
	}
	for i, title := range titles {
		if posts[i].Title != title {
			t.Errorf("position %d: got %q, want %q", i, posts[i].Title, title)
		}
	}
}

func TestIntegrationPostRepository_UpdatePost(t *testing.T) {
	ctx, repo, owner := newPostTestEnv(t)

	post := testutil.NewTestPost(t, owner.ID, "Before")
	if err := repo.CreatePost(ctx, post); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	post.Title = "After"
	post.Body = "Updated body"
	post.UpdatedAt = time.Now().UTC()

	if err := repo.UpdatePost(ctx, post); err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}

	retrieved, err := repo.GetPostByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetPostByID failed: %v", err)
	}
	if retrieved.Title != "After" {
		t.Errorf("Title mismatch: got %q, want %q", retrieved.Title, "After")
	}
	if retrieved.UserID != owner.ID {
		t.Errorf("UserID must not change on update: got %q", retrieved.UserID)
	}
}

func TestIntegrationPostRepository_UpdatePost_NotFound(t *testing.T) {
	ctx, repo, owner := newPostTestEnv(t)

	post := testutil.NewTestPost(t, owner.ID, "Ghost")

	err := repo.UpdatePost(ctx, post)
	if !errors.Is(err, ErrPostNotFound) {
		t.Errorf("Expected ErrPostNotFound, got: %v", err)
	}
}

func TestIntegrationPostRepository_DeletePost(t *testing.T) {
	ctx, repo, owner := newPostTestEnv(t)

	post := testutil.NewTestPost(t, owner.ID, "Doomed")
	if err := repo.CreatePost(ctx, post); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	if err := repo.DeletePost(ctx, post.ID); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}

	if _, err := repo.GetPostByID(ctx, post.ID); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("Expected ErrPostNotFound after delete, got: %v", err)
	}

	// A second delete reports not found; the first one was final.
	if err := repo.DeletePost(ctx, post.ID); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("Expected ErrPostNotFound on repeat delete, got: %v", err)
	}

	// Verify the row is physically gone via a separate driver.
	db := openSQLDB(t)
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts WHERE id = $1", post.ID).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 rows for deleted post, got %d", count)
	}
}

// newPostTestEnv connects, resets the schema, and seeds an owner.
func newPostTestEnv(t *testing.T) (context.Context, *Repository, *model.User) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetUsersSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset users schema: %v", err)
	}
	if err := testutil.ResetPostsSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset posts schema: %v", err)
	}

	owner := testutil.NewTestUser(t, testutil.UniqueEmail("owner"))
	if err := repo.CreateUser(ctx, owner); err != nil {
		t.Fatalf("seed owner: %v", err)
	}

	return ctx, repo, owner
}

// openSQLDB opens a database/sql connection for raw row assertions.
func openSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := testutil.RequireEnv(t, "DATABASE_URL")
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}
