package auth

import (
	"context"
	"testing"

	"github.com/quillpost/quillpost/internal/model"
)

func TestUserFromContext_Present(t *testing.T) {
	user := &model.SessionUser{ID: "user-1", Name: "Ada"}
	ctx := ContextWithUser(context.Background(), user)

	got := UserFromContext(ctx)
	if got == nil {
		t.Fatal("expected user, got nil")
	}
	if got.ID != "user-1" || got.Name != "Ada" {
		t.Errorf("unexpected user: %+v", got)
	}
}

func TestUserFromContext_Missing(t *testing.T) {
	if got := UserFromContext(context.Background()); got != nil {
		t.Errorf("expected nil for unauthenticated context, got %+v", got)
	}
}
