package repository

import (
	"context"
	"testing"

	"github.com/metronlab/metron/internal/schema"
	"github.com/metronlab/metron/internal/testutil"
)

func TestUserRepositorySaveAndList(t *testing.T) {
	repo := NewUserRepository(testutil.OpenCacheDB(t))
	ctx := context.Background()

	if err := repo.Save(ctx, &schema.User{UID: "u1", Email: "a@example.com", AppOrigin: "LogMyself"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// uid 冲突视为成功，原始行保留
	if err := repo.Save(ctx, &schema.User{UID: "u1", Email: "b@example.com", AppOrigin: "LogBoard"}); err != nil {
		t.Fatalf("重复 Save: %v", err)
	}
	if err := repo.Save(ctx, &schema.User{UID: "u2", AppOrigin: "LogBoard"}); err != nil {
		t.Fatalf("Save u2: %v", err)
	}

	ok, err := repo.Exists(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("Exists(u1)=%v,%v", ok, err)
	}
	ok, err = repo.Exists(ctx, "ghost")
	if err != nil || ok {
		t.Fatalf("Exists(ghost)=%v,%v", ok, err)
	}

	users, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("users=%d, 期望 2", len(users))
	}
	if users[0].Email != "a@example.com" {
		t.Fatalf("重复写入覆盖了原始行: %+v", users[0])
	}
}
