package redis

import (
	"context"
	"errors"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"peco-service/internal/domain"
)

func TestKVStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewKVStore(newClient(mr), 0)
	key := domain.UserKey("u1", domain.KeyStudiedCards)

	var cards []string
	if found, err := store.Load(ctx, key, &cards); found || err != nil {
		t.Fatalf("expected miss, got found=%v err=%v", found, err)
	}
	if err := store.Save(ctx, key, []string{"card-1", "card-2"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("peco:kv:user:u1:studiedCards") {
		t.Fatalf("expected namespaced key")
	}
	found, err := store.Load(ctx, key, &cards)
	if !found || err != nil || len(cards) != 2 {
		t.Fatalf("load: found=%v err=%v cards=%v", found, err, cards)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("peco:kv:user:u1:studiedCards") {
		t.Fatalf("expected key removed")
	}
}

func TestKVStoreMalformed(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	_ = mr.Set("peco:kv:user:u1:auth", "not json")
	var rec domain.AuthRecord
	_, err = NewKVStore(newClient(mr), 0).Load(context.Background(), domain.UserKey("u1", domain.KeyAuth), &rec)
	if !errors.Is(err, domain.ErrMalformedRecord) {
		t.Fatalf("expected malformed record, got %v", err)
	}
}
