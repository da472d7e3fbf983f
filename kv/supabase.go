package kv

import (
	"context"
	"fmt"
	"time"

	"github.com/supabase-community/supabase-go"
)

// SupabaseTable is the table read and written by SupabaseStore:
//
//	create table kv_store (
//	  key text primary key,
//	  value text not null,
//	  updated_at timestamptz not null default now()
//	);
const SupabaseTable = "kv_store"

// SupabaseStore implements Store on a Supabase (PostgREST) table.
// The PostgREST client takes no context, so ctx is checked before each
// request but cannot cancel one already in flight.
type SupabaseStore struct {
	client *supabase.Client
	prefix string
}

type supabaseRow struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSupabaseStore(url, apiKey, prefix string) (*SupabaseStore, error) {
	if url == "" {
		return nil, fmt.Errorf("supabase URL is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("supabase API key is required")
	}

	client, err := supabase.NewClient(url, apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &SupabaseStore{client: client, prefix: prefix}, nil
}

// Get implements Store.
func (s *SupabaseStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	var rows []supabaseRow
	_, err := s.client.From(SupabaseTable).
		Select("key,value,updated_at", "", false).
		Eq("key", s.key(key)).
		ExecuteTo(&rows)

	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}

	if len(rows) == 0 {
		return "", false, nil
	}
	return rows[0].Value, true, nil
}

// Set implements Store.
func (s *SupabaseStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	row := supabaseRow{
		Key:       s.key(key),
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}

	_, _, err := s.client.From(SupabaseTable).
		Upsert(row, "key", "minimal", "").
		Execute()

	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Remove implements Store.
func (s *SupabaseStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, _, err := s.client.From(SupabaseTable).
		Delete("minimal", "").
		Eq("key", s.key(key)).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// Close implements Store. The PostgREST client holds no connection state.
func (s *SupabaseStore) Close() error {
	return nil
}

func (s *SupabaseStore) key(key string) string {
	return s.prefix + key
}
