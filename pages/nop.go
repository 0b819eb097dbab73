package pages

import (
	"context"
	"notion-mini/core"
)

// nopStore backs a Store that was opened without persistence.
type nopStore struct{}

func (nopStore) Get(context.Context, string) ([]byte, error) { return nil, core.ErrNotFound }

func (nopStore) Set(context.Context, string, []byte) error { return nil }
