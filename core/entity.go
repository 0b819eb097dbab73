package core

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a KeyValueStore when the key has no value.
var ErrNotFound = errors.New("key not found")

type (
	BlockType string
	Direction string

	Block struct {
		ID      string    `json:"id"`
		Type    BlockType `json:"type"`
		Text    string    `json:"text"`
		Checked *bool     `json:"checked,omitempty"` // only meaningful for todo blocks
	}

	// Page timestamps are Unix milliseconds.
	Page struct {
		ID        string  `json:"id"`
		Title     string  `json:"title"`
		Blocks    []Block `json:"blocks"`
		CreatedAt int64   `json:"createdAt"`
		UpdatedAt int64   `json:"updatedAt"`
	}

	// BlockPatch holds the fields of an UpdateBlock call. Nil fields are left
	// untouched.
	BlockPatch struct {
		Text    *string    `json:"text,omitempty"`
		Type    *BlockType `json:"type,omitempty"`
		Checked *bool      `json:"checked,omitempty"`
	}

	// Listener receives the full page sequence after each change.
	Listener func(pages []Page)

	KeyValueStore interface {
		Get(ctx context.Context, key string) ([]byte, error)
		Set(ctx context.Context, key string, value []byte) error
	}

	IDGenerator interface {
		NewID() string
	}
)

const (
	BlockParagraph BlockType = "paragraph"
	BlockHeading   BlockType = "heading"
	BlockTodo      BlockType = "todo"
	BlockBulleted  BlockType = "bulleted"

	Up   Direction = "up"
	Down Direction = "down"
)

func (t BlockType) Valid() bool {
	switch t {
	case BlockParagraph, BlockHeading, BlockTodo, BlockBulleted:
		return true
	}
	return false
}

func (d Direction) Valid() bool {
	return d == Up || d == Down
}

// Clone returns a copy of the page that shares no memory with p.
func (p Page) Clone() Page {
	out := p
	if p.Blocks != nil {
		out.Blocks = make([]Block, len(p.Blocks))
		for i, b := range p.Blocks {
			out.Blocks[i] = b.Clone()
		}
	}
	return out
}

func (b Block) Clone() Block {
	out := b
	if b.Checked != nil {
		checked := *b.Checked
		out.Checked = &checked
	}
	return out
}

// Apply merges the non-nil fields of patch into b.
func (b Block) Apply(patch BlockPatch) Block {
	if patch.Text != nil {
		b.Text = *patch.Text
	}
	if patch.Type != nil {
		b.Type = *patch.Type
	}
	if patch.Checked != nil {
		checked := *patch.Checked
		b.Checked = &checked
	}
	return b
}

// ClonePages deep-copies a page sequence.
func ClonePages(pages []Page) []Page {
	if pages == nil {
		return nil
	}
	out := make([]Page, len(pages))
	for i, p := range pages {
		out[i] = p.Clone()
	}
	return out
}
