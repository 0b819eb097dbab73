package pages

import (
	"context"
	"notion-mini/core"
	"slices"

	"github.com/sirupsen/logrus"
)

// CreatePage prepends a new page holding a heading with the title and an
// empty paragraph. The title is used as given; callers without one pass
// DefaultTitle.
func (s *Store) CreatePage(ctx context.Context, title string) core.Page {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UnixMilli()
	page := core.Page{
		ID:    s.ids.NewID(),
		Title: title,
		Blocks: []core.Block{
			{ID: s.ids.NewID(), Type: core.BlockHeading, Text: title},
			{ID: s.ids.NewID(), Type: core.BlockParagraph, Text: ""},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	next := make([]core.Page, 0, len(s.pages)+1)
	next = append(next, page)
	next = append(next, s.pages...)
	s.commit(ctx, next)

	s.log.WithFields(logrus.Fields{"page_id": page.ID, "title": title}).Debug("Page created")
	return page.Clone()
}

func (s *Store) DeletePage(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.commit(ctx, slices.Delete(slices.Clone(s.pages), i, i+1))
	s.log.WithField("page_id", id).Debug("Page deleted")
}

func (s *Store) RenamePage(ctx context.Context, id, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updatePage(ctx, id, func(p core.Page) (core.Page, bool) {
		p.Title = title
		return p, true
	})
}

// AddBlock inserts an empty block of the given type right after afterBlockID,
// or at the end when afterBlockID is empty or unknown. It returns nil and
// leaves the store untouched when the page does not exist.
func (s *Store) AddBlock(ctx context.Context, pageID string, blockType core.BlockType, afterBlockID string) *core.Block {
	if blockType == "" {
		blockType = core.BlockParagraph
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(pageID) < 0 {
		return nil
	}

	block := core.Block{ID: s.ids.NewID(), Type: blockType}
	s.updatePage(ctx, pageID, func(p core.Page) (core.Page, bool) {
		at := len(p.Blocks)
		if afterBlockID != "" {
			if i := blockIndex(p.Blocks, afterBlockID); i >= 0 {
				at = i + 1
			}
		}
		p.Blocks = slices.Insert(slices.Clone(p.Blocks), at, block)
		return p, true
	})

	s.log.WithFields(logrus.Fields{"page_id": pageID, "block_id": block.ID}).Debug("Block added")
	return &block
}

func (s *Store) UpdateBlock(ctx context.Context, pageID, blockID string, patch core.BlockPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updatePage(ctx, pageID, func(p core.Page) (core.Page, bool) {
		i := blockIndex(p.Blocks, blockID)
		if i < 0 {
			return p, false
		}
		p.Blocks = slices.Clone(p.Blocks)
		p.Blocks[i] = p.Blocks[i].Apply(patch)
		return p, true
	})
}

func (s *Store) DeleteBlock(ctx context.Context, pageID, blockID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updatePage(ctx, pageID, func(p core.Page) (core.Page, bool) {
		i := blockIndex(p.Blocks, blockID)
		if i < 0 {
			return p, false
		}
		blocks := make([]core.Block, 0, len(p.Blocks)-1)
		blocks = append(blocks, p.Blocks[:i]...)
		p.Blocks = append(blocks, p.Blocks[i+1:]...)
		return p, true
	})
}

// MoveBlock swaps a block with its neighbour. Moving past either end is a
// no-op.
func (s *Store) MoveBlock(ctx context.Context, pageID, blockID string, direction core.Direction) {
	if !direction.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updatePage(ctx, pageID, func(p core.Page) (core.Page, bool) {
		i := blockIndex(p.Blocks, blockID)
		if i < 0 {
			return p, false
		}
		target := i + 1
		if direction == core.Up {
			target = i - 1
		}
		if target < 0 || target >= len(p.Blocks) {
			return p, false
		}
		p.Blocks = slices.Clone(p.Blocks)
		p.Blocks[i], p.Blocks[target] = p.Blocks[target], p.Blocks[i]
		return p, true
	})
}

func blockIndex(blocks []core.Block, id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(blocks, func(b core.Block) bool { return b.ID == id })
}
