package ids

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Generator mints random v4 UUIDs. When the cryptographic source is
// unavailable it falls back to a ULID built from pseudo-random entropy.
type Generator struct{}

func (Generator) NewID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return strings.ToLower(ulid.Make().String())
	}
	return id.String()
}

// Sequence hands out predictable ids ("<prefix>1", "<prefix>2", ...).
type Sequence struct {
	Prefix string

	mu   sync.Mutex
	next int
}

func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("%s%d", s.Prefix, s.next)
}
