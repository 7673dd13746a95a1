package cards

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Store is the ordered list of cards of a session. Insertion order is
// render order. At most one card is selected and a selection exists only
// while the store is not empty.
//
// A Store is owned by the UI goroutine and is not safe for concurrent use.
type Store struct {
	cards    []*Card
	selected int
	nextID   uint64
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{selected: -1, nextID: 1, now: time.Now}
}

// Insert appends c, assigns its id and creation time, and selects it.
func (s *Store) Insert(c *Card) *Card {
	c.ID = s.nextID
	s.nextID++
	c.CreatedAt = s.now()
	s.cards = append(s.cards, c)
	s.selected = len(s.cards) - 1
	return c
}

func (s *Store) Len() int { return len(s.cards) }

// Cards returns the cards in insertion order. The slice must not be
// modified.
func (s *Store) Cards() []*Card { return s.cards }

// SelectedIndex returns the index of the selected card, or -1.
func (s *Store) SelectedIndex() int { return s.selected }

// Selected returns the selected card, or nil when the store is empty.
func (s *Store) Selected() *Card {
	if s.selected < 0 || s.selected >= len(s.cards) {
		return nil
	}
	return s.cards[s.selected]
}

// SelectNext moves the selection forward, wrapping from the last card to
// the first.
func (s *Store) SelectNext() {
	if len(s.cards) == 0 {
		return
	}
	s.selected = (s.selected + 1) % len(s.cards)
}

// SelectPrev moves the selection back, wrapping from the first card to the
// last.
func (s *Store) SelectPrev() {
	if len(s.cards) == 0 {
		return
	}
	s.selected = (s.selected - 1 + len(s.cards)) % len(s.cards)
}

// Clear removes every card.
func (s *Store) Clear() {
	s.cards = nil
	s.selected = -1
}

// Get returns the card with the given id.
func (s *Store) Get(id uint64) *Card {
	for _, c := range s.cards {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// FindTransaction returns the transaction card for hash.
func (s *Store) FindTransaction(hash common.Hash) *Card {
	for _, c := range s.cards {
		if c.Kind == KindTransaction && c.Tx.Hash == hash {
			return c
		}
	}
	return nil
}

// Pending returns the transaction cards still awaiting a receipt.
func (s *Store) Pending() []*Card {
	var out []*Card
	for _, c := range s.cards {
		if c.Kind == KindTransaction && c.Tx.Status == Pending {
			out = append(out, c)
		}
	}
	return out
}
