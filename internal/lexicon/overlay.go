package lexicon

import (
	"sync"

	"github.com/Veraticus/finshare-ai/internal/model"
)

// Overlay is the set of per-user additive keyword deltas. Tokens are
// de-duplicated per (user, category), so adding the same token twice is a no-op.
type Overlay struct {
	users map[string]*userOverlay
	mu    sync.RWMutex
}

type userOverlay struct {
	tokens map[model.Category][]string
	seen   map[model.Category]map[string]struct{}
	mu     sync.RWMutex
}

// NewOverlay creates an empty overlay set.
func NewOverlay() *Overlay {
	return &Overlay{users: make(map[string]*userOverlay)}
}

// Add injects tokens into one user's category and returns how many were new.
func (o *Overlay) Add(userID string, category model.Category, tokens ...string) int {
	u := o.user(userID)

	u.mu.Lock()
	defer u.mu.Unlock()

	seen, ok := u.seen[category]
	if !ok {
		seen = make(map[string]struct{})
		u.seen[category] = seen
	}

	added := 0
	for _, tok := range tokens {
		tok = Normalize(tok)
		if tok == "" {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		u.tokens[category] = append(u.tokens[category], tok)
		added++
	}
	return added
}

// Tokens returns a copy of one user's overlay tokens for a category.
func (o *Overlay) Tokens(userID string, category model.Category) []string {
	u := o.lookup(userID)
	if u == nil {
		return nil
	}

	u.mu.RLock()
	defer u.mu.RUnlock()

	out := make([]string, len(u.tokens[category]))
	copy(out, u.tokens[category])
	return out
}

// Snapshot returns a copy of all overlay tokens for a user, or nil if the user has none.
func (o *Overlay) Snapshot(userID string) map[model.Category][]string {
	u := o.lookup(userID)
	if u == nil {
		return nil
	}

	u.mu.RLock()
	defer u.mu.RUnlock()

	out := make(map[model.Category][]string, len(u.tokens))
	for cat, toks := range u.tokens {
		cp := make([]string, len(toks))
		copy(cp, toks)
		out[cat] = cp
	}
	return out
}

// Len returns the number of users with an overlay.
func (o *Overlay) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.users)
}

func (o *Overlay) lookup(userID string) *userOverlay {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.users[userID]
}

func (o *Overlay) user(userID string) *userOverlay {
	if u := o.lookup(userID); u != nil {
		return u
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if u, ok := o.users[userID]; ok {
		return u
	}
	u := &userOverlay{
		tokens: make(map[model.Category][]string),
		seen:   make(map[model.Category]map[string]struct{}),
	}
	o.users[userID] = u
	return u
}
