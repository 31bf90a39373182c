package lexicon

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Veraticus/finshare-ai/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	l := Default()

	require.True(t, l.Loaded())
	assert.Equal(t, model.BaseCategories(), l.Categories())
	assert.Contains(t, l.Keywords(model.CategoryFoodDining), "starbucks")
	assert.Contains(t, l.Keywords(model.CategoryGroceries), "whole foods")
	assert.Empty(t, l.Keywords(model.CategoryOther))
}

func TestNew(t *testing.T) {
	t.Run("appends Other when missing", func(t *testing.T) {
		l, err := New([]Entry{{Category: "Pets", Keywords: []string{"Petco", "petco", "  VET "}}})
		require.NoError(t, err)

		assert.Equal(t, []model.Category{"Pets", model.CategoryOther}, l.Categories())
		assert.Equal(t, []string{"petco", "vet"}, l.Keywords("Pets"))
	})

	t.Run("rejects duplicate categories", func(t *testing.T) {
		_, err := New([]Entry{{Category: "Pets"}, {Category: "Pets"}})
		assert.Error(t, err)
	})

	t.Run("rejects empty category names", func(t *testing.T) {
		_, err := New([]Entry{{Keywords: []string{"x"}}})
		assert.Error(t, err)
	})

	t.Run("nil lexicon is not loaded", func(t *testing.T) {
		var l *Lexicon
		assert.False(t, l.Loaded())
	})
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.yaml")
	content := `categories:
  - name: Food & Dining
    keywords: [cafe, Bistro]
  - name: Pets
    keywords:
      - petco
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	l, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []model.Category{model.CategoryFoodDining, "Pets", model.CategoryOther}, l.Categories())
	assert.Equal(t, []string{"cafe", "bistro"}, l.Keywords(model.CategoryFoodDining))

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("categories: []\n"), 0o600))
	_, err = LoadFile(empty)
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestNormalizeAndTokenize(t *testing.T) {
	assert.Equal(t, "starbucks coffee #4521", Normalize("  Starbucks   COFFEE #4521 "))
	assert.Equal(t, []string{"starbucks", "coffee", "4521"}, Tokenize("Starbucks Coffee #4521"))
	assert.Equal(t, []string{"trader", "joe", "s"}, Tokenize("TRADER JOE'S"))
	assert.Empty(t, Tokenize("   "))
}

func TestOverlay(t *testing.T) {
	o := NewOverlay()

	added := o.Add("alice", model.CategoryShopping, "Local", "bike", "local", "")
	assert.Equal(t, 2, added)
	assert.Equal(t, []string{"local", "bike"}, o.Tokens("alice", model.CategoryShopping))

	// Re-adding is idempotent.
	assert.Equal(t, 0, o.Add("alice", model.CategoryShopping, "bike", "local"))
	assert.Equal(t, []string{"local", "bike"}, o.Tokens("alice", model.CategoryShopping))

	assert.Nil(t, o.Snapshot("bob"))
	assert.Nil(t, o.Tokens("bob", model.CategoryShopping))
	assert.Equal(t, 1, o.Len())

	snap := o.Snapshot("alice")
	snap[model.CategoryShopping][0] = "mutated"
	assert.Equal(t, "local", o.Tokens("alice", model.CategoryShopping)[0])
}

func TestOverlayConcurrentAdds(t *testing.T) {
	o := NewOverlay()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.Add("alice", model.CategoryTravel, "hostel", "ferry")
			o.Add("bob", model.CategoryTravel, "cruise")
			_ = o.Snapshot("alice")
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{"hostel", "ferry"}, o.Tokens("alice", model.CategoryTravel))
	assert.Equal(t, []string{"cruise"}, o.Tokens("bob", model.CategoryTravel))
}

func TestEffective(t *testing.T) {
	l := Default()
	o := NewOverlay()
	o.Add("alice", model.CategoryShopping, "shop", "bike")

	alice := l.Effective(o, "alice")
	require.Len(t, alice, len(l.Categories()))
	shopping := alice[2]
	assert.Equal(t, model.CategoryShopping, shopping.Category)
	assert.Equal(t, 1, count(shopping.Keywords, "shop"), "base keyword must not be duplicated")
	assert.Contains(t, shopping.Keywords, "bike")

	// Other users and the base table are untouched.
	assert.NotContains(t, l.Effective(o, "bob")[2].Keywords, "bike")
	assert.NotContains(t, l.Keywords(model.CategoryShopping), "bike")
	assert.NotContains(t, l.Effective(nil, "alice")[2].Keywords, "bike")
}

func count(items []string, want string) int {
	n := 0
	for _, it := range items {
		if it == want {
			n++
		}
	}
	return n
}
