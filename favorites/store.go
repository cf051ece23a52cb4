// Package favorites keeps the user's favorited recipes in a persisted, insertion-ordered set.
package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"recipebrowser"
	"recipebrowser/storage"
)

// Store is the favorites set. Every mutation is written through to the backing state.
type Store struct {
	mu      sync.RWMutex
	state   storage.State
	recipes []recipebrowser.Recipe
	index   map[string]int
	logger  *slog.Logger
}

// Load builds a store from whatever the state holds. A missing, unreadable or
// malformed document yields an empty store; Load never fails.
func Load(ctx context.Context, state storage.State, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		state:  state,
		index:  make(map[string]int),
		logger: logger,
	}

	b, err := state.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		logger.Debug("FAVORITES: No persisted favorites, starting empty")
		return s
	case err != nil:
		logger.Warn("FAVORITES: Failed to read persisted favorites, starting empty", "error", err)
		return s
	}

	var recipes []recipebrowser.Recipe
	if err := json.Unmarshal(b, &recipes); err != nil {
		logger.Warn("FAVORITES: Persisted favorites are malformed, starting empty", "error", err)
		return s
	}

	for _, r := range recipes {
		if !r.IsValid() {
			logger.Warn("FAVORITES: Skipping invalid persisted recipe", "id", r.ID)
			continue
		}
		if _, dup := s.index[r.ID]; dup {
			continue
		}
		s.index[r.ID] = len(s.recipes)
		s.recipes = append(s.recipes, r)
	}
	logger.Info("FAVORITES: Loaded persisted favorites", "count", len(s.recipes))
	return s
}

// Toggle removes the recipe if a recipe with the same id is present and adds it
// otherwise. It reports whether the recipe is a favorite afterwards; on error the
// set is unchanged.
func (s *Store) Toggle(ctx context.Context, recipe recipebrowser.Recipe) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[recipe.ID]; ok {
		if err := s.removeLocked(ctx, recipe.ID); err != nil {
			return true, err
		}
		return false, nil
	}
	if err := s.addLocked(ctx, recipe); err != nil {
		return false, err
	}
	return true, nil
}

// Add inserts the recipe unless it is already present.
func (s *Store) Add(ctx context.Context, recipe recipebrowser.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[recipe.ID]; ok {
		return nil
	}
	return s.addLocked(ctx, recipe)
}

// Remove deletes the recipe with the given id. Removing an absent id is a no-op.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; !ok {
		return nil
	}
	return s.removeLocked(ctx, id)
}

func (s *Store) IsFavorite(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

// List returns the favorites in insertion order.
func (s *Store) List() []recipebrowser.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]recipebrowser.Recipe(nil), s.recipes...)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recipes)
}

// AggregateIngredients combines the ingredients of every favorite. See Aggregate.
func (s *Store) AggregateIngredients() []recipebrowser.AggregatedIngredient {
	return Aggregate(s.List())
}

func (s *Store) addLocked(ctx context.Context, recipe recipebrowser.Recipe) error {
	if !recipe.IsValid() {
		return fmt.Errorf("add favorite %q: recipe needs an id, a name and named ingredients", recipe.ID)
	}

	next := append(append([]recipebrowser.Recipe(nil), s.recipes...), recipe)
	if err := s.persist(ctx, next); err != nil {
		return fmt.Errorf("add favorite %s: %w", recipe.ID, err)
	}

	s.recipes = next
	s.index[recipe.ID] = len(next) - 1
	s.logger.Info("FAVORITES: Added", "id", recipe.ID, "name", recipe.Name, "count", len(next))
	return nil
}

func (s *Store) removeLocked(ctx context.Context, id string) error {
	pos := s.index[id]
	next := make([]recipebrowser.Recipe, 0, len(s.recipes)-1)
	next = append(next, s.recipes[:pos]...)
	next = append(next, s.recipes[pos+1:]...)

	if err := s.persist(ctx, next); err != nil {
		return fmt.Errorf("remove favorite %s: %w", id, err)
	}

	s.recipes = next
	s.reindexLocked()
	s.logger.Info("FAVORITES: Removed", "id", id, "count", len(next))
	return nil
}

func (s *Store) reindexLocked() {
	s.index = make(map[string]int, len(s.recipes))
	for i, r := range s.recipes {
		s.index[r.ID] = i
	}
}

// persist writes the full list. The in-memory set is only swapped after a successful write.
func (s *Store) persist(ctx context.Context, recipes []recipebrowser.Recipe) error {
	if recipes == nil {
		recipes = []recipebrowser.Recipe{}
	}
	b, err := json.Marshal(recipes)
	if err != nil {
		return fmt.Errorf("marshal favorites: %w", err)
	}
	if err := s.state.Save(ctx, b); err != nil {
		s.logger.Error("FAVORITES: Failed to persist favorites", "error", err)
		return fmt.Errorf("save favorites: %w", err)
	}
	return nil
}
