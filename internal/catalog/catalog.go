// Package catalog holds the fixed pool of recurring actions that can be
// dropped into a schedule slot.
package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/julianstephens/dailyfocus/internal/models"
)

// ErrInvalidReference is returned when an action id is not in the catalog
var ErrInvalidReference = errors.New("invalid action reference")

var defaultActions = []models.Action{
	{ID: "1", Title: "Exercise for 30 minutes", Duration: 30 * time.Minute, Frequency: models.FrequencyDaily, Category: models.CategoryHealth},
	{ID: "2", Title: "Meditate for 10 minutes", Duration: 10 * time.Minute, Frequency: models.FrequencyDaily, Category: models.CategoryHealth},
	{ID: "3", Title: "Review daily goals", Duration: 15 * time.Minute, Frequency: models.FrequencyDaily, Category: models.CategoryWork},
	{ID: "4", Title: "Deep work session", Duration: 90 * time.Minute, Frequency: models.FrequencyDaily, Category: models.CategoryWork},
	{ID: "5", Title: "Read for 20 minutes", Duration: 20 * time.Minute, Frequency: models.FrequencyDaily, Category: models.CategoryLearning},
	{ID: "6", Title: "Practice a new skill", Duration: 45 * time.Minute, Frequency: models.FrequencyThreeWeekly, Category: models.CategoryLearning},
	{ID: "7", Title: "Strength training", Duration: 45 * time.Minute, Frequency: models.FrequencyThreeWeekly, Category: models.CategoryHealth},
	{ID: "8", Title: "Call family or a friend", Duration: 20 * time.Minute, Frequency: models.FrequencyWeekly, Category: models.CategoryPersonal},
	{ID: "9", Title: "Plan the week ahead", Duration: 30 * time.Minute, Frequency: models.FrequencyWeekly, Category: models.CategoryWork},
	{ID: "10", Title: "Evening journal reflection", Duration: 15 * time.Minute, Frequency: models.FrequencyDaily, Category: models.CategoryPersonal},
	{ID: "11", Title: "Tidy up living space", Duration: 20 * time.Minute, Frequency: models.FrequencyThreeWeekly, Category: models.CategoryPersonal},
	{ID: "12", Title: "Take an online course lesson", Duration: 1 * time.Hour, Frequency: models.FrequencyWeekly, Category: models.CategoryLearning},
}

// Catalog is an immutable, ordered set of actions
type Catalog struct {
	actions []models.Action
	byID    map[string]int
}

var defaultCatalog = mustNew(defaultActions)

// Default returns the built-in catalog shared by the whole process
func Default() *Catalog {
	return defaultCatalog
}

// New builds a catalog from actions, keeping their order.
// Ids must be unique and non-empty.
func New(actions []models.Action) (*Catalog, error) {
	if len(actions) == 0 {
		return nil, errors.New("catalog cannot be empty")
	}
	c := &Catalog{
		actions: make([]models.Action, len(actions)),
		byID:    make(map[string]int, len(actions)),
	}
	copy(c.actions, actions)
	for i, a := range c.actions {
		if strings.TrimSpace(a.ID) == "" {
			return nil, fmt.Errorf("action %q has no id", a.Title)
		}
		if _, dup := c.byID[a.ID]; dup {
			return nil, fmt.Errorf("duplicate action id %q", a.ID)
		}
		c.byID[a.ID] = i
	}
	return c, nil
}

func mustNew(actions []models.Action) *Catalog {
	c, err := New(actions)
	if err != nil {
		panic(err)
	}
	return c
}

// ListActions returns every action in catalog order. The slice is a copy.
func (c *Catalog) ListActions() []models.Action {
	out := make([]models.Action, len(c.actions))
	copy(out, c.actions)
	return out
}

// Get looks up an action by id
func (c *Catalog) Get(id string) (models.Action, error) {
	i, ok := c.byID[id]
	if !ok {
		return models.Action{}, fmt.Errorf("%w: %q", ErrInvalidReference, id)
	}
	return c.actions[i], nil
}

// Len returns the number of actions
func (c *Catalog) Len() int {
	return len(c.actions)
}

type titleSource []models.Action

func (s titleSource) String(i int) string { return s[i].Title }
func (s titleSource) Len() int            { return len(s) }

// Search ranks actions whose title fuzzy-matches query, best match first.
// An empty query returns the full catalog.
func (c *Catalog) Search(query string) []models.Action {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.ListActions()
	}
	matches := fuzzy.FindFrom(query, titleSource(c.actions))
	out := make([]models.Action, 0, len(matches))
	for _, m := range matches {
		out = append(out, c.actions[m.Index])
	}
	return out
}
