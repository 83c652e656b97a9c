// Package preferences defines the dietary preference domain entity
package preferences

import "time"

// Diet identifies a dietary profile supported by the recipe search.
type Diet string

const (
	DietVegan       Diet = "vegan"
	DietVegetarian  Diet = "vegetarian"
	DietPescetarian Diet = "pescetarian"
	DietPaleo       Diet = "paleo"
	DietKetogenic   Diet = "ketogenic"
	DietLowFODMAP   Diet = "lowFODMAP"
	DietOmnivore    Diet = "omnivore"
)

// Diets lists every selectable diet in display order.
func Diets() []Diet {
	return []Diet{
		DietVegan,
		DietVegetarian,
		DietPescetarian,
		DietPaleo,
		DietKetogenic,
		DietLowFODMAP,
		DietOmnivore,
	}
}

// IsValid reports whether d is one of the supported diets.
func (d Diet) IsValid() bool {
	for _, known := range Diets() {
		if d == known {
			return true
		}
	}
	return false
}

// Intolerances lists every intolerance value understood by the recipe API.
func Intolerances() []string {
	return []string{
		"Dairy", "Egg", "Gluten", "Grain", "Peanut", "Seafood",
		"Sesame", "Shellfish", "Soy", "Sulfite", "Tree Nut", "Wheat",
	}
}

// Preferences is the dietary preference record for one user, keyed by
// email. A save fully replaces the previous record; there is no
// field-level merge.
type Preferences struct {
	email        string
	diet         Diet
	intolerances []string
	updatedAt    time.Time
}

// New builds a preference record with a fresh UpdatedAt timestamp.
// Intolerances are deduplicated, preserving first-seen order.
func New(email string, diet Diet, intolerances []string) (*Preferences, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}

	if diet == "" {
		return nil, ErrDietRequired
	}

	if !diet.IsValid() {
		return nil, ErrUnknownDiet
	}

	return &Preferences{
		email:        email,
		diet:         diet,
		intolerances: dedupe(intolerances),
		updatedAt:    time.Now(),
	}, nil
}

// Restore rebuilds a record from persisted state. The diet may be empty
// for a partial record saved before a diet was chosen.
func Restore(email string, diet Diet, intolerances []string, updatedAt time.Time) *Preferences {
	return &Preferences{
		email:        email,
		diet:         diet,
		intolerances: intolerances,
		updatedAt:    updatedAt,
	}
}

// Email returns the owning user's email.
func (p *Preferences) Email() string {
	return p.email
}

// Diet returns the selected diet, empty if none was chosen yet.
func (p *Preferences) Diet() Diet {
	return p.diet
}

// Intolerances returns the selected intolerance values.
func (p *Preferences) Intolerances() []string {
	return p.intolerances
}

// UpdatedAt returns when the record was last saved.
func (p *Preferences) UpdatedAt() time.Time {
	return p.updatedAt
}

// Complete reports whether the record counts as filled in: a record is
// complete exactly when a diet has been chosen.
func (p *Preferences) Complete() bool {
	return p != nil && p.diet != ""
}

// HasIntolerance reports whether value was selected.
func (p *Preferences) HasIntolerance(value string) bool {
	for _, v := range p.intolerances {
		if v == value {
			return true
		}
	}
	return false
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
