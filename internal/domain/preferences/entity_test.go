package preferences

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("valid record", func(t *testing.T) {
		p, err := New("ana@example.com", DietVegan, []string{"Dairy", "Gluten"})

		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", p.Email())
		assert.Equal(t, DietVegan, p.Diet())
		assert.Equal(t, []string{"Dairy", "Gluten"}, p.Intolerances())
		assert.NotZero(t, p.UpdatedAt())
		assert.True(t, p.Complete())
	})

	t.Run("intolerances deduplicated preserving order", func(t *testing.T) {
		p, err := New("ana@example.com", DietVegan, []string{"Dairy", "Soy", "Dairy", "Soy"})

		require.NoError(t, err)
		assert.Equal(t, []string{"Dairy", "Soy"}, p.Intolerances())
	})

	t.Run("empty email rejected", func(t *testing.T) {
		_, err := New("", DietVegan, nil)
		assert.Equal(t, ErrEmailRequired, err)
	})

	t.Run("missing diet rejected", func(t *testing.T) {
		_, err := New("ana@example.com", "", nil)
		assert.Equal(t, ErrDietRequired, err)
	})

	t.Run("unknown diet rejected", func(t *testing.T) {
		_, err := New("ana@example.com", "carnivore", nil)
		assert.Equal(t, ErrUnknownDiet, err)
	})
}

func TestComplete(t *testing.T) {
	t.Run("nil record is incomplete", func(t *testing.T) {
		var p *Preferences
		assert.False(t, p.Complete())
	})

	t.Run("record without diet is incomplete", func(t *testing.T) {
		p := Restore("ana@example.com", "", []string{"Dairy"}, time.Now())
		assert.False(t, p.Complete())
	})

	t.Run("record with diet is complete", func(t *testing.T) {
		p := Restore("ana@example.com", DietVegan, nil, time.Now())
		assert.True(t, p.Complete())
	})
}

func TestDietIsValid(t *testing.T) {
	for _, d := range Diets() {
		assert.True(t, d.IsValid(), "diet %q should be valid", d)
	}
	assert.False(t, Diet("carnivore").IsValid())
	assert.False(t, Diet("").IsValid())
}

func TestHasIntolerance(t *testing.T) {
	p := Restore("ana@example.com", DietVegan, []string{"Dairy", "Tree Nut"}, time.Now())

	assert.True(t, p.HasIntolerance("Dairy"))
	assert.True(t, p.HasIntolerance("Tree Nut"))
	assert.False(t, p.HasIntolerance("Soy"))
}
