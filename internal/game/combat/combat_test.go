package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/content"
)

func TestNewCombatant_FromTemplate(t *testing.T) {
	tmpl, ok := content.Default().Unit("warrior")
	require.True(t, ok)
	c := combat.NewCombatant("p1", tmpl, combat.SidePlayer, 100)
	assert.Equal(t, "Warrior", c.Name)
	assert.Equal(t, "warrior", c.Type)
	assert.Equal(t, 320, c.HP)
	assert.Equal(t, c.HP, c.MaxHP)
	assert.True(t, c.Alive)
	assert.True(t, c.IsPlayer())
	assert.Zero(t, c.Gauge)
	assert.Contains(t, c.Abilities, content.BasicAttackID)
}

func TestTakeDamage_KillsAtZero(t *testing.T) {
	c := unit("a", 10, 10, 10, 10, 30)
	c.Gauge = 50
	dealt := c.TakeDamage(45)
	assert.Equal(t, 45, dealt)
	assert.Equal(t, 0, c.HP)
	assert.False(t, c.Alive)
	assert.Zero(t, c.Gauge)
	assert.False(t, c.Ready)
}

func TestPropertyTakeDamage_DefendHalves(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		hp := rapid.IntRange(1, 9999).Draw(rt, "hp")
		amount := rapid.IntRange(0, 20000).Draw(rt, "amount")
		defending := rapid.Bool().Draw(rt, "defending")

		c := unit("a", 1, 1, 1, 1, hp)
		c.Defending = defending
		dealt := c.TakeDamage(amount)

		want := amount
		if defending {
			want = amount / 2
		}
		if dealt != want {
			rt.Fatalf("dealt %d, want %d", dealt, want)
		}
		expectHP := hp - want
		if expectHP < 0 {
			expectHP = 0
		}
		if c.HP != expectHP {
			rt.Fatalf("hp %d, want %d", c.HP, expectHP)
		}
		if c.Alive != (c.HP > 0) {
			rt.Fatalf("alive %v with hp %d", c.Alive, c.HP)
		}
	})
}

func TestPropertyHealHP_CappedAtMax(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		maxHP := rapid.IntRange(1, 9999).Draw(rt, "max")
		hp := rapid.IntRange(1, maxHP).Draw(rt, "hp")
		amount := rapid.IntRange(0, 20000).Draw(rt, "amount")

		c := unit("a", 1, 1, 1, 1, maxHP)
		c.HP = hp
		got := c.HealHP(amount)

		want := amount
		if maxHP-hp < want {
			want = maxHP - hp
		}
		if got != want {
			rt.Fatalf("healed %d, want %d", got, want)
		}
		if c.HP > c.MaxHP {
			rt.Fatalf("hp %d above max %d", c.HP, c.MaxHP)
		}
	})
}

func TestHealHP_DeadStaysDead(t *testing.T) {
	c := unit("a", 1, 1, 1, 1, 10)
	c.TakeDamage(10)
	assert.Zero(t, c.HealHP(5))
	assert.False(t, c.Alive)
	assert.Zero(t, c.HP)
}

func TestSpendMP_ClampsAtZero(t *testing.T) {
	c := unit("a", 1, 1, 1, 1, 10)
	c.MP = 5
	c.SpendMP(8)
	assert.Zero(t, c.MP)
	c.MP = 20
	c.SpendMP(8)
	assert.Equal(t, 12, c.MP)
}

func TestHealthRatio(t *testing.T) {
	c := unit("a", 1, 1, 1, 1, 200)
	c.HP = 50
	assert.InDelta(t, 0.25, c.HealthRatio(), 1e-9)
	assert.Zero(t, (&combat.Combatant{}).HealthRatio())
}
