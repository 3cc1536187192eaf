package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTriggered(t *testing.T) {
	tests := []struct {
		name   string
		mode   TriggerMode
		amount int64
		count  int64
		want   bool
	}{
		{"exact match", ModeExact, 3, 3, true},
		{"exact below", ModeExact, 3, 2, false},
		{"exact above", ModeExact, 3, 4, false},
		{"retroactive at threshold", ModeRetroactive, 3, 3, true},
		{"retroactive above", ModeRetroactive, 3, 10, true},
		{"retroactive below", ModeRetroactive, 3, 2, false},
		{"multiple at amount", ModeMultiple, 3, 3, true},
		{"multiple at twice", ModeMultiple, 3, 6, true},
		{"multiple between", ModeMultiple, 3, 4, false},
		{"multiple zero never fires", ModeMultiple, 3, 0, false},
		{"zero amount never fires", ModeRetroactive, 0, 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trigger := Trigger{Amount: tt.amount, Mode: tt.mode}
			assert.Equal(t, tt.want, trigger.IsTriggered(tt.count))
		})
	}
}

func TestExclusions(t *testing.T) {
	e := Exclusions{
		ChannelIDs: []string{"c1"},
		UserIDs:    []string{"u1"},
		RoleIDs:    []string{"r1"},
	}
	assert.True(t, e.Excluded("c1", "u9", nil))
	assert.True(t, e.Excluded("c9", "u1", nil))
	assert.True(t, e.Excluded("c9", "u9", []string{"r2", "r1"}))
	assert.False(t, e.Excluded("c9", "u9", []string{"r2"}))
	assert.True(t, e.ExcludesUser("u1"))
	assert.False(t, e.ExcludesRole("r9"))
}

func TestCensorExpr(t *testing.T) {
	c := Censor{Pattern: "bad"}
	assert.Equal(t, "bad", c.Expr())
	c.CaseInsensitive = true
	assert.Equal(t, "(?i)bad", c.Expr())
}
