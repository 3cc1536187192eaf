package moderation

import (
	"context"

	"moderation-bot/model"
)

// Store is the persistence collaborator. The relational store is the single
// source of truth for reprimand and trigger state; lookups that find nothing
// return (nil, nil).
type Store interface {
	CreateReprimand(ctx context.Context, r *model.Reprimand) error
	UpdateReprimand(ctx context.Context, r *model.Reprimand) error
	DeleteReprimand(ctx context.Context, id string) error

	Reprimand(ctx context.Context, id string) (*model.Reprimand, error)

	// ActiveReprimand returns the newest reprimand of the kind for the user
	// whose status is still Added or Updated.
	ActiveReprimand(ctx context.Context, guildID, userID string, kind model.ReprimandKind) (*model.Reprimand, error)

	// ReprimandCount totals a user's reprimands of a kind under one exact
	// category, the empty id meaning uncategorized. Warnings sum their
	// accumulation amounts, other kinds count records.
	ReprimandCount(ctx context.Context, guildID, userID string, kind model.ReprimandKind,
		categoryID string, activeOnly bool) (int64, error)

	// ReprimandCountAll is ReprimandCount across every category.
	ReprimandCountAll(ctx context.Context, guildID, userID string, kind model.ReprimandKind,
		activeOnly bool) (int64, error)

	// ReprimandCountByTrigger counts a user's reprimands that originated
	// from one specific trigger.
	ReprimandCountByTrigger(ctx context.Context, guildID, userID, triggerID string, activeOnly bool) (int64, error)

	// ActiveExpirable returns every reprimand whose status is still
	// Added/Updated and whose expiry is set, for the startup reload.
	ActiveExpirable(ctx context.Context) ([]*model.Reprimand, error)

	Rules(ctx context.Context, guildID string) (*model.ModerationRules, error)
}
