package automod

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sync"
	"time"

	"moderation-bot/model"
)

// matchTimeout bounds a single censor match. RE2 has no catastrophic
// backtracking, but the bound keeps a hostile pattern/content pair from
// stalling an evaluation.
const matchTimeout = time.Second

// CensorEngine matches message content and member names against the guild's
// censor triggers.
type CensorEngine struct {
	rules     RulesProvider
	moderator Moderator

	mu       sync.Mutex
	compiled map[string]*regexp.Regexp
}

// NewCensorEngine wires the censor engine to its collaborators.
func NewCensorEngine(rules RulesProvider, moderator Moderator) *CensorEngine {
	return &CensorEngine{
		rules:     rules,
		moderator: moderator,
		compiled:  make(map[string]*regexp.Regexp),
	}
}

func (c *CensorEngine) pattern(censor model.Censor) (*regexp.Regexp, error) {
	expr := censor.Expr()
	c.mu.Lock()
	defer c.mu.Unlock()
	if re, ok := c.compiled[expr]; ok {
		return re, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compiling censor pattern %q: %w", censor.Pattern, err)
	}
	c.compiled[expr] = re
	return re, nil
}

// matchWithTimeout runs the match on a separate goroutine and gives up after
// the fixed timeout. The goroutine always terminates since RE2 is linear.
func matchWithTimeout(re *regexp.Regexp, content string) (string, bool) {
	done := make(chan string, 1)
	go func() { done <- re.FindString(content) }()
	select {
	case m := <-done:
		return m, m != ""
	case <-time.After(matchTimeout):
		return "", false
	}
}

// ProcessMessage runs every active, non-excluded censor against the message.
// Each matching censor produces its own censored reprimand; a fault in one
// censor does not abort the rest.
func (c *CensorEngine) ProcessMessage(ctx context.Context, msg *IncomingMessage) error {
	if msg.Bot || msg.GuildID == "" {
		return nil
	}
	rules, err := c.rules.Rules(ctx, msg.GuildID)
	if err != nil {
		return fmt.Errorf("loading rules for guild %s: %w", msg.GuildID, err)
	}
	if rules == nil {
		return nil
	}
	if rules.CensorExclusions.Excluded(msg.ChannelID, msg.UserID, msg.AuthorRoles) {
		return nil
	}

	for _, censor := range rules.Censors {
		if !censor.IsActive {
			continue
		}
		if censor.Exclusions.Excluded(msg.ChannelID, msg.UserID, msg.AuthorRoles) {
			continue
		}
		re, err := c.pattern(censor)
		if err != nil {
			log.Printf("automod: censor %s: %v", censor.ID, err)
			continue
		}
		if _, ok := matchWithTimeout(re, msg.Content); !ok {
			continue
		}

		details := model.ReprimandDetails{
			GuildID:    msg.GuildID,
			UserID:     msg.UserID,
			Reason:     "[Censor Triggered]",
			CategoryID: censor.CategoryID,
			TriggerID:  censor.ID,
		}
		length := rules.ExpiryFor(model.ReprimandCensored, censor.CategoryID)
		ref := model.MessageRef{ChannelID: msg.ChannelID, MessageID: msg.MessageID}
		if _, err := c.moderator.Censor(ctx, details, censor, msg.Content, ref, length); err != nil {
			log.Printf("automod: censor %s failed for guild %s: %v", censor.ID, msg.GuildID, err)
			continue
		}
		censorsMatched.Inc()
	}
	return nil
}

// MemberName is the platform-neutral view of a member's current names.
type MemberName struct {
	GuildID  string
	UserID   string
	Username string
	Nickname string
	Roles    []string
	Bot      bool
}

// ProcessName matches the member's display name against the censors and
// requests a rename on match. The nickname is preferred over the username
// when both exist.
func (c *CensorEngine) ProcessName(ctx context.Context, member *MemberName) error {
	if member.Bot || member.GuildID == "" {
		return nil
	}
	rules, err := c.rules.Rules(ctx, member.GuildID)
	if err != nil {
		return fmt.Errorf("loading rules for guild %s: %w", member.GuildID, err)
	}
	if rules == nil {
		return nil
	}

	name := member.Nickname
	if name != "" {
		if !rules.CensorNicknames {
			return nil
		}
	} else {
		if !rules.CensorUsernames {
			return nil
		}
		name = member.Username
	}
	if name == "" {
		return nil
	}
	if rules.CensorExclusions.Excluded("", member.UserID, member.Roles) {
		return nil
	}

	for _, censor := range rules.Censors {
		if !censor.IsActive {
			continue
		}
		if censor.Exclusions.Excluded("", member.UserID, member.Roles) {
			continue
		}
		re, err := c.pattern(censor)
		if err != nil {
			log.Printf("automod: censor %s: %v", censor.ID, err)
			continue
		}
		if _, ok := matchWithTimeout(re, name); !ok {
			continue
		}

		details := model.ReprimandDetails{
			GuildID:    member.GuildID,
			UserID:     member.UserID,
			Reason:     "[Name Censor Triggered]",
			CategoryID: censor.CategoryID,
			TriggerID:  censor.ID,
		}
		length := rules.ExpiryFor(model.ReprimandCensored, censor.CategoryID)
		if _, err := c.moderator.CensorName(ctx, details, censor, name, length); err != nil {
			log.Printf("automod: name censor %s failed for guild %s: %v", censor.ID, member.GuildID, err)
		}
		return nil
	}
	return nil
}
