package automod

import (
	"net/url"
	"regexp"
	"strings"

	"moderation-bot/model"
)

// Patterns shared by the counting rules. Compiled once; Go's RE2 engine has
// no backtracking, so these are safe against hostile input.
var (
	emojiPattern     = regexp.MustCompile(`[\x{1F000}-\x{1FAFF}\x{2600}-\x{27BF}\x{2B00}-\x{2BFF}\x{FE0F}]`)
	emotePattern     = regexp.MustCompile(`<a?:\w+:\d+>`)
	invitePattern    = regexp.MustCompile(`(?i)discord(?:\.gg|(?:app)?\.com/invite)/([\w-]+)`)
	linkPattern      = regexp.MustCompile(`(?i)https?://[^\s<>]+`)
	mentionPattern   = regexp.MustCompile(`<@[!&]?(\d+)>`)
	newLinePattern   = regexp.MustCompile(`\r?\n`)
	blankLinePattern = regexp.MustCompile(`\n[ \t]*\r?\n`)
)

func boolCount(ok bool) RuleCount {
	if ok {
		return RuleCount{Count: 1}
	}
	return RuleCount{}
}

func countAttachments(m *CachedMessage) RuleCount {
	return RuleCount{Count: int64(m.Attachments)}
}

func countEmoji(m *CachedMessage, cfg model.AutoConfiguration) RuleCount {
	matches := emojiPattern.FindAllString(m.Content, -1)
	matches = append(matches, emotePattern.FindAllString(m.Content, -1)...)
	var n int64
	for _, e := range matches {
		if !contains(cfg.EmojiExclusions, e) {
			n++
		}
	}
	return RuleCount{Count: n}
}

func countInvites(m *CachedMessage, cfg model.AutoConfiguration) RuleCount {
	var n int64
	for _, match := range invitePattern.FindAllStringSubmatch(m.Content, -1) {
		if !contains(cfg.InviteExclusions, match[1]) {
			n++
		}
	}
	return RuleCount{Count: n}
}

func countLinks(m *CachedMessage, cfg model.AutoConfiguration) RuleCount {
	var n int64
	for _, raw := range linkPattern.FindAllString(m.Content, -1) {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			continue
		}
		if linkExcluded(cfg.LinkExclusions, u) {
			continue
		}
		n++
	}
	return RuleCount{Count: n}
}

// linkExcluded matches an exclusion against the link's host or, for entries
// containing a slash, against the full URI prefix.
func linkExcluded(exclusions []string, u *url.URL) bool {
	full := u.String()
	for _, e := range exclusions {
		if strings.Contains(e, "/") {
			if strings.HasPrefix(full, e) {
				return true
			}
			continue
		}
		if strings.EqualFold(u.Host, e) || strings.HasSuffix(strings.ToLower(u.Host), "."+strings.ToLower(e)) {
			return true
		}
	}
	return false
}

// RoleMemberCounter resolves how many members a role has, for mention rules
// that count role members individually.
type RoleMemberCounter interface {
	RoleMemberCount(guildID, roleID string) int
}

func countMentions(m *CachedMessage, cfg model.AutoConfiguration, guildID string, roles RoleMemberCounter) RuleCount {
	if cfg.MentionCountInvalid {
		matches := mentionPattern.FindAllStringSubmatch(m.Content, -1)
		seen := make(map[string]struct{})
		var n int64
		for _, match := range matches {
			id := match[1]
			if cfg.Exclusions.ExcludesUser(id) || cfg.Exclusions.ExcludesRole(id) {
				continue
			}
			if cfg.MentionCountDuplicates {
				if _, ok := seen[id]; ok {
					continue
				}
				seen[id] = struct{}{}
			}
			n++
		}
		return RuleCount{Count: n}
	}

	occurrences := func(id string) int64 {
		if !cfg.MentionCountDuplicates {
			return 1
		}
		var n int64
		for _, match := range mentionPattern.FindAllStringSubmatch(m.Content, -1) {
			if match[1] == id {
				n++
			}
		}
		return n
	}

	var n int64
	for _, id := range m.MentionUserIDs {
		if cfg.Exclusions.ExcludesUser(id) {
			continue
		}
		n += occurrences(id)
	}
	for _, id := range m.MentionRoleIDs {
		if cfg.Exclusions.ExcludesRole(id) {
			continue
		}
		if cfg.MentionCountRoleMembers && roles != nil {
			n += int64(roles.RoleMemberCount(guildID, id))
		} else {
			n += occurrences(id)
		}
	}
	return RuleCount{Count: n}
}

func countReply(m *CachedMessage, cfg model.AutoConfiguration) RuleCount {
	ref := m.Reference
	if ref == nil || ref.Bot {
		return RuleCount{}
	}
	if cfg.Exclusions.ExcludesUser(ref.AuthorID) {
		return RuleCount{}
	}
	return boolCount(contains(m.MentionUserIDs, ref.AuthorID))
}

func countNewLines(m *CachedMessage, cfg model.AutoConfiguration) RuleCount {
	if cfg.NewLineBlankOnly {
		return RuleCount{Count: int64(len(blankLinePattern.FindAllString(m.Content, -1)))}
	}
	return RuleCount{Count: int64(len(newLinePattern.FindAllString(m.Content, -1)))}
}

// countDuplicates computes the duplicate count of one window message at the
// configured granularity. For whole-message granularity the reference is the
// incoming message; word and character granularity are intrinsic to the
// window message and memoizable.
func countDuplicates(m *CachedMessage, cfg model.AutoConfiguration, incoming *CachedMessage) RuleCount {
	switch cfg.DuplicateType {
	case model.DuplicateWord:
		return m.Memoized(cfg.ID, func(m *CachedMessage) RuleCount { return wordDuplicates(m, cfg) })
	case model.DuplicateCharacter:
		return m.Memoized(cfg.ID, func(m *CachedMessage) RuleCount { return characterDuplicates(m) })
	default: // whole message
		c := RuleCount{Total: 1}
		if isDuplicate(incoming.Content, m.Content, cfg.DuplicateTolerance) {
			c.Count = 1
		}
		return c
	}
}

var wordSeparators = func(r rune) bool {
	return r == ' ' || r == '\r' || r == '\n'
}

func wordDuplicates(m *CachedMessage, cfg model.AutoConfiguration) RuleCount {
	words := strings.FieldsFunc(m.Content, wordSeparators)
	if len(words) == 0 {
		return RuleCount{}
	}
	var max int64
	for _, distinct := range words {
		var n int64
		for _, w := range words {
			if isDuplicate(distinct, w, cfg.DuplicateTolerance) {
				n++
			}
		}
		if n > max {
			max = n
		}
	}
	return RuleCount{Count: max, Total: int64(len(words))}
}

func characterDuplicates(m *CachedMessage) RuleCount {
	chars := []rune(strings.ReplaceAll(m.Content, " ", ""))
	if len(chars) == 0 {
		return RuleCount{}
	}
	freq := make(map[rune]int64)
	var max int64
	for _, c := range chars {
		freq[c]++
		if freq[c] > max {
			max = freq[c]
		}
	}
	return RuleCount{Count: max, Total: int64(len(chars))}
}

// isDuplicate compares two strings under the configured tolerance: zero
// requires equality, otherwise an edit distance within the tolerance counts
// as a duplicate.
func isDuplicate(a, b string, tolerance int) bool {
	if tolerance <= 0 {
		return a == b
	}
	return editDistance(a, b) <= tolerance
}

// editDistance is a plain Levenshtein distance over runes.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
