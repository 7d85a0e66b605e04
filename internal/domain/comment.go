package domain

import (
	"regexp"
	"strings"
	"time"
)

type Comment struct {
	ID        string
	TaskID    string
	UserID    string
	Body      string
	CreatedAt time.Time
}

type Activity struct {
	ID     string
	TaskID string
	// UserID is nil for system-triggered transitions.
	UserID    *string
	Type      ActivityType
	Meta      map[string]any
	CreatedAt time.Time
}

var mentionPattern = regexp.MustCompile(`@([\p{L}\p{N}._-]+)`)

// MentionTokens extracts the unique, lowercased @tokens from a comment
// body, preserving first-seen order.
func MentionTokens(body string) []string {
	matches := mentionPattern.FindAllStringSubmatch(body, -1)
	if matches == nil {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	var tokens []string
	for _, m := range matches {
		token := strings.ToLower(m[1])
		if token == "" || seen[token] {
			continue
		}
		seen[token] = true
		tokens = append(tokens, token)
	}
	return tokens
}

// ResolveMentions matches tokens against workspace members only. A member
// is mentioned when any token is a case-insensitive prefix of their name
// or email.
func ResolveMentions(body string, members []Member) []Member {
	tokens := MentionTokens(body)
	if len(tokens) == 0 {
		return nil
	}
	var mentioned []Member
	for _, member := range members {
		name := strings.ToLower(member.Name)
		email := strings.ToLower(member.Email)
		for _, token := range tokens {
			if strings.HasPrefix(name, token) || strings.HasPrefix(email, token) {
				mentioned = append(mentioned, member)
				break
			}
		}
	}
	return mentioned
}
