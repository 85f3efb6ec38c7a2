package event

import "strings"

// Topic is a hierarchical event type using dot notation.
type Topic string

// Wildcards accepted in subscription patterns.
const (
	WildcardSingle = "*"
	WildcardMulti  = "**"
	separator      = "."
)

// Topics published by the editor.
const (
	TopicCommitted      Topic = "document.committed"
	TopicLoaded         Topic = "document.loaded"
	TopicSaved          Topic = "store.saved"
	TopicSaveFailed     Topic = "store.save_failed"
	TopicConfigReloaded Topic = "config.reloaded"
)

// Segments returns the topic split at dots.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), separator)
}

// Matches reports whether t matches pattern.
func (t Topic) Matches(pattern Topic) bool {
	return matchSegments(t.Segments(), pattern.Segments())
}

func matchSegments(topic, pattern []string) bool {
	ti := 0
	for pi := 0; pi < len(pattern); pi++ {
		if pattern[pi] == WildcardMulti {
			for ; ti <= len(topic); ti++ {
				if matchSegments(topic[ti:], pattern[pi+1:]) {
					return true
				}
			}
			return false
		}
		if ti >= len(topic) {
			return false
		}
		if pattern[pi] != WildcardSingle && pattern[pi] != topic[ti] {
			return false
		}
		ti++
	}
	return ti == len(topic)
}
