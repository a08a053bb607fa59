// Package account persists learner accounts and their child profiles
// over a storage.KV, following a mocked sign-in flow: passwords are
// compared as given and social sign-in always yields the same identity.
package account

import (
	"slices"
	"time"
)

// Storage keys.
const (
	KeyAccounts      = "lingo_accounts"
	KeyCurrent       = "lingo_current_account"
	historyKeyPrefix = "lingo_history_"
)

// HistoryTTL is how long a saved chat history stays readable.
const HistoryTTL = 30 * 24 * time.Hour

// HistoryKey returns the storage key for a profile's chat history.
func HistoryKey(profileID string) string { return historyKeyPrefix + profileID }

// Account is a parent login holding one or more child profiles.
type Account struct {
	Email         string    `json:"email"`
	Password      string    `json:"password,omitempty"`
	GoogleID      string    `json:"googleId,omitempty"`
	Name          string    `json:"name"`
	Profiles      []Profile `json:"profiles"`
	ActiveProfile string    `json:"activeProfile,omitempty"`
}

// Profile is one learner.
type Profile struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Avatar         string   `json:"avatar"`
	Voice          string   `json:"voice"`
	Gender         string   `json:"gender"`
	XP             int      `json:"xp"`
	CompletedWords []string `json:"completedWords"`
}

// ProfileUpdate carries the editable fields of a profile. Nil fields are
// left unchanged.
type ProfileUpdate struct {
	Name   *string
	Avatar *string
	Voice  *string
	Gender *string
}

// Message is one turn of a chat with the assistant.
type Message struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

type history struct {
	SavedAt  time.Time `json:"savedAt"`
	Messages []Message `json:"messages"`
}

func (a Account) clone() Account {
	a.Profiles = slices.Clone(a.Profiles)
	for i := range a.Profiles {
		a.Profiles[i] = a.Profiles[i].clone()
	}
	return a
}

func (p Profile) clone() Profile {
	p.CompletedWords = slices.Clone(p.CompletedWords)
	return p
}

// Profile returns the profile with id.
func (a Account) Profile(id string) (Profile, bool) {
	for _, p := range a.Profiles {
		if p.ID == id {
			return p.clone(), true
		}
	}
	return Profile{}, false
}

// HasCompleted reports whether word is in the profile's completed set.
func (p Profile) HasCompleted(word string) bool {
	return slices.Contains(p.CompletedWords, word)
}
