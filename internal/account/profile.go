package account

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/lingokids/lingo/internal/provider"
)

// DefaultAvatar is used when a profile is created without one.
const DefaultAvatar = "🦁"

// CreateProfile adds a profile to the signed-in account and makes it
// active. The id is always generated.
func (s *Store) CreateProfile(ctx context.Context, p Profile) (Profile, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return Profile{}, ErrMissingName
	}
	p.ID = uuid.NewString()
	if p.Avatar == "" {
		p.Avatar = DefaultAvatar
	}
	if p.Voice == "" {
		p.Voice = provider.DefaultVoice
	}
	p.XP = max(p.XP, 0)
	p.CompletedWords = dedupe(p.CompletedWords)

	_, err := s.mutate(ctx, func(a *Account) error {
		a.Profiles = append(a.Profiles, p)
		a.ActiveProfile = p.ID
		return nil
	})
	if err != nil {
		return Profile{}, err
	}
	s.logger.Info("profile created", "id", p.ID, "name", p.Name)
	return p.clone(), nil
}

// UpdateProfile changes the non-nil fields of u on profile id.
func (s *Store) UpdateProfile(ctx context.Context, id string, u ProfileUpdate) (Profile, error) {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return Profile{}, ErrMissingName
	}
	return s.mutateProfile(ctx, id, func(p *Profile) error {
		if u.Name != nil {
			p.Name = strings.TrimSpace(*u.Name)
		}
		if u.Avatar != nil {
			p.Avatar = *u.Avatar
		}
		if u.Voice != nil {
			p.Voice = *u.Voice
		}
		if u.Gender != nil {
			p.Gender = *u.Gender
		}
		return nil
	})
}

// DeleteProfile removes profile id and its chat history.
func (s *Store) DeleteProfile(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, func(a *Account) error {
		i := slices.IndexFunc(a.Profiles, func(p Profile) bool { return p.ID == id })
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrProfileNotFound, id)
		}
		a.Profiles = slices.Delete(a.Profiles, i, i+1)
		if a.ActiveProfile == id {
			a.ActiveProfile = ""
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := s.kv.Delete(ctx, HistoryKey(id)); err != nil {
		s.logger.Warn("removing profile history", "id", id, "err", err)
	}
	return nil
}

// SelectProfile makes profile id the active one.
func (s *Store) SelectProfile(ctx context.Context, id string) (Profile, error) {
	var selected Profile
	_, err := s.mutate(ctx, func(a *Account) error {
		p, ok := a.Profile(id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrProfileNotFound, id)
		}
		a.ActiveProfile = id
		selected = p
		return nil
	})
	return selected, err
}

// ActiveProfile returns the active profile of the signed-in account.
func (s *Store) ActiveProfile() (Profile, bool) {
	a, ok := s.Current()
	if !ok || a.ActiveProfile == "" {
		return Profile{}, false
	}
	return a.Profile(a.ActiveProfile)
}

// AddXP adds a non-negative amount to a profile's XP, saturating at
// math.MaxInt.
func (s *Store) AddXP(ctx context.Context, id string, amount int) (Profile, error) {
	if amount < 0 {
		return Profile{}, ErrNegativeXP
	}
	return s.mutateProfile(ctx, id, func(p *Profile) error {
		if p.XP > math.MaxInt-amount {
			p.XP = math.MaxInt
		} else {
			p.XP += amount
		}
		return nil
	})
}

// CompleteWord records word as completed. Recording it again is a no-op.
func (s *Store) CompleteWord(ctx context.Context, id, word string) (Profile, error) {
	word = strings.TrimSpace(word)
	return s.mutateProfile(ctx, id, func(p *Profile) error {
		if word != "" && !p.HasCompleted(word) {
			p.CompletedWords = append(p.CompletedWords, word)
		}
		return nil
	})
}

func (s *Store) mutateProfile(ctx context.Context, id string, fn func(p *Profile) error) (Profile, error) {
	var out Profile
	_, err := s.mutate(ctx, func(a *Account) error {
		i := slices.IndexFunc(a.Profiles, func(p Profile) bool { return p.ID == id })
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrProfileNotFound, id)
		}
		p := a.Profiles[i].clone()
		if err := fn(&p); err != nil {
			return err
		}
		a.Profiles[i] = p
		out = p.clone()
		return nil
	})
	return out, err
}

func dedupe(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" && !slices.Contains(out, w) {
			out = append(out, w)
		}
	}
	return out
}
