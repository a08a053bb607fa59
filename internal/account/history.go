package account

import (
	"context"
	"encoding/json"
	"slices"
)

// SaveHistory stores the chat history of a profile, stamped with the
// current time.
func (s *Store) SaveHistory(ctx context.Context, profileID string, messages []Message) error {
	raw, err := json.Marshal(history{SavedAt: s.now(), Messages: messages})
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, HistoryKey(profileID), raw); err != nil {
		s.logger.Warn("saving chat history", "profile", profileID, "err", err)
	}
	return nil
}

// LoadHistory returns the saved chat history of a profile. A history
// older than HistoryTTL is deleted and reported as empty.
func (s *Store) LoadHistory(ctx context.Context, profileID string) []Message {
	key := HistoryKey(profileID)
	raw, ok := s.get(ctx, key)
	if !ok {
		return nil
	}

	var h history
	if err := json.Unmarshal(raw, &h); err != nil {
		s.logger.Warn("discarding unreadable chat history", "profile", profileID, "err", err)
		return nil
	}
	if s.now().Sub(h.SavedAt) > HistoryTTL {
		if err := s.kv.Delete(ctx, key); err != nil {
			s.logger.Warn("removing expired chat history", "profile", profileID, "err", err)
		}
		return nil
	}
	return slices.Clone(h.Messages)
}
