package content

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lingokids/lingo/internal/cache"
	"github.com/lingokids/lingo/internal/provider"
)

// imageCapacity bounds the illustration cache in bytes. Text content is
// never evicted; pictures are.
const imageCapacity = 64 << 20

// Store bundles the per-kind content caches and the illustration cache.
type Store struct {
	Alphabet  *Cache[Letter]
	Words     *Cache[WordChallenge]
	Songs     *Cache[Song]
	Geography *Cache[GeoItem]

	gen    provider.Provider
	images *cache.MemoryCache
	logger *log.Logger
}

// NewStore builds a Store whose caches load through gen.
func NewStore(gen provider.Provider, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	f := NewFetcher(gen, logger)
	return &Store{
		Alphabet:  NewCache(KindAlphabet, f.Alphabet),
		Words:     NewCache(KindWords, f.Words),
		Songs:     NewCache(KindSongs, f.Songs),
		Geography: NewCache(KindGeography, f.Geography),
		gen:       gen,
		images:    cache.NewMemoryCache(imageCapacity),
		logger:    logger,
	}
}

// Target is the part of a cache the prefetch queue and bootstrapper use.
type Target interface {
	Has(key Key) bool
	Warm(ctx context.Context, key Key) error
}

// Target returns the cache for kind.
func (s *Store) Target(kind Kind) (Target, error) {
	switch kind {
	case KindAlphabet:
		return s.Alphabet, nil
	case KindWords:
		return s.Words, nil
	case KindSongs:
		return s.Songs, nil
	case KindGeography:
		return s.Geography, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Subscribe registers fn for writes to any cache.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	unsubs := []func(){
		s.Alphabet.Subscribe(fn),
		s.Words.Subscribe(fn),
		s.Songs.Subscribe(fn),
		s.Geography.Subscribe(fn),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// Counts returns the number of cached keys per kind.
func (s *Store) Counts() map[Kind]int {
	return map[Kind]int{
		KindAlphabet:  s.Alphabet.Len(),
		KindWords:     s.Words.Len(),
		KindSongs:     s.Songs.Len(),
		KindGeography: s.Geography.Len(),
	}
}

// Reset empties every cache.
func (s *Store) Reset() {
	s.Alphabet.Reset()
	s.Words.Reset()
	s.Songs.Reset()
	s.Geography.Reset()
	_ = s.images.Clear()
}

// Illustration returns a picture for prompt, generating it on first use.
func (s *Store) Illustration(ctx context.Context, prompt string) ([]byte, error) {
	if img, ok := s.images.Get(prompt); ok {
		return img, nil
	}

	img, err := s.gen.GenerateImage(ctx, "A bright, friendly children's book illustration: "+prompt)
	if err != nil {
		return nil, err
	}
	if err := s.images.Put(prompt, img); err != nil {
		s.logger.Debug("illustration not cached", "err", err)
	}
	return img, nil
}
