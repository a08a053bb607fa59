package content

// Default category lists per kind. The prefetch queue walks the
// geography list in this order.
var (
	GeographyCategories = []string{
		"landmarks", "food", "festivals", "animals",
		"clothing", "nature", "music", "games",
	}

	SongCategories = []string{
		"lullabies", "nursery rhymes", "counting songs", "festival songs",
	}

	WordCategories = []string{
		"animals", "colors", "family", "food", "numbers", "body", "home",
	}
)

// Categories returns the default categories for kind. The alphabet has
// none.
func Categories(kind Kind) []string {
	switch kind {
	case KindGeography:
		return GeographyCategories
	case KindSongs:
		return SongCategories
	case KindWords:
		return WordCategories
	default:
		return nil
	}
}

// Batch sizes per fetch.
const (
	WordBatchSize = 8
	SongBatchSize = 3
	GeoBatchSize  = 6
)
