package vault

// Status is the process-wide speech generation state shown to the
// learner as the "bakery" badge.
type Status int

const (
	// StatusIdle means nothing is being generated.
	StatusIdle Status = iota
	// StatusBaking means a phrase is being synthesized.
	StatusBaking
	// StatusResting means the provider is rate limiting; new phrases are
	// not requested until the cooldown ends.
	StatusResting
	// StatusReady means the last phrase was baked and stored.
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusBaking:
		return "baking"
	case StatusResting:
		return "resting"
	case StatusReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Source says where the audio for a Speak call came from.
type Source int

const (
	// SourceVault means the phrase was already stored.
	SourceVault Source = iota
	// SourceProvider means the phrase was just synthesized and stored.
	SourceProvider
	// SourceFallback means the local low-fidelity engine spoke it.
	SourceFallback
	// SourceSilent means nothing was played.
	SourceSilent
)

func (s Source) String() string {
	switch s {
	case SourceVault:
		return "vault"
	case SourceProvider:
		return "provider"
	case SourceFallback:
		return "fallback"
	case SourceSilent:
		return "silent"
	default:
		return "unknown"
	}
}
