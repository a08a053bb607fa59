package prefetch

// Status is the load state of one category.
type Status int

const (
	// StatusPending means not loaded yet, or the last attempt failed.
	StatusPending Status = iota
	// StatusLoading means a fetch is in flight.
	StatusLoading
	// StatusReady means the cache holds a non-empty entry.
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Update is published on every status change.
type Update struct {
	Language string
	Category string
	Status   Status
	Err      error // set when a load attempt failed
}

// CategoryStatus is one row of a Snapshot.
type CategoryStatus struct {
	Category string
	Status   Status
}
