package seed

// Status tracks a Seeder's progress. It only moves forward.
type Status int32

const (
	StatusInitial Status = iota
	StatusStarted
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusInitial:
		return "initial"
	case StatusStarted:
		return "started"
	case StatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}
