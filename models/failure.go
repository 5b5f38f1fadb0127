package models

// FailureKind classifies a failure surfaced to the user.
type FailureKind int

const (
	NetworkFailure FailureKind = iota + 1
	ServerFailure
	LocationDenied
	LocationUnsupported
	ValidationFailure
)

func (k FailureKind) String() string {
	switch k {
	case NetworkFailure:
		return "network"
	case ServerFailure:
		return "server"
	case LocationDenied:
		return "location-denied"
	case LocationUnsupported:
		return "location-unsupported"
	case ValidationFailure:
		return "validation"
	default:
		return "unknown"
	}
}

// Failure is a user-visible error message tagged with its kind.
type Failure struct {
	Kind    FailureKind
	Message string
}

func (f Failure) Error() string {
	return f.Message
}
