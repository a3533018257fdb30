package permissions

// Status is the microphone authorization state reported by the OS
type Status int

const (
	StatusNotDetermined Status = 0
	StatusRestricted    Status = 1
	StatusDenied        Status = 2
	StatusAuthorized    Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusNotDetermined:
		return "not-determined"
	case StatusRestricted:
		return "restricted"
	case StatusDenied:
		return "denied"
	case StatusAuthorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// MicrophoneGranted reports whether capture is currently allowed. It only
// reads the OS state and never shows a prompt.
func MicrophoneGranted() (bool, error) {
	status, err := CheckMicrophone()
	if err != nil {
		return false, err
	}
	return status == StatusAuthorized, nil
}
