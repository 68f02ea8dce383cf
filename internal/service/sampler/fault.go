package sampler

import "fmt"

// FaultKind classifies a failed poll.
type FaultKind int

const (
	// TransportFault: the request failed, timed out or returned a non-2xx status.
	TransportFault FaultKind = iota
	// DecodeFault: the body did not have the expected shape.
	DecodeFault
)

func (k FaultKind) String() string {
	if k == DecodeFault {
		return "decode"
	}
	return "transport"
}

// Fault is reported to onFault; the tick is skipped and polling continues.
type Fault struct {
	Kind     FaultKind
	Device   string
	Endpoint string
	Err      error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s fault on %s %s: %v", f.Kind, f.Device, f.Endpoint, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}
