package lifecycle

import (
	"fmt"

	"github.com/kamilpajak/leafcheck/pkg/models"
)

// Kind identifies which lifecycle state is active.
type Kind int

const (
	Idle Kind = iota
	Submitting
	Pending
	Succeeded
	Failed
)

var kindNames = map[Kind]string{
	Idle:       "idle",
	Submitting: "submitting",
	Pending:    "pending",
	Succeeded:  "succeeded",
	Failed:     "failed",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Terminal reports whether k stays active until a reset.
func (k Kind) Terminal() bool {
	return k == Succeeded || k == Failed
}

// InFlight reports whether a submission is outstanding.
func (k Kind) InFlight() bool {
	return k == Submitting || k == Pending
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown lifecycle state %q", text)
}

// State is one immutable snapshot of the lifecycle. Model is set only when
// Kind is Succeeded and Message only when Kind is Failed.
type State struct {
	Kind       Kind                 `json:"kind" yaml:"kind"`
	Generation uint64               `json:"generation" yaml:"generation"`
	Image      string               `json:"image,omitempty" yaml:"image,omitempty"`
	Model      *models.DisplayModel `json:"model,omitempty" yaml:"model,omitempty"`
	Message    string               `json:"message,omitempty" yaml:"message,omitempty"`
	Err        error                `json:"-" yaml:"-"`
}
