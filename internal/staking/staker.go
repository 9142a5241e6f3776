package staking

import "time"

type StakerKind string

const (
	StakerAppUser StakerKind = "app_user"
	StakerManual  StakerKind = "manual"
)

// StakerRef identifies the staking counterparty: an app user XOR an off-app
// manual staker profile. Modelled as a tagged union so a contract can never
// reference both or neither.
type StakerRef struct {
	Kind     StakerKind `json:"kind"`
	UserID   string     `json:"user_id,omitempty"`
	ManualID string     `json:"manual_id,omitempty"`
	// Name is the denormalized display-name fallback for manual stakers,
	// shown without a profile join.
	Name string `json:"name,omitempty"`
}

func AppUserRef(userID string) StakerRef {
	return StakerRef{Kind: StakerAppUser, UserID: userID}
}

func ManualRef(manualID, name string) StakerRef {
	return StakerRef{Kind: StakerManual, ManualID: manualID, Name: name}
}

func (r StakerRef) Validate() error {
	switch r.Kind {
	case StakerAppUser:
		if r.UserID == "" || r.ManualID != "" {
			return ErrMissingStaker
		}
	case StakerManual:
		if r.ManualID == "" || r.UserID != "" {
			return ErrMissingStaker
		}
	default:
		return ErrMissingStaker
	}
	return nil
}

// Key is the identity used for duplicate-stake detection within a session.
func (r StakerRef) Key() string {
	if r.Kind == StakerManual {
		return "manual:" + r.ManualID
	}
	return "user:" + r.UserID
}

// ManualStaker is an off-app counterparty tracked by name and contact only.
type ManualStaker struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	DisplayName string    `json:"display_name"`
	Contact     string    `json:"contact,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
