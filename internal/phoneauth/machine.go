// Package phoneauth drives WhatsApp OTP login: phone entry, code
// verification, then either sign-in or profile completion for new accounts.
//
// Transition is pure. Flow runs the effects it returns against real
// collaborators and feeds the outcomes back in as events.
package phoneauth

import (
	"errors"

	"marmomart/internal/models"
)

// Step is the user-visible step of the login flow.
type Step string

const (
	EnteringPhone   Step = "entering_phone"
	AwaitingCode    Step = "awaiting_code"
	ProfileRequired Step = "profile_required"
	Authenticated   Step = "authenticated"
)

var (
	ErrInvalidPhone      = errors.New("invalid phone number")
	ErrProfileIncomplete = errors.New("full name is required")
	ErrUnexpectedEvent   = errors.New("event not allowed in current step")
)

// Profile is what a new customer fills in after verifying their phone.
type Profile struct {
	FullName     string
	Email        string
	BusinessName string
	BusinessType string
	GSTNumber    string
}

// State is the full machine state.
type State struct {
	Step      Step
	Phone     string
	SessionID string
	Verified  bool
	Account   *models.Account
	Token     string
	// Err is the outcome of the last failed event; it is cleared by the next
	// user event.
	Err error
}

// Event is an input to Transition.
type Event interface{ isEvent() }

type (
	PhoneSubmitted   struct{ Phone string }
	CodeIssued       struct{ Phone, SessionID string }
	IssueFailed      struct{ Err error }
	CodeSubmitted    struct{ Code string }
	CodeVerified     struct{}
	VerifyFailed     struct{ Err error }
	AccountFound     struct{ Account *models.Account }
	AccountMissing   struct{}
	ProfileSubmitted struct{ Profile Profile }
	AccountCreated   struct{ Account *models.Account }
	SignedIn         struct{ Token string }
	ResendRequested  struct{}
	Cancelled        struct{}
	// Failed reports an account lookup, creation or sign-in error.
	Failed struct{ Err error }
)

func (PhoneSubmitted) isEvent()   {}
func (CodeIssued) isEvent()       {}
func (IssueFailed) isEvent()      {}
func (CodeSubmitted) isEvent()    {}
func (CodeVerified) isEvent()     {}
func (VerifyFailed) isEvent()     {}
func (AccountFound) isEvent()     {}
func (AccountMissing) isEvent()   {}
func (ProfileSubmitted) isEvent() {}
func (AccountCreated) isEvent()   {}
func (SignedIn) isEvent()         {}
func (ResendRequested) isEvent()  {}
func (Cancelled) isEvent()        {}
func (Failed) isEvent()           {}

// Effect is a side effect requested by Transition.
type Effect interface{ isEffect() }

type (
	IssueCode     struct{ Phone string }
	VerifyCode    struct{ SessionID, Phone, Code string }
	LookupAccount struct{ Phone string }
	CreateAccount struct {
		Phone   string
		Profile Profile
	}
	SignIn struct{ Account *models.Account }
)

func (IssueCode) isEffect()     {}
func (VerifyCode) isEffect()    {}
func (LookupAccount) isEffect() {}
func (CreateAccount) isEffect() {}
func (SignIn) isEffect()        {}

// Start returns the initial state.
func Start() State {
	return State{Step: EnteringPhone}
}

// Transition applies ev to s.
func Transition(s State, ev Event) (State, []Effect) {
	if _, ok := ev.(Cancelled); ok {
		return Start(), nil
	}

	switch s.Step {
	case EnteringPhone:
		switch e := ev.(type) {
		case PhoneSubmitted:
			s.Err = nil
			return s, []Effect{IssueCode{Phone: e.Phone}}
		case CodeIssued:
			return State{Step: AwaitingCode, Phone: e.Phone, SessionID: e.SessionID}, nil
		case IssueFailed:
			s.Err = e.Err
			return s, nil
		}

	case AwaitingCode:
		switch e := ev.(type) {
		case CodeSubmitted:
			if s.Verified {
				break
			}
			s.Err = nil
			return s, []Effect{VerifyCode{SessionID: s.SessionID, Phone: s.Phone, Code: e.Code}}
		case ResendRequested:
			if s.Verified {
				break
			}
			s.Err = nil
			return s, []Effect{IssueCode{Phone: s.Phone}}
		case CodeIssued:
			s.SessionID = e.SessionID
			return s, nil
		case IssueFailed:
			s.Err = e.Err
			return s, nil
		case VerifyFailed:
			s.Err = e.Err
			return s, nil
		case CodeVerified:
			s.Verified = true
			s.SessionID = ""
			return s, []Effect{LookupAccount{Phone: s.Phone}}
		case AccountMissing:
			if !s.Verified {
				break
			}
			s.Step = ProfileRequired
			return s, nil
		case AccountFound:
			if !s.Verified {
				break
			}
			s.Account = e.Account
			return s, []Effect{SignIn{Account: e.Account}}
		case SignedIn:
			if s.Account == nil {
				break
			}
			s.Step = Authenticated
			s.Token = e.Token
			return s, nil
		case Failed:
			if s.Verified {
				// The code is spent, so only a fresh one can get the user further.
				return State{Step: EnteringPhone, Phone: s.Phone, Err: e.Err}, nil
			}
			s.Err = e.Err
			return s, nil
		}

	case ProfileRequired:
		switch e := ev.(type) {
		case ProfileSubmitted:
			if e.Profile.FullName == "" {
				s.Err = ErrProfileIncomplete
				return s, nil
			}
			s.Err = nil
			return s, []Effect{CreateAccount{Phone: s.Phone, Profile: e.Profile}}
		case AccountCreated:
			s.Account = e.Account
			return s, []Effect{SignIn{Account: e.Account}}
		case SignedIn:
			if s.Account == nil {
				break
			}
			s.Step = Authenticated
			s.Token = e.Token
			return s, nil
		case Failed:
			s.Err = e.Err
			return s, nil
		}
	}

	s.Err = ErrUnexpectedEvent
	return s, nil
}
