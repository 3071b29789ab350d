package phoneauth

import (
	"context"
	"fmt"

	"marmomart/internal/models"

	"github.com/nyaruka/phonenumbers"
)

// CodeIssuer is implemented by otp.Manager.
type CodeIssuer interface {
	Issue(ctx context.Context, phone string) (string, error)
	Verify(ctx context.Context, sessionID, phone, code string) error
}

// PhoneValidator normalises a phone number or rejects it.
type PhoneValidator interface {
	Normalize(phone string) (string, error)
}

// AccountDirectory looks up, creates and signs in customer accounts.
// FindByPhone returns nil, nil when no account exists.
type AccountDirectory interface {
	FindByPhone(ctx context.Context, phone string) (*models.Account, error)
	CreateAccount(ctx context.Context, phone string, profile Profile) (*models.Account, error)
	SignIn(ctx context.Context, account *models.Account) (string, error)
}

// Flow holds one login attempt and executes the effects of its transitions.
type Flow struct {
	state     State
	codes     CodeIssuer
	phones    PhoneValidator
	directory AccountDirectory
}

// NewFlow creates a Flow in the EnteringPhone step.
func NewFlow(codes CodeIssuer, phones PhoneValidator, directory AccountDirectory) *Flow {
	return &Flow{
		state:     Start(),
		codes:     codes,
		phones:    phones,
		directory: directory,
	}
}

// Resume replaces the flow state, e.g. with one rebuilt from a previous request.
func (f *Flow) Resume(s State) *Flow {
	f.state = s
	return f
}

// State returns the current state.
func (f *Flow) State() State {
	return f.state
}

// Dispatch applies ev and every follow-up event produced by running effects.
// It returns the error recorded on the resulting state, if any.
func (f *Flow) Dispatch(ctx context.Context, ev Event) error {
	queue := []Event{ev}
	for len(queue) > 0 {
		next, effects := Transition(f.state, queue[0])
		f.state = next
		queue = queue[1:]
		for _, eff := range effects {
			queue = append(queue, f.run(ctx, eff))
		}
	}
	return f.state.Err
}

func (f *Flow) run(ctx context.Context, eff Effect) Event {
	switch e := eff.(type) {
	case IssueCode:
		phone, err := f.phones.Normalize(e.Phone)
		if err != nil {
			return IssueFailed{Err: err}
		}
		sessionID, err := f.codes.Issue(ctx, phone)
		if err != nil {
			return IssueFailed{Err: err}
		}
		return CodeIssued{Phone: phone, SessionID: sessionID}

	case VerifyCode:
		if err := f.codes.Verify(ctx, e.SessionID, e.Phone, e.Code); err != nil {
			return VerifyFailed{Err: err}
		}
		return CodeVerified{}

	case LookupAccount:
		account, err := f.directory.FindByPhone(ctx, e.Phone)
		if err != nil {
			return Failed{Err: err}
		}
		if account == nil {
			return AccountMissing{}
		}
		return AccountFound{Account: account}

	case CreateAccount:
		account, err := f.directory.CreateAccount(ctx, e.Phone, e.Profile)
		if err != nil {
			return Failed{Err: err}
		}
		return AccountCreated{Account: account}

	case SignIn:
		token, err := f.directory.SignIn(ctx, e.Account)
		if err != nil {
			return Failed{Err: err}
		}
		return SignedIn{Token: token}
	}
	return Failed{Err: fmt.Errorf("unknown effect %T", eff)}
}

// NumberValidator validates numbers with libphonenumber metadata.
type NumberValidator struct {
	defaultRegion string
}

// NewNumberValidator creates a validator that assumes defaultRegion (e.g. "IN")
// for numbers without a country code.
func NewNumberValidator(defaultRegion string) *NumberValidator {
	return &NumberValidator{defaultRegion: defaultRegion}
}

// Normalize returns phone in E.164 form.
func (v *NumberValidator) Normalize(phone string) (string, error) {
	num, err := phonenumbers.Parse(phone, v.defaultRegion)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPhone, err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidPhone
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
