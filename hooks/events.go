package hooks

// Kind identifies an event type.
type Kind uint8

const (
	KindUserDeleted Kind = iota + 1
	KindPasswordResetRequested
	KindEmailVerificationRequested
)

func (k Kind) String() string {
	switch k {
	case KindUserDeleted:
		return "user_deleted"
	case KindPasswordResetRequested:
		return "password_reset_requested"
	case KindEmailVerificationRequested:
		return "email_verification_requested"
	default:
		return "unknown"
	}
}

// User is the user snapshot delivered with every event.
type User struct {
	ID            string
	Email         string
	Name          string
	Image         string
	EmailVerified bool
}

// Event is implemented only by the event types in this package.
type Event interface {
	Kind() Kind
	Subject() User
	sealed()
}

// UserDeleted fires after the user record has been removed.
type UserDeleted struct {
	User User
}

// PasswordResetRequested fires after a reset token has been stored.
type PasswordResetRequested struct {
	User  User
	URL   string
	Token string
}

// EmailVerificationRequested fires after a verification token has been stored.
type EmailVerificationRequested struct {
	User  User
	URL   string
	Token string
}

func (UserDeleted) Kind() Kind                { return KindUserDeleted }
func (PasswordResetRequested) Kind() Kind     { return KindPasswordResetRequested }
func (EmailVerificationRequested) Kind() Kind { return KindEmailVerificationRequested }

func (e UserDeleted) Subject() User                { return e.User }
func (e PasswordResetRequested) Subject() User     { return e.User }
func (e EmailVerificationRequested) Subject() User { return e.User }

func (UserDeleted) sealed()                {}
func (PasswordResetRequested) sealed()     {}
func (EmailVerificationRequested) sealed() {}
