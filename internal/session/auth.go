package session

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/i474232898/taskmaster/internal/validation"
)

// MinPasswordLength is the only rule of the placeholder credential policy.
const MinPasswordLength = 6

const (
	msgInvalidLogin  = "Invalid email or password"
	msgInvalidSignup = "Unable to create account"
)

// ErrInvalidCredentials is returned when the mocked check rejects a login
// or signup.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Credentials is the login/signup form input.
type Credentials struct {
	Email    string `json:"email" validate:"notblank"`
	Password string `json:"password" validate:"notblank"`
}

// Authenticator runs the mocked login and signup flows against a Store.
// There is no real identity check: any password of MinPasswordLength or
// more is accepted and the username is the email's local part.
type Authenticator struct {
	store *Store
	delay time.Duration
}

// NewAuthenticator creates an Authenticator that waits delay before
// resolving each attempt, simulating a backend round trip.
func NewAuthenticator(store *Store, delay time.Duration) *Authenticator {
	return &Authenticator{store: store, delay: delay}
}

// Login validates the input, then drives LoginStart and LoginSuccess or
// LoginFailure.
func (a *Authenticator) Login(ctx context.Context, c Credentials) (User, error) {
	return a.run(ctx, c, a.store.LoginStart, a.store.LoginSuccess, a.store.LoginFailure, msgInvalidLogin)
}

// Signup is Login for new accounts.
func (a *Authenticator) Signup(ctx context.Context, c Credentials) (User, error) {
	return a.run(ctx, c, a.store.SignupStart, a.store.SignupSuccess, a.store.SignupFailure, msgInvalidSignup)
}

func (a *Authenticator) run(
	ctx context.Context,
	c Credentials,
	start func(),
	succeed func(User),
	fail func(string),
	failMsg string,
) (User, error) {
	if err := validation.Struct(c); err != nil {
		return User{}, err
	}

	start()

	if a.delay > 0 {
		timer := time.NewTimer(a.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			fail(ctx.Err().Error())
			return User{}, ctx.Err()
		case <-timer.C:
		}
	}

	if len(c.Password) < MinPasswordLength {
		fail(failMsg)
		return User{}, ErrInvalidCredentials
	}

	u := User{Username: UsernameFromEmail(c.Email), Email: c.Email}
	succeed(u)
	log.Printf("INFO: session: %s authenticated", u.Username)
	return u, nil
}

// UsernameFromEmail returns the part of email before the first "@", or the
// whole string when there is none.
func UsernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
