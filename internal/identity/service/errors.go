package service

// Kind classifies an AuthService failure. Its string form is the stable code sent to callers.
type Kind string

const (
	KindInvalidRequest     Kind = "INVALID_REQUEST"
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"
	KindInvalidSession     Kind = "INVALID_SESSION"
	KindTokenInvalid       Kind = "TOKEN_INVALID"
	KindTokenExpired       Kind = "TOKEN_EXPIRED"
	KindInternal           Kind = "INTERNAL"
)

// Error is the only error type returned by AuthService. Message is safe to show to
// the caller; underlying causes are logged at the point of translation and dropped.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is reports whether target is an *Error of the same Kind. A target with a
// message must also match the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Sentinels for errors.Is checks by kind.
var (
	ErrInvalidRequest     = &Error{Kind: KindInvalidRequest}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
	ErrInvalidSession     = &Error{Kind: KindInvalidSession}
	ErrTokenInvalid       = &Error{Kind: KindTokenInvalid}
	ErrTokenExpired       = &Error{Kind: KindTokenExpired}
	ErrInternal           = &Error{Kind: KindInternal}
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgEmailExists        = "email already exists"
	msgBadRequest         = "bad request"
	msgInvalidSession     = "invalid session"
	msgTokenInvalid       = "invalid token"
	msgTokenExpired       = "token expired"
	msgInternal           = "internal error"
)

func invalidRequest(msg string) *Error { return &Error{Kind: KindInvalidRequest, Message: msg} }

// invalidCredentials is shared by the unknown-email and wrong-password paths.
func invalidCredentials() *Error {
	return &Error{Kind: KindInvalidCredentials, Message: msgInvalidCredentials}
}

func invalidSession() *Error { return &Error{Kind: KindInvalidSession, Message: msgInvalidSession} }

func internalError() *Error { return &Error{Kind: KindInternal, Message: msgInternal} }
