// Package authv1 defines the auth.v1.AuthService wire contract: request and
// response messages, the JSON codec they travel in, the service descriptor and a client.
package authv1

// PublicUser is the outward view of a user.
type PublicUser struct {
	Id       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// TokenPair carries a session's tokens. ExpiresIn is the access token expiry in Unix milliseconds.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type SignUpRequest struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Roles    []string `json:"roles,omitempty"`
}

type CreateUserResponse struct {
	User *PublicUser `json:"user"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the LoginUser response.
type Session struct {
	User  *PublicUser `json:"user"`
	Token *TokenPair  `json:"token"`
}

// VerifySessionRequest names the access token to verify. When AccessToken is empty
// the server falls back to the authorization Bearer metadata.
type VerifySessionRequest struct {
	AccessToken string `json:"accessToken,omitempty"`
}

type RefreshSessionRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// LogoutRequest names the access token whose session ends. Same fallback as VerifySessionRequest.
type LogoutRequest struct {
	AccessToken string `json:"accessToken,omitempty"`
}

type LogoutResponse struct{}

func (x *SignUpRequest) GetUsername() string {
	if x == nil {
		return ""
	}
	return x.Username
}

func (x *SignUpRequest) GetEmail() string {
	if x == nil {
		return ""
	}
	return x.Email
}

func (x *SignUpRequest) GetPassword() string {
	if x == nil {
		return ""
	}
	return x.Password
}

func (x *SignUpRequest) GetRoles() []string {
	if x == nil {
		return nil
	}
	return x.Roles
}

func (x *SignInRequest) GetEmail() string {
	if x == nil {
		return ""
	}
	return x.Email
}

func (x *SignInRequest) GetPassword() string {
	if x == nil {
		return ""
	}
	return x.Password
}

func (x *VerifySessionRequest) GetAccessToken() string {
	if x == nil {
		return ""
	}
	return x.AccessToken
}

func (x *RefreshSessionRequest) GetRefreshToken() string {
	if x == nil {
		return ""
	}
	return x.RefreshToken
}

func (x *LogoutRequest) GetAccessToken() string {
	if x == nil {
		return ""
	}
	return x.AccessToken
}
