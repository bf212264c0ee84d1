package handler

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	authv1 "auth-service/api/auth/v1"
	"auth-service/internal/identity/service"
	"auth-service/internal/server/interceptors"
	userdomain "auth-service/internal/user/domain"
)

// ErrorKindTrailer is the trailer key carrying the service.Kind of a failed call.
const ErrorKindTrailer = "x-auth-error"

// AuthService is the session engine the handler delegates to.
type AuthService interface {
	Register(ctx context.Context, req service.SignUpRequest) (*service.RegisterResult, error)
	Login(ctx context.Context, req service.SignInRequest) (*service.Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*service.TokenPair, error)
	VerifySession(ctx context.Context, accessToken string) (*userdomain.PublicUser, error)
	Logout(ctx context.Context, accessToken string) error
}

// AuthServer implements auth.v1.AuthService on top of the session engine.
type AuthServer struct {
	authv1.UnimplementedAuthServiceServer
	auth AuthService
}

// NewAuthServer returns a new Auth gRPC server. auth may be nil; then all RPCs return Unimplemented.
func NewAuthServer(auth AuthService) *AuthServer {
	return &AuthServer{auth: auth}
}

// CreateUser registers a user and returns its public view.
func (s *AuthServer) CreateUser(ctx context.Context, req *authv1.SignUpRequest) (*authv1.CreateUserResponse, error) {
	if s.auth == nil {
		return nil, status.Error(codes.Unimplemented, "method CreateUser not implemented")
	}
	res, err := s.auth.Register(ctx, service.SignUpRequest{
		Username: req.GetUsername(),
		Email:    req.GetEmail(),
		Password: req.GetPassword(),
		Roles:    req.GetRoles(),
	})
	if err != nil {
		return nil, authErrToStatus(ctx, err)
	}
	return &authv1.CreateUserResponse{User: publicUserToProto(res.User)}, nil
}

// LoginUser checks credentials and returns the user with a new token pair.
func (s *AuthServer) LoginUser(ctx context.Context, req *authv1.SignInRequest) (*authv1.Session, error) {
	if s.auth == nil {
		return nil, status.Error(codes.Unimplemented, "method LoginUser not implemented")
	}
	sess, err := s.auth.Login(ctx, service.SignInRequest{Email: req.GetEmail(), Password: req.GetPassword()})
	if err != nil {
		return nil, authErrToStatus(ctx, err)
	}
	return &authv1.Session{
		User:  publicUserToProto(sess.User),
		Token: tokenPairToProto(sess.Token),
	}, nil
}

// VerifySession returns the user owning the access token. The token comes from the
// request or, when absent there, from the Bearer authorization metadata.
func (s *AuthServer) VerifySession(ctx context.Context, req *authv1.VerifySessionRequest) (*authv1.PublicUser, error) {
	if s.auth == nil {
		return nil, status.Error(codes.Unimplemented, "method VerifySession not implemented")
	}
	u, err := s.auth.VerifySession(ctx, accessToken(ctx, req.GetAccessToken()))
	if err != nil {
		return nil, authErrToStatus(ctx, err)
	}
	return publicUserToProto(*u), nil
}

// RefreshSession rotates the session and returns a new token pair.
func (s *AuthServer) RefreshSession(ctx context.Context, req *authv1.RefreshSessionRequest) (*authv1.TokenPair, error) {
	if s.auth == nil {
		return nil, status.Error(codes.Unimplemented, "method RefreshSession not implemented")
	}
	pair, err := s.auth.RefreshSession(ctx, req.GetRefreshToken())
	if err != nil {
		return nil, authErrToStatus(ctx, err)
	}
	return tokenPairToProto(*pair), nil
}

// Logout ends the session of the access token (request field or Bearer metadata).
func (s *AuthServer) Logout(ctx context.Context, req *authv1.LogoutRequest) (*authv1.LogoutResponse, error) {
	if s.auth == nil {
		return nil, status.Error(codes.Unimplemented, "method Logout not implemented")
	}
	if err := s.auth.Logout(ctx, accessToken(ctx, req.GetAccessToken())); err != nil {
		return nil, authErrToStatus(ctx, err)
	}
	return &authv1.LogoutResponse{}, nil
}

func accessToken(ctx context.Context, fromRequest string) string {
	if fromRequest != "" {
		return fromRequest
	}
	tok, _ := interceptors.GetBearerToken(ctx)
	return tok
}

// authErrToStatus maps a service error to a gRPC status with its safe message and
// attaches the error kind as a trailer.
func authErrToStatus(ctx context.Context, err error) error {
	var e *service.Error
	if !errors.As(err, &e) {
		return status.Error(codes.Internal, "internal error")
	}
	_ = grpc.SetTrailer(ctx, metadata.Pairs(ErrorKindTrailer, string(e.Kind)))
	return status.Error(kindToCode(e.Kind), e.Error())
}

func kindToCode(k service.Kind) codes.Code {
	switch k {
	case service.KindInvalidRequest:
		return codes.InvalidArgument
	case service.KindInvalidCredentials, service.KindInvalidSession, service.KindTokenInvalid, service.KindTokenExpired:
		return codes.Unauthenticated
	default:
		return codes.Internal
	}
}

func publicUserToProto(u userdomain.PublicUser) *authv1.PublicUser {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return &authv1.PublicUser{Id: u.ID, Username: u.Username, Email: u.Email, Roles: roles}
}

func tokenPairToProto(p service.TokenPair) *authv1.TokenPair {
	return &authv1.TokenPair{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken, ExpiresIn: p.ExpiresIn}
}
