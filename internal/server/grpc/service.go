package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/clinicauth/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const authServiceName = "clinicauth.AuthService"

// Full method names of AuthService.
const (
	MethodLoginUser   = "/" + authServiceName + "/LoginUser"
	MethodLoginAdmin  = "/" + authServiceName + "/LoginAdmin"
	MethodWhoAmI      = "/" + authServiceName + "/WhoAmI"
	MethodWhoAmIAdmin = "/" + authServiceName + "/WhoAmIAdmin"

	MethodSetUserPassword       = "/" + authServiceName + "/SetUserPassword"
	MethodResetUserPassword     = "/" + authServiceName + "/ResetUserPassword"
	MethodAssignUserCredentials = "/" + authServiceName + "/AssignUserCredentials"
	MethodSetUserFlag           = "/" + authServiceName + "/SetUserFlag"
	MethodSetAdminPassword      = "/" + authServiceName + "/SetAdminPassword"
	MethodSetAdminFlag          = "/" + authServiceName + "/SetAdminFlag"
)

// DefaultPolicy leaves the login methods public. WhoAmI needs a user; every
// other method needs an admin user.
var DefaultPolicy = Policy{
	MethodWhoAmI:                KindUser,
	MethodWhoAmIAdmin:           KindAdmin,
	MethodSetUserPassword:       KindAdmin,
	MethodResetUserPassword:     KindAdmin,
	MethodAssignUserCredentials: KindAdmin,
	MethodSetUserFlag:           KindAdmin,
	MethodSetAdminPassword:      KindAdmin,
	MethodSetAdminFlag:          KindAdmin,
}

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type WhoAmIRequest struct{}

type PrincipalResponse struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	FullName  string `json:"full_name,omitempty"`
	Superuser bool   `json:"superuser,omitempty"`
}

// Accounts issues tokens for the login methods and carries out the account
// management methods.
type Accounts interface {
	LoginUser(ctx context.Context, login, password string) (string, error)
	LoginAdmin(ctx context.Context, mobile, password string) (string, error)

	SetUserPassword(ctx context.Context, login, password string) error
	SetUserRandomPassword(ctx context.Context, login string) (string, error)
	AssignUserCredentials(ctx context.Context, id int64, login, password string) error
	SetUserActive(ctx context.Context, login string, active bool) error
	SetUserVerified(ctx context.Context, login string, verified bool) error

	SetAdminPassword(ctx context.Context, mobile, password string) error
	SetAdminActive(ctx context.Context, mobile string, active bool) error
	SetAdminVerified(ctx context.Context, mobile string, verified bool) error
	SetAdminSuperuser(ctx context.Context, mobile string, superuser bool) error
	TouchAdminVisit(ctx context.Context, mobile string) error
}

// AuthServiceServer is the server API of AuthService.
type AuthServiceServer interface {
	LoginUser(context.Context, *LoginRequest) (*LoginResponse, error)
	LoginAdmin(context.Context, *LoginRequest) (*LoginResponse, error)
	WhoAmI(context.Context, *WhoAmIRequest) (*PrincipalResponse, error)
	WhoAmIAdmin(context.Context, *WhoAmIRequest) (*PrincipalResponse, error)

	SetUserPassword(context.Context, *SetPasswordRequest) (*Empty, error)
	ResetUserPassword(context.Context, *ResetPasswordRequest) (*ResetPasswordResponse, error)
	AssignUserCredentials(context.Context, *AssignCredentialsRequest) (*Empty, error)
	SetUserFlag(context.Context, *SetFlagRequest) (*Empty, error)
	SetAdminPassword(context.Context, *SetPasswordRequest) (*Empty, error)
	SetAdminFlag(context.Context, *SetFlagRequest) (*Empty, error)
}

func (s *GRPCServer) LoginUser(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	token, err := s.accounts.LoginUser(ctx, req.Login, req.Password)
	if err != nil {
		return nil, s.loginStatus(ctx, err)
	}
	return &LoginResponse{Token: token}, nil
}

func (s *GRPCServer) LoginAdmin(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	token, err := s.accounts.LoginAdmin(ctx, req.Login, req.Password)
	if err != nil {
		return nil, s.loginStatus(ctx, err)
	}
	return &LoginResponse{Token: token}, nil
}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *WhoAmIRequest) (*PrincipalResponse, error) {
	u, ok := UserFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}
	return &PrincipalResponse{ID: u.ID, Login: u.LoginPhoneNumber, FullName: u.FullName()}, nil
}

func (s *GRPCServer) WhoAmIAdmin(ctx context.Context, _ *WhoAmIRequest) (*PrincipalResponse, error) {
	a, ok := AdminFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}
	return &PrincipalResponse{ID: a.ID, Login: a.Mobile, Superuser: a.IsSuperuser}, nil
}

func (s *GRPCServer) loginStatus(ctx context.Context, err error) error {
	if errors.Is(err, common.ErrorUnauthorized) {
		return status.Error(codes.Unauthenticated, "unauthorized")
	}
	s.logger.Error(ctx, "login failed", "error", err.Error())
	return status.Error(codes.Internal, "internal error")
}

func unaryHandler[Req any, Resp any](method string, call func(AuthServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AuthServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AuthServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var authServiceDesc = grpc.ServiceDesc{
	ServiceName: authServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "LoginUser", Handler: unaryHandler(MethodLoginUser, AuthServiceServer.LoginUser)},
		{MethodName: "LoginAdmin", Handler: unaryHandler(MethodLoginAdmin, AuthServiceServer.LoginAdmin)},
		{MethodName: "WhoAmI", Handler: unaryHandler(MethodWhoAmI, AuthServiceServer.WhoAmI)},
		{MethodName: "WhoAmIAdmin", Handler: unaryHandler(MethodWhoAmIAdmin, AuthServiceServer.WhoAmIAdmin)},
		{MethodName: "SetUserPassword", Handler: unaryHandler(MethodSetUserPassword, AuthServiceServer.SetUserPassword)},
		{MethodName: "ResetUserPassword", Handler: unaryHandler(MethodResetUserPassword, AuthServiceServer.ResetUserPassword)},
		{MethodName: "AssignUserCredentials", Handler: unaryHandler(MethodAssignUserCredentials, AuthServiceServer.AssignUserCredentials)},
		{MethodName: "SetUserFlag", Handler: unaryHandler(MethodSetUserFlag, AuthServiceServer.SetUserFlag)},
		{MethodName: "SetAdminPassword", Handler: unaryHandler(MethodSetAdminPassword, AuthServiceServer.SetAdminPassword)},
		{MethodName: "SetAdminFlag", Handler: unaryHandler(MethodSetAdminFlag, AuthServiceServer.SetAdminFlag)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "clinicauth/auth",
}
