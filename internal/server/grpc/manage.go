package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/clinicauth/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Flag names accepted by SetUserFlag and SetAdminFlag.
const (
	FlagActive    = "active"
	FlagVerified  = "verified"
	FlagSuperuser = "superuser"
)

type Empty struct{}

type SetPasswordRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type ResetPasswordRequest struct {
	Login string `json:"login"`
}

type ResetPasswordResponse struct {
	Password string `json:"password"`
}

type AssignCredentialsRequest struct {
	ID       int64  `json:"id"`
	Login    string `json:"login"`
	Password string `json:"password"`
}

type SetFlagRequest struct {
	Login string `json:"login"`
	Flag  string `json:"flag"`
	Value bool   `json:"value"`
}

func (s *GRPCServer) SetUserPassword(ctx context.Context, req *SetPasswordRequest) (*Empty, error) {
	if err := s.accounts.SetUserPassword(ctx, req.Login, req.Password); err != nil {
		return nil, s.manageStatus(ctx, err)
	}
	return &Empty{}, nil
}

func (s *GRPCServer) ResetUserPassword(ctx context.Context, req *ResetPasswordRequest) (*ResetPasswordResponse, error) {
	password, err := s.accounts.SetUserRandomPassword(ctx, req.Login)
	if err != nil {
		return nil, s.manageStatus(ctx, err)
	}
	return &ResetPasswordResponse{Password: password}, nil
}

func (s *GRPCServer) AssignUserCredentials(ctx context.Context, req *AssignCredentialsRequest) (*Empty, error) {
	if err := s.accounts.AssignUserCredentials(ctx, req.ID, req.Login, req.Password); err != nil {
		return nil, s.manageStatus(ctx, err)
	}
	return &Empty{}, nil
}

func (s *GRPCServer) SetUserFlag(ctx context.Context, req *SetFlagRequest) (*Empty, error) {
	var err error
	switch req.Flag {
	case FlagActive:
		err = s.accounts.SetUserActive(ctx, req.Login, req.Value)
	case FlagVerified:
		err = s.accounts.SetUserVerified(ctx, req.Login, req.Value)
	default:
		return nil, status.Errorf(codes.InvalidArgument, "unknown user flag %q", req.Flag)
	}
	if err != nil {
		return nil, s.manageStatus(ctx, err)
	}
	return &Empty{}, nil
}

// SetAdminPassword and SetAdminFlag change other admin accounts and are
// limited to superusers.
func (s *GRPCServer) SetAdminPassword(ctx context.Context, req *SetPasswordRequest) (*Empty, error) {
	if err := requireSuperuser(ctx); err != nil {
		return nil, err
	}
	if err := s.accounts.SetAdminPassword(ctx, req.Login, req.Password); err != nil {
		return nil, s.manageStatus(ctx, err)
	}
	return &Empty{}, nil
}

func (s *GRPCServer) SetAdminFlag(ctx context.Context, req *SetFlagRequest) (*Empty, error) {
	if err := requireSuperuser(ctx); err != nil {
		return nil, err
	}

	var err error
	switch req.Flag {
	case FlagActive:
		err = s.accounts.SetAdminActive(ctx, req.Login, req.Value)
	case FlagVerified:
		err = s.accounts.SetAdminVerified(ctx, req.Login, req.Value)
	case FlagSuperuser:
		err = s.accounts.SetAdminSuperuser(ctx, req.Login, req.Value)
	default:
		return nil, status.Errorf(codes.InvalidArgument, "unknown admin flag %q", req.Flag)
	}
	if err != nil {
		return nil, s.manageStatus(ctx, err)
	}
	return &Empty{}, nil
}

func requireSuperuser(ctx context.Context) error {
	a, ok := AdminFromContext(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "unauthorized")
	}
	if !a.IsSuperuser {
		return status.Error(codes.PermissionDenied, "superuser required")
	}
	return nil
}

func (s *GRPCServer) manageStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "account not found")
	case errors.Is(err, common.ErrorEmptyPassword):
		return status.Error(codes.InvalidArgument, "password is empty")
	case errors.Is(err, common.ErrorLoginTaken):
		return status.Error(codes.AlreadyExists, "login is taken")
	default:
		s.logger.Error(ctx, "account update failed", "error", err.Error())
		return status.Error(codes.Internal, "internal error")
	}
}
