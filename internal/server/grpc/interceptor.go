package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/clinicauth/internal/common"
	"github.com/dmitrijs2005/clinicauth/internal/logging"
	"github.com/dmitrijs2005/clinicauth/internal/server/models"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Kind is the principal kind a protected method requires.
type Kind int

const (
	KindUser Kind = iota + 1
	KindAdmin
)

// Policy maps full gRPC method names to the principal kind they require.
// Methods not listed are public.
type Policy map[string]Kind

// Principals resolves bearer tokens into accounts.
type Principals interface {
	ResolveUserByToken(ctx context.Context, token string) (*models.User, error)
	ResolveAdminByToken(ctx context.Context, token string) (*models.AdminUser, error)
}

const requestIDHeaderName = "x-request-id"

type ctxKey string

const (
	userKey      ctxKey = "user"
	adminKey     ctxKey = "admin"
	requestIDKey ctxKey = "request_id"
)

// UserFromContext returns the user resolved for a KindUser method.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok
}

// AdminFromContext returns the admin user resolved for a KindAdmin method.
func AdminFromContext(ctx context.Context) (*models.AdminUser, bool) {
	a, ok := ctx.Value(adminKey).(*models.AdminUser)
	return a, ok
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func (s *GRPCServer) unaryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	ctx, err := s.authenticate(ctx, info.FullMethod)
	if err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

type authenticatedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *authenticatedStream) Context() context.Context { return w.ctx }

func (s *GRPCServer) streamInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	ctx, err := s.authenticate(ss.Context(), info.FullMethod)
	if err != nil {
		return err
	}
	return handler(srv, &authenticatedStream{ServerStream: ss, ctx: ctx})
}

// authenticate tags ctx with a request id and, for methods in the policy,
// resolves the bearer token into the required principal.
func (s *GRPCServer) authenticate(ctx context.Context, method string) (context.Context, error) {
	md, _ := metadata.FromIncomingContext(ctx)

	requestID := firstValue(md, requestIDHeaderName)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	ctx = logging.ContextWith(ctx, "request_id", requestID)

	kind, protected := s.policy[method]
	if !protected {
		return ctx, nil
	}

	log := s.logger.With("method", method)

	token := bearerToken(firstValue(md, common.AuthTokenHeaderName))
	if token == "" {
		log.Info(ctx, "token rejected", "reason", "missing")
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	switch kind {
	case KindAdmin:
		admin, err := s.principals.ResolveAdminByToken(ctx, token)
		if err != nil {
			return nil, rejection(ctx, log, err)
		}
		s.recordVisit(ctx, log, admin.Mobile)
		return context.WithValue(ctx, adminKey, admin), nil
	default:
		user, err := s.principals.ResolveUserByToken(ctx, token)
		if err != nil {
			return nil, rejection(ctx, log, err)
		}
		return context.WithValue(ctx, userKey, user), nil
	}
}

// recordVisit stamps last_visit for an authenticated admin. A failed stamp
// is logged and does not fail the request.
func (s *GRPCServer) recordVisit(ctx context.Context, log logging.Logger, mobile string) {
	if s.accounts == nil {
		return
	}
	if err := s.accounts.TouchAdminVisit(ctx, mobile); err != nil {
		log.Warn(ctx, "last visit not recorded", "error", err.Error())
	}
}

// rejection converts a resolver error into a gRPC status.
func rejection(ctx context.Context, log logging.Logger, err error) error {
	switch {
	case errors.Is(err, common.ErrInvalidToken):
		log.Info(ctx, "token rejected", "reason", "invalid")
		return status.Error(codes.Unauthenticated, "invalid token")
	case errors.Is(err, common.ErrorUnauthorized):
		log.Info(ctx, "token rejected", "reason", "password_mismatch")
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrorNotFound):
		log.Info(ctx, "token rejected", "reason", "not_found")
		return status.Error(codes.NotFound, "account not found")
	default:
		log.Error(ctx, "principal lookup failed", "error", err.Error())
		return status.Error(codes.Internal, "internal error")
	}
}

func firstValue(md metadata.MD, key string) string {
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

func bearerToken(v string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(v), common.BearerPrefix))
}
