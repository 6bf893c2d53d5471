package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/clinicauth/internal/common"
	"github.com/dmitrijs2005/clinicauth/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

// fakeAccounts records management calls as "Method:login[:value]".
type fakeAccounts struct {
	err      error
	visitErr error

	mu     sync.Mutex
	calls  []string
	visits []string
}

func (f *fakeAccounts) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeAccounts) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAccounts) LoginUser(_ context.Context, login, password string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if login == "+71234567890" && password == "s3cret" {
		return "user-token", nil
	}
	return "", common.ErrorUnauthorized
}

func (f *fakeAccounts) LoginAdmin(_ context.Context, mobile, password string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if mobile == "+70000000001" && password == "root" {
		return "admin-token", nil
	}
	return "", common.ErrorUnauthorized
}

func (f *fakeAccounts) SetUserPassword(_ context.Context, login, password string) error {
	return f.record("SetUserPassword:" + login + ":" + password)
}

func (f *fakeAccounts) SetUserRandomPassword(_ context.Context, login string) (string, error) {
	if err := f.record("SetUserRandomPassword:" + login); err != nil {
		return "", err
	}
	return "0a1b2c3d4e", nil
}

func (f *fakeAccounts) AssignUserCredentials(_ context.Context, id int64, login, password string) error {
	return f.record(fmt.Sprintf("AssignUserCredentials:%d:%s:%s", id, login, password))
}

func (f *fakeAccounts) SetUserActive(_ context.Context, login string, v bool) error {
	return f.record(fmt.Sprintf("SetUserActive:%s:%t", login, v))
}

func (f *fakeAccounts) SetUserVerified(_ context.Context, login string, v bool) error {
	return f.record(fmt.Sprintf("SetUserVerified:%s:%t", login, v))
}

func (f *fakeAccounts) SetAdminPassword(_ context.Context, mobile, password string) error {
	return f.record("SetAdminPassword:" + mobile + ":" + password)
}

func (f *fakeAccounts) SetAdminActive(_ context.Context, mobile string, v bool) error {
	return f.record(fmt.Sprintf("SetAdminActive:%s:%t", mobile, v))
}

func (f *fakeAccounts) SetAdminVerified(_ context.Context, mobile string, v bool) error {
	return f.record(fmt.Sprintf("SetAdminVerified:%s:%t", mobile, v))
}

func (f *fakeAccounts) SetAdminSuperuser(_ context.Context, mobile string, v bool) error {
	return f.record(fmt.Sprintf("SetAdminSuperuser:%s:%t", mobile, v))
}

func (f *fakeAccounts) TouchAdminVisit(_ context.Context, mobile string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visits = append(f.visits, mobile)
	return f.visitErr
}

func startBufServer(t *testing.T, acc Accounts) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	s := NewGRPCServer("", nopLogger{}, &fakePrincipals{err: common.ErrorNotFound}, acc, DefaultPolicy)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		<-done
	})
	return conn
}

func invoke[Resp any](ctx context.Context, conn *grpc.ClientConn, method string, req any) (*Resp, error) {
	out := new(Resp)
	err := conn.Invoke(ctx, method, req, out, grpc.CallContentSubtype(codecName))
	return out, err
}

func TestAuthService_EndToEnd(t *testing.T) {
	conn := startBufServer(t, &fakeAccounts{})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	login, err := invoke[LoginResponse](ctx, conn, MethodLoginUser, &LoginRequest{Login: "+71234567890", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "user-token", login.Token)

	authed := metadata.AppendToOutgoingContext(ctx, common.AuthTokenHeaderName, common.BearerPrefix+login.Token)
	me, err := invoke[PrincipalResponse](authed, conn, MethodWhoAmI, &WhoAmIRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), me.ID)
	assert.Equal(t, "+71234567890", me.Login)

	_, err = invoke[PrincipalResponse](authed, conn, MethodWhoAmIAdmin, &WhoAmIRequest{})
	assert.Equal(t, codes.NotFound, status.Code(err), "user token on admin method")

	_, err = invoke[PrincipalResponse](ctx, conn, MethodWhoAmI, &WhoAmIRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = invoke[LoginResponse](ctx, conn, MethodLoginAdmin, &LoginRequest{Login: "+70000000001", Password: "nope"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	admin, err := invoke[LoginResponse](ctx, conn, MethodLoginAdmin, &LoginRequest{Login: "+70000000001", Password: "root"})
	require.NoError(t, err)

	adminCtx := metadata.AppendToOutgoingContext(ctx, common.AuthTokenHeaderName, admin.Token)
	who, err := invoke[PrincipalResponse](adminCtx, conn, MethodWhoAmIAdmin, &WhoAmIRequest{})
	require.NoError(t, err)
	assert.Equal(t, "+70000000001", who.Login)
}

func TestAuthService_LoginStorageError(t *testing.T) {
	conn := startBufServer(t, &fakeAccounts{err: common.ErrorStorage})

	_, err := invoke[LoginResponse](context.Background(), conn, MethodLoginUser, &LoginRequest{Login: "a", Password: "b"})
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestHealth_Serving(t *testing.T) {
	conn := startBufServer(t, &fakeAccounts{})

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: authServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:0", nopLogger{}, &fakePrincipals{}, &fakeAccounts{}, DefaultPolicy)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err, "Run returned error on graceful stop")
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", nopLogger{}, &fakePrincipals{}, &fakeAccounts{}, DefaultPolicy)

	err := srv.Run(context.Background())
	assert.Error(t, err)
}
