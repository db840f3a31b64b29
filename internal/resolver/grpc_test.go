package resolver_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/intelliot/payid-core/internal/resolver"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// startGRPC serves svc on a loopback listener and returns a connected client.
func startGRPC(t *testing.T, cfg resolver.Config) *grpc.ClientConn {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(resolver.LoggingInterceptor(zap.NewNop())))
	resolver.RegisterGRPC(srv, newTestService(t, cfg))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestGRPC_Resolve(t *testing.T) {
	srv, _ := stubPayIDHost(t, map[string]string{"alice": "rAlice"})
	conn := startGRPC(t, resolver.Config{AllowInsecureHTTP: true})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	in := mustStruct(t, map[string]any{
		"payid":    "alice$" + srv.Listener.Addr().String(),
		"network":  "xrpl-mainnet",
		"insecure": true,
	})
	out := new(structpb.Struct)
	if err := conn.Invoke(ctx, resolver.ResolveMethod, in, out); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	fields := out.GetFields()
	if got := fields["addressDetailsType"].GetStringValue(); got != "CryptoAddressDetails" {
		t.Errorf("addressDetailsType: got %q", got)
	}
	if got := fields["addressDetails"].GetStructValue().GetFields()["address"].GetStringValue(); got != "rAlice" {
		t.Errorf("address: got %q", got)
	}
	if !fields["usedInsecureHttp"].GetBoolValue() {
		t.Error("usedInsecureHttp should be true")
	}
	if got := fields["network"].GetStringValue(); got != "application/xrpl-mainnet+json" {
		t.Errorf("server field not passed through: %q", got)
	}
}

func TestGRPC_Resolve_errorCodes(t *testing.T) {
	srv, _ := stubPayIDHost(t, map[string]string{})
	host := srv.Listener.Addr().String()

	cases := []struct {
		name string
		cfg  resolver.Config
		in   map[string]any
		code codes.Code
	}{
		{"invalid payid", resolver.Config{}, map[string]any{"payid": "nope"}, codes.InvalidArgument},
		{"insecure disabled", resolver.Config{}, map[string]any{"payid": "a$" + host, "insecure": true}, codes.PermissionDenied},
		{"not found", resolver.Config{AllowInsecureHTTP: true}, map[string]any{"payid": "a$" + host, "insecure": true}, codes.NotFound},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			conn := startGRPC(t, tc.cfg)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			err := conn.Invoke(ctx, resolver.ResolveMethod, mustStruct(t, tc.in), new(structpb.Struct))
			if got := status.Code(err); got != tc.code {
				t.Errorf("code: got %v, want %v (err=%v)", got, tc.code, err)
			}
		})
	}
}

func TestGRPC_Validate(t *testing.T) {
	conn := startGRPC(t, resolver.Config{})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out := new(structpb.Struct)
	in := mustStruct(t, map[string]any{"payid": "alice$example.com"})
	if err := conn.Invoke(ctx, resolver.ValidateMethod, in, out); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	fields := out.GetFields()
	if !fields["valid"].GetBoolValue() {
		t.Error("expected valid")
	}
	if fields["host"].GetStringValue() != "example.com" || fields["path"].GetStringValue() != "/alice" {
		t.Errorf("components: %v", fields)
	}

	out = new(structpb.Struct)
	in = mustStruct(t, map[string]any{"payid": "alice$"})
	if err := conn.Invoke(ctx, resolver.ValidateMethod, in, out); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if out.GetFields()["valid"].GetBoolValue() {
		t.Error("expected invalid")
	}
}
