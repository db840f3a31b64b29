package resolver

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// GRPCServiceName is the fully-qualified gRPC service name.
const GRPCServiceName = "payid.resolver.v1.ResolverService"

// Full method names, for clients calling through grpc.ClientConn.Invoke.
const (
	ResolveMethod  = "/" + GRPCServiceName + "/Resolve"
	ValidateMethod = "/" + GRPCServiceName + "/Validate"
)

// ResolverServer is the gRPC surface of the resolver. Messages are
// google.protobuf.Struct so no generated stubs are needed.
//
// Resolve request fields: payid (string), network (string), insecure (bool).
// Validate request fields: payid (string).
type ResolverServer interface {
	Resolve(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Validate(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the resolver gRPC service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: GRPCServiceName,
	HandlerType: (*ResolverServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Resolve", Handler: unaryHandler(ResolveMethod, ResolverServer.Resolve)},
		{MethodName: "Validate", Handler: unaryHandler(ValidateMethod, ResolverServer.Validate)},
	},
	Streams: []grpc.StreamDesc{},
}

type structMethod func(ResolverServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call structMethod) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ResolverServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ResolverServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// RegisterGRPC registers svc on s.
func RegisterGRPC(s grpc.ServiceRegistrar, svc *Service) {
	s.RegisterService(&ServiceDesc, &grpcServer{svc: svc})
}

type grpcServer struct {
	svc *Service
}

func (g *grpcServer) Resolve(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	fields := in.GetFields()
	info, err := g.svc.Resolve(ctx, Request{
		PayID:    fields["payid"].GetStringValue(),
		Network:  fields["network"].GetStringValue(),
		Insecure: fields["insecure"].GetBoolValue(),
	})
	if err != nil {
		return nil, status.Error(grpcCode(err), err.Error())
	}

	// Round-trip through JSON so every server field survives.
	raw, err := json.Marshal(info)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode payment information: %v", err)
	}
	out := new(structpb.Struct)
	if err := out.UnmarshalJSON(raw); err != nil {
		return nil, status.Errorf(codes.Internal, "encode payment information: %v", err)
	}
	return out, nil
}

func (g *grpcServer) Validate(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	payID := in.GetFields()["payid"].GetStringValue()
	comps, ok := g.svc.Validate(payID)
	return structpb.NewStruct(map[string]any{
		"payid": payID,
		"valid": ok,
		"host":  comps.Host,
		"path":  comps.Path,
	})
}

// LoggingInterceptor returns a gRPC unary server interceptor that logs each call.
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("grpc",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("latency", time.Since(start)),
		)
		return resp, err
	}
}
