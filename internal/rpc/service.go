// Package rpc exposes comparisons and player records over gRPC.
//
// Messages are google.protobuf.Struct values carrying the same JSON shapes as
// the HTTP API, so the service needs no generated code.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "hoopstats.v1.StatsService"

// Full method names.
const (
	CompareMethod        = "/" + ServiceName + "/Compare"
	GetPlayerStatsMethod = "/" + ServiceName + "/GetPlayerStats"
)

// StatsServiceServer is the server API for StatsService.
type StatsServiceServer interface {
	Compare(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPlayerStats(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterStatsServiceServer registers srv on s.
func RegisterStatsServiceServer(s grpc.ServiceRegistrar, srv StatsServiceServer) {
	s.RegisterService(&StatsServiceDesc, srv)
}

// StatsServiceDesc describes StatsService for grpc.Server.
var StatsServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StatsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Compare", Handler: compareHandler},
		{MethodName: "GetPlayerStats", Handler: getPlayerStatsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hoopstats/v1/stats.proto",
}

func compareHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StatsServiceServer).Compare(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CompareMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(StatsServiceServer).Compare(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func getPlayerStatsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StatsServiceServer).GetPlayerStats(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetPlayerStatsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(StatsServiceServer).GetPlayerStats(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// StatsServiceClient calls StatsService.
type StatsServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewStatsServiceClient wraps a client connection.
func NewStatsServiceClient(cc grpc.ClientConnInterface) *StatsServiceClient {
	return &StatsServiceClient{cc: cc}
}

// Compare invokes StatsService.Compare.
func (c *StatsServiceClient) Compare(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, CompareMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPlayerStats invokes StatsService.GetPlayerStats.
func (c *StatsServiceClient) GetPlayerStats(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetPlayerStatsMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
