package psod

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// The swarm.v1.SwarmService messages are google.protobuf.Struct documents
// with the same field names as the HTTP API:
//
//	CreateRun {run_id?, params? | params_yaml?} -> {run, params}
//	StartRun  {run_id}                          -> {run}
//	StopRun   {run_id}                          -> {run}
//	GetRun    {run_id}                          -> {run, params}
//	ListRuns  {limit?, offset?, status?}        -> {runs}

const swarmServiceName = "swarm.v1.SwarmService"

// SwarmServiceServer is the server API for swarm.v1.SwarmService.
type SwarmServiceServer interface {
	CreateRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StartRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StopRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRuns(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(SwarmServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SwarmServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + swarmServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(SwarmServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// SwarmServiceDesc describes swarm.v1.SwarmService for grpc.Server.
var SwarmServiceDesc = grpc.ServiceDesc{
	ServiceName: swarmServiceName,
	HandlerType: (*SwarmServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("CreateRun", SwarmServiceServer.CreateRun),
		unaryHandler("StartRun", SwarmServiceServer.StartRun),
		unaryHandler("StopRun", SwarmServiceServer.StopRun),
		unaryHandler("GetRun", SwarmServiceServer.GetRun),
		unaryHandler("ListRuns", SwarmServiceServer.ListRuns),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "swarm/v1/swarm.proto",
}

// RegisterSwarmServiceServer registers srv with s.
func RegisterSwarmServiceServer(s grpc.ServiceRegistrar, srv SwarmServiceServer) {
	s.RegisterService(&SwarmServiceDesc, srv)
}

// SwarmServiceClient is the client API for swarm.v1.SwarmService.
type SwarmServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSwarmServiceClient(cc grpc.ClientConnInterface) *SwarmServiceClient {
	return &SwarmServiceClient{cc: cc}
}

func (c *SwarmServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+swarmServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SwarmServiceClient) CreateRun(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "CreateRun", in, opts...)
}

func (c *SwarmServiceClient) StartRun(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "StartRun", in, opts...)
}

func (c *SwarmServiceClient) StopRun(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "StopRun", in, opts...)
}

func (c *SwarmServiceClient) GetRun(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetRun", in, opts...)
}

func (c *SwarmServiceClient) ListRuns(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ListRuns", in, opts...)
}
