package oracle

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// #region service-desc

// OracleServiceName is the gRPC service exposed by the Python inference sidecar.
// Requests are a google.protobuf.Struct {prompt, system, temperature, model};
// the answer is a google.protobuf.StringValue.
const OracleServiceName = "actiongen.oracle.v1.OracleService"

const completeMethod = "/" + OracleServiceName + "/Complete"

// OracleServer is the server side of OracleService.
type OracleServer interface {
	Complete(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error)
}

// OracleServiceDesc describes OracleService for grpc.Server registration.
var OracleServiceDesc = grpc.ServiceDesc{
	ServiceName: OracleServiceName,
	HandlerType: (*OracleServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Complete", Handler: completeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "actiongen/oracle/v1/oracle.proto",
}

// RegisterOracleServer registers srv on s.
func RegisterOracleServer(s grpc.ServiceRegistrar, srv OracleServer) {
	s.RegisterService(&OracleServiceDesc, srv)
}

func completeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OracleServer).Complete(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: completeMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OracleServer).Complete(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// #endregion service-desc

// #region client-struct

// GRPCCompleter wraps the gRPC connection to the inference sidecar.
type GRPCCompleter struct {
	conn  *grpc.ClientConn
	model string
}

// NewGRPCCompleter connects to the sidecar at addr.
func NewGRPCCompleter(addr, model string) (*GRPCCompleter, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &GRPCCompleter{conn: conn, model: model}, nil
}

// NewGRPCCompleterWithConn uses an existing connection (tests, bufconn).
func NewGRPCCompleterWithConn(conn *grpc.ClientConn, model string) *GRPCCompleter {
	return &GRPCCompleter{conn: conn, model: model}
}

// Close shuts down the gRPC connection.
func (c *GRPCCompleter) Close() error {
	return c.conn.Close()
}

// #endregion client-struct

// #region complete

// Complete sends the prompt to the sidecar.
func (c *GRPCCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	in, err := structpb.NewStruct(map[string]any{
		"prompt":      req.Prompt,
		"system":      req.System,
		"temperature": req.Temperature,
		"model":       c.model,
	})
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	out := new(wrapperspb.StringValue)
	if err := c.conn.Invoke(ctx, completeMethod, in, out); err != nil {
		return "", fmt.Errorf("complete rpc: %w", err)
	}
	return out.GetValue(), nil
}

// #endregion complete
