// Package codec serves a resonance field over gRPC and provides a client for it.
package codec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "triad.v1.FieldService"

// #region service-api
// FieldServiceServer is the server API for FieldService.
type FieldServiceServer interface {
	Upsert(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Remove(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Report(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Cascade(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// FieldServiceClient is the client API for FieldService.
type FieldServiceClient interface {
	Upsert(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Remove(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Report(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Cascade(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

// #endregion service-api

// #region service-desc
type unaryCall func(FieldServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(FieldServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(FieldServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// FieldServiceDesc describes FieldService for grpc.ServiceRegistrar.
var FieldServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FieldServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Upsert", Handler: unaryHandler("Upsert", FieldServiceServer.Upsert)},
		{MethodName: "Remove", Handler: unaryHandler("Remove", FieldServiceServer.Remove)},
		{MethodName: "Report", Handler: unaryHandler("Report", FieldServiceServer.Report)},
		{MethodName: "Cascade", Handler: unaryHandler("Cascade", FieldServiceServer.Cascade)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "triad/v1/field.proto",
}

// RegisterFieldServiceServer registers srv on s.
func RegisterFieldServiceServer(s grpc.ServiceRegistrar, srv FieldServiceServer) {
	s.RegisterService(&FieldServiceDesc, srv)
}

type fieldServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewFieldServiceClient returns a raw Struct-level client on cc.
func NewFieldServiceClient(cc grpc.ClientConnInterface) FieldServiceClient {
	return &fieldServiceClient{cc: cc}
}

func (c *fieldServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *fieldServiceClient) Upsert(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Upsert", in, opts)
}

func (c *fieldServiceClient) Remove(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Remove", in, opts)
}

func (c *fieldServiceClient) Report(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Report", in, opts)
}

func (c *fieldServiceClient) Cascade(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Cascade", in, opts)
}

// #endregion service-desc

// #region struct-conversion
// ToStruct converts v to a Struct through its JSON form.
func ToStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}
	s := new(structpb.Struct)
	if err := protojson.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("encode struct: %w", err)
	}
	return s, nil
}

// FromStruct decodes s into v through its JSON form. Unknown fields are rejected.
func FromStruct(s *structpb.Struct, v any) error {
	b, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("decode struct: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("unmarshal message: %w", err)
	}
	return nil
}

// #endregion struct-conversion
