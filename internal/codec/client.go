package codec

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/triad-field/internal/resonance"
)

// #region client-struct
// FieldClient wraps the gRPC connection to a FieldService.
type FieldClient struct {
	conn   *grpc.ClientConn
	client FieldServiceClient
}

// #endregion client-struct

// #region constructor
// NewClient connects to a FieldService at addr.
func NewClient(addr string, opts ...grpc.DialOption) (*FieldClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &FieldClient{conn: conn, client: NewFieldServiceClient(conn)}, nil
}

// NewClientWithConn creates a FieldClient on an existing connection, which
// the caller keeps ownership of.
func NewClientWithConn(cc grpc.ClientConnInterface) *FieldClient {
	return &FieldClient{client: NewFieldServiceClient(cc)}
}

// NewClientWithService creates a FieldClient with an injected service implementation.
func NewClientWithService(svc FieldServiceClient) *FieldClient {
	return &FieldClient{client: svc}
}

// Close shuts down the gRPC connection if the client opened it.
func (c *FieldClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion constructor

// #region calls
// Upsert adds or replaces entities and returns the population size.
func (c *FieldClient) Upsert(ctx context.Context, entities ...resonance.Entity) (int, error) {
	var resp UpsertResponse
	if err := c.call(ctx, "upsert", c.client.Upsert, UpsertRequest{Entities: entities}, &resp); err != nil {
		return 0, err
	}
	return resp.Total, nil
}

// Remove drops one entity and returns the population size.
func (c *FieldClient) Remove(ctx context.Context, id string) (int, error) {
	var resp RemoveResponse
	if err := c.call(ctx, "remove", c.client.Remove, RemoveRequest{ID: id}, &resp); err != nil {
		return 0, err
	}
	return resp.Total, nil
}

// Report fetches the field report. criticalResonance 0 uses the server's default.
func (c *FieldClient) Report(ctx context.Context, criticalResonance float64) (ReportResponse, error) {
	var resp ReportResponse
	err := c.call(ctx, "report", c.client.Report, ReportRequest{CriticalResonance: criticalResonance}, &resp)
	return resp, err
}

// Cascade runs a cascade on the served field.
func (c *FieldClient) Cascade(ctx context.Context, req CascadeRequest) (CascadeResponse, error) {
	var resp CascadeResponse
	err := c.call(ctx, "cascade", c.client.Cascade, req, &resp)
	return resp, err
}

type rpc func(context.Context, *structpb.Struct, ...grpc.CallOption) (*structpb.Struct, error)

func (c *FieldClient) call(ctx context.Context, name string, fn rpc, req, resp any) error {
	in, err := ToStruct(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", name, err)
	}
	out, err := fn(ctx, in)
	if err != nil {
		return fmt.Errorf("%s rpc: %w", name, err)
	}
	if err := FromStruct(out, resp); err != nil {
		return fmt.Errorf("%s response: %w", name, err)
	}
	return nil
}

// #endregion calls
