package codec

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/triad-field/internal/logging"
	"github.com/danielpatrickdp/triad-field/internal/resonance"
	"github.com/danielpatrickdp/triad-field/internal/store"
)

// MaxCascadeSteps bounds a single Cascade call.
const MaxCascadeSteps = 10000

// #region server-struct
// Server owns one resonance field and serializes every call on it.
type Server struct {
	mu    sync.Mutex
	field *resonance.Field
	store *store.Store
	log   *slog.Logger
}

// NewServer serves field. st may be nil, in which case Cascade cannot persist.
func NewServer(field *resonance.Field, st *store.Store) *Server {
	return &Server{field: field, store: st, log: logging.New("codec")}
}

// #endregion server-struct

// #region handlers
// Upsert adds or replaces entities.
func (s *Server) Upsert(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req UpsertRequest
	if err := FromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	for i, e := range req.Entities {
		if e.ID == "" {
			return nil, status.Errorf(codes.InvalidArgument, "entity %d: empty id", i)
		}
	}

	s.mu.Lock()
	for _, e := range req.Entities {
		s.field.Add(e)
	}
	total := s.field.Len()
	s.mu.Unlock()

	return respond(UpsertResponse{Total: total})
}

// Remove drops one entity. Unknown ids are NotFound.
func (s *Server) Remove(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req RemoveRequest
	if err := FromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	s.mu.Lock()
	_, ok := s.field.Get(req.ID)
	s.field.Remove(req.ID)
	total := s.field.Len()
	s.mu.Unlock()

	if !ok {
		return nil, status.Errorf(codes.NotFound, "entity %q not found", req.ID)
	}
	return respond(RemoveResponse{Total: total})
}

// Report returns the field report and the phase decision.
func (s *Server) Report(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req ReportRequest
	if err := FromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	s.mu.Lock()
	critical := req.CriticalResonance
	if critical == 0 {
		critical = s.field.Config().CriticalResonance
	}
	resp := ReportResponse{Report: s.field.Report(), Phase: s.field.EvaluatePhase(critical)}
	s.mu.Unlock()

	return respond(resp)
}

// Cascade runs a cascade and optionally persists it.
func (s *Server) Cascade(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req CascadeRequest
	if err := FromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if req.Steps < 0 || req.Steps > MaxCascadeSteps {
		return nil, status.Errorf(codes.InvalidArgument, "steps must be in [0, %d], got %d", MaxCascadeSteps, req.Steps)
	}
	if req.Persist && s.store == nil {
		return nil, status.Error(codes.FailedPrecondition, "server has no store")
	}

	s.mu.Lock()
	steps, err := s.field.Cascade(ctx, req.Steps, req.Coupling)
	s.mu.Unlock()
	if err != nil {
		return nil, status.FromContextError(err).Err()
	}

	resp := CascadeResponse{Steps: steps, Summary: resonance.Summarize(steps)}
	if req.Persist {
		run, err := s.store.SaveCascade(steps, req.Coupling)
		if err != nil {
			s.log.Error("persist cascade failed", "error", err)
			return nil, status.Errorf(codes.Internal, "persist cascade: %v", err)
		}
		resp.RunID = run.ID
	}
	return respond(resp)
}

func respond(v any) (*structpb.Struct, error) {
	out, err := ToStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// #endregion handlers

// #region serve
// LoggingInterceptor logs every unary call with its duration and status code.
func LoggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Debug("rpc", "method", info.FullMethod,
			"code", status.Code(err).String(), "duration", time.Since(start))
		return resp, err
	}
}

// NewGRPCServer builds a grpc.Server with FieldService registered on srv.
func NewGRPCServer(srv *Server, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(LoggingInterceptor(srv.log)))
	gs := grpc.NewServer(opts...)
	RegisterFieldServiceServer(gs, srv)
	return gs
}

// Serve runs srv on lis until ctx is canceled, then stops gracefully.
func Serve(ctx context.Context, lis net.Listener, srv *Server) error {
	gs := NewGRPCServer(srv)
	go func() {
		<-ctx.Done()
		gs.GracefulStop()
	}()
	srv.log.Info("field service listening", "addr", lis.Addr().String())
	if err := gs.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// #endregion serve
