// Package grpcserver exposes the candidate read and status-update operations
// over gRPC.
//
// Messages are google.protobuf.Struct values shaped like the REST JSON
// bodies, so no generated stubs are needed. All business logic stays in
// candidate.Service; this package only handles transport concerns: request
// decoding, error mapping and the conversion of candidates to Structs.
package grpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/varsharamanujam/HR-Candidate-Review-Tool/internal/candidate"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "candidates.v1.CandidateService"

// Full method names, as seen by interceptors and clients.
const (
	MethodGetCandidate     = "/" + ServiceName + "/GetCandidate"
	MethodFilterCandidates = "/" + ServiceName + "/FilterCandidates"
	MethodSearchCandidates = "/" + ServiceName + "/SearchCandidates"
	MethodUpdateStatus     = "/" + ServiceName + "/UpdateStatus"
)

// CandidateServiceServer is the server API of candidates.v1.CandidateService.
type CandidateServiceServer interface {
	GetCandidate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	FilterCandidates(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SearchCandidates(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// Server implements CandidateServiceServer.
type Server struct {
	svc *candidate.Service
}

// NewServer constructs a gRPC Server backed by the given candidate.Service.
func NewServer(svc *candidate.Service) *Server {
	return &Server{svc: svc}
}

// Register adds the candidate service, the standard health service and server
// reflection to s.
func Register(s *grpc.Server, srv CandidateServiceServer) *health.Server {
	s.RegisterService(&serviceDesc, srv)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	reflection.Register(s)
	return hs
}

// ─── RPC implementations ──────────────────────────────────────────────────────

// GetCandidate returns one candidate. Request: {"id": 1}.
func (s *Server) GetCandidate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := idField(req)
	if err != nil {
		return nil, err
	}
	c, err := s.svc.Get(ctx, id)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(c)
}

// FilterCandidates runs the filter query. Request keys mirror the REST query
// parameters: role, status, stage, search, sort_by, month_year.
func (s *Server) FilterCandidates(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p := candidate.FilterParams{
		Role:      stringField(req, "role"),
		Status:    stringField(req, "status"),
		Stage:     stringField(req, "stage"),
		Search:    stringField(req, "search"),
		SortBy:    stringField(req, "sort_by"),
		MonthYear: stringField(req, "month_year"),
	}
	cs, err := s.svc.Filter(ctx, p)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return listStruct(cs)
}

// SearchCandidates runs the extended search. Request: {"query": "..."}.
func (s *Server) SearchCandidates(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	cs, err := s.svc.Search(ctx, stringField(req, "query"))
	if err != nil {
		return nil, toGRPCError(err)
	}
	return listStruct(cs)
}

// UpdateStatus applies a partial status/stage/rating update.
// Request: {"id": 1, "status": "...", "stage": "...", "rating": 4.5}.
func (s *Server) UpdateStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := idField(req)
	if err != nil {
		return nil, err
	}

	var u candidate.StatusUpdate
	if v, ok := req.GetFields()["status"]; ok {
		st := v.GetStringValue()
		u.Status = &st
	}
	if v, ok := req.GetFields()["stage"]; ok {
		sg := v.GetStringValue()
		u.Stage = &sg
	}
	if v, ok := req.GetFields()["rating"]; ok {
		n, isNum := v.GetKind().(*structpb.Value_NumberValue)
		if !isNum {
			return nil, status.Error(codes.InvalidArgument, "rating must be a number")
		}
		r := n.NumberValue
		u.Rating = &r
	}

	c, err := s.svc.UpdateStatus(ctx, id, u)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(c)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func stringField(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

// idField accepts the id as a number or a numeric string.
func idField(req *structpb.Struct) (int64, error) {
	v, ok := req.GetFields()["id"]
	if !ok {
		return 0, status.Error(codes.InvalidArgument, "id is required")
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		n := k.NumberValue
		if n >= 1 && n == math.Trunc(n) && n < math.MaxInt64 {
			return int64(n), nil
		}
	case *structpb.Value_StringValue:
		if id, err := strconv.ParseInt(k.StringValue, 10, 64); err == nil && id >= 1 {
			return id, nil
		}
	}
	return 0, status.Error(codes.InvalidArgument, "id must be a positive integer")
}

// toStruct converts v through its JSON form so that the Struct matches the
// REST response body.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return st, nil
}

func listStruct(cs []candidate.Candidate) (*structpb.Struct, error) {
	if cs == nil {
		cs = []candidate.Candidate{}
	}
	return toStruct(struct {
		Candidates []candidate.Candidate `json:"candidates"`
	}{cs})
}

// toGRPCError maps domain errors to gRPC status errors.
func toGRPCError(err error) error {
	var ve *candidate.ValidationError
	switch {
	case errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, ve.Error())
	case errors.Is(err, candidate.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, candidate.ErrConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	}
	return status.Error(codes.Internal, "internal server error")
}

// ─── Service descriptor ──────────────────────────────────────────────────────

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CandidateServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetCandidate", CandidateServiceServer.GetCandidate),
		unary("FilterCandidates", CandidateServiceServer.FilterCandidates),
		unary("SearchCandidates", CandidateServiceServer.SearchCandidates),
		unary("UpdateStatus", CandidateServiceServer.UpdateStatus),
	},
	Streams: []grpc.StreamDesc{},
}

type rpc func(CandidateServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, fn rpc) grpc.MethodDesc {
	fullMethod := fmt.Sprintf("/%s/%s", ServiceName, name)
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return fn(srv.(CandidateServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return fn(srv.(CandidateServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
