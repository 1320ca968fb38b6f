package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/hoopstats/internal/compare"
	"github.com/cory-johannsen/hoopstats/internal/observability"
)

// Comparer runs one comparison.
type Comparer interface {
	Compare(ctx context.Context, req compare.Request) (compare.Result, error)
}

// Server implements StatsServiceServer over a Comparer and a RecordSource.
type Server struct {
	comparator Comparer
	records    compare.RecordSource
	logger     *zap.Logger
}

// NewServer creates a Server.
//
// Precondition: comparator, records and logger must be non-nil.
func NewServer(comparator Comparer, records compare.RecordSource, logger *zap.Logger) *Server {
	return &Server{comparator: comparator, records: records, logger: logger}
}

// NewGRPCServer builds a grpc.Server with request logging, StatsService and
// the standard health service reporting SERVING.
//
// Postcondition: The returned server is ready to Serve a listener.
func NewGRPCServer(srv *Server, logger *zap.Logger) *grpc.Server {
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(observability.UnaryServerInterceptor(logger)))
	RegisterStatsServiceServer(s, srv)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	return s
}

// Compare accepts {p1_id, p2_id, mode_type, season_name?, season_type?, basis?}
// and returns the comparison result.
func (s *Server) Compare(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	fields := in.GetFields()
	p1, err := playerID(fields, "p1_id")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	p2, err := playerID(fields, "p2_id")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	mode, err := compare.ParseMode(str(fields, "mode_type"), str(fields, "season_name"))
	if err != nil {
		return nil, toStatus(err)
	}
	seasonType, err := compare.ParseSeasonType(str(fields, "season_type"))
	if err != nil {
		return nil, toStatus(err)
	}
	basis, err := compare.ParseBasis(str(fields, "basis"))
	if err != nil {
		return nil, toStatus(err)
	}

	res, err := s.comparator.Compare(ctx, compare.Request{
		Player1: p1,
		Player2: p2,
		Mode:    mode,
		Options: compare.Options{SeasonType: seasonType, Basis: basis},
	})
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return toStruct(res)
}

// GetPlayerStats accepts {player_id} and returns the player's full record.
func (s *Server) GetPlayerStats(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := playerID(in.GetFields(), "player_id")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	rec, err := s.records.PlayerStats(ctx, id)
	if err == nil && rec == nil {
		err = fmt.Errorf("player %d: %w", id, compare.ErrPlayerNotFound)
	}
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return toStruct(rec)
}

// fail converts err to a status. A call whose own deadline or cancellation
// ended it reports that, whatever domain error the sources wrapped it in.
func (s *Server) fail(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return status.FromContextError(ctxErr).Err()
	}
	st := toStatus(err)
	if status.Code(st) == codes.Internal {
		s.logger.Error("rpc failed", zap.Error(err))
	}
	return st
}

// toStatus maps domain errors to gRPC status codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, compare.ErrSeasonNotFound), errors.Is(err, compare.ErrPlayerNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, compare.ErrInvalidMode):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

// toStruct converts v through its JSON form.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
	}
	return out, nil
}

// playerID reads a positive integer id given as a number or a string.
func playerID(fields map[string]*structpb.Value, key string) (int64, error) {
	v, ok := fields[key]
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		n := k.NumberValue
		if n <= 0 || n != math.Trunc(n) || n > math.MaxInt64 {
			return 0, fmt.Errorf("%s must be a positive integer, got %v", key, n)
		}
		return int64(n), nil
	case *structpb.Value_StringValue:
		id, err := strconv.ParseInt(strings.TrimSpace(k.StringValue), 10, 64)
		if err != nil || id <= 0 {
			return 0, fmt.Errorf("%s must be a positive integer, got %q", key, k.StringValue)
		}
		return id, nil
	}
	return 0, fmt.Errorf("%s must be a number or string", key)
}

func str(fields map[string]*structpb.Value, key string) string {
	return fields[key].GetStringValue()
}
