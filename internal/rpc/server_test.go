package rpc_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/hoopstats/internal/compare"
	"github.com/cory-johannsen/hoopstats/internal/rpc"
	"github.com/cory-johannsen/hoopstats/internal/source"
	"github.com/cory-johannsen/hoopstats/internal/stats"
)

// testGRPCServer starts an in-process server over the fixture records and
// returns a connected client.
func testGRPCServer(t *testing.T, records compare.RecordSource) (*rpc.StatsServiceClient, *grpc.ClientConn) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	srv := rpc.NewServer(compare.NewComparator(records, logger), records, logger)
	grpcServer := rpc.NewGRPCServer(srv, logger)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = grpcServer.Serve(lis) }()
	t.Cleanup(func() { grpcServer.Stop() })

	conn, err := grpc.NewClient(lis.Addr().String(),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return rpc.NewStatsServiceClient(conn), conn
}

func fixtures(t *testing.T) *source.Memory {
	t.Helper()
	mem, err := source.LoadDir("../../fixtures/players")
	require.NoError(t, err)
	return mem
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestCompare(t *testing.T) {
	client, _ := testGRPCServer(t, fixtures(t))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := client.Compare(ctx, mustStruct(t, map[string]any{
		"p1_id":       2544,
		"p2_id":       "201142",
		"mode_type":   "season",
		"season_name": "2021-22",
		"basis":       "total",
	}))
	require.NoError(t, err)

	m := out.AsMap()
	assert.Equal(t, map[string]any{"mode_type": "season", "season_name": "2021-22"}, m["mode"])
	assert.Equal(t, "total", m["basis"])
	diff := m["differential"].(map[string]any)
	assert.Equal(t, 1695.0-1638.0, diff["pts"])
	highlights := m["highlights"].(map[string]any)
	assert.Equal(t, map[string]any{"player_1": true, "player_2": false}, highlights["pts"])
}

func TestCompare_Errors(t *testing.T) {
	client, _ := testGRPCServer(t, fixtures(t))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tests := []struct {
		name string
		req  map[string]any
		code codes.Code
	}{
		{"season mismatch", map[string]any{"p1_id": 2544, "p2_id": 201142, "mode_type": "season", "season_name": "2019-20"}, codes.NotFound},
		{"unknown player", map[string]any{"p1_id": 2544, "p2_id": 5, "mode_type": "career"}, codes.NotFound},
		{"missing id", map[string]any{"p1_id": 2544, "mode_type": "career"}, codes.InvalidArgument},
		{"fractional id", map[string]any{"p1_id": 2544.5, "p2_id": 977, "mode_type": "career"}, codes.InvalidArgument},
		{"bad mode", map[string]any{"p1_id": 2544, "p2_id": 977, "mode_type": "season"}, codes.InvalidArgument},
		{"bad basis", map[string]any{"p1_id": 2544, "p2_id": 977, "mode_type": "career", "basis": "per36"}, codes.InvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Compare(ctx, mustStruct(t, tt.req))
			require.Error(t, err)
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestGetPlayerStats(t *testing.T) {
	client, _ := testGRPCServer(t, fixtures(t))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := client.GetPlayerStats(ctx, mustStruct(t, map[string]any{"player_id": 977}))
	require.NoError(t, err)
	m := out.AsMap()
	assert.Equal(t, "Kobe Bryant", m["player_name"])
	assert.Equal(t, false, m["active"])
	assert.NotContains(t, m, "postseason")

	_, err = client.GetPlayerStats(ctx, mustStruct(t, map[string]any{"player_id": 1}))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.GetPlayerStats(ctx, mustStruct(t, map[string]any{"player_id": true}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestInternalErrorHidesDetail(t *testing.T) {
	broken := compare.RecordSourceFunc(func(context.Context, int64) (*stats.PlayerStatRecord, error) {
		return nil, errors.New("dial tcp: secret detail")
	})
	client, _ := testGRPCServer(t, broken)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.GetPlayerStats(ctx, mustStruct(t, map[string]any{"player_id": 1}))
	require.Error(t, err)
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.NotContains(t, err.Error(), "secret")
}

func TestHealth(t *testing.T) {
	_, conn := testGRPCServer(t, fixtures(t))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: rpc.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestDeadlineReportedOverNotFound(t *testing.T) {
	logger := zaptest.NewLogger(t)
	blocking := compare.RecordSourceFunc(func(ctx context.Context, _ int64) (*stats.PlayerStatRecord, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	chain := source.NewChain(logger, source.Tier{Name: "upstream", Source: blocking})
	srv := rpc.NewServer(compare.NewComparator(chain, logger), chain, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := srv.Compare(ctx, mustStruct(t, map[string]any{"p1_id": 1, "p2_id": 2, "mode_type": "career"}))
	assert.Equal(t, codes.DeadlineExceeded, status.Code(err))

	ctx, cancel = context.WithCancel(context.Background())
	cancel()
	_, err = srv.GetPlayerStats(ctx, mustStruct(t, map[string]any{"player_id": 1}))
	assert.Equal(t, codes.Canceled, status.Code(err))
}
