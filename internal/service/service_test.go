package service

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperpart/internal/storage"
	"github.com/hyperpart/pkg/config"
	"github.com/hyperpart/pkg/model"
	"github.com/hyperpart/pkg/utils"
)

func testService(t *testing.T) *Service {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Coarsening.CommunityNodeLimit = 1
	cfg.Coarsening.RespectNodeOrder = true

	s := New(cfg, utils.NopLogger{})
	s.store = store
	return s
}

func TestExecute_EndToEnd(t *testing.T) {
	s := testService(t)
	ctx := context.Background()

	// Two hyperedges over four hypernodes, two communities.
	hgr := "2 4 0\n1 2\n3 4\n"
	require.NoError(t, s.store.Upload(ctx, "inputs/tiny.hgr", strings.NewReader(hgr)))
	require.NoError(t, s.store.Upload(ctx, "inputs/tiny.communities", strings.NewReader("0\n0\n1\n1\n")))

	report, err := s.Execute(ctx, RunRequest{
		RunUUID:      "run-e2e",
		InputKey:     "inputs/tiny.hgr",
		CommunityKey: "inputs/tiny.communities",
	})
	require.NoError(t, err)

	assert.Equal(t, 4, report.Stats.InitialNodes)
	assert.Equal(t, 2, report.Stats.InitialEdges)
	assert.Equal(t, 4, report.Stats.InitialPins)
	assert.Equal(t, 2, report.Stats.NumCommunities)
	assert.Equal(t, 2, report.Stats.CoarseNodes)
	assert.Equal(t, 2, report.Stats.Contractions)
	require.Len(t, report.Timings, 2)
	assert.Equal(t, "load", report.Timings[0].Phase)
	assert.Equal(t, "coarsen", report.Timings[1].Phase)

	// The report must be uploaded and decodable.
	rc, err := s.store.Download(ctx, ReportKey("run-e2e"))
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)

	var stored model.Report
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Equal(t, report.Stats, stored.Stats)
}

func TestExecute_RoundRobinFallback(t *testing.T) {
	s := testService(t)
	ctx := context.Background()

	require.NoError(t, s.store.Upload(ctx, "inputs/rr.hgr", strings.NewReader("1 4 0\n1 2 3 4\n")))

	report, err := s.Execute(ctx, RunRequest{
		RunUUID:        "run-rr",
		InputKey:       "inputs/rr.hgr",
		NumCommunities: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Stats.NumCommunities)
}

func TestExecute_MissingInput(t *testing.T) {
	s := testService(t)

	_, err := s.Execute(context.Background(), RunRequest{
		RunUUID:  "run-missing",
		InputKey: "inputs/nope.hgr",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load hypergraph")
}

func TestExecute_BadCommunityFile(t *testing.T) {
	s := testService(t)
	ctx := context.Background()

	require.NoError(t, s.store.Upload(ctx, "in.hgr", strings.NewReader("1 2 0\n1 2\n")))
	require.NoError(t, s.store.Upload(ctx, "in.communities", strings.NewReader("0\n")))

	_, err := s.Execute(ctx, RunRequest{
		RunUUID:      "run-bad",
		InputKey:     "in.hgr",
		CommunityKey: "in.communities",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid community assignment")
}

func TestReportKey(t *testing.T) {
	assert.Equal(t, "reports/abc.json", ReportKey("abc"))
}
