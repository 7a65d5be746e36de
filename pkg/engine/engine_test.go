package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/postgres/pkg/profile"
	"github.com/flanksource/postgres/pkg/snapshot"
	"github.com/flanksource/postgres/pkg/suggestion"
	"github.com/flanksource/postgres/pkg/units"
)

// fakeProvider is a canned snapshot.Provider, standing in for pgprovider
// in these integration tests: the engine should behave identically
// whichever Provider it is handed.
type fakeProvider struct {
	settings       []snapshot.Setting
	conns          uint32
	tables         []snapshot.TableStat
	indexes        []snapshot.IndexStat
	statements     []snapshot.Statement
	statementsErr  error
	failSettings   bool
}

func (f *fakeProvider) FetchSettings(ctx context.Context) ([]snapshot.Setting, error) {
	if f.failSettings {
		return nil, errors.New("connection refused")
	}
	return f.settings, nil
}

func (f *fakeProvider) FetchActiveConnections(ctx context.Context) (uint32, error) {
	return f.conns, nil
}

func (f *fakeProvider) FetchTableStats(ctx context.Context) ([]snapshot.TableStat, error) {
	return f.tables, nil
}

func (f *fakeProvider) FetchIndexStats(ctx context.Context) ([]snapshot.IndexStat, error) {
	return f.indexes, nil
}

func (f *fakeProvider) FetchStatements(ctx context.Context, limit int) ([]snapshot.Statement, error) {
	if f.statementsErr != nil {
		return nil, f.statementsErr
	}
	return f.statements, nil
}

var _ snapshot.Provider = (*fakeProvider)(nil)

func TestAnalyzeFatalOnRequiredQueryFailure(t *testing.T) {
	p := &fakeProvider{failSettings: true}
	_, err := Analyze(context.Background(), p, profile.Default(), DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFatalSnapshot))
}

func TestAnalyzeComposesRulesHealthAndWorkload(t *testing.T) {
	recentVacuum := time.Now().Add(-2 * time.Hour)
	p := &fakeProvider{
		settings: []snapshot.Setting{
			{Name: "shared_buffers", RawValue: "128MB"},
			{Name: "random_page_cost", RawValue: "4.0"},
		},
		tables: []snapshot.TableStat{
			{
				Schema: "public", Relname: "rental", NLiveTup: 500_000, NDeadTup: 200_000,
				SeqScan: 500, IdxScan: 2, LastAutovacuum: &recentVacuum,
				RelationSizeBytes: 200 * 1024 * 1024,
			},
		},
		statements: []snapshot.Statement{
			{
				Fingerprint: "rental-return-date", TotalExecMs: 6_000, Calls: 50, MeanExecMs: 120,
				QueryText: "SELECT rental_id FROM rental WHERE return_date > $1",
			},
		},
	}

	report, err := Analyze(context.Background(), p, profile.Profile{VCPUs: 8, RAMBytes: units.Size(64 * units.GB), WorkloadHint: profile.OLTP}, DefaultOptions())
	require.NoError(t, err)

	assert.NotEmpty(t, report.Suggestions, "expected configuration suggestions from the rule library")
	assert.NotEmpty(t, report.Findings, "expected a bloated-table finding")
	require.NotNil(t, report.Workload)
	assert.NotEmpty(t, report.Workload.ProposedIndexes, "expected a proposed index from the workload sample")

	var randomPageCost *suggestion.Suggestion
	for i := range report.Suggestions {
		if report.Suggestions[i].ID == "planner.random_page_cost" {
			randomPageCost = &report.Suggestions[i]
		}
	}
	require.NotNil(t, randomPageCost)
	assert.Equal(t, suggestion.Critical, randomPageCost.Level)

	seen := map[string]bool{}
	for _, s := range report.Suggestions {
		assert.False(t, seen[s.ID], "duplicate suggestion id %s", s.ID)
		seen[s.ID] = true
	}
}

func TestAnalyzeSeverityFloorFiltersInfo(t *testing.T) {
	p := &fakeProvider{}
	opts := DefaultOptions()
	opts.SeverityFloor = suggestion.Recommended

	report, err := Analyze(context.Background(), p, profile.Default(), opts)
	require.NoError(t, err)
	for _, s := range report.Suggestions {
		assert.GreaterOrEqual(t, int(s.Level), int(suggestion.Recommended))
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	p := &fakeProvider{
		settings: []snapshot.Setting{{Name: "shared_buffers", RawValue: "128MB"}},
		tables: []snapshot.TableStat{
			{Schema: "public", Relname: "widgets", NLiveTup: 50_000, NDeadTup: 20_000, RelationSizeBytes: 10 * 1024 * 1024},
		},
	}
	prof := profile.Default()

	first, err := Analyze(context.Background(), p, prof, DefaultOptions())
	require.NoError(t, err)
	second, err := Analyze(context.Background(), p, prof, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, first.Suggestions, second.Suggestions)
	assert.Equal(t, first.Findings, second.Findings)
}
