package weathergear

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/randalmurphal/weathergear/pkg/weathergear/compare"
	"github.com/randalmurphal/weathergear/pkg/weathergear/observability"
	"github.com/randalmurphal/weathergear/pkg/weathergear/rules"
	"github.com/randalmurphal/weathergear/pkg/weathergear/store"
)

func commuteDefs() []rules.Definition {
	return []rules.Definition{
		{Name: "umbrella", When: "precipitation >= 40"},
		{Name: "coat", When: "temperature < 10"},
		{Name: "sunglasses", When: "sky == clear"},
	}
}

func rainyDay() compare.Record {
	return compare.Record{
		"precipitation": compare.Number(70),
		"temperature":   compare.Number(6),
		"sky":           compare.Text("overcast"),
	}
}

func TestNew_NilOperators(t *testing.T) {
	a := New(nil)
	require.NotNil(t, a.Operators())
	assert.Len(t, a.Operators().Operators(), 6)
}

func TestEvaluate(t *testing.T) {
	a := New(compare.NewOperatorMap())
	_, err := a.Compile("commute", commuteDefs())
	require.NoError(t, err)

	report, err := a.Evaluate(context.Background(), "commute", rainyDay())
	require.NoError(t, err)

	assert.Equal(t, "commute", report.RuleSet)
	assert.Equal(t, []string{"umbrella", "coat"}, report.Matched)
	assert.Equal(t, []rules.Result{
		{Rule: "umbrella", Matched: true},
		{Rule: "coat", Matched: true},
		{Rule: "sunglasses", Matched: false},
	}, report.Results)

	_, err = uuid.Parse(report.EvaluationID)
	assert.NoError(t, err)
}

func TestEvaluate_UniqueIDs(t *testing.T) {
	a := New(nil)
	_, err := a.Compile("commute", commuteDefs())
	require.NoError(t, err)

	r1, err := a.Evaluate(context.Background(), "commute", rainyDay())
	require.NoError(t, err)
	r2, err := a.Evaluate(context.Background(), "commute", rainyDay())
	require.NoError(t, err)
	assert.NotEqual(t, r1.EvaluationID, r2.EvaluationID)
}

func TestEvaluate_Errors(t *testing.T) {
	a := New(nil)
	_, err := a.Compile("commute", commuteDefs())
	require.NoError(t, err)

	t.Run("nil context", func(t *testing.T) {
		//nolint:staticcheck // testing nil context handling
		_, err := a.Evaluate(nil, "commute", rainyDay())
		assert.ErrorIs(t, err, ErrNilContext)
	})

	t.Run("unknown set", func(t *testing.T) {
		_, err := a.Evaluate(context.Background(), "weekend", rainyDay())
		assert.ErrorIs(t, err, ErrRuleSetNotFound)
	})

	t.Run("missing key", func(t *testing.T) {
		rec := rainyDay()
		delete(rec, "temperature")

		_, err := a.Evaluate(context.Background(), "commute", rec)
		require.Error(t, err)
		assert.ErrorIs(t, err, compare.ErrKeyNotFound)

		var ruleErr *rules.RuleError
		require.ErrorAs(t, err, &ruleErr)
		assert.Equal(t, "coat", ruleErr.Rule)
	})

	t.Run("type mismatch", func(t *testing.T) {
		rec := rainyDay()
		rec["sky"] = compare.Number(1)

		_, err := a.Evaluate(context.Background(), "commute", rec)
		assert.ErrorIs(t, err, compare.ErrTypeMismatch)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := a.Evaluate(ctx, "commute", rainyDay())
		assert.ErrorIs(t, err, context.Canceled)

		var ruleErr *rules.RuleError
		require.ErrorAs(t, err, &ruleErr)
		assert.Equal(t, "umbrella", ruleErr.Rule)
	})
}

func TestRecommend(t *testing.T) {
	a := New(nil)
	_, err := a.Compile("commute", commuteDefs())
	require.NoError(t, err)

	names, err := a.Recommend(context.Background(), "commute", compare.Record{
		"precipitation": compare.Number(0),
		"temperature":   compare.Number(25),
		"sky":           compare.Text("clear"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"sunglasses"}, names)

	_, err = a.Recommend(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, ErrRuleSetNotFound)
}

func TestRegisterOperator(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	a := New(nil, WithLogger(logger))

	a.RegisterOperator("~=", func(x, y compare.Value) (bool, error) {
		return strings.EqualFold(x.String(), y.String()), nil
	})

	_, err := a.Compile("casual", []rules.Definition{{Name: "shades", When: "sky ~= CLEAR"}})
	require.NoError(t, err)

	names, err := a.Recommend(context.Background(), "casual", compare.Record{"sky": compare.Text("clear")})
	require.NoError(t, err)
	assert.Equal(t, []string{"shades"}, names)
	assert.Contains(t, buf.String(), `"operator":"~="`)
}

func TestAddAndSets(t *testing.T) {
	a := New(nil)
	weekend, err := rules.Compile("weekend", commuteDefs()[:1], a.Operators())
	require.NoError(t, err)
	a.Add(weekend)
	_, err = a.Compile("commute", commuteDefs())
	require.NoError(t, err)

	assert.Equal(t, []string{"commute", "weekend"}, a.Sets())

	got, ok := a.Set("weekend")
	require.True(t, ok)
	assert.Same(t, weekend, got)

	_, ok = a.Set("holiday")
	assert.False(t, ok)
}

func TestCompile_Error(t *testing.T) {
	a := New(nil)
	_, err := a.Compile("bad", []rules.Definition{{Name: "x", When: "a ?? b"}})
	assert.ErrorIs(t, err, compare.ErrUnknownOperator)
	assert.Empty(t, a.Sets())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commute.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: commute
aliases:
  below: "<"
rules:
  - name: coat
    when: temperature below 10
  - name: umbrella
    when: precipitation >= 40
`), 0o600))

	a := New(nil)
	set, err := a.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())

	names, err := a.Recommend(context.Background(), "commute", rainyDay())
	require.NoError(t, err)
	assert.Equal(t, []string{"coat", "umbrella"}, names)
}

func TestLoadFile_Errors(t *testing.T) {
	a := New(nil)

	_, err := a.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name": "bad", "rules": [{"name": "x", "when": "a b"}]}`), 0o600))
	_, err = a.LoadFile(path)
	assert.ErrorIs(t, err, compare.ErrMalformed)
	assert.Contains(t, err.Error(), "load "+path)
}

func TestLoadFile_FailureKeepsOperators(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: broken
aliases:
  at_least: ">="
  "==": "!="
rules:
  - name: hot
    when: temperature ?? 5
`), 0o600))

	a := New(nil)
	_, err := a.LoadFile(path)
	require.ErrorIs(t, err, compare.ErrUnknownOperator)

	_, ok := a.Operators().Lookup("at_least")
	assert.False(t, ok)
	assert.Empty(t, a.Sets())

	_, err = a.Compile("plain", []rules.Definition{{Name: "clear", When: "sky == clear"}})
	require.NoError(t, err)
	names, err := a.Recommend(context.Background(), "plain", compare.Record{"sky": compare.Text("clear")})
	require.NoError(t, err)
	assert.Equal(t, []string{"clear"}, names)
}

func TestStore_RoundTrip(t *testing.T) {
	s := store.NewMemoryStore()
	defer s.Close()

	writer := New(nil, WithStore(s))
	_, err := writer.Compile("commute", commuteDefs())
	require.NoError(t, err)
	require.NoError(t, writer.Save("commute"))

	reader := New(nil, WithStore(s))
	set, err := reader.LoadStored("commute")
	require.NoError(t, err)
	assert.Equal(t, commuteDefs(), set.Definitions())

	names, err := reader.Recommend(context.Background(), "commute", rainyDay())
	require.NoError(t, err)
	assert.Equal(t, []string{"umbrella", "coat"}, names)
}

func TestSave_ReplacesStoredSet(t *testing.T) {
	tests := []struct {
		name  string
		store func(t *testing.T) store.Store
	}{
		{"memory", func(t *testing.T) store.Store { return store.NewMemoryStore() }},
		{"sqlite", func(t *testing.T) store.Store {
			s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "rules.db"))
			require.NoError(t, err)
			return s
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.store(t)
			defer s.Close()

			writer := New(nil, WithStore(s))
			_, err := writer.Compile("garden", []rules.Definition{
				{Name: "water", When: "precipitation < 10"},
				{Name: "cover", When: "temperature <= 0"},
			})
			require.NoError(t, err)
			require.NoError(t, writer.Save("garden"))

			_, err = writer.Compile("garden", []rules.Definition{
				{Name: "cover", When: "temperature <= 2"},
			})
			require.NoError(t, err)
			require.NoError(t, writer.Save("garden"))

			reader := New(nil, WithStore(s))
			set, err := reader.LoadStored("garden")
			require.NoError(t, err)
			assert.Equal(t, []rules.Definition{{Name: "cover", When: "temperature <= 2"}}, set.Definitions())
		})
	}
}

func TestStore_Errors(t *testing.T) {
	a := New(nil)
	_, err := a.LoadStored("commute")
	assert.ErrorIs(t, err, ErrNoStore)
	assert.ErrorIs(t, a.Save("commute"), ErrNoStore)

	s := store.NewMemoryStore()
	a = New(nil, WithStore(s))
	_, err = a.LoadStored("commute")
	assert.ErrorIs(t, err, ErrEmptyRuleSet)
	assert.ErrorIs(t, a.Save("commute"), ErrRuleSetNotFound)

	require.NoError(t, s.Save("broken", rules.Definition{Name: "x", When: "a ?? 1"}))
	_, err = a.LoadStored("broken")
	assert.ErrorIs(t, err, compare.ErrUnknownOperator)

	require.NoError(t, s.Close())
	_, err = a.LoadStored("commute")
	assert.ErrorIs(t, err, store.ErrStoreClosed)
}

func TestEvaluate_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	a := New(nil, WithLogger(logger))
	_, err := a.Compile("commute", commuteDefs())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"msg":"rule set loaded"`)
	buf.Reset()

	report, err := a.Evaluate(context.Background(), "commute", rainyDay())
	require.NoError(t, err)

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	for _, line := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		assert.Equal(t, report.EvaluationID, entry["evaluation_id"], line)
		assert.Equal(t, "commute", entry["rule_set"], line)
	}
	assert.Contains(t, out, `"msg":"evaluation starting"`)
	assert.Contains(t, out, `"msg":"evaluation completed"`)
	assert.Contains(t, out, `"evaluation_id":"`+report.EvaluationID+`"`)
	assert.Equal(t, 3, strings.Count(out, `"msg":"rule checked"`))

	buf.Reset()
	_, err = a.Evaluate(context.Background(), "commute", compare.Record{})
	require.Error(t, err)
	assert.Contains(t, buf.String(), `"msg":"evaluation failed"`)
}

func TestEvaluate_Metrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	rec, err := observability.NewMetricsRecorderWithProvider(provider)
	require.NoError(t, err)

	a := New(nil, WithMetricsRecorder(rec))
	_, err = a.Compile("commute", commuteDefs())
	require.NoError(t, err)

	_, err = a.Evaluate(context.Background(), "commute", rainyDay())
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					counts[m.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(1), counts["weathergear.evaluations"])
	assert.Equal(t, int64(3), counts["weathergear.rule.checks"])
	assert.Equal(t, int64(2), counts["weathergear.rule.matches"])
}

func TestEvaluate_Tracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())

	a := New(nil, WithSpanManager(observability.NewSpanManagerWithProvider(tp)))
	_, err := a.Compile("commute", commuteDefs())
	require.NoError(t, err)

	_, err = a.Evaluate(context.Background(), "commute", rainyDay())
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 4)
	assert.Equal(t, "weathergear.rule.umbrella", spans[0].Name)
	assert.Equal(t, "weathergear.evaluate", spans[3].Name)
	for _, s := range spans[:3] {
		assert.Equal(t, spans[3].SpanContext.SpanID(), s.Parent.SpanID())
		require.Len(t, s.Events, 1)
		assert.Equal(t, "rule.checked", s.Events[0].Name)
	}

	exporter.Reset()
	_, err = a.Evaluate(context.Background(), "commute", compare.Record{"precipitation": compare.Number(1)})
	require.Error(t, err)

	spans = exporter.GetSpans()
	require.Len(t, spans, 3)
	assert.Equal(t, codes.Error, spans[1].Status.Code)
	assert.Equal(t, codes.Error, spans[2].Status.Code)
}

func TestWithOptions_Disable(t *testing.T) {
	cfg := defaultAdvisorConfig()
	WithMetrics(false)(&cfg)
	WithTracing(false)(&cfg)
	WithMetricsRecorder(nil)(&cfg)
	WithSpanManager(nil)(&cfg)

	assert.Equal(t, observability.NoopMetrics{}, cfg.metrics)
	assert.Equal(t, observability.NoopSpanManager{}, cfg.spans)
	assert.False(t, cfg.tracingEnabled)

	WithTracing(true)(&cfg)
	assert.True(t, cfg.tracingEnabled)
}

func TestEvaluate_ErrorIsRuleError(t *testing.T) {
	a := New(nil)
	_, err := a.Compile("commute", commuteDefs())
	require.NoError(t, err)

	_, err = a.Evaluate(context.Background(), "commute", compare.Record{})
	var ruleErr *rules.RuleError
	assert.True(t, errors.As(err, &ruleErr))
	assert.Equal(t, "commute", ruleErr.Set)
}
