package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/aretw0/simflow"
	"github.com/aretw0/simflow/pkg/domain"
	"github.com/aretw0/simflow/pkg/dsl"
	"github.com/aretw0/simflow/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fleetForm() *domain.Form {
	b := dsl.New("fleet")
	b.Block("intro").Priority(1).DefaultActive().
		Question("has", "Cars? {{p}}").
		Select("p",
			dsl.Opt("yes", "Yes").AddBlock("car_{copyNumber}").NextBlock(),
			dsl.Opt("no", "No").StopFlow(),
		)
	b.Block("car_{copyNumber}").Priority(2).Blueprint().
		Question("car_{copyNumber}_make", "Make {{m}}").Input("m", "text").LeadsTo(domain.StopFlow())
	return b.MustBuild()
}

func TestMetrics_FedByEngine(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	form := fleetForm()
	eng, err := simflow.New(form,
		simflow.WithNavigationDebounce(0),
		simflow.WithLifecycleHooks(observability.Chain(
			metrics.Hooks(form),
			observability.LogHooks(logger),
		)),
	)
	require.NoError(t, err)

	ctx := context.Background()
	for _, id := range []string{"s1", "s2"} {
		sess, err := eng.CreateSession(ctx, id)
		require.NoError(t, err)
		require.NoError(t, sess.SetResponse(ctx, "has", "p", domain.Text("yes")))
		_, err = sess.Next(ctx)
		require.NoError(t, err)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.BlockActivations.WithLabelValues("fleet", "intro")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.BlockActivations.WithLabelValues("fleet", "car_{copyNumber}")),
		"dynamic copies are counted under their blueprint")
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.BlockCompletions.WithLabelValues("fleet", "intro")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.QuestionChanges.WithLabelValues("fleet", "car_{copyNumber}")))

	sess, err := eng.Resume(ctx, "s1")
	require.NoError(t, err)
	_, err = sess.NavigateToNextQuestion(ctx, "car_1_make", domain.GoTo("ghost"))
	require.NoError(t, err)
	_, err = sess.Next(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.UnresolvedTargets.WithLabelValues("fleet")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FlowsStopped.WithLabelValues("fleet")))

	assert.Contains(t, logs.String(), "msg=block_activated")
	assert.Contains(t, logs.String(), "blueprint_id=car_{copyNumber}")
	assert.Contains(t, logs.String(), "msg=flow_stopped session_id=s1")
	assert.Contains(t, logs.String(), "msg=unresolved_target")
}

func TestMetrics_BoundsBlockLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	form := fleetForm()
	eng, err := simflow.New(form,
		simflow.WithNavigationDebounce(0),
		simflow.WithLifecycleHooks(metrics.Hooks(form)),
	)
	require.NoError(t, err)

	ctx := context.Background()
	sess, err := eng.CreateSession(ctx, "s1")
	require.NoError(t, err)
	for _, block := range []string{"made-up-1", "made-up-2", "intro"} {
		require.NoError(t, sess.GoToQuestion(ctx, block, "has"))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.QuestionChanges.WithLabelValues("fleet", observability.UnknownBlock)))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.QuestionChanges.WithLabelValues("fleet", "intro")), "session start and the final jump")
	assert.Equal(t, 2, testutil.CollectAndCount(metrics.QuestionChanges), "made-up block ids share one series")
}

func TestNewMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	second, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	second.FlowsStopped.WithLabelValues("f").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(first.FlowsStopped.WithLabelValues("f")))
}

func TestChain(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{
		OnFlowStopped: func(context.Context, *domain.EventBase) { calls = append(calls, "a") },
	}
	b := domain.LifecycleHooks{
		OnFlowStopped:    func(context.Context, *domain.EventBase) { calls = append(calls, "b") },
		OnBlockCompleted: func(context.Context, *domain.BlockEvent) { calls = append(calls, "b-block") },
	}

	h := observability.Chain(a, domain.LifecycleHooks{}, b)
	h.OnFlowStopped(context.Background(), &domain.EventBase{})
	h.OnBlockCompleted(context.Background(), &domain.BlockEvent{})
	assert.Nil(t, h.OnQuestionChanged)
	assert.Equal(t, []string{"a", "b", "b-block"}, calls)
}
