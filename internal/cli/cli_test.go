package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/simflow"
	"github.com/aretw0/simflow/internal/config"
	"github.com/aretw0/simflow/pkg/adapters/file"
	"github.com/aretw0/simflow/pkg/adapters/memory"
	"github.com/aretw0/simflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const surveyYAML = `
id: survey
blocks:
  - block_id: main
    priority: 1
    default_active: true
    questions:
      - question_id: name
        question_text: "Name {{n}}"
        placeholders:
          n:
            type: input
            leads_to: mood
      - question_id: mood
        question_text: "Mood {{m}}"
        placeholders:
          m:
            type: select
            options:
              - id: good
                label: Good
                leads_to: stop_flow
              - id: bad
                label: Bad
                leads_to: stop_flow
`

func writeForm(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "survey.yaml")
	require.NoError(t, os.WriteFile(path, []byte(surveyYAML), 0o600))
	return path
}

func testConfig(t *testing.T) config.Config {
	cfg := config.Default()
	cfg.SessionDir = t.TempDir()
	cfg.Debounce = 0
	return cfg
}

func TestRun_Anonymous(t *testing.T) {
	out := &bytes.Buffer{}
	outcome, err := Run(context.Background(), RunOptions{
		FormPath: writeForm(t),
		Config:   testConfig(t),
		In:       strings.NewReader("Ann\ngood\n"),
		Out:      out,
	})
	require.NoError(t, err)
	assert.Equal(t, simflow.OutcomeStopped, outcome.Kind)
	assert.Contains(t, out.String(), "Mood [m]")
	assert.Contains(t, out.String(), ">>> Finished.")
	assert.Contains(t, out.String(), "100%")
}

func TestRun_ResumeSession(t *testing.T) {
	ctx := context.Background()
	form := writeForm(t)
	cfg := testConfig(t)

	out := &bytes.Buffer{}
	_, err := Run(ctx, RunOptions{FormPath: form, SessionID: "s1", Config: cfg, In: strings.NewReader("Ann\n"), Out: out})
	require.NoError(t, err, "running out of input is not an error")
	assert.Contains(t, out.String(), "Interrupted. Session 's1' kept.")

	state, err := file.NewStore(cfg.SessionDir).Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "mood", state.ActiveQuestion.QuestionID)

	out.Reset()
	outcome, err := Run(ctx, RunOptions{FormPath: form, SessionID: "s1", Config: cfg, In: strings.NewReader("bad\n"), Out: out})
	require.NoError(t, err)
	assert.Equal(t, simflow.OutcomeStopped, outcome.Kind)
	assert.Contains(t, out.String(), "Resuming session 's1'.")

	out.Reset()
	_, err = Run(ctx, RunOptions{FormPath: form, SessionID: "s1", Fresh: true, Config: cfg, In: strings.NewReader(""), Out: out})
	require.NoError(t, err)
	assert.NotContains(t, out.String(), "Resuming")
	assert.Contains(t, out.String(), "Name [n]")
}

func TestRun_JSON(t *testing.T) {
	out := &bytes.Buffer{}
	outcome, err := Run(context.Background(), RunOptions{
		FormPath: writeForm(t),
		JSON:     true,
		Config:   testConfig(t),
		In:       strings.NewReader("\"Ann\"\n\"1\"\n"),
		Out:      out,
	})
	require.NoError(t, err)
	assert.Equal(t, simflow.OutcomeStopped, outcome.Kind)
	assert.Contains(t, out.String(), `"type":"question"`)
	assert.NotContains(t, out.String(), ">>>")
}

func TestRun_MissingForm(t *testing.T) {
	_, err := Run(context.Background(), RunOptions{
		FormPath: filepath.Join(t.TempDir(), "nope.yaml"),
		Config:   testConfig(t),
		In:       strings.NewReader(""),
		Out:      &bytes.Buffer{},
	})
	assert.ErrorIs(t, err, domain.ErrFormNotFound)
}

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	tests := []struct {
		name       string
		mutate     func(*config.Config)
		wantLocker bool
		wantErr    bool
	}{
		{"memory", func(c *config.Config) { c.Store = config.StoreMemory }, false, false},
		{"file", func(c *config.Config) { c.Store = config.StoreFile }, false, false},
		{"sqlite", func(c *config.Config) {
			c.Store = config.StoreSQLite
			c.SQLitePath = filepath.Join(t.TempDir(), "s.db")
		}, false, false},
		{"redis", func(c *config.Config) {
			c.Store = config.StoreRedis
			c.RedisAddr = mr.Addr()
		}, true, false},
		{"encrypted", func(c *config.Config) {
			c.Store = config.StoreFile
			c.EncryptionKey = bytes.Repeat([]byte("k"), 32)
			c.PIIPatterns = []string{`\.secret$`}
		}, false, false},
		{"bad pii pattern", func(c *config.Config) { c.PIIPatterns = []string{"("} }, false, true},
		{"unknown", func(c *config.Config) { c.Store = "etcd" }, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(&cfg)

			b, err := OpenBackend(ctx, cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer b.Close()
			assert.Equal(t, tt.wantLocker, b.Locker != nil)

			state := domain.NewFormState()
			require.NoError(t, b.Store.Save(ctx, "x", state))
			ids, err := b.Store.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"x"}, ids)
		})
	}
}

func TestSessionCommands(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	out := &bytes.Buffer{}

	require.NoError(t, ListSessions(ctx, store, out))
	assert.Equal(t, "No sessions.\n", out.String())

	running := domain.NewFormState()
	running.ActiveQuestion = domain.QuestionRef{BlockID: "main", QuestionID: "mood"}
	running.AnsweredQuestions = []string{"name"}
	done := domain.NewFormState()
	done.Finished = true
	require.NoError(t, store.Save(ctx, "a", running))
	require.NoError(t, store.Save(ctx, "b", done))

	out.Reset()
	require.NoError(t, ListSessions(ctx, store, out))
	assert.Contains(t, out.String(), "a\tat mood\t1 answered\n")
	assert.Contains(t, out.String(), "b\tfinished\t0 answered\n")

	out.Reset()
	require.NoError(t, InspectSession(ctx, store, "a", out))
	assert.Contains(t, out.String(), `"question_id": "mood"`)

	require.NoError(t, RemoveSession(ctx, store, "a"))
	assert.ErrorIs(t, RemoveSession(ctx, store, "a"), domain.ErrSessionNotFound)
	assert.ErrorIs(t, InspectSession(ctx, store, "zzz", out), domain.ErrSessionNotFound)
}
