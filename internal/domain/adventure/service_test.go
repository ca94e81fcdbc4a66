package adventure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/adventure-ai/pkg/errors"
	"github.com/yanqian/adventure-ai/pkg/retry"
)

const validCompletion = `{"title":"Vineyard walk","description":"A gentle loop through the vines.","location":"Saint-Émilion","tags":["hiking","wine"],"difficulty":"easy","duration_minutes":120,"distance_km":7.5,"latitude":44.894,"longitude":-0.155}`

func TestGenerateSuccess(t *testing.T) {
	completer := &stubCompleter{responses: []string{validCompletion}}
	svc, sleeps := newServiceUnderTest(completer)

	adv, err := svc.Generate(context.Background(), Request{Prompt: "A wine walk near Bordeaux"})
	require.NoError(t, err)
	require.Equal(t, "Vineyard walk", adv.Title)
	require.Equal(t, []string{"hiking", "wine"}, adv.Tags)
	require.Equal(t, 120, adv.DurationMinutes)
	require.Equal(t, 1, completer.calls)
	require.Empty(t, sleeps.waits)
	require.Contains(t, completer.instructions[0], "A wine walk near Bordeaux")
}

func TestGenerateRejectsShortPrompts(t *testing.T) {
	for _, prompt := range []string{"", "    ", "abcd", "  ab  ", "\tabc\n", "éèàç"} {
		completer := &stubCompleter{responses: []string{validCompletion}}
		svc, _ := newServiceUnderTest(completer)

		_, err := svc.Generate(context.Background(), Request{Prompt: prompt})
		require.Error(t, err, "prompt %q", prompt)
		require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidPrompt), "prompt %q", prompt)
		require.Zero(t, completer.calls, "prompt %q", prompt)
	}
}

func TestGenerateAcceptsFiveCharacterPrompt(t *testing.T) {
	completer := &stubCompleter{responses: []string{validCompletion}}
	svc, _ := newServiceUnderTest(completer)

	_, err := svc.Generate(context.Background(), Request{Prompt: "  kayak  "})
	require.NoError(t, err)
	require.Equal(t, 1, completer.calls)
}

func TestGenerateRetriesTransientProviderFailures(t *testing.T) {
	completer := &stubCompleter{
		errs:      []error{errors.New("connection reset"), errors.New("status=502")},
		responses: []string{"", "", validCompletion},
	}
	svc, sleeps := newServiceUnderTest(completer)

	adv, err := svc.Generate(context.Background(), Request{Prompt: "Kayak on the Dordogne"})
	require.NoError(t, err)
	require.Equal(t, "Vineyard walk", adv.Title)
	require.Equal(t, 3, completer.calls)
	require.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, sleeps.waits)
	require.GreaterOrEqual(t, sleeps.total(), 6*time.Second)
}

func TestGenerateProviderUnavailableAfterRetries(t *testing.T) {
	completer := &stubCompleter{
		errs: []error{errors.New("timeout"), errors.New("timeout"), errors.New("status=503 body=overloaded")},
	}
	svc, sleeps := newServiceUnderTest(completer)

	adv, err := svc.Generate(context.Background(), Request{Prompt: "Climbing in the Pyrenees"})
	require.Error(t, err)
	require.Equal(t, Adventure{}, adv)
	require.True(t, apperrors.IsCode(err, apperrors.CodeProviderUnavailable))
	require.Contains(t, err.Error(), "overloaded")
	require.Equal(t, 3, completer.calls)
	require.Len(t, sleeps.waits, 2)
}

func TestGenerateDoesNotRetryMalformedResponses(t *testing.T) {
	missingLatitude := strings.Replace(validCompletion, `"latitude":44.894,`, "", 1)
	for _, raw := range []string{"Sure! Here is your adventure.", missingLatitude, `{"title":`} {
		completer := &stubCompleter{responses: []string{raw, validCompletion}}
		svc, sleeps := newServiceUnderTest(completer)

		_, err := svc.Generate(context.Background(), Request{Prompt: "Coastal hike in Biarritz"})
		require.Error(t, err)
		require.True(t, apperrors.IsCode(err, apperrors.CodeProcessing), "raw %q", raw)
		require.ErrorIs(t, err, ErrSchemaViolation)
		require.Equal(t, 1, completer.calls)
		require.Empty(t, sleeps.waits)
	}
}

func TestGenerateNormalizesPanics(t *testing.T) {
	svc, _ := newServiceUnderTest(panicCompleter{})

	_, err := svc.Generate(context.Background(), Request{Prompt: "Cycling along the Loire"})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeProcessing))
}

func TestGenerateAppliesAttemptTimeout(t *testing.T) {
	completer := &deadlineCompleter{}
	svc, _ := newServiceUnderTest(completer)
	svc.cfg.AttemptTimeout = 30 * time.Second

	_, err := svc.Generate(context.Background(), Request{Prompt: "Cycling along the Loire"})
	require.NoError(t, err)
	require.True(t, completer.hadDeadline)
}

func TestGenerateCancelledContext(t *testing.T) {
	completer := &stubCompleter{errs: []error{errors.New("first failure")}}
	svc, _ := newServiceUnderTest(completer)
	svc.cfg.Retry.Sleep = nil
	svc.cfg.Retry.BaseDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Generate(ctx, Request{Prompt: "Night walk in Fronsac"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeProviderUnavailable))
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, completer.calls)
}

func newServiceUnderTest(completer Completer) (*service, *sleepRecorder) {
	sleeps := &sleepRecorder{}
	policy := retry.Default()
	policy.Sleep = sleeps.sleep
	return &service{
		cfg:       Config{Retry: policy},
		prompts:   NewPromptBuilder(""),
		completer: completer,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, sleeps
}

type stubCompleter struct {
	responses    []string
	errs         []error
	calls        int
	instructions []string
}

func (s *stubCompleter) Complete(ctx context.Context, instruction string) (string, error) {
	idx := s.calls
	s.calls++
	s.instructions = append(s.instructions, instruction)
	if idx < len(s.errs) && s.errs[idx] != nil {
		return "", s.errs[idx]
	}
	if idx < len(s.responses) {
		return s.responses[idx], nil
	}
	return "", errors.New("no scripted response")
}

type panicCompleter struct{}

func (panicCompleter) Complete(ctx context.Context, instruction string) (string, error) {
	panic("provider client misconfigured")
}

type deadlineCompleter struct {
	hadDeadline bool
}

func (d *deadlineCompleter) Complete(ctx context.Context, instruction string) (string, error) {
	_, d.hadDeadline = ctx.Deadline()
	return validCompletion, nil
}

type sleepRecorder struct {
	waits []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return ctx.Err()
}

func (r *sleepRecorder) total() time.Duration {
	var sum time.Duration
	for _, w := range r.waits {
		sum += w
	}
	return sum
}
