package providers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Callmedas69/ssa-sub000/internal/domain"
	"github.com/Callmedas69/ssa-sub000/internal/ports"
)

// scriptedAdapter returns queued outcomes in order, then repeats the last.
type scriptedAdapter struct {
	id       string
	outcomes []error
	calls    int
	delay    time.Duration
}

func (s *scriptedAdapter) ProviderID() string { return s.id }

func (s *scriptedAdapter) Fetch(ctx context.Context, _ string) (*domain.RawResult, error) {
	idx := s.calls
	s.calls++
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	if idx >= len(s.outcomes) {
		idx = len(s.outcomes) - 1
	}
	if err := s.outcomes[idx]; err != nil {
		return nil, err
	}
	return &domain.RawResult{Score: 42}, nil
}

// TestChainOrder verifies that the first middleware listed becomes the
// outermost wrapper.
func TestChainOrder(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next ports.ProviderAdapter) ports.ProviderAdapter {
			return &taggedAdapter{next: next, name: name, order: &order}
		}
	}

	base := &scriptedAdapter{id: "p", outcomes: []error{nil}}
	adapter := Chain(base, tag("outer"), tag("inner"))

	_, err := adapter.Fetch(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, order)
	assert.Equal(t, "p", adapter.ProviderID())
}

type taggedAdapter struct {
	next  ports.ProviderAdapter
	name  string
	order *[]string
}

func (a *taggedAdapter) ProviderID() string { return a.next.ProviderID() }

func (a *taggedAdapter) Fetch(ctx context.Context, input string) (*domain.RawResult, error) {
	*a.order = append(*a.order, a.name)
	return a.next.Fetch(ctx, input)
}

// TestRetryMiddleware verifies retry behavior across the outcome taxonomy:
// transient faults retry up to the budget, terminal outcomes never do.
func TestRetryMiddleware(t *testing.T) {
	transient := ports.NewAdapterError("p", "fetch", ports.ErrServiceUnavailable)

	testCases := []struct {
		name      string
		outcomes  []error
		wantCalls int
		wantErr   error
	}{
		{
			name:      "transient fault recovers within the budget",
			outcomes:  []error{transient, transient, nil},
			wantCalls: 3,
		},
		{
			name:      "budget exhausted returns the last fault",
			outcomes:  []error{transient},
			wantCalls: 3,
			wantErr:   ports.ErrServiceUnavailable,
		},
		{
			name:      "unknown subject is never retried",
			outcomes:  []error{ports.NewAdapterError("p", "fetch", ports.ErrSubjectUnknown)},
			wantCalls: 1,
			wantErr:   ports.ErrSubjectUnknown,
		},
		{
			name:      "missing credential is never retried",
			outcomes:  []error{ports.NewAdapterError("p", "fetch", ports.ErrMissingCredential)},
			wantCalls: 1,
			wantErr:   ports.ErrMissingCredential,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			base := &scriptedAdapter{id: "p", outcomes: tc.outcomes}
			adapter := RetryMiddleware(2, time.Millisecond, 5*time.Millisecond)(base)

			res, err := adapter.Fetch(context.Background(), "x")
			assert.Equal(t, tc.wantCalls, base.calls)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 42.0, res.Score)
		})
	}
}

// TestRetryMiddlewareHonorsContext verifies that cancellation stops the
// retry loop instead of sleeping through it.
func TestRetryMiddlewareHonorsContext(t *testing.T) {
	transient := ports.NewAdapterError("p", "fetch", ports.ErrServiceUnavailable)
	base := &scriptedAdapter{id: "p", outcomes: []error{transient}}
	adapter := RetryMiddleware(5, time.Hour, time.Hour)(base)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := adapter.Fetch(ctx, "x")
	require.Error(t, err)
	assert.Equal(t, 1, base.calls)
}

// TestTimeoutMiddleware verifies that a stalled fetch maps onto the timeout
// error rather than a raw deadline fault.
func TestTimeoutMiddleware(t *testing.T) {
	base := &scriptedAdapter{id: "p", outcomes: []error{nil}, delay: time.Second}
	adapter := TimeoutMiddleware(10 * time.Millisecond)(base)

	_, err := adapter.Fetch(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrTimeout)
}

// TestTimeoutMiddlewarePassesFastResults verifies the happy path is
// untouched by the deadline.
func TestTimeoutMiddlewarePassesFastResults(t *testing.T) {
	base := &scriptedAdapter{id: "p", outcomes: []error{nil}}
	adapter := TimeoutMiddleware(time.Second)(base)

	res, err := adapter.Fetch(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 42.0, res.Score)
}

// TestRateLimitMiddleware verifies that fetches wait for tokens but still
// complete, and that cancellation interrupts the wait.
func TestRateLimitMiddleware(t *testing.T) {
	t.Run("burst proceeds immediately", func(t *testing.T) {
		base := &scriptedAdapter{id: "p", outcomes: []error{nil}}
		adapter := RateLimitMiddleware(1, 2)(base)

		for range 2 {
			_, err := adapter.Fetch(context.Background(), "x")
			require.NoError(t, err)
		}
	})

	t.Run("cancelled wait returns an error", func(t *testing.T) {
		base := &scriptedAdapter{id: "p", outcomes: []error{nil}}
		adapter := RateLimitMiddleware(0.001, 1)(base)

		_, err := adapter.Fetch(context.Background(), "x")
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err = adapter.Fetch(ctx, "x")
		require.Error(t, err)
		assert.Equal(t, 1, base.calls, "the inner adapter must not be called without a token")
	})
}
