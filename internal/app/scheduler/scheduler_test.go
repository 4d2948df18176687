package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLister struct {
	codes []string
	err   error
}

func (s stubLister) ActiveCodes(ctx context.Context) ([]string, error) {
	return s.codes, s.err
}

type stubIngester struct {
	got   []string
	calls int
}

func (s *stubIngester) IngestAll(ctx context.Context, symbols []string) (int, error) {
	s.calls++
	s.got = symbols
	return 0, nil
}

func TestNew_InvalidSpec(t *testing.T) {
	_, err := New("every other tuesday", stubLister{}, &stubIngester{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ingest schedule")
}

func TestScheduler_RunOnce(t *testing.T) {
	tests := []struct {
		name      string
		lister    stubLister
		wantCalls int
	}{
		{"ingests active codes", stubLister{codes: []string{"AAPL", "MSFT"}}, 1},
		{"empty watchlist", stubLister{}, 0},
		{"lister error", stubLister{err: errors.New("db down")}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ing := &stubIngester{}
			s, err := New("0 7 * * 1-5", tt.lister, ing)
			require.NoError(t, err)

			s.RunOnce()

			assert.Equal(t, tt.wantCalls, ing.calls)
			if tt.wantCalls > 0 {
				assert.Equal(t, tt.lister.codes, ing.got)
			}
		})
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s, err := New("@daily", stubLister{}, &stubIngester{})
	require.NoError(t, err)

	s.Start()
	s.Stop()

	assert.Error(t, s.ctx.Err())
}
