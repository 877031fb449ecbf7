package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thehillman215/vectorbid/internal/apierrors"
)

type fakeProvider struct {
	name  string
	calls int
	fail  bool
	text  string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Complete(_ context.Context, _, _ string) (string, error) {
	f.calls++
	if f.fail {
		return "", apierrors.NewUpstream("fake", "forced failure", nil)
	}
	return f.text, nil
}

func TestLadderPrefersPrimary(t *testing.T) {
	primary := &fakeProvider{name: "primary", text: `{"ok":true}`}
	secondary := &fakeProvider{name: "secondary", text: `{"ok":false}`}
	ladder := NewLadder(primary, secondary)

	res, err := ladder.Complete(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, MethodPrimary, res.Method)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, secondary.calls)
}

func TestLadderFallsBackToSecondary(t *testing.T) {
	primary := &fakeProvider{name: "primary", fail: true}
	secondary := &fakeProvider{name: "secondary", text: `{"ok":true}`}
	ladder := NewLadder(primary, secondary)

	res, err := ladder.Complete(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, MethodSecondary, res.Method)
}

func TestLadderErrorsWhenBothFail(t *testing.T) {
	primary := &fakeProvider{name: "primary", fail: true}
	secondary := &fakeProvider{name: "secondary", fail: true}
	ladder := NewLadder(primary, secondary)

	_, err := ladder.Complete(context.Background(), "sys", "user")
	assert.Error(t, err)
}

func TestCachingLadderReusesResponse(t *testing.T) {
	primary := &fakeProvider{name: "primary", text: `{"ok":true}`}
	ladder := NewLadder(primary, nil)
	cached := NewCachingLadder(ladder, time.Minute)

	_, err := cached.Complete(context.Background(), "sys", "same")
	require.NoError(t, err)
	_, err = cached.Complete(context.Background(), "sys", "same")
	require.NoError(t, err)

	assert.Equal(t, 1, primary.calls)
}
