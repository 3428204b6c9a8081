package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherDrainsOnReconnect(t *testing.T) {
	fake := &fakeScorer{script: []error{&ServerError{Status: 502}}}
	core, _ := newTestCore(t, &testClock{t: testNow}, WithRemoteScorer(fake))
	uc := onboard(t, core)
	ctx := context.Background()

	out, err := core.CheckIns.Submit(ctx, uc, SubmitInput{Responses: calmResponses()})
	require.NoError(t, err)
	require.Equal(t, StatusQueued, out.Status)

	w := NewWatcher(core.Queue, fake, nil)
	assert.False(t, w.Online())

	fake.setOffline(true)
	assert.False(t, w.Check(ctx))
	assert.Equal(t, 1, fake.calls())

	fake.setOffline(false)
	assert.True(t, w.Check(ctx), "offline to online drains")
	assert.True(t, w.Online())
	n, err := core.Queue.Count(ctx, uc)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 2, fake.calls())

	assert.False(t, w.Check(ctx), "staying online does nothing")
	fake.setOffline(true)
	assert.False(t, w.Check(ctx))
	assert.False(t, w.Online())
	fake.setOffline(false)
	assert.True(t, w.Check(ctx))
	assert.Equal(t, 2, fake.calls(), "nothing left to drain")
}

func TestWatcherSchedule(t *testing.T) {
	core, _ := newTestCore(t, &testClock{t: testNow})
	w := NewWatcher(core.Queue, &fakeScorer{}, nil)

	assert.NoError(t, w.Start("off"))
	assert.NoError(t, w.Start(""))
	assert.Error(t, w.Start("every now and then"))

	require.NoError(t, w.Start("@every 1h"))
	w.Stop()
	w.Stop()
}
