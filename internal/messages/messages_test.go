package messages

import (
	"context"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionContext(t *testing.T) (*scs.SessionManager, context.Context) {
	sm := scs.New()
	sm.Store = memstore.NewWithCleanupInterval(time.Hour)
	ctx, err := sm.Load(context.Background(), "")
	require.NoError(t, err)
	return sm, ctx
}

func TestSessionQueue_AddAndDrain(t *testing.T) {
	sm, ctx := newSessionContext(t)
	queue := NewSessionQueue(sm)

	queue.Add(ctx, Success("the link has been added successfully"))
	queue.Add(ctx, Error("Article not found!"))

	drained := queue.Drain(ctx)
	require.Len(t, drained, 2)
	assert.Equal(t, ClassSuccess, drained[0].Class)
	assert.Equal(t, "Article not found!", drained[1].Text)

	assert.Empty(t, queue.Drain(ctx))
}

func TestSessionQueue_WithoutSession(t *testing.T) {
	queue := NewSessionQueue(scs.New())

	assert.NotPanics(t, func() {
		queue.Add(context.Background(), Info("no session"))
	})
	assert.Nil(t, queue.Drain(context.Background()))
}

func TestRecorder(t *testing.T) {
	var rec Recorder
	rec.Add(context.Background(), Warning("w"))
	rec.Add(context.Background(), Success("s"))

	assert.Equal(t, []Message{Warning("w"), Success("s")}, rec.Messages)
}
