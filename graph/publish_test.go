package graph

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/c360studio/nidm-annotate/annotation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	subjects []string
	messages [][]byte
	err      error
}

func (r *recordingPublisher) PublishToStream(_ context.Context, subject string, data []byte) error {
	if r.err != nil {
		return r.err
	}
	r.subjects = append(r.subjects, subject)
	r.messages = append(r.messages, data)
	return nil
}

func TestEntities(t *testing.T) {
	e := NewEmitter()
	_, g := e.Emit(participantsMapping(), nil)

	entities := g.Entities()

	// 2 elements, 2 terms, 2 response option nodes, 2 choice nodes.
	require.Len(t, entities, 8)
	assert.Equal(t, e.ElementIRI(annotation.NewDescriptor("test", "age")), entities[0].EntityID())
	for _, ent := range entities {
		assert.NoError(t, ent.Validate())
		assert.Equal(t, EntityType, ent.Schema())
	}
}

func TestPublishDataElements(t *testing.T) {
	_, g := Emit(participantsMapping(), nil)
	pub := &recordingPublisher{}

	sent, err := PublishDataElements(context.Background(), pub, g)
	require.NoError(t, err)
	assert.Equal(t, 8, sent)
	for i, subject := range pub.subjects {
		assert.Equal(t, GraphIngestSubject, subject)
		assert.True(t, json.Valid(pub.messages[i]))
	}
}

func TestPublishDataElements_NilPublisher(t *testing.T) {
	_, g := Emit(participantsMapping(), nil)
	sent, err := PublishDataElements(context.Background(), nil, g)
	assert.NoError(t, err)
	assert.Zero(t, sent)
}

func TestPublishDataElements_Errors(t *testing.T) {
	_, g := Emit(participantsMapping(), nil)

	boom := errors.New("stream unavailable")
	_, err := PublishDataElements(context.Background(), &recordingPublisher{err: boom}, g)
	assert.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sent, err := PublishDataElements(ctx, &recordingPublisher{}, g)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, sent)
}
