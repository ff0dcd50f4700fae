package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/c360studio/nidm-annotate/vocabulary/nidm"
	"github.com/c360studio/semstreams/message"
)

// GraphIngestSubject is the stream subject entities are published to.
const GraphIngestSubject = "graph.ingest.entity"

// StreamPublisher publishes to a JetStream subject. *natsclient.Client
// satisfies it.
type StreamPublisher interface {
	PublishToStream(ctx context.Context, subject string, data []byte) error
}

// Entities groups the triples of every data element, and of every node
// reachable from one, into payloads keyed by subject.
func (g *Graph) Entities() []*EntityPayload {
	g.mu.RLock()
	defer g.mu.RUnlock()

	bySubject := make(map[string][]message.Triple)
	for _, t := range g.triples {
		bySubject[t.Subject] = append(bySubject[t.Subject], t)
	}

	now := time.Now()
	seen := make(map[string]bool)
	var out []*EntityPayload

	queue := g.instancesOf(nidm.ClassDataElement)
	for len(queue) > 0 {
		subject := queue[0]
		queue = queue[1:]
		if seen[subject] {
			continue
		}
		seen[subject] = true

		triples := bySubject[subject]
		out = append(out, &EntityPayload{EntityID_: subject, TripleData: triples, UpdatedAt: now})

		for _, t := range triples {
			if o, ok := t.Object.(string); ok && t.Predicate != nidm.Type && len(bySubject[o]) > 0 {
				queue = append(queue, o)
			}
		}
	}
	return out
}

// PublishDataElements publishes every data element entity in g to the graph
// ingestion stream and returns how many entities were sent. A nil publisher
// skips publishing.
func PublishDataElements(ctx context.Context, pub StreamPublisher, g *Graph) (int, error) {
	if pub == nil || g == nil {
		return 0, nil
	}

	sent := 0
	for _, entity := range g.Entities() {
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		msg := message.NewBaseMessage(EntityType, entity, EmitterSource)
		data, err := json.Marshal(msg)
		if err != nil {
			return sent, fmt.Errorf("marshal entity %s: %w", entity.EntityID_, err)
		}
		if err := pub.PublishToStream(ctx, GraphIngestSubject, data); err != nil {
			return sent, fmt.Errorf("publish entity %s: %w", entity.EntityID_, err)
		}
		sent++
	}
	return sent, nil
}
