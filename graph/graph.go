// Package graph holds the in-memory semantic graph of data elements and
// publishes its entities to the knowledge graph.
package graph

import (
	"fmt"
	"sync"

	"github.com/c360studio/nidm-annotate/vocabulary/nidm"
	"github.com/c360studio/semstreams/message"
)

type tripleKey struct {
	subject   string
	predicate string
	object    string
}

func keyOf(t message.Triple) tripleKey {
	return tripleKey{subject: t.Subject, predicate: t.Predicate, object: objectString(t.Object)}
}

func objectString(o any) string {
	if s, ok := o.(string); ok {
		return s
	}
	return fmt.Sprint(o)
}

// Graph is an append-only set of triples. Identical (subject, predicate,
// object) statements are stored once; iteration follows insertion order.
// It is safe for concurrent use.
type Graph struct {
	mu      sync.RWMutex
	triples []message.Triple
	index   map[tripleKey]struct{}
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{index: make(map[tripleKey]struct{})}
}

// Add inserts triples under a single lock and returns how many were new.
// Callers that add everything about one entity in one call cannot have it
// interleaved with another writer.
func (g *Graph) Add(triples ...message.Triple) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	added := 0
	for _, t := range triples {
		k := keyOf(t)
		if _, dup := g.index[k]; dup {
			continue
		}
		g.index[k] = struct{}{}
		g.triples = append(g.triples, t)
		added++
	}
	return added
}

// Len returns the number of distinct triples.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.triples)
}

// Triples returns a copy of every triple in insertion order.
func (g *Graph) Triples() []message.Triple {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]message.Triple, len(g.triples))
	copy(out, g.triples)
	return out
}

// Match returns the triples matching the pattern. An empty string matches
// any value in that position.
func (g *Graph) Match(subject, predicate, object string) []message.Triple {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.match(subject, predicate, object)
}

func (g *Graph) match(subject, predicate, object string) []message.Triple {
	var out []message.Triple
	for _, t := range g.triples {
		if subject != "" && t.Subject != subject {
			continue
		}
		if predicate != "" && t.Predicate != predicate {
			continue
		}
		if object != "" && objectString(t.Object) != object {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Subjects returns the distinct subjects in first-seen order.
func (g *Graph) Subjects() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, t := range g.triples {
		if !seen[t.Subject] {
			seen[t.Subject] = true
			out = append(out, t.Subject)
		}
	}
	return out
}

// SubclassClosure returns class followed by every class that reaches it
// through one or more subclass statements.
func (g *Graph) SubclassClosure(class string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.subclassClosure(class)
}

func (g *Graph) subclassClosure(class string) []string {
	closure := []string{class}
	seen := map[string]bool{class: true}
	for i := 0; i < len(closure); i++ {
		for _, t := range g.match("", nidm.ClassSubClassOf, closure[i]) {
			if !seen[t.Subject] {
				seen[t.Subject] = true
				closure = append(closure, t.Subject)
			}
		}
	}
	return closure
}

// InstancesOf returns the subjects typed by class or any of its subclasses.
func (g *Graph) InstancesOf(class string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.instancesOf(class)
}

func (g *Graph) instancesOf(class string) []string {
	classes := make(map[string]bool)
	for _, c := range g.subclassClosure(class) {
		classes[c] = true
	}

	seen := make(map[string]bool)
	var out []string
	for _, t := range g.triples {
		if t.Predicate != nidm.Type || seen[t.Subject] {
			continue
		}
		if classes[objectString(t.Object)] {
			seen[t.Subject] = true
			out = append(out, t.Subject)
		}
	}
	return out
}

// DataElementTriples enumerates every (entity, property, value) statement
// of every entity that is a DataElement, directly or through subclassing.
func (g *Graph) DataElementTriples() []message.Triple {
	g.mu.RLock()
	defer g.mu.RUnlock()

	elements := make(map[string]bool)
	for _, s := range g.instancesOf(nidm.ClassDataElement) {
		elements[s] = true
	}

	var out []message.Triple
	for _, t := range g.triples {
		if elements[t.Subject] {
			out = append(out, t)
		}
	}
	return out
}
