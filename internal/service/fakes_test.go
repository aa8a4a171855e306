package service

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/Skotchmaster/eshop/internal/events"
	"github.com/Skotchmaster/eshop/internal/images"
	"github.com/Skotchmaster/eshop/internal/models"
)

type recordedEvent struct {
	topic string
	event events.Event
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, topic, _ string, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, recordedEvent{topic: topic, event: ev})
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.event["type"].(string))
	}
	return out
}

type fakeImages struct {
	saved   map[string]string
	deleted []string
	err     error
}

func newFakeImages() *fakeImages {
	return &fakeImages{saved: map[string]string{}}
}

func (f *fakeImages) Save(_ context.Context, name, _ string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.saved[name] = string(b)
	return images.PublicPrefix + "/" + name, nil
}

func (f *fakeImages) Delete(_ context.Context, name string) error {
	f.deleted = append(f.deleted, name)
	delete(f.saved, name)
	return nil
}

type fakeIndex struct {
	indexed    map[uuid.UUID]string
	categories map[uuid.UUID]string
	hits       []uuid.UUID
	err        error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{indexed: map[uuid.UUID]string{}, categories: map[uuid.UUID]string{}}
}

func (f *fakeIndex) IndexProduct(_ context.Context, p *models.Product) error {
	if f.err != nil {
		return f.err
	}
	f.indexed[p.ID] = p.Name
	f.categories[p.ID] = ""
	if p.Category != nil {
		f.categories[p.ID] = p.Category.Name
	}
	return nil
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id uuid.UUID) error {
	delete(f.indexed, id)
	delete(f.categories, id)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ string, _, _ int) (int64, []uuid.UUID, error) {
	if f.err != nil {
		return 0, nil, f.err
	}
	return int64(len(f.hits)), f.hits, nil
}

type fakeCache struct {
	items map[uuid.UUID]models.Product
	gets  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[uuid.UUID]models.Product{}}
}

func (f *fakeCache) Get(_ context.Context, id uuid.UUID) (*models.Product, bool, error) {
	f.gets++
	p, ok := f.items[id]
	if !ok {
		return nil, false, nil
	}
	return &p, true, nil
}

func (f *fakeCache) Set(_ context.Context, p *models.Product) error {
	f.items[p.ID] = *p
	return nil
}

func (f *fakeCache) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.items, id)
	return nil
}

var errBoom = errors.New("boom")
