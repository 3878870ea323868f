package service

import (
	"context"
	"errors"
	"sync"

	"tigaraksa-chat-be/internal/entity"
	"tigaraksa-chat-be/internal/repository/specification"
	"tigaraksa-chat-be/pkg/events"
)

type fakeImageRepo struct {
	mu sync.Mutex

	images        map[int64]*entity.ImageCandidate
	findErr       error
	updateErr     error
	updates       map[int64][]float32
	keywordCalls  int
	anyCalls      int
	lastTerms     []string
	keywordResult []*entity.ImageCandidate
}

func newFakeImageRepo(images ...*entity.ImageCandidate) *fakeImageRepo {
	r := &fakeImageRepo{images: map[int64]*entity.ImageCandidate{}, updates: map[int64][]float32{}}
	for _, img := range images {
		r.images[img.Id] = img
	}
	return r
}

func (r *fakeImageRepo) SearchSimilar(context.Context, []float32, int) ([]*entity.ImageCandidate, error) {
	return nil, nil
}

func (r *fakeImageRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.ImageCandidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, spec := range specs {
		if byID, ok := spec.(specification.ByID); ok {
			if img, ok := r.images[byID.ID]; ok {
				return []*entity.ImageCandidate{img}, nil
			}
			return nil, nil
		}
	}
	out := make([]*entity.ImageCandidate, 0, len(r.images))
	for _, img := range r.images {
		out = append(out, img)
	}
	return out, nil
}

func (r *fakeImageRepo) SearchByKeyword(_ context.Context, _ string, terms []string, _ int) ([]*entity.ImageCandidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keywordCalls++
	r.lastTerms = terms
	return r.keywordResult, nil
}

func (r *fakeImageRepo) SearchByAnyKeyword(_ context.Context, terms []string, _ int) ([]*entity.ImageCandidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.anyCalls++
	r.lastTerms = terms
	return r.keywordResult, nil
}

func (r *fakeImageRepo) FindMissingEmbeddings(context.Context, int) ([]*entity.ImageCandidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ImageCandidate
	for id, img := range r.images {
		if _, done := r.updates[id]; !done {
			out = append(out, img)
		}
	}
	return out, nil
}

func (r *fakeImageRepo) UpdateEmbedding(_ context.Context, id int64, vector []float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updates[id] = vector
	return nil
}

func (r *fakeImageRepo) Count(context.Context, ...specification.Specification) (int64, error) {
	return int64(len(r.images)), nil
}

func (r *fakeImageRepo) updated(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.updates[id]
	return ok
}

type recordingPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, payload)
	return nil
}

type recordingEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingEvents) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingEvents) Close() {}

type stubEmbedder struct {
	mu    sync.Mutex
	err   error
	texts []string
}

func (e *stubEmbedder) Model() string { return "stub" }

func (e *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.texts = append(e.texts, text)
	if e.err != nil {
		return nil, e.err
	}
	return []float32{1, 0, 0}, nil
}

var errBoom = errors.New("boom")
