package draft

import (
	"context"
	"errors"
	"sync"
	"time"
)

var errBackend = errors.New("backend unavailable")

type storedPost struct {
	rec         Record
	published   bool
	publishedAt *time.Time
	tags        []uint
}

// fakeStore is an in-memory Store that records every call.
type fakeStore struct {
	mu     sync.Mutex
	nextID uint
	posts  map[uint]*storedPost
	calls  []string

	insertErr     error
	updateErr     error
	deleteTagsErr error
	insertTagsErr error

	// block, when set, is received from before every InsertPost/UpdatePost returns.
	block chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{posts: make(map[uint]*storedPost)}
}

func (f *fakeStore) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeStore) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeStore) count(call string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeStore) reset() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

func (f *fakeStore) post(id uint) *storedPost {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil
	}
	cp := *p
	cp.tags = append([]uint(nil), p.tags...)
	return &cp
}

func (f *fakeStore) seed(authorID uint, d Draft, publishedAt *time.Time) uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := f.nextID
	f.posts[id] = &storedPost{
		rec:         BuildRecord(d, Author{UserID: authorID}, nil),
		published:   d.Published,
		publishedAt: publishedAt,
		tags:        NormalizeTagIDs(d.TagIDs),
	}
	return id
}

func (f *fakeStore) wait() {
	if f.block != nil {
		<-f.block
	}
}

func (f *fakeStore) FindPost(_ context.Context, id, authorID uint) (*Snapshot, error) {
	f.record("find")
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok || p.rec.AuthorID != authorID {
		return nil, ErrPostNotFound
	}
	d := Draft{
		ID:            id,
		Title:         p.rec.Title,
		Content:       p.rec.Content,
		ContentFormat: p.rec.ContentFormat,
		CategoryID:    p.rec.CategoryID,
		TagIDs:        append([]uint(nil), p.tags...),
		Published:     p.published,
		Language:      p.rec.Language,
	}
	if p.rec.Excerpt != nil {
		d.Excerpt = *p.rec.Excerpt
	}
	if p.rec.FeaturedImage != nil {
		d.FeaturedImage = *p.rec.FeaturedImage
	}
	return &Snapshot{Draft: d, PublishedAt: p.publishedAt}, nil
}

func (f *fakeStore) InsertPost(_ context.Context, rec Record) (uint, error) {
	f.record("insert")
	f.wait()
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p := &storedPost{rec: rec}
	if rec.Publish != nil {
		p.published = rec.Publish.Published
		p.publishedAt = rec.Publish.PublishedAt
	}
	f.posts[f.nextID] = p
	return f.nextID, nil
}

func (f *fakeStore) UpdatePost(_ context.Context, id uint, rec Record) error {
	f.record("update")
	f.wait()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return ErrPostNotFound
	}
	p.rec = rec
	if rec.Publish != nil {
		p.published = rec.Publish.Published
		p.publishedAt = rec.Publish.PublishedAt
	}
	return nil
}

func (f *fakeStore) DeletePostTags(_ context.Context, postID uint) error {
	f.record("delete_tags")
	if f.deleteTagsErr != nil {
		return f.deleteTagsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.posts[postID]; ok {
		p.tags = nil
	}
	return nil
}

func (f *fakeStore) InsertPostTags(_ context.Context, postID uint, tagIDs []uint) error {
	f.record("insert_tags")
	if f.insertTagsErr != nil {
		return f.insertTagsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.posts[postID]; ok {
		p.tags = append(p.tags, tagIDs...)
	}
	return nil
}

// replacingStore adds the atomic tag swap on top of fakeStore.
type replacingStore struct {
	*fakeStore
}

func (r replacingStore) ReplacePostTags(_ context.Context, postID uint, tagIDs []uint) error {
	r.record("replace_tags")
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.posts[postID]; ok {
		p.tags = append([]uint(nil), tagIDs...)
	}
	return nil
}

type countingObserver struct {
	mu       sync.Mutex
	ticks    map[TickOutcome]int
	submits  int
	failures int
	open     int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{ticks: make(map[TickOutcome]int)}
}

func (o *countingObserver) AutosaveTick(outcome TickOutcome) {
	o.mu.Lock()
	o.ticks[outcome]++
	o.mu.Unlock()
}

func (o *countingObserver) Submitted(err error) {
	o.mu.Lock()
	if err != nil {
		o.failures++
	} else {
		o.submits++
	}
	o.mu.Unlock()
}

func (o *countingObserver) SessionsOpen(n int) {
	o.mu.Lock()
	o.open = n
	o.mu.Unlock()
}

func (o *countingObserver) tick(outcome TickOutcome) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ticks[outcome]
}
