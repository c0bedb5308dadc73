package post

import (
	"context"
	"fmt"
	"sync"

	"github.com/astravon/portal/core"
)

// Source is the remote side of a Feed.
type Source interface {
	FetchPosts(ctx context.Context) ([]Post, error)
	// DeletePost returns an error carrying the server message unless the server confirmed the deletion.
	DeletePost(ctx context.Context, id int) error
}

// Feed is the client-side post list kept in sync with the server.
//
// Every refresh takes a sequence number and its response is only applied when no newer
// refresh was applied before it, so a slow stale response never overwrites fresher data.
// Signals received while a refresh is running are coalesced into one follow-up refresh.
type Feed struct {
	src    Source
	logger core.Logger

	mu       sync.Mutex
	posts    []Post
	err      error
	issued   uint64
	applied  uint64
	running  bool
	dirty    bool
	onChange func([]Post)
	idle     *sync.Cond // broadcast when the signal runner stops
}

func NewFeed(src Source, logger core.Logger) *Feed {
	f := &Feed{src: src, logger: logger, posts: []Post{}}
	f.idle = sync.NewCond(&f.mu)
	return f
}

// OnChange registers fn to be called with a copy of the list after each change.
func (f *Feed) OnChange(fn func([]Post)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onChange = fn
}

// Posts returns a copy of the current list.
func (f *Feed) Posts() []Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Post(nil), f.posts...)
}

// Version returns the sequence number of the refresh the list comes from.
func (f *Feed) Version() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.applied
}

// Err returns the error of the last applied refresh.
func (f *Feed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Refresh fetches the full list and replaces the current one.
// A failed fetch leaves an empty list and is returned; it is never fatal to the caller.
func (f *Feed) Refresh(ctx context.Context) error {
	f.mu.Lock()
	f.issued++
	seq := f.issued
	f.mu.Unlock()

	posts, err := f.src.FetchPosts(ctx)
	if err != nil {
		f.logger.Warn(fmt.Sprintf("fetching posts: %v", err), err)
		posts = []Post{}
	}
	if posts == nil {
		posts = []Post{}
	}
	f.apply(seq, posts, err)
	return err
}

func (f *Feed) apply(seq uint64, posts []Post, err error) {
	f.mu.Lock()
	if seq <= f.applied {
		f.mu.Unlock()
		f.logger.Debug(fmt.Sprintf("discarding stale posts response #%d (applied #%d)", seq, f.applied))
		return
	}
	f.applied = seq
	f.posts = posts
	f.err = err
	notify := f.onChange
	snapshot := append([]Post(nil), posts...)
	f.mu.Unlock()

	if notify != nil {
		notify(snapshot)
	}
}

// Signal asks for a refresh without blocking.
// While a refresh runs, further signals are merged into a single follow-up refresh.
func (f *Feed) Signal(ctx context.Context) {
	f.mu.Lock()
	if f.running {
		f.dirty = true
		f.mu.Unlock()
		return
	}
	f.running = true
	f.mu.Unlock()

	go func() {
		for {
			_ = f.Refresh(ctx)

			f.mu.Lock()
			if !f.dirty || ctx.Err() != nil {
				f.running, f.dirty = false, false
				f.idle.Broadcast()
				f.mu.Unlock()
				return
			}
			f.dirty = false
			f.mu.Unlock()
		}
	}()
}

// Wait blocks until no signaled refresh is running. It may be called while signals still arrive.
func (f *Feed) Wait() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for f.running {
		f.idle.Wait()
	}
}

// Delete asks the server to delete a post and drops it from the list once confirmed.
// On failure the list is left untouched and the error is returned.
func (f *Feed) Delete(ctx context.Context, id int) error {
	if err := f.src.DeletePost(ctx, id); err != nil {
		return err
	}

	f.mu.Lock()
	kept := make([]Post, 0, len(f.posts))
	for _, p := range f.posts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	f.posts = kept
	notify := f.onChange
	snapshot := append([]Post(nil), kept...)
	f.mu.Unlock()

	if notify != nil {
		notify(snapshot)
	}
	return nil
}
