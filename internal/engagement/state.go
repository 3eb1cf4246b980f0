package engagement

import (
	"context"
	"sync"

	"quilog/internal/models"
)

// Status describes the outcome of a State lookup.
type Status int

const (
	// StatusLoading means no feed has been loaded yet.
	StatusLoading Status = iota
	// StatusReady means the post was found.
	StatusReady
	// StatusNotFound means a feed is loaded and the post is not in it.
	StatusNotFound
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// State holds the last assembled feed. Every view of a post reads the same
// entry, so applying a change here updates them all. State implements
// Listener.
type State struct {
	mu     sync.RWMutex
	loaded bool
	order  []string
	posts  map[string]*models.Post

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(postID string)
}

// NewState returns an empty State in StatusLoading.
func NewState() *State {
	return &State{
		posts: make(map[string]*models.Post),
		subs:  make(map[int]func(string)),
	}
}

// Load replaces the held feed with posts, keeping their order.
func (s *State) Load(posts []*models.Post) {
	s.mu.Lock()
	s.loaded = true
	s.order = make([]string, 0, len(posts))
	s.posts = make(map[string]*models.Post, len(posts))
	for _, p := range posts {
		if _, dup := s.posts[p.ID]; !dup {
			s.order = append(s.order, p.ID)
		}
		cp := *p
		cp.Normalize()
		s.posts[p.ID] = &cp
	}
	s.mu.Unlock()
	s.notify("")
}

// Loaded reports whether a feed has been loaded.
func (s *State) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Lookup returns a copy of the post and the lookup status.
func (s *State) Lookup(id string) (models.Post, Status) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return models.Post{}, StatusLoading
	}
	p, ok := s.posts[id]
	if !ok {
		return models.Post{}, StatusNotFound
	}
	return copyPost(p), StatusReady
}

// Posts returns copies of the held posts in feed order.
func (s *State) Posts() []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Post, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, copyPost(s.posts[id]))
	}
	return out
}

// Subscribe registers fn to run after every change. postID is empty when
// the whole feed was reloaded. The returned func unsubscribes.
func (s *State) Subscribe(fn func(postID string)) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// LikesChanged replaces the post's like set.
func (s *State) LikesChanged(_ context.Context, postID string, likes []string) {
	if !s.update(postID, func(p *models.Post) {
		p.Likes = append([]string{}, likes...)
	}) {
		return
	}
	s.notify(postID)
}

// CommentAppended adds the comment id to the post's comment set.
func (s *State) CommentAppended(_ context.Context, postID string, comment *models.Comment) {
	if comment == nil {
		return
	}
	if !s.update(postID, func(p *models.Post) {
		if !contains(p.Comments, comment.ID) {
			p.Comments = append(p.Comments, comment.ID)
		}
	}) {
		return
	}
	s.notify(postID)
}

func (s *State) update(postID string, fn func(*models.Post)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return false
	}
	fn(p)
	return true
}

func (s *State) notify(postID string) {
	s.subMu.Lock()
	fns := make([]func(string), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(postID)
	}
}

func copyPost(p *models.Post) models.Post {
	cp := *p
	cp.Likes = append([]string{}, p.Likes...)
	cp.Comments = append([]string{}, p.Comments...)
	return cp
}
