// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"context"
	"sync"

	"quilog/internal/models"
	"quilog/internal/repository"
)

// Hook runs before every store operation. op is "<collection>.<Method>";
// a non-nil error fails the operation without touching state.
type Hook func(ctx context.Context, op string, ids ...string) error

// MemStore is an in-memory document store with the same set semantics as
// the real backends. Safe for concurrent use.
type MemStore struct {
	mu           sync.Mutex
	posts        map[string]*models.Post
	postOrder    []string
	comments     map[string]*models.Comment
	commentOrder []string
	users        map[string]*models.Profile
	calls        map[string]int
	hook         Hook
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		posts:    map[string]*models.Post{},
		comments: map[string]*models.Comment{},
		users:    map[string]*models.Profile{},
		calls:    map[string]int{},
	}
}

// SetHook installs h for subsequent operations.
func (m *MemStore) SetHook(h Hook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hook = h
}

// Calls returns how many times op was invoked.
func (m *MemStore) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// Store returns repository views over m. With linker set the comment
// repository also implements repository.CommentLinker.
func (m *MemStore) Store(linker bool) *repository.Store {
	var comments repository.CommentRepository = memComments{m}
	if linker {
		comments = memLinkingComments{memComments{m}}
	}
	return &repository.Store{
		Backend:  "memory",
		Posts:    memPosts{m},
		Comments: comments,
		Users:    memUsers{m},
	}
}

// PutPost stores a copy of p, replacing any post with the same id.
func (m *MemStore) PutPost(p models.Post) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putPost(&p)
}

// PutComment stores a copy of c.
func (m *MemStore) PutComment(c models.Comment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putComment(&c)
}

// PutUser stores a copy of p.
func (m *MemStore) PutUser(p models.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := p
	m.users[p.ID] = &cp
}

// Post returns a copy of the stored post.
func (m *MemStore) Post(id string) (models.Post, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return models.Post{}, false
	}
	return clonePost(p), true
}

// CommentCount returns the number of stored comment documents.
func (m *MemStore) CommentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.comments)
}

func (m *MemStore) enter(ctx context.Context, op string, ids ...string) error {
	m.mu.Lock()
	m.calls[op]++
	h := m.hook
	m.mu.Unlock()
	if h != nil {
		return h(ctx, op, ids...)
	}
	return ctx.Err()
}

func (m *MemStore) putPost(p *models.Post) {
	if _, ok := m.posts[p.ID]; !ok {
		m.postOrder = append(m.postOrder, p.ID)
	}
	cp := clonePost(p)
	m.posts[p.ID] = &cp
}

func (m *MemStore) putComment(c *models.Comment) {
	if _, ok := m.comments[c.ID]; !ok {
		m.commentOrder = append(m.commentOrder, c.ID)
	}
	cp := *c
	m.comments[c.ID] = &cp
}

func clonePost(p *models.Post) models.Post {
	cp := *p
	if p.Likes != nil {
		cp.Likes = append([]string{}, p.Likes...)
	}
	if p.Comments != nil {
		cp.Comments = append([]string{}, p.Comments...)
	}
	return cp
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

type memPosts struct{ m *MemStore }

func (r memPosts) Create(ctx context.Context, post *models.Post) error {
	if err := r.m.enter(ctx, "posts.Create", post.ID); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.putPost(post)
	return nil
}

func (r memPosts) GetByID(ctx context.Context, id string) (*models.Post, error) {
	if err := r.m.enter(ctx, "posts.GetByID", id); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.posts[id]
	if !ok {
		return nil, models.NewNotFoundError("Post", id)
	}
	cp := clonePost(p)
	return &cp, nil
}

func (r memPosts) List(ctx context.Context) ([]*models.Post, error) {
	if err := r.m.enter(ctx, "posts.List"); err != nil {
		return nil, err
	}
	return r.filter(func(*models.Post) bool { return true }), nil
}

func (r memPosts) ListByUser(ctx context.Context, userID string) ([]*models.Post, error) {
	if err := r.m.enter(ctx, "posts.ListByUser", userID); err != nil {
		return nil, err
	}
	return r.filter(func(p *models.Post) bool { return p.UserID == userID }), nil
}

func (r memPosts) filter(keep func(*models.Post) bool) []*models.Post {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []*models.Post{}
	for _, id := range r.m.postOrder {
		if p := r.m.posts[id]; keep(p) {
			cp := clonePost(p)
			out = append(out, &cp)
		}
	}
	return out
}

func (r memPosts) Update(ctx context.Context, post *models.Post) error {
	if err := r.m.enter(ctx, "posts.Update", post.ID); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.posts[post.ID]
	if !ok {
		return models.NewNotFoundError("Post", post.ID)
	}
	p.Title, p.Content, p.Author = post.Title, post.Content, post.Author
	p.Tags, p.Category, p.PublishDate, p.CoverImage = post.Tags, post.Category, post.PublishDate, post.CoverImage
	return nil
}

func (r memPosts) AddLike(ctx context.Context, postID, userID string) error {
	if err := r.m.enter(ctx, "posts.AddLike", postID, userID); err != nil {
		return err
	}
	return r.mutate(postID, func(p *models.Post) {
		if !contains(p.Likes, userID) {
			p.Likes = append(p.Likes, userID)
		}
	})
}

func (r memPosts) RemoveLike(ctx context.Context, postID, userID string) error {
	if err := r.m.enter(ctx, "posts.RemoveLike", postID, userID); err != nil {
		return err
	}
	return r.mutate(postID, func(p *models.Post) {
		kept := []string{}
		for _, id := range p.Likes {
			if id != userID {
				kept = append(kept, id)
			}
		}
		p.Likes = kept
	})
}

func (r memPosts) AppendComment(ctx context.Context, postID, commentID string) error {
	if err := r.m.enter(ctx, "posts.AppendComment", postID, commentID); err != nil {
		return err
	}
	return r.mutate(postID, func(p *models.Post) {
		if !contains(p.Comments, commentID) {
			p.Comments = append(p.Comments, commentID)
		}
	})
}

func (r memPosts) mutate(postID string, fn func(*models.Post)) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.posts[postID]
	if !ok {
		return models.NewNotFoundError("Post", postID)
	}
	fn(p)
	return nil
}

type memComments struct{ m *MemStore }

func (r memComments) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.m.enter(ctx, "comments.Create", comment.ID); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.putComment(comment)
	return nil
}

func (r memComments) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	if err := r.m.enter(ctx, "comments.GetByID", id); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.comments[id]
	if !ok {
		return nil, models.NewNotFoundError("Comment", id)
	}
	cp := *c
	return &cp, nil
}

func (r memComments) List(ctx context.Context) ([]*models.Comment, error) {
	if err := r.m.enter(ctx, "comments.List"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []*models.Comment{}
	for _, id := range r.m.commentOrder {
		cp := *r.m.comments[id]
		out = append(out, &cp)
	}
	return out, nil
}

type memLinkingComments struct{ memComments }

// CreateAndLink writes both documents or neither.
func (r memLinkingComments) CreateAndLink(ctx context.Context, postID string, comment *models.Comment) error {
	if err := r.m.enter(ctx, "comments.CreateAndLink", postID, comment.ID); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.posts[postID]
	if !ok {
		return models.NewNotFoundError("Post", postID)
	}
	r.m.putComment(comment)
	if !contains(p.Comments, comment.ID) {
		p.Comments = append(p.Comments, comment.ID)
	}
	return nil
}

type memUsers struct{ m *MemStore }

func (r memUsers) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	if err := r.m.enter(ctx, "users.GetByID", id); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.users[id]
	if !ok {
		return nil, models.NewNotFoundError("User", id)
	}
	cp := *p
	return &cp, nil
}

func (r memUsers) Upsert(ctx context.Context, profile *models.Profile) error {
	if err := r.m.enter(ctx, "users.Upsert", profile.ID); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *profile
	r.m.users[profile.ID] = &cp
	return nil
}

func (r memUsers) Update(ctx context.Context, id string, patch models.Profile) (*models.Profile, error) {
	if err := r.m.enter(ctx, "users.Update", id); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.users[id]
	if !ok {
		return nil, models.NewNotFoundError("User", id)
	}
	p.Merge(patch)
	cp := *p
	return &cp, nil
}

func (r memUsers) List(ctx context.Context) ([]*models.Profile, error) {
	if err := r.m.enter(ctx, "users.List"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []*models.Profile{}
	for _, p := range r.m.users {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}
