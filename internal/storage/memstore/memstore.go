// Package memstore implements the storefront's storage interfaces in
// memory. It backs tests and credential-less local runs; the contract is
// identical to redisstore (wholesale collection semantics), just without
// durability.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/solarbrone/solar-store/internal/domain/blog"
	"github.com/solarbrone/solar-store/internal/domain/product"
	"github.com/solarbrone/solar-store/internal/domain/question"
	"github.com/solarbrone/solar-store/internal/settings"
)

// Store holds every collection behind one mutex. Collections are small and
// writes are rare (single admin), so coarse locking is fine.
type Store struct {
	mu        sync.Mutex
	products  []product.Product
	articles  []blog.Article
	questions []question.Question
	settings  settings.Settings
	sessions  map[string]time.Time
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{sessions: make(map[string]time.Time)}
}

// Ping always succeeds; present so the store satisfies the same readiness
// contract as redisstore.
func (s *Store) Ping(_ context.Context) error { return nil }

// --- product.Store ---

type ProductStore struct{ s *Store }

func (s *Store) Products() *ProductStore { return &ProductStore{s: s} }

var _ product.Store = (*ProductStore)(nil)

func (p *ProductStore) List(_ context.Context) ([]product.Product, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	out := make([]product.Product, len(p.s.products))
	copy(out, p.s.products)
	return out, nil
}

func (p *ProductStore) GetByID(_ context.Context, id string) (*product.Product, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	for i := range p.s.products {
		if p.s.products[i].ID == id {
			cp := p.s.products[i]
			return &cp, nil
		}
	}
	return nil, product.ErrNotFound
}

func (p *ProductStore) GetBySlug(_ context.Context, slug string) (*product.Product, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	for i := range p.s.products {
		if p.s.products[i].Slug == slug {
			cp := p.s.products[i]
			return &cp, nil
		}
	}
	return nil, product.ErrNotFound
}

func (p *ProductStore) Put(_ context.Context, prod *product.Product) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	for i := range p.s.products {
		if p.s.products[i].ID == prod.ID {
			p.s.products[i] = *prod
			return nil
		}
	}
	p.s.products = append(p.s.products, *prod)
	return nil
}

func (p *ProductStore) Delete(_ context.Context, id string) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	for i := range p.s.products {
		if p.s.products[i].ID == id {
			p.s.products = append(p.s.products[:i], p.s.products[i+1:]...)
			return nil
		}
	}
	return product.ErrNotFound
}

// --- blog.Store ---

type ArticleStore struct{ s *Store }

func (s *Store) Articles() *ArticleStore { return &ArticleStore{s: s} }

var _ blog.Store = (*ArticleStore)(nil)

func (a *ArticleStore) List(_ context.Context) ([]blog.Article, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	out := make([]blog.Article, len(a.s.articles))
	copy(out, a.s.articles)
	return out, nil
}

func (a *ArticleStore) GetByID(_ context.Context, id string) (*blog.Article, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	for i := range a.s.articles {
		if a.s.articles[i].ID == id {
			cp := a.s.articles[i]
			return &cp, nil
		}
	}
	return nil, blog.ErrNotFound
}

func (a *ArticleStore) GetBySlug(_ context.Context, slug string) (*blog.Article, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	for i := range a.s.articles {
		if a.s.articles[i].Slug == slug {
			cp := a.s.articles[i]
			return &cp, nil
		}
	}
	return nil, blog.ErrNotFound
}

func (a *ArticleStore) Put(_ context.Context, art *blog.Article) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	for i := range a.s.articles {
		if a.s.articles[i].ID == art.ID {
			a.s.articles[i] = *art
			return nil
		}
	}
	a.s.articles = append(a.s.articles, *art)
	return nil
}

func (a *ArticleStore) Delete(_ context.Context, id string) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	for i := range a.s.articles {
		if a.s.articles[i].ID == id {
			a.s.articles = append(a.s.articles[:i], a.s.articles[i+1:]...)
			return nil
		}
	}
	return blog.ErrNotFound
}

// --- question.Store ---

type QuestionStore struct{ s *Store }

func (s *Store) Questions() *QuestionStore { return &QuestionStore{s: s} }

var _ question.Store = (*QuestionStore)(nil)

func (q *QuestionStore) List(_ context.Context) ([]question.Question, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	out := make([]question.Question, len(q.s.questions))
	copy(out, q.s.questions)
	return out, nil
}

func (q *QuestionStore) ListByProduct(_ context.Context, productSlug string) ([]question.Question, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	var out []question.Question
	for _, it := range q.s.questions {
		if it.ProductSlug == productSlug {
			out = append(out, it)
		}
	}
	return out, nil
}

func (q *QuestionStore) GetByID(_ context.Context, id string) (*question.Question, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	for i := range q.s.questions {
		if q.s.questions[i].ID == id {
			cp := q.s.questions[i]
			return &cp, nil
		}
	}
	return nil, question.ErrNotFound
}

func (q *QuestionStore) Put(_ context.Context, qu *question.Question) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	for i := range q.s.questions {
		if q.s.questions[i].ID == qu.ID {
			q.s.questions[i] = *qu
			return nil
		}
	}
	q.s.questions = append(q.s.questions, *qu)
	return nil
}

func (q *QuestionStore) Delete(_ context.Context, id string) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	for i := range q.s.questions {
		if q.s.questions[i].ID == id {
			q.s.questions = append(q.s.questions[:i], q.s.questions[i+1:]...)
			return nil
		}
	}
	return question.ErrNotFound
}

// --- settings.Store ---

type SettingsStore struct{ s *Store }

func (s *Store) Settings() *SettingsStore { return &SettingsStore{s: s} }

var _ settings.Store = (*SettingsStore)(nil)

func (st *SettingsStore) Get(_ context.Context) (settings.Settings, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	return st.s.settings, nil
}

func (st *SettingsStore) Set(_ context.Context, v settings.Settings) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	st.s.settings = v
	return nil
}

// --- auth.TokenStore ---

type SessionStore struct{ s *Store }

func (s *Store) Sessions() *SessionStore { return &SessionStore{s: s} }

func (st *SessionStore) Save(_ context.Context, tokenHash string, ttl time.Duration) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	st.s.sessions[tokenHash] = time.Now().Add(ttl)
	return nil
}

func (st *SessionStore) Exists(_ context.Context, tokenHash string) (bool, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	exp, ok := st.s.sessions[tokenHash]
	if !ok || time.Now().After(exp) {
		delete(st.s.sessions, tokenHash)
		return false, nil
	}
	return true, nil
}

func (st *SessionStore) Delete(_ context.Context, tokenHash string) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	delete(st.s.sessions, tokenHash)
	return nil
}
