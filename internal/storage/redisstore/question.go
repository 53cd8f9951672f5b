package redisstore

import (
	"context"

	"github.com/solarbrone/solar-store/internal/domain/question"
)

var _ question.Store = (*QuestionStore)(nil)

// QuestionStore implements question.Store on the shared collection key.
type QuestionStore struct {
	s *Store
}

// Questions returns the Q&A collection store.
func (s *Store) Questions() *QuestionStore {
	return &QuestionStore{s: s}
}

func (q *QuestionStore) List(ctx context.Context) ([]question.Question, error) {
	return readCollection[question.Question](ctx, q.s.rdb, keyQuestions)
}

func (q *QuestionStore) ListByProduct(ctx context.Context, productSlug string) ([]question.Question, error) {
	items, err := q.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []question.Question
	for _, it := range items {
		if it.ProductSlug == productSlug {
			out = append(out, it)
		}
	}
	return out, nil
}

func (q *QuestionStore) GetByID(ctx context.Context, id string) (*question.Question, error) {
	items, err := q.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, question.ErrNotFound
}

func (q *QuestionStore) Put(ctx context.Context, qu *question.Question) error {
	items, err := q.List(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range items {
		if items[i].ID == qu.ID {
			items[i] = *qu
			replaced = true
			break
		}
	}
	if !replaced {
		items = append(items, *qu)
	}
	return writeCollection(ctx, q.s.rdb, keyQuestions, items)
}

func (q *QuestionStore) Delete(ctx context.Context, id string) error {
	items, err := q.List(ctx)
	if err != nil {
		return err
	}
	kept := items[:0]
	found := false
	for _, it := range items {
		if it.ID == id {
			found = true
			continue
		}
		kept = append(kept, it)
	}
	if !found {
		return question.ErrNotFound
	}
	return writeCollection(ctx, q.s.rdb, keyQuestions, kept)
}
