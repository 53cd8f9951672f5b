// Package question models the customer Q&A attached to product pages.
package question

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested question does not exist.
var ErrNotFound = errors.New("question not found")

// Question is one customer question on a product, optionally answered from
// the back-office. ScheduledFor lets an admin stage a question to appear
// later; it defaults to CreatedAt.
type Question struct {
	ID           string     `json:"id"`
	ProductSlug  string     `json:"productSlug"`
	Author       string     `json:"author"`
	Body         string     `json:"body"`
	Answer       string     `json:"answer,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	ScheduledFor *time.Time `json:"scheduledFor,omitempty"`
}

// VisibleAt reports whether the question should show on the public product
// page at the given time.
func (q Question) VisibleAt(now time.Time) bool {
	if q.ScheduledFor != nil {
		return !now.Before(*q.ScheduledFor)
	}
	return true
}

// Store defines persistence for questions.
type Store interface {
	List(ctx context.Context) ([]Question, error)
	ListByProduct(ctx context.Context, productSlug string) ([]Question, error)
	GetByID(ctx context.Context, id string) (*Question, error)
	Put(ctx context.Context, q *Question) error
	Delete(ctx context.Context, id string) error
}
