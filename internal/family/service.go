// Package family implements person and relation operations over the
// family graph. Relation writes pass an ordered constraint pipeline inside
// the same store transaction that performs them.
package family

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/famgraph/internal/apperr"
	"github.com/rcliao/famgraph/internal/kinship"
	"github.com/rcliao/famgraph/internal/metrics"
	"github.com/rcliao/famgraph/internal/store"
	"github.com/rcliao/famgraph/internal/validate"
)

// Rules are the relation constraints. A zero maximum means unlimited.
type Rules struct {
	MaxParents        int
	MaxPartners       int
	ForbiddenPartners []kinship.Category
}

// Service is the entry point for all family graph operations. It is safe
// for concurrent use as long as the underlying store is.
type Service struct {
	store    store.Store
	rules    Rules
	validate *validate.Validator
	log      *zap.Logger
	metrics  *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithMetrics sets the metrics sink. The default uses a private registry.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New creates a Service over st.
func New(st store.Store, v *validate.Validator, rules Rules, opts ...Option) *Service {
	s := &Service{
		store:    st,
		rules:    rules,
		validate: v,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = metrics.Nop()
	}
	return s
}

// Stats returns storage statistics.
func (s *Service) Stats(ctx context.Context) (*store.Stats, error) {
	st, err := s.store.Stats(ctx)
	if err != nil {
		return nil, apperr.Storage("stats", err)
	}
	return st, nil
}

// observe is deferred by every public operation with a pointer to its
// named error result.
func (s *Service) observe(op string, start time.Time, errp *error) {
	s.metrics.Observe(op, start, *errp)
}

// storageErr maps a store failure to an engine error. Engine errors pass
// through unchanged.
func storageErr(op string, err error) error {
	if apperr.KindOf(err) != "" {
		return err
	}
	if errors.Is(err, store.ErrNotFound) {
		return apperr.New(apperr.KindNotFound, op, "no such record").WithCause(err)
	}
	return apperr.Storage(op, err)
}
