package audit

import (
	"context"
	"errors"
)

// Page size bounds for the activity log.
const (
	DefaultPageSize = 20
	MaxPageSize     = 50
)

const dateLayout = "2006-01-02"

// Repository reads audit rows.
type Repository interface {
	Window(ctx context.Context, f Filters, offset, limit int) ([]Row, error)
	All(ctx context.Context, f Filters) ([]Row, error)
}

// Service pages through the activity log.
type Service struct {
	repo Repository
}

// NewService builds a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Timeline returns one page. One extra row is fetched to learn whether a next page exists.
func (s *Service) Timeline(ctx context.Context, f Filters) (Result, error) {
	if s == nil || s.repo == nil {
		return Result{}, errors.New("audit: repository not configured")
	}
	pageSize := f.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	rows, err := s.repo.Window(ctx, f, (page-1)*pageSize, pageSize+1)
	if err != nil {
		return Result{}, err
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}
	paging := Paging{Page: page, PageSize: pageSize, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	return Result{Rows: rows, Paging: paging}, nil
}

// Export returns every matching row.
func (s *Service) Export(ctx context.Context, f Filters) ([]Row, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("audit: repository not configured")
	}
	return s.repo.All(ctx, f)
}
