package core

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

// Page size limits applied when the caller does not configure others.
const (
	DefaultListLimit = 10
	MaxListLimit     = 50
)

// ListLimits bounds the page size of listing queries.
type ListLimits struct {
	Default int
	Max     int
}

// DefaultListLimits returns limits of 10 per page, at most 50.
func DefaultListLimits() ListLimits {
	return ListLimits{Default: DefaultListLimit, Max: MaxListLimit}
}

// Validate checks that 1 <= Default <= Max.
func (l ListLimits) Validate() error {
	if l.Default < 1 || l.Max < 1 || l.Default > l.Max {
		return fmt.Errorf("core: invalid list limits default=%d max=%d", l.Default, l.Max)
	}
	return nil
}

// PageRequest selects one page of the listing.
type PageRequest struct {
	Page   int
	Limit  int
	Search string
}

// Filter returns the record filter implied by the request.
func (r PageRequest) Filter() Filter {
	return Filter{Search: r.Search}
}

// Offset returns how many matching records precede the page, saturating
// instead of overflowing for absurdly large pages.
func (r PageRequest) Offset() int {
	if r.Page <= 1 || r.Limit <= 0 {
		return 0
	}
	if r.Page-1 > math.MaxInt/r.Limit {
		return math.MaxInt
	}
	return (r.Page - 1) * r.Limit
}

// PageResponse is one page of records plus the totals for the same filter.
type PageResponse struct {
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalItems int64      `json:"totalItems"`
	TotalPages int        `json:"totalPages"`
	Data       []Feedback `json:"data"`
}

// Parse normalizes raw query string values into a PageRequest. A page that is
// missing, non-numeric or below 1 becomes 1. A limit that is missing,
// non-numeric or below 1 becomes Default, and one above Max becomes Max.
// An empty search means no filter.
func (l ListLimits) Parse(page, limit, search string) PageRequest {
	return l.Clamp(PageRequest{
		Page:   atoiOr(page, 0),
		Limit:  atoiOr(limit, 0),
		Search: search,
	})
}

// Clamp applies the same rules as Parse to an already numeric request.
// Clamp is idempotent.
func (l ListLimits) Clamp(req PageRequest) PageRequest {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = l.Default
	}
	if req.Limit > l.Max {
		req.Limit = l.Max
	}
	return req
}

// NormalizePageRequest parses raw inputs with the default limits.
func NormalizePageRequest(page, limit, search string) PageRequest {
	return DefaultListLimits().Parse(page, limit, search)
}

// TotalPages returns ceil(total/limit). Zero matches yield zero pages.
func TotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// ListFeedback returns one page of records ordered by ascending id together
// with the total number of records matching the same filter. The data and
// count queries run concurrently. A page past the end yields empty Data and
// echoes the requested page.
func (s *Service) ListFeedback(ctx context.Context, req PageRequest) (PageResponse, error) {
	start := time.Now()
	req = s.limits.Clamp(req)
	filter := req.Filter()

	var (
		data  []Feedback
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.store.SelectPage(gctx, filter, req.Limit, req.Offset())
		if err != nil {
			return wrapStoreError(OpSelect, err)
		}
		data = rows
		return nil
	})
	g.Go(func() error {
		n, err := s.store.Count(gctx, filter)
		if err != nil {
			return wrapStoreError(OpCount, err)
		}
		total = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return PageResponse{}, err
	}

	if data == nil {
		data = []Feedback{}
	}
	s.recorder.ListServed(len(data), time.Since(start))

	return PageResponse{
		Page:       req.Page,
		Limit:      req.Limit,
		TotalItems: total,
		TotalPages: TotalPages(total, req.Limit),
		Data:       data,
	}, nil
}

func atoiOr(raw string, fallback int) int {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
