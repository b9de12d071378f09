package domain

import (
	"slices"
	"strings"
)

const (
	DefaultPageSize     = 10
	DefaultHistoryLimit = 50
)

// BatchFilter matches case-insensitive substrings; empty fields match everything.
type BatchFilter struct {
	ShipmentName string
	PONumber     string
}

func (f BatchFilter) Matches(b ShipmentBatch) bool {
	return containsFold(b.ShipmentName, f.ShipmentName) && containsFold(b.PONumber, f.PONumber)
}

func (f BatchFilter) IsEmpty() bool {
	return f.ShipmentName == "" && f.PONumber == ""
}

// FilterBatches returns the matching batches, newest first.
func FilterBatches(batches []ShipmentBatch, filter BatchFilter) []ShipmentBatch {
	out := make([]ShipmentBatch, 0, len(batches))
	for _, b := range batches {
		if filter.Matches(b) {
			out = append(out, b)
		}
	}
	slices.SortStableFunc(out, func(a, b ShipmentBatch) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"total_items"`
}

func PageCount(totalItems, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return (totalItems + pageSize - 1) / pageSize
}

// ClampPage keeps page inside [1, totalPages]; with no pages it is 1.
func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	totalPages := PageCount(len(items), pageSize)
	page = ClampPage(page, totalPages)

	start := min((page-1)*pageSize, len(items))
	end := min(start+pageSize, len(items))
	return Page[T]{
		Items:      slices.Clone(items[start:end]),
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalItems: len(items),
	}
}

func containsFold(s, sub string) bool {
	if sub == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
