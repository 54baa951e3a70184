package service

import (
	"context"
	"strings"

	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
	"github.com/aussiebroadwan/hackreg/internal/registration/store"
)

// MaxPageSize bounds a single page of full records.
const MaxPageSize = 1000

// PageQuery selects one page of users. Page is zero based. Size zero asks for
// every match as compact export keys instead of records.
type PageQuery struct {
	Page int
	Size int

	Text            string
	GraduationTimes []string
	Skills          []string
	ResumeOnly      bool
	USStudentOnly   bool
}

// Page is one page of a listing. Exactly one of Users and Keys is set.
type Page struct {
	Users      []domain.User `json:"users,omitempty"`
	Keys       []string      `json:"keys,omitempty"`
	Page       int           `json:"page"`
	Size       int           `json:"size"`
	TotalPages int           `json:"totalPages"`
}

// QueryService lists users for the admin and resume views.
type QueryService struct {
	Store store.Store
}

func (s *QueryService) Page(ctx context.Context, q PageQuery) (Page, error) {
	return s.page(ctx, q, store.UserFilter{
		Text:            q.Text,
		GraduationTimes: cleanList(q.GraduationTimes),
		Skills:          cleanList(q.Skills),
		ResumeOnly:      q.ResumeOnly,
		USStudentOnly:   q.USStudentOnly,
	})
}

// SponsorPage lists sponsor accounts matching the free text.
func (s *QueryService) SponsorPage(ctx context.Context, q PageQuery) (Page, error) {
	return s.page(ctx, q, store.UserFilter{Text: q.Text, SponsorsOnly: true})
}

func (s *QueryService) page(ctx context.Context, q PageQuery, f store.UserFilter) (Page, error) {
	if q.Page < 0 || q.Size < 0 {
		return Page{}, newError(KindValidation, "Page and size must not be negative.")
	}
	if q.Size > MaxPageSize {
		return Page{}, newError(KindValidation, "Page size is too large.")
	}

	users := s.Store.Users()

	if q.Size == 0 {
		all, err := users.Find(ctx, f, -1, 0)
		if err != nil {
			return Page{}, err
		}
		keys := make([]string, 0, len(all))
		for _, u := range all {
			keys = append(keys, u.ExportKey())
		}
		return Page{Keys: keys}, nil
	}

	count, err := users.Count(ctx, f)
	if err != nil {
		return Page{}, err
	}
	found, err := users.Find(ctx, f, q.Size, q.Page*q.Size)
	if err != nil {
		return Page{}, err
	}

	return Page{
		Users:      found,
		Page:       q.Page,
		Size:       q.Size,
		TotalPages: TotalPages(count, q.Size),
	}, nil
}

// TotalPages is ceil(count/size), and zero when size is zero.
func TotalPages(count, size int) int {
	if size <= 0 || count <= 0 {
		return 0
	}
	return (count + size - 1) / size
}

// cleanList trims entries and drops empty ones.
func cleanList(in []string) []string {
	var out []string
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
