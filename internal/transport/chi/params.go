package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/oapi-codegen/runtime"

	"github.com/tutorbook/tutorbook/internal/domain"
	"github.com/tutorbook/tutorbook/internal/domain/search/query"
	"github.com/tutorbook/tutorbook/internal/domain/user"
)

// PagingConfig bounds the page size callers may request.
type PagingConfig struct {
	DefaultHitsPerPage int
	MaxHitsPerPage     int
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// bindListUsersParams reads GET /api/users query parameters.
func bindListUsersParams(r *http.Request) (ListUsersParams, error) {
	var p ListUsersParams
	q := r.URL.Query()

	binds := []struct {
		name string
		dest any
	}{
		{"aspect", &p.Aspect},
		{"subjects", &p.Subjects},
		{"langs", &p.Langs},
		{"checks", &p.Checks},
		{"orgs", &p.Orgs},
		{"tags", &p.Tags},
		{"visible", &p.Visible},
		{"availability", &p.Availability},
		{"page", &p.Page},
		{"hitsPerPage", &p.HitsPerPage},
	}
	for _, b := range binds {
		if err := runtime.BindQueryParameter("form", true, false, b.name, q, b.dest); err != nil {
			return ListUsersParams{}, fmt.Errorf("invalid format for parameter %s: %w", b.name, err)
		}
	}
	return p, nil
}

// toQuery validates p and builds the search query.
func (s *Server) toQuery(p *ListUsersParams) (query.Query, error) {
	if err := s.validate.Struct(p); err != nil {
		return query.Query{}, fmt.Errorf("%w: %s", domain.ErrInvalidQuery, describe(err))
	}

	slots, err := s.parseAvailability(p.Availability)
	if err != nil {
		return query.Query{}, err
	}

	params := query.Params{
		Subjects:     query.Options(p.Subjects...),
		Langs:        query.Options(p.Langs...),
		Checks:       query.Options(p.Checks...),
		Orgs:         query.Options(p.Orgs...),
		Tags:         query.Options(p.Tags...),
		Availability: slots,
		Visible:      p.Visible,
		HitsPerPage:  s.paging.DefaultHitsPerPage,
	}
	if p.Aspect != nil {
		params.Aspect = user.Aspect(*p.Aspect)
	}
	if p.Page != nil {
		params.Page = *p.Page
	}
	if p.HitsPerPage != nil {
		params.HitsPerPage = *p.HitsPerPage
	}
	if s.paging.MaxHitsPerPage > 0 && params.HitsPerPage > s.paging.MaxHitsPerPage {
		params.HitsPerPage = s.paging.MaxHitsPerPage
	}

	q, err := query.New(params)
	if err != nil {
		return query.Query{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	return q, nil
}

func (s *Server) parseAvailability(raw *string) ([]user.Timeslot, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}

	var a availabilityParam
	if err := json.Unmarshal([]byte(*raw), &a.Slots); err != nil {
		return nil, fmt.Errorf("%w: availability must be a JSON array of {from,to}", domain.ErrInvalidQuery)
	}
	if err := s.validate.Struct(&a); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidQuery, describe(err))
	}

	slots := make([]user.Timeslot, len(a.Slots))
	for i, t := range a.Slots {
		slots[i] = user.Timeslot{
			From: time.UnixMilli(t.From).UTC(),
			To:   time.UnixMilli(t.To).UTC(),
		}
	}
	return slots, nil
}

// describe renders validation errors as "field: rule" pairs.
func describe(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fe.Namespace()+": "+rule)
	}
	return strings.Join(parts, "; ")
}
