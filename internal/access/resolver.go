package access

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/yukikurage/assessment-api/internal/constants"
	"github.com/yukikurage/assessment-api/internal/models"
)

type SourceKind int

const (
	SourceParam SourceKind = iota
	SourceQuery
	SourceBody
	SourceHeader
)

// Source names one place of an inbound request that may carry an organization id.
type Source struct {
	Kind SourceKind
	Key  string
}

func Param(key string) Source  { return Source{Kind: SourceParam, Key: key} }
func Query(key string) Source  { return Source{Kind: SourceQuery, Key: key} }
func Body(key string) Source   { return Source{Kind: SourceBody, Key: key} }
func Header(key string) Source { return Source{Kind: SourceHeader, Key: key} }

// Request is the transport-neutral view of an inbound operation.
type Request struct {
	Params map[string]string
	Query  map[string]string
	Body   map[string]interface{}
	Header http.Header
}

// Lookup returns the non-empty value stored under src.
func (r Request) Lookup(src Source) (string, bool) {
	switch src.Kind {
	case SourceParam:
		v := r.Params[src.Key]
		return v, v != ""
	case SourceQuery:
		v := r.Query[src.Key]
		return v, v != ""
	case SourceBody:
		v, ok := r.Body[src.Key]
		if !ok || v == nil {
			return "", false
		}
		s := bodyValueString(v)
		return s, s != ""
	case SourceHeader:
		if r.Header == nil {
			return "", false
		}
		v := r.Header.Get(src.Key)
		return v, v != ""
	}
	return "", false
}

func bodyValueString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Strategy yields a raw organization id candidate. found=false hands over to the next strategy.
type Strategy interface {
	Resolve(ctx context.Context, req Request, actor Actor) (raw string, found bool, err error)
}

type StrategyFunc func(ctx context.Context, req Request, actor Actor) (string, bool, error)

func (f StrategyFunc) Resolve(ctx context.Context, req Request, actor Actor) (string, bool, error) {
	return f(ctx, req, actor)
}

// FromSources returns the first present value among sources.
func FromSources(sources ...Source) Strategy {
	return StrategyFunc(func(_ context.Context, req Request, _ Actor) (string, bool, error) {
		for _, src := range sources {
			if v, ok := req.Lookup(src); ok {
				return v, true, nil
			}
		}
		return "", false, nil
	})
}

// Conventional looks at the usual orgId / organizationId keys and the X-Org-Id header.
func Conventional() Strategy {
	return FromSources(
		Param(constants.OrganizationIDParam),
		Param(constants.OrganizationIDLongParam),
		Query(constants.OrganizationIDParam),
		Query(constants.OrganizationIDLongParam),
		Body(constants.OrganizationIDParam),
		Body(constants.OrganizationIDLongParam),
		Body(constants.OrganizationIDSnakeParam),
		Header(constants.OrganizationIDHeader),
	)
}

// SingleMembership infers the organization when the actor belongs to exactly one.
func SingleMembership() Strategy {
	return StrategyFunc(func(_ context.Context, _ Request, actor Actor) (string, bool, error) {
		if len(actor.Memberships) != 1 {
			return "", false, nil
		}
		return strconv.FormatUint(actor.OrganizationIDs()[0], 10), true, nil
	})
}

// OwnerLookup returns the organization owning the resource id, or ErrResourceNotFound.
type OwnerLookup func(ctx context.Context, id uint64) (uint64, error)

// FromResource infers the organization from a resource id referenced by the request.
func FromResource(src Source, lookup OwnerLookup) Strategy {
	return StrategyFunc(func(ctx context.Context, req Request, _ Actor) (string, bool, error) {
		raw, ok := req.Lookup(src)
		if !ok {
			return "", false, nil
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return "", false, nil
		}

		orgID, err := lookup(ctx, id)
		if err != nil {
			if errors.Is(err, ErrResourceNotFound) {
				return "", false, nil
			}
			return "", false, fmt.Errorf("failed to infer organization: %w", err)
		}
		return strconv.FormatUint(orgID, 10), true, nil
	})
}

// Options tunes one resolution.
type Options struct {
	// Sources are tried before the resolver's default strategies.
	Sources []Source
	// Optional resolutions return 0 instead of failing when nothing is found.
	Optional bool
	Roles    []models.OrganizationRole
	Match    MatchMode
}

// Resolver turns an inbound request into an authorized organization id.
type Resolver struct {
	defaults []Strategy
}

// NewResolver creates a Resolver trying defaults in order.
func NewResolver(defaults ...Strategy) *Resolver {
	return &Resolver{defaults: defaults}
}

// Resolve runs the strategies in order, validates the first candidate and authorizes the actor against it.
func (r *Resolver) Resolve(ctx context.Context, req Request, actor Actor, opts Options) (uint64, error) {
	strategies := r.defaults
	if len(opts.Sources) > 0 {
		strategies = append([]Strategy{FromSources(opts.Sources...)}, r.defaults...)
	}

	for _, s := range strategies {
		raw, found, err := s.Resolve(ctx, req, actor)
		if err != nil {
			return 0, err
		}
		if !found {
			continue
		}

		orgID, err := ParseOrganizationID(raw)
		if err != nil {
			return 0, err
		}
		if err := Authorize(actor, orgID, opts.Roles, opts.Match); err != nil {
			return 0, err
		}
		return orgID, nil
	}

	if opts.Optional {
		return 0, nil
	}
	return 0, ErrOrganizationIDRequired
}

// ParseOrganizationID accepts only positive base-10 integers.
func ParseOrganizationID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidOrganizationID.WithDetails(map[string]string{"value": raw})
	}
	return id, nil
}
