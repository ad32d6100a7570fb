package simpleassets

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// SortFieldUploadDate is the only sort key for asset searches.
const SortFieldUploadDate = "upload_date"

// Predicate is a single optional search condition. It can be evaluated in
// memory with Match or compiled to a SQL fragment with Where.
//
// Where receives a bind function that registers an argument and returns its
// dialect placeholder. An empty fragment means the predicate is always true.
type Predicate interface {
	Match(asset *Asset) bool
	Where(bind func(arg any) string) string
}

type truePredicate struct{}

func (truePredicate) Match(*Asset) bool            { return true }
func (truePredicate) Where(func(any) string) string { return "" }

// True matches every asset.
var True Predicate = truePredicate{}

type predicate struct {
	match func(*Asset) bool
	where func(bind func(any) string) string
}

func (p predicate) Match(asset *Asset) bool               { return p.match(asset) }
func (p predicate) Where(bind func(arg any) string) string { return p.where(bind) }

type andPredicate []Predicate

func (a andPredicate) Match(asset *Asset) bool {
	for _, p := range a {
		if !p.Match(asset) {
			return false
		}
	}
	return true
}

func (a andPredicate) Where(bind func(arg any) string) string {
	var clauses []string
	for _, p := range a {
		if clause := p.Where(bind); clause != "" {
			clauses = append(clauses, clause)
		}
	}
	if len(clauses) == 0 {
		return ""
	}
	if len(clauses) == 1 {
		return clauses[0]
	}
	return "(" + strings.Join(clauses, " AND ") + ")"
}

// And composes predicates with logical AND. And() is always true.
func And(preds ...Predicate) Predicate {
	var flat andPredicate
	for _, p := range preds {
		if p == nil || p == True {
			continue
		}
		flat = append(flat, p)
	}
	if len(flat) == 0 {
		return True
	}
	return flat
}

// UploadedFrom matches uploadDate >= start. A nil start is always true.
func UploadedFrom(start *time.Time) Predicate {
	if start == nil {
		return True
	}
	from := start.UTC()
	return predicate{
		match: func(a *Asset) bool { return !a.UploadDate.Before(from) },
		where: func(bind func(any) string) string {
			return SortFieldUploadDate + " >= " + bind(from)
		},
	}
}

// UploadedTo matches uploadDate <= end. A nil end is always true.
func UploadedTo(end *time.Time) Predicate {
	if end == nil {
		return True
	}
	to := end.UTC()
	return predicate{
		match: func(a *Asset) bool { return !a.UploadDate.After(to) },
		where: func(bind func(any) string) string {
			return SortFieldUploadDate + " <= " + bind(to)
		},
	}
}

// FilenameContains is a case-insensitive substring match on the filename.
// A nil or blank pattern is always true.
func FilenameContains(pattern *string) Predicate {
	if pattern == nil || strings.TrimSpace(*pattern) == "" {
		return True
	}
	needle := strings.ToLower(*pattern)
	return predicate{
		match: func(a *Asset) bool { return strings.Contains(strings.ToLower(a.Filename), needle) },
		where: func(bind func(any) string) string {
			return "LOWER(filename) LIKE " + bind("%"+escapeLike(needle)+"%") + ` ESCAPE '\'`
		},
	}
}

// ContentTypeEquals is an exact match on the content type.
// A nil or blank value is always true.
func ContentTypeEquals(contentType *string) Predicate {
	if contentType == nil || strings.TrimSpace(*contentType) == "" {
		return True
	}
	want := *contentType
	return predicate{
		match: func(a *Asset) bool { return a.ContentType == want },
		where: func(bind func(any) string) string {
			return "content_type = " + bind(want)
		},
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Sort describes result ordering.
type Sort struct {
	Field     string
	Direction SortDirection
}

// Filter is a composed search predicate plus its ordering.
type Filter struct {
	Where Predicate
	Sort  Sort
}

// BuildFilter translates criteria into the AND of its optional predicates,
// sorted by upload date. Direction defaults to DESC.
func BuildFilter(criteria *SearchCriteria) Filter {
	f := Filter{
		Where: True,
		Sort:  Sort{Field: SortFieldUploadDate, Direction: SortDescending},
	}
	if criteria == nil {
		return f
	}

	f.Where = And(
		UploadedFrom(criteria.UploadDateStart),
		UploadedTo(criteria.UploadDateEnd),
		FilenameContains(criteria.FilenamePattern),
		ContentTypeEquals(criteria.ContentType),
	)
	if criteria.SortDirection == SortAscending {
		f.Sort.Direction = SortAscending
	}
	return f
}

func (f Filter) predicate() Predicate {
	if f.Where == nil {
		return True
	}
	return f.Where
}

func (f Filter) ascending() bool {
	return f.Sort.Direction == SortAscending
}

// Apply returns the matching assets in sort order. Ties on upload date are
// broken by id in the same direction. The input slice is not modified.
func (f Filter) Apply(assets []*Asset) []*Asset {
	where := f.predicate()
	result := make([]*Asset, 0, len(assets))
	for _, a := range assets {
		if where.Match(a) {
			result = append(result, a)
		}
	}

	asc := f.ascending()
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.UploadDate.Equal(b.UploadDate) {
			if asc {
				return a.UploadDate.Before(b.UploadDate)
			}
			return a.UploadDate.After(b.UploadDate)
		}
		if asc {
			return a.ID < b.ID
		}
		return a.ID > b.ID
	})
	return result
}

// SQL compiles the filter for a SQL store. bind registers an argument and
// returns its placeholder. where is empty when every predicate is absent.
func (f Filter) SQL(bind func(arg any) string) (where string, orderBy string) {
	where = f.predicate().Where(bind)

	dir := "DESC"
	if f.ascending() {
		dir = "ASC"
	}
	orderBy = fmt.Sprintf("%s %s, id %s", SortFieldUploadDate, dir, dir)
	return where, orderBy
}
