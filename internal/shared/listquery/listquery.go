// Package listquery parses the query-string language shared by list
// endpoints and renders it to SQL.
//
//	?genre=SciFi&rating[gte]=4&search=dune&sort=-rating,title&page=2&limit=5&select=title,author
//
// Keys select, sort, page, limit and search are reserved; any other key is a
// filter on a schema field, optionally with a bracket operator
// (gt, gte, lt, lte, in). Keys that name no schema field are ignored.
package listquery

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"booknook-backend/internal/shared/apperror"
	"booknook-backend/internal/shared/utils"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage keeps (page-1)*limit far from integer overflow.
	MaxPage = 1_000_000
)

type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpIn  Op = "in"
)

var sqlOps = map[Op]string{
	OpEq:  "=",
	OpGt:  ">",
	OpGte: ">=",
	OpLt:  "<",
	OpLte: "<=",
}

type FieldType int

const (
	String FieldType = iota
	Int
	Float
	Bool
	Time
	UUID
)

// Field maps an API field name to its column.
type Field struct {
	Column string
	Type   FieldType
}

// Schema describes what a list endpoint accepts.
type Schema struct {
	Alias         string           // table alias used in rendered SQL, e.g. "b"
	Fields        map[string]Field // API name -> column
	SearchFields  []string         // API names matched by ?search
	DefaultSort   string           // e.g. "-createdAt"
	TieBreaker    string           // API name appended to every ORDER BY
	AlwaysSelect  []string         // kept by every projection
	IgnoredParams []string         // extra reserved keys for this endpoint
}

type Filter struct {
	Field  string
	Op     Op
	Values []any
}

type SortKey struct {
	Field string
	Desc  bool
}

// Query is a parsed list request.
type Query struct {
	Filters []Filter
	Search  string
	Select  []string
	Sort    []SortKey
	Page    int
	Limit   int
}

var reserved = map[string]bool{
	"select": true,
	"sort":   true,
	"page":   true,
	"limit":  true,
	"search": true,
}

// Parse reads values against schema. Malformed filter values are validation errors.
func Parse(values url.Values, schema Schema) (*Query, error) {
	q := &Query{
		Page:  parsePositive(values.Get("page"), DefaultPage),
		Limit: parsePositive(values.Get("limit"), DefaultLimit),
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}

	if len(schema.SearchFields) > 0 {
		q.Search = strings.TrimSpace(values.Get("search"))
	}

	ignored := make(map[string]bool, len(schema.IgnoredParams))
	for _, p := range schema.IgnoredParams {
		ignored[p] = true
	}

	for key, raws := range values {
		if reserved[key] || ignored[key] {
			continue
		}

		name, op, err := splitKey(key)
		if err != nil {
			return nil, err
		}
		field, ok := schema.Fields[name]
		if !ok {
			continue
		}

		for _, raw := range raws {
			f, err := buildFilter(name, op, field.Type, raw)
			if err != nil {
				return nil, err
			}
			q.Filters = append(q.Filters, f)
		}
	}
	sortFilters(q.Filters)

	q.Sort = parseSort(values.Get("sort"), schema)
	q.Select = parseSelect(values.Get("select"), schema)

	return q, nil
}

// splitKey turns "rating[gte]" into ("rating", gte).
func splitKey(key string) (string, Op, error) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		return key, OpEq, nil
	}
	if !strings.HasSuffix(key, "]") || open == 0 {
		return "", "", apperror.Validation(fmt.Sprintf("Invalid query parameter %s", key))
	}

	op := Op(key[open+1 : len(key)-1])
	switch op {
	case OpGt, OpGte, OpLt, OpLte, OpIn:
		return key[:open], op, nil
	default:
		return "", "", apperror.Validation(fmt.Sprintf("Unsupported operator %s", op))
	}
}

func buildFilter(name string, op Op, typ FieldType, raw string) (Filter, error) {
	parts := []string{raw}
	if op == OpIn {
		parts = strings.Split(raw, ",")
	}

	values := make([]any, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if op == OpIn && p == "" {
			continue
		}
		v, err := convert(typ, p)
		if err != nil {
			return Filter{}, apperror.Validation(fmt.Sprintf("Invalid value for %s: %s", name, p))
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return Filter{}, apperror.Validation(fmt.Sprintf("Invalid value for %s: %s", name, raw))
	}

	return Filter{Field: name, Op: op, Values: values}, nil
}

func convert(typ FieldType, raw string) (any, error) {
	switch typ {
	case Int:
		return strconv.Atoi(raw)
	case Float:
		return strconv.ParseFloat(raw, 64)
	case Bool:
		return strconv.ParseBool(raw)
	case Time:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t, nil
		}
		return time.Parse("2006-01-02", raw)
	case UUID:
		return uuid.Parse(raw)
	default:
		return raw, nil
	}
}

func parsePositive(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func parseSort(raw string, schema Schema) []SortKey {
	keys := sortKeys(raw, schema)
	if len(keys) == 0 {
		keys = sortKeys(schema.DefaultSort, schema)
	}
	return keys
}

func sortKeys(raw string, schema Schema) []SortKey {
	var keys []SortKey
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		name := strings.TrimPrefix(part, "-")
		if _, ok := schema.Fields[name]; !ok {
			continue
		}
		keys = append(keys, SortKey{Field: name, Desc: desc})
	}
	return keys
}

func parseSelect(raw string, schema Schema) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	seen := map[string]bool{}
	var out []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}

	for _, name := range schema.AlwaysSelect {
		add(name)
	}
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if _, ok := schema.Fields[name]; ok {
			add(name)
		}
	}
	return out
}

// Offset of the first row of the requested page.
func (q *Query) Offset() int {
	return (q.Page - 1) * q.Limit
}

// column renders alias."column".
func (s Schema) column(name string) string {
	col := pq.QuoteIdentifier(s.Fields[name].Column)
	if s.Alias == "" {
		return col
	}
	return s.Alias + "." + col
}

// Where renders the filters and search as a SQL predicate (without the
// WHERE keyword) with placeholders numbered from startArg. An empty
// query renders "TRUE".
func (q *Query) Where(schema Schema, startArg int) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	next := startArg

	for _, f := range q.Filters {
		col := schema.column(f.Field)
		if f.Op == OpIn {
			clauses = append(clauses, fmt.Sprintf("%s IN (%s)", col, utils.Placeholders(next, len(f.Values))))
			args = append(args, f.Values...)
			next += len(f.Values)
			continue
		}
		clauses = append(clauses, fmt.Sprintf("%s %s $%d", col, sqlOps[f.Op], next))
		args = append(args, f.Values[0])
		next++
	}

	if q.Search != "" && len(schema.SearchFields) > 0 {
		ors := make([]string, 0, len(schema.SearchFields))
		for _, name := range schema.SearchFields {
			ors = append(ors, fmt.Sprintf("%s ILIKE $%d", schema.column(name), next))
		}
		clauses = append(clauses, "("+utils.JoinWithOr(ors)+")")
		args = append(args, utils.ContainsPattern(q.Search))
	}

	if len(clauses) == 0 {
		return "TRUE", nil
	}
	return utils.JoinWithAnd(clauses), args
}

// OrderBy renders the ORDER BY list (without the keyword).
func (q *Query) OrderBy(schema Schema) string {
	parts := make([]string, 0, len(q.Sort)+1)
	hasTie := false
	for _, k := range q.Sort {
		dir := "ASC"
		if k.Desc {
			dir = "DESC"
		}
		parts = append(parts, schema.column(k.Field)+" "+dir)
		if k.Field == schema.TieBreaker {
			hasTie = true
		}
	}
	if schema.TieBreaker != "" && !hasTie {
		parts = append(parts, schema.column(schema.TieBreaker)+" ASC")
	}
	return strings.Join(parts, ", ")
}

// CacheKey is a stable digest of the raw query, independent of key order.
func CacheKey(values url.Values) string {
	sum := sha256.Sum256([]byte(values.Encode()))
	return hex.EncodeToString(sum[:12])
}

// sortFilters orders filters by field then operator so SQL and cache keys are deterministic.
func sortFilters(fs []Filter) {
	sort.SliceStable(fs, func(i, j int) bool {
		if fs[i].Field != fs[j].Field {
			return fs[i].Field < fs[j].Field
		}
		return fs[i].Op < fs[j].Op
	})
}
