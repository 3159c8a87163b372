// Package tenancy rewrites table queries so shared-tier tenants are always
// filtered by client_id. Dedicated-tier tenants own their database and pass
// through untouched.
package tenancy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lhyphendixon/sidekick-forge/internal/domain"
)

// Scope carries the hosting tier and client identity for query rewriting.
type Scope struct {
	tier     domain.HostingTier
	clientID string
}

// ScopeFor builds a Scope from a client record.
func ScopeFor(c *domain.Client) Scope {
	return Scope{tier: c.Tier, clientID: c.ID}
}

// NewScope builds a Scope from raw tier and client id.
func NewScope(tier domain.HostingTier, clientID string) Scope {
	return Scope{tier: tier, clientID: clientID}
}

// Shared reports whether the scope rewrites queries.
func (s Scope) Shared() bool {
	return s.tier == domain.HostingTierShared
}

// ClientID returns the tenant identity behind the scope.
func (s Scope) ClientID() string {
	return s.clientID
}

// Query builds one SQL statement against a tenant-owned table. On a shared
// scope, Build adds a client_id predicate (reads) or a client_id column
// (writes) exactly once, tracked by the applied flag.
type Query struct {
	scope   Scope
	table   string
	applied bool

	op      string
	columns []string
	sets    map[string]any
	values  map[string]any
	conds   []string
	args    []any
	orderBy string
	limit   int
}

// Select starts a SELECT over the scoped table.
func (s Scope) Select(table string, columns ...string) *Query {
	return &Query{scope: s, table: table, op: "select", columns: columns}
}

// Update starts an UPDATE over the scoped table.
func (s Scope) Update(table string) *Query {
	return &Query{scope: s, table: table, op: "update", sets: make(map[string]any)}
}

// Delete starts a DELETE over the scoped table.
func (s Scope) Delete(table string) *Query {
	return &Query{scope: s, table: table, op: "delete"}
}

// Insert starts an INSERT into the scoped table.
func (s Scope) Insert(table string) *Query {
	return &Query{scope: s, table: table, op: "insert", values: make(map[string]any)}
}

// Where appends a condition. Placeholders are written as ? and rewritten to
// $n positional arguments by Build.
func (q *Query) Where(cond string, args ...any) *Query {
	q.conds = append(q.conds, cond)
	q.args = append(q.args, args...)
	return q
}

// Set adds an assignment for UPDATE statements.
func (q *Query) Set(column string, value any) *Query {
	q.sets[column] = value
	return q
}

// Value adds a column value for INSERT statements.
func (q *Query) Value(column string, value any) *Query {
	q.values[column] = value
	return q
}

// OrderBy sets the ORDER BY clause verbatim.
func (q *Query) OrderBy(clause string) *Query {
	q.orderBy = clause
	return q
}

// Limit sets the LIMIT clause.
func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Build renders the statement with $n placeholders and its argument list,
// applying the tenant scope if it has not been applied yet.
func (q *Query) Build() (string, []any) {
	q.applyScope()

	switch q.op {
	case "select":
		return q.buildSelect()
	case "update":
		return q.buildUpdate()
	case "delete":
		return q.buildDelete()
	case "insert":
		return q.buildInsert()
	default:
		panic(fmt.Sprintf("tenancy: unknown query op %q", q.op))
	}
}

func (q *Query) applyScope() {
	if !q.scope.Shared() || q.applied {
		return
	}
	q.applied = true

	switch q.op {
	case "insert":
		if _, ok := q.values["client_id"]; !ok {
			q.values["client_id"] = q.scope.clientID
		}
	default:
		q.conds = append(q.conds, "client_id = ?")
		q.args = append(q.args, q.scope.clientID)
	}
}

func (q *Query) buildSelect() (string, []any) {
	cols := "*"
	if len(q.columns) > 0 {
		cols = strings.Join(q.columns, ", ")
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", cols, q.table)
	args := q.writeWhere(&sb, nil)
	if q.orderBy != "" {
		fmt.Fprintf(&sb, " ORDER BY %s", q.orderBy)
	}
	if q.limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", q.limit)
	}
	return rewritePlaceholders(sb.String()), args
}

func (q *Query) buildUpdate() (string, []any) {
	cols := sortedKeys(q.sets)
	var sb strings.Builder
	fmt.Fprintf(&sb, "UPDATE %s SET ", q.table)

	args := make([]any, 0, len(cols)+len(q.args))
	for i, col := range cols {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s = ?", col)
		args = append(args, q.sets[col])
	}
	args = q.writeWhere(&sb, args)
	return rewritePlaceholders(sb.String()), args
}

func (q *Query) buildDelete() (string, []any) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "DELETE FROM %s", q.table)
	args := q.writeWhere(&sb, nil)
	return rewritePlaceholders(sb.String()), args
}

func (q *Query) buildInsert() (string, []any) {
	cols := sortedKeys(q.values)
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		placeholders[i] = "?"
		args[i] = q.values[col]
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		q.table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	return rewritePlaceholders(sql), args
}

func (q *Query) writeWhere(sb *strings.Builder, args []any) []any {
	if len(q.conds) == 0 {
		return append(args, q.args...)
	}
	sb.WriteString(" WHERE ")
	sb.WriteString(strings.Join(q.conds, " AND "))
	return append(args, q.args...)
}

func rewritePlaceholders(sql string) string {
	var sb strings.Builder
	n := 0
	for _, r := range sql {
		if r == '?' {
			n++
			fmt.Fprintf(&sb, "$%d", n)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
