package sql

import (
	"strconv"
	"strings"

	"github.com/syssam/udbq"
)

// Op is the statement operation kind.
type Op uint8

// Statement operations.
const (
	OpSelect Op = iota
	OpInsert
	OpReplace
	OpUpdate
	OpDelete
)

// String returns the SQL keyword of the operation.
func (op Op) String() string {
	switch op {
	case OpInsert:
		return "INSERT"
	case OpReplace:
		return "INSERT OR REPLACE"
	case OpUpdate:
		return "UPDATE"
	case OpDelete:
		return "DELETE"
	default:
		return "SELECT"
	}
}

// Operator is the closed set of field condition operators.
type Operator uint8

// Field condition operators.
const (
	OpEQ Operator = iota
	OpIn
	OpIsNull
)

// Field is an ordered (column, operator, value) condition triple.
// Build them with EQ, In and IsNull.
type Field struct {
	Column string
	Op     Operator
	Value  any // scalar for OpEQ, []any for OpIn, ignored for OpIsNull
}

// EQ returns an equality condition on the given column.
func EQ(col string, v any) Field {
	return Field{Column: col, Op: OpEQ, Value: v}
}

// In returns a membership condition on the given column.
func In(col string, vs ...any) Field {
	return Field{Column: col, Op: OpIn, Value: vs}
}

// IsNull returns a NULL test on the given column.
func IsNull(col string) Field {
	return Field{Column: col, Op: OpIsNull}
}

// renderClause builds one boolean fragment from either a textual predicate
// with positional values or a list of field conditions joined by AND.
// Each positional value appends one " ?" placeholder to the predicate text.
func renderClause(pred string, vals []any, fields []Field) (string, []any, error) {
	if pred != "" && len(fields) > 0 {
		return "", nil, udbq.Usagef("use either a textual predicate or field conditions, not both")
	}
	if pred != "" {
		return pred + strings.Repeat(" ?", len(vals)), vals, nil
	}
	var (
		parts = make([]string, 0, len(fields))
		out   []any
	)
	for _, f := range fields {
		switch f.Op {
		case OpIn:
			vs, _ := f.Value.([]any)
			parts = append(parts, f.Column+" IN ("+placeholders(len(vs))+")")
			out = append(out, vs...)
		case OpIsNull:
			parts = append(parts, f.Column+" IS NULL")
		default:
			parts = append(parts, f.Column+"=?")
			out = append(out, f.Value)
		}
	}
	return strings.Join(parts, " AND "), out, nil
}

// placeholders returns n comma-separated "?" tokens.
func placeholders(n int) string {
	switch n {
	case 0:
		return ""
	case 1:
		return "?"
	}
	var b strings.Builder
	b.Grow(3*n - 2)
	b.WriteString("?")
	for i := 1; i < n; i++ {
		b.WriteString(", ?")
	}
	return b.String()
}

// Cond is a boolean expression fragment (a WHERE/HAVING clause body) with
// its own ordered list of bound values. The number of "?" placeholders in
// its text always equals the length of its value list.
//
// And and Or append fragments without parenthesization, so a chain that
// mixes the two is subject to the dialect's raw operator precedence (AND
// binds tighter than OR). Callers that need explicit grouping must combine
// whole Cond values with AndCond/OrCond, which parenthesize their argument.
type Cond struct {
	text   string
	values []any
}

// NewCond returns a condition from a textual predicate and its positional
// values. Each value appends one placeholder: NewCond("age >", 21) renders
// "age > ?" with values [21].
func NewCond(pred string, vals ...any) *Cond {
	text, out, _ := renderClause(pred, vals, nil)
	return &Cond{text: text, values: append([]any(nil), out...)}
}

// Match returns a condition from field triples joined by AND.
func Match(fields ...Field) *Cond {
	text, out, _ := renderClause("", nil, fields)
	return &Cond{text: text, values: out}
}

// NewClause is the general constructor taking both forms. It returns a
// UsageError when a textual predicate and field conditions are mixed.
func NewClause(pred string, vals []any, fields []Field) (*Cond, error) {
	text, out, err := renderClause(pred, vals, fields)
	if err != nil {
		return nil, err
	}
	return &Cond{text: text, values: append([]any(nil), out...)}, nil
}

// connect appends " <op> <fragment>" to the condition in place.
func (c *Cond) connect(op, pred string, vals []any, fields []Field) *Cond {
	text, out, _ := renderClause(pred, vals, fields)
	c.text += " " + op + " " + text
	c.values = append(c.values, out...)
	return c
}

// connectCond appends " <op> (<other>)" to the condition in place.
// The argument's values are copied over in order.
func (c *Cond) connectCond(op string, other *Cond) *Cond {
	c.text += " " + op + " (" + other.text + ")"
	c.values = append(c.values, other.values...)
	return c
}

// And appends an AND-combined textual fragment and returns the receiver.
func (c *Cond) And(pred string, vals ...any) *Cond {
	return c.connect("AND", pred, vals, nil)
}

// AndFields appends AND-combined field conditions and returns the receiver.
func (c *Cond) AndFields(fields ...Field) *Cond {
	return c.connect("AND", "", nil, fields)
}

// AndCond appends another condition, parenthesized, and returns the receiver.
func (c *Cond) AndCond(other *Cond) *Cond {
	return c.connectCond("AND", other)
}

// Or appends an OR-combined textual fragment and returns the receiver.
func (c *Cond) Or(pred string, vals ...any) *Cond {
	return c.connect("OR", pred, vals, nil)
}

// OrFields appends OR-combined field conditions and returns the receiver.
func (c *Cond) OrFields(fields ...Field) *Cond {
	return c.connect("OR", "", nil, fields)
}

// OrCond appends another condition, parenthesized, and returns the receiver.
func (c *Cond) OrCond(other *Cond) *Cond {
	return c.connectCond("OR", other)
}

// Text returns the rendered boolean expression.
func (c *Cond) Text() string { return c.text }

// Values returns a copy of the ordered bound values.
func (c *Cond) Values() []any { return append([]any(nil), c.values...) }

func (c *Cond) clone() *Cond {
	if c == nil {
		return nil
	}
	return &Cond{text: c.text, values: append([]any(nil), c.values...)}
}

// Assignment is one column assignment of an INSERT or UPDATE statement.
// Assignments are an ordered list; rendering follows their order.
type Assignment struct {
	Column string
	Value  any
}

// Set returns an assignment of v to the given column.
func Set(col string, v any) Assignment {
	return Assignment{Column: col, Value: v}
}

// Raw is an expression-valued assignment right-hand side with extra bound
// values, allowing updates such as "visits = visits + ?".
type Raw struct {
	text string
	vals []any
}

// Expr returns a Raw assignment value:
//
//	Table("pages").Update(Set("visits", Expr("visits + ?", 1)))
func Expr(text string, vals ...any) Raw {
	return Raw{text: text, vals: vals}
}

// RowMapper wraps one fetched row into a caller-facing value.
type RowMapper func(*Row) any

type namedStatement struct {
	alias string
	stmt  *Statement
}

// Statement is a SQL statement under construction. The zero value is not
// usable; create statements with Table.
//
// A fresh statement is clean: the first clause-setting call (Select, Where,
// GroupBy, Having, OrderBy, Limit, Offset) deep-copies it and mutates the
// copy, so independently derived variants of one base statement never share
// conditions or clause lists. Subsequent calls mutate in place.
type Statement struct {
	tables  []string
	op      Op
	columns []any // string or *Statement scalar sub-select
	assigns []Assignment
	cond    *Cond
	having  *Cond
	groupBy string
	orderBy string
	limit   int // -1 when unset
	offset  int // -1 when unset
	withs   []namedStatement
	alias   string
	mapper  RowMapper
	clean   bool
	err     error
}

// Table returns a new clean SELECT statement over the given table sources.
func Table(names ...string) *Statement {
	return &Statement{
		tables: names,
		op:     OpSelect,
		limit:  -1,
		offset: -1,
		clean:  true,
	}
}

// Clone returns a structurally independent copy of the statement. Nested
// conditions and CTE sub-statements are deep-copied; no mutable state is
// shared with the receiver.
func (s *Statement) Clone() *Statement {
	c := *s
	c.tables = append([]string(nil), s.tables...)
	if s.columns != nil {
		c.columns = make([]any, len(s.columns))
		for i, col := range s.columns {
			if sub, ok := col.(*Statement); ok {
				c.columns[i] = sub.Clone()
			} else {
				c.columns[i] = col
			}
		}
	}
	c.assigns = append([]Assignment(nil), s.assigns...)
	c.cond = s.cond.clone()
	c.having = s.having.clone()
	if s.withs != nil {
		c.withs = make([]namedStatement, len(s.withs))
		for i, w := range s.withs {
			c.withs[i] = namedStatement{alias: w.alias, stmt: w.stmt.Clone()}
		}
	}
	return &c
}

// cloneIf copies the statement on its first private mutation.
func (s *Statement) cloneIf() *Statement {
	if !s.clean {
		return s
	}
	c := s.Clone()
	c.clean = false
	return c
}

func (s *Statement) fail(err error) *Statement {
	if s.err == nil {
		s.err = err
	}
	return s
}

// Select sets the statement to a SELECT over the given columns. A column
// may be a string or a *Statement, which renders as a parenthesized scalar
// sub-select aliased by As. No columns means "*".
func (s *Statement) Select(cols ...any) *Statement {
	s = s.cloneIf()
	s.op = OpSelect
	s.columns = cols
	return s
}

// Insert sets the statement to an INSERT with the given assignments.
func (s *Statement) Insert(assigns ...Assignment) *Statement {
	s.op = OpInsert
	s.assigns = assigns
	return s
}

// Replace sets the statement to an INSERT OR REPLACE with the given assignments.
func (s *Statement) Replace(assigns ...Assignment) *Statement {
	s.op = OpReplace
	s.assigns = assigns
	return s
}

// Update sets the statement to an UPDATE with the given assignments. An
// Expr value renders as a raw right-hand side with its extra bound values.
func (s *Statement) Update(assigns ...Assignment) *Statement {
	s.op = OpUpdate
	s.assigns = assigns
	return s
}

// Delete sets the statement to a DELETE.
func (s *Statement) Delete() *Statement {
	s.op = OpDelete
	return s
}

// Where adds a textual predicate. The first call creates the WHERE
// condition; subsequent calls AND-combine into it.
func (s *Statement) Where(pred string, vals ...any) *Statement {
	s = s.cloneIf()
	if s.cond == nil {
		s.cond = NewCond(pred, vals...)
	} else {
		s.cond.And(pred, vals...)
	}
	return s
}

// WhereFields adds field conditions, AND-combined with any existing WHERE
// condition.
func (s *Statement) WhereFields(fields ...Field) *Statement {
	s = s.cloneIf()
	if s.cond == nil {
		s.cond = Match(fields...)
	} else {
		s.cond.AndFields(fields...)
	}
	return s
}

// WhereCond adds a whole condition. When a WHERE condition already exists
// the argument is AND-combined parenthesized; either way the statement
// keeps its own copy.
func (s *Statement) WhereCond(c *Cond) *Statement {
	s = s.cloneIf()
	if s.cond == nil {
		s.cond = c.clone()
	} else {
		s.cond.AndCond(c)
	}
	return s
}

// And extends the WHERE condition with an AND-combined textual fragment.
// It is a usage error to call it before Where.
func (s *Statement) And(pred string, vals ...any) *Statement {
	if s.cond == nil {
		return s.fail(udbq.Usagef("And: no WHERE condition to extend"))
	}
	s.cond.And(pred, vals...)
	return s
}

// AndFields extends the WHERE condition with AND-combined field conditions.
func (s *Statement) AndFields(fields ...Field) *Statement {
	if s.cond == nil {
		return s.fail(udbq.Usagef("AndFields: no WHERE condition to extend"))
	}
	s.cond.AndFields(fields...)
	return s
}

// AndCond extends the WHERE condition with a parenthesized condition.
func (s *Statement) AndCond(c *Cond) *Statement {
	if s.cond == nil {
		return s.fail(udbq.Usagef("AndCond: no WHERE condition to extend"))
	}
	s.cond.AndCond(c)
	return s
}

// Or extends the WHERE condition with an OR-combined textual fragment.
// It is a usage error to call it before Where.
func (s *Statement) Or(pred string, vals ...any) *Statement {
	if s.cond == nil {
		return s.fail(udbq.Usagef("Or: no WHERE condition to extend"))
	}
	s.cond.Or(pred, vals...)
	return s
}

// OrFields extends the WHERE condition with OR-combined field conditions.
func (s *Statement) OrFields(fields ...Field) *Statement {
	if s.cond == nil {
		return s.fail(udbq.Usagef("OrFields: no WHERE condition to extend"))
	}
	s.cond.OrFields(fields...)
	return s
}

// OrCond extends the WHERE condition with a parenthesized condition.
func (s *Statement) OrCond(c *Cond) *Statement {
	if s.cond == nil {
		return s.fail(udbq.Usagef("OrCond: no WHERE condition to extend"))
	}
	s.cond.OrCond(c)
	return s
}

// Having adds a textual predicate to the HAVING condition, following the
// same first-call/AND-combine pattern as Where.
func (s *Statement) Having(pred string, vals ...any) *Statement {
	s = s.cloneIf()
	if s.having == nil {
		s.having = NewCond(pred, vals...)
	} else {
		s.having.And(pred, vals...)
	}
	return s
}

// HavingFields adds field conditions to the HAVING condition.
func (s *Statement) HavingFields(fields ...Field) *Statement {
	s = s.cloneIf()
	if s.having == nil {
		s.having = Match(fields...)
	} else {
		s.having.AndFields(fields...)
	}
	return s
}

// HavingCond adds a whole condition to the HAVING condition.
func (s *Statement) HavingCond(c *Cond) *Statement {
	s = s.cloneIf()
	if s.having == nil {
		s.having = c.clone()
	} else {
		s.having.AndCond(c)
	}
	return s
}

// GroupBy sets the GROUP BY clause.
func (s *Statement) GroupBy(cols ...string) *Statement {
	s = s.cloneIf()
	s.groupBy = " GROUP BY " + strings.Join(cols, ", ")
	return s
}

// OrderBy sets the ORDER BY clause.
func (s *Statement) OrderBy(cols ...string) *Statement {
	s = s.cloneIf()
	s.orderBy = " ORDER BY " + strings.Join(cols, ", ")
	return s
}

// Limit sets the LIMIT clause.
func (s *Statement) Limit(n int) *Statement {
	s = s.cloneIf()
	s.limit = n
	return s
}

// Offset sets the OFFSET clause.
func (s *Statement) Offset(n int) *Statement {
	s = s.cloneIf()
	s.offset = n
	return s
}

// Join appends an inner join to the last table source.
func (s *Statement) Join(table, on string) *Statement {
	return s.join("JOIN", table, on)
}

// LeftJoin appends a left join to the last table source.
func (s *Statement) LeftJoin(table, on string) *Statement {
	return s.join("LEFT JOIN", table, on)
}

func (s *Statement) join(kw, table, on string) *Statement {
	if len(s.tables) == 0 {
		return s.fail(udbq.Usagef("%s: no table source to join onto", kw))
	}
	last := len(s.tables) - 1
	s.tables[last] = s.tables[last] + " " + kw + " " + table + " ON " + on
	return s
}

// AddTable appends an additional source to the FROM list.
func (s *Statement) AddTable(source string) *Statement {
	s.tables = append(s.tables, source)
	return s
}

// With registers a named sub-statement rendered as a common table
// expression, in registration order, ahead of the outer statement.
func (s *Statement) With(alias string, sub *Statement) *Statement {
	s.withs = append(s.withs, namedStatement{alias: alias, stmt: sub})
	return s
}

// As tags the statement with an alias, used when it is embedded as a
// scalar sub-select in another statement's column list.
func (s *Statement) As(alias string) *Statement {
	s.alias = alias
	return s
}

// Mapper sets the row-mapping constructor applied to every fetched row.
// The default mapper returns the *Row itself.
func (s *Statement) Mapper(fn RowMapper) *Statement {
	s.mapper = fn
	return s
}

// Query renders the statement to SQL text and its ordered argument list.
// The order of "?" placeholders in the text exactly matches the order of
// the returned values.
func (s *Statement) Query() (string, []any, error) {
	if s.err != nil {
		return "", nil, s.err
	}
	var (
		b    strings.Builder
		vals []any
	)
	if len(s.withs) > 0 {
		b.WriteString("WITH ")
		for i, w := range s.withs {
			if i > 0 {
				b.WriteString(", ")
			}
			sub, subVals, err := w.stmt.Query()
			if err != nil {
				return "", nil, err
			}
			b.WriteString(w.alias)
			b.WriteString(" AS (")
			b.WriteString(sub)
			b.WriteString(")")
			vals = append(vals, subVals...)
		}
		b.WriteString(" ")
	}
	tables := strings.Join(s.tables, ", ")
	switch s.op {
	case OpInsert, OpReplace:
		if len(s.assigns) == 0 {
			return "", nil, udbq.Usagef("%s with no assignments", s.op)
		}
		b.WriteString(s.op.String())
		b.WriteString(" INTO ")
		b.WriteString(tables)
		b.WriteString(" (")
		for i, a := range s.assigns {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.Column)
			if _, ok := a.Value.(Raw); ok {
				return "", nil, udbq.Usagef("%s: expression value for column %s; expressions are only valid in UPDATE", s.op, a.Column)
			}
			vals = append(vals, a.Value)
		}
		b.WriteString(") VALUES (")
		b.WriteString(placeholders(len(s.assigns)))
		b.WriteString(")")
		// INSERT carries no condition or trailing clauses.
		return b.String(), vals, nil
	case OpSelect:
		b.WriteString("SELECT ")
		if len(s.columns) == 0 {
			b.WriteString("*")
		}
		for i, col := range s.columns {
			if i > 0 {
				b.WriteString(", ")
			}
			switch c := col.(type) {
			case string:
				b.WriteString(c)
			case *Statement:
				sub, subVals, err := c.Query()
				if err != nil {
					return "", nil, err
				}
				b.WriteString("(")
				b.WriteString(sub)
				b.WriteString(")")
				if c.alias != "" {
					b.WriteString(" AS ")
					b.WriteString(c.alias)
				}
				vals = append(vals, subVals...)
			default:
				return "", nil, udbq.Usagef("Select: unsupported column type %T", col)
			}
		}
		// Table-less selects of computed values are allowed.
		if len(s.tables) > 0 {
			b.WriteString(" FROM ")
			b.WriteString(tables)
		}
	case OpDelete:
		b.WriteString("DELETE FROM ")
		b.WriteString(tables)
	case OpUpdate:
		if len(s.assigns) == 0 {
			return "", nil, udbq.Usagef("UPDATE with no assignments")
		}
		b.WriteString("UPDATE ")
		b.WriteString(tables)
		b.WriteString(" SET ")
		for i, a := range s.assigns {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.Column)
			b.WriteString(" = ")
			if r, ok := a.Value.(Raw); ok {
				b.WriteString(r.text)
				vals = append(vals, r.vals...)
			} else {
				b.WriteString("?")
				vals = append(vals, a.Value)
			}
		}
	}
	if s.cond != nil && s.cond.text != "" {
		b.WriteString(" WHERE ")
		b.WriteString(s.cond.text)
		vals = append(vals, s.cond.values...)
	}
	b.WriteString(s.groupBy)
	if s.having != nil && s.having.text != "" {
		b.WriteString(" HAVING ")
		b.WriteString(s.having.text)
		vals = append(vals, s.having.values...)
	}
	b.WriteString(s.orderBy)
	if s.limit >= 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(s.limit))
	}
	if s.offset >= 0 {
		b.WriteString(" OFFSET ")
		b.WriteString(strconv.Itoa(s.offset))
	}
	return b.String(), vals, nil
}

// SQL renders the statement to text only. It returns a UsageError when the
// statement still binds values; it is meant for debugging and CTE text
// inspection, not execution.
func (s *Statement) SQL() (string, error) {
	query, vals, err := s.Query()
	if err != nil {
		return "", err
	}
	if len(vals) > 0 {
		return "", udbq.Usagef("SQL: statement still binds %d values", len(vals))
	}
	return query, nil
}
