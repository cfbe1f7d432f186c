package sqlcanon

import (
	"strconv"

	"sql-eval/internal/duckdbsql"
)

// scope holds the table qualifiers visible inside one SELECT core.
type scope struct {
	outer *scope
	// rename maps a qualifier as written to its canonical spelling.
	rename map[string]string
	// names holds the canonical qualifiers bound here.
	names map[string]bool
	// qualifier is set when the scope has exactly one named source.
	qualifier string
	// aliases are the select-list aliases, which unqualified names may refer to.
	aliases map[string]bool
	// correlated scopes belong to subqueries nested in an expression; their
	// unqualified names may refer to an outer query.
	correlated bool
}

// niladic names parse as column references but are functions.
var niladic = map[string]bool{
	"current_date":      true,
	"current_time":      true,
	"current_timestamp": true,
	"current_user":      true,
	"current_schema":    true,
	"current_catalog":   true,
	"localtime":         true,
	"localtimestamp":    true,
	"session_user":      true,
	"user":              true,
}

// resolve rewrites the qualifier of col to its canonical spelling, or adds
// one when the scope is unambiguous.
func (s *scope) resolve(col *duckdbsql.ColumnRef) {
	if col.Schema != "" {
		return
	}
	if col.Table != "" {
		col.Table = s.lookup(col.Table)
		return
	}
	if s == nil || s.correlated || s.qualifier == "" {
		return
	}
	if s.aliases[col.Column] || niladic[col.Column] {
		return
	}
	col.Table = s.qualifier
}

// lookup returns the canonical spelling of qualifier, searching outer
// scopes when the innermost one does not define it.
func (s *scope) lookup(qualifier string) string {
	for sc := s; sc != nil; sc = sc.outer {
		if renamed, ok := sc.rename[qualifier]; ok {
			return renamed
		}
	}
	return qualifier
}

// tableSources returns the FROM source followed by every joined table.
func tableSources(from *duckdbsql.FromClause) []duckdbsql.TableRef {
	if from == nil {
		return nil
	}
	refs := []duckdbsql.TableRef{from.Source}
	for _, j := range from.Joins {
		refs = append(refs, j.Right)
	}
	return refs
}

// binds reports whether s or an enclosing scope binds the canonical
// qualifier name. A nil scope binds nothing.
func (s *scope) binds(name string) bool {
	for sc := s; sc != nil; sc = sc.outer {
		if sc.names[name] {
			return true
		}
	}
	return false
}

func (s *scope) depth() int {
	d := 0
	for sc := s; sc != nil; sc = sc.outer {
		d++
	}
	return d
}

// fresh returns name unless an enclosing scope already binds it or force is
// set. Then the depth of s is spliced in as <base>_<depth>_<n>, so a
// subquery source never captures a correlated reference to the outer query.
func (s *scope) fresh(name, base string, n int, force bool) string {
	for d := s.depth(); force || s.outer.binds(name); d++ {
		name = base + "_" + strconv.Itoa(d) + "_" + strconv.Itoa(n)
		force = false
	}
	return name
}

// bindSources renames the table references of a core and records the
// qualifier mapping in s. A table whose name is unique in the core loses
// its alias. Tables sharing a name, even across schemas, get <name>_<n>;
// derived tables become _q<n>. Names an enclosing scope already binds
// are made distinct with the nesting depth.
func (s *scope) bindSources(refs []duckdbsql.TableRef) {
	s.rename = make(map[string]string)
	s.names = make(map[string]bool)
	bind := func(old, canonical string) {
		s.names[canonical] = true
		if old == "" {
			return
		}
		if _, seen := s.rename[old]; !seen {
			s.rename[old] = canonical
		}
	}

	uses := make(map[string]int)
	for _, ref := range refs {
		if t, ok := ref.(*duckdbsql.TableName); ok {
			uses[t.Name]++
		}
	}

	seen := make(map[string]int)
	derived := 0
	named := 0
	for _, ref := range refs {
		switch t := ref.(type) {
		case *duckdbsql.TableName:
			named++
			old := t.Alias
			if old == "" {
				old = t.Name
			}
			shadows := s.outer.binds(t.Name)
			if uses[t.Name] == 1 && !shadows {
				t.Alias = ""
				bind(old, t.Name)
				s.qualifier = t.Name
				continue
			}
			seen[t.Name]++
			n := seen[t.Name]
			t.Alias = s.fresh(t.Name+"_"+strconv.Itoa(n), t.Name, n, uses[t.Name] == 1)
			bind(old, t.Alias)
			s.qualifier = t.Alias
		case *duckdbsql.DerivedTable:
			named++
			derived++
			old := t.Alias
			t.Alias = s.fresh("_q"+strconv.Itoa(derived), "_q", derived, false)
			bind(old, t.Alias)
			s.qualifier = t.Alias
		case *duckdbsql.FuncTable:
			if t.Alias != "" {
				bind(t.Alias, t.Alias)
			}
		}
	}
	if named != 1 || len(refs) != 1 {
		s.qualifier = ""
	}
}
