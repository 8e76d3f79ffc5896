package postgres

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// jsonList maps a []string onto a JSONB column.
type jsonList []string

func (l jsonList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

func (l *jsonList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("postgres: cannot scan %T into jsonList", src)
	}
	return json.Unmarshal(data, (*[]string)(l))
}

// setBuilder accumulates SET clauses for partial updates. Column names are
// constants from this package, never caller input.
type setBuilder struct {
	clauses []string
	args    []any
}

func newSetBuilder() *setBuilder {
	return &setBuilder{}
}

// add appends a clause when the typed pointer is non-nil.
func (b *setBuilder) add(column string, value any) {
	switch v := value.(type) {
	case *string:
		if v != nil {
			b.addValue(column, *v)
		}
	case *int:
		if v != nil {
			b.addValue(column, *v)
		}
	case *int64:
		if v != nil {
			b.addValue(column, *v)
		}
	case *float64:
		if v != nil {
			b.addValue(column, *v)
		}
	case *bool:
		if v != nil {
			b.addValue(column, *v)
		}
	case *time.Time:
		if v != nil {
			b.addValue(column, *v)
		}
	}
}

func (b *setBuilder) addValue(column string, value any) {
	b.args = append(b.args, value)
	b.clauses = append(b.clauses, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

func (b *setBuilder) empty() bool {
	return len(b.clauses) == 0
}

func (b *setBuilder) clause() string {
	return strings.Join(b.clauses, ", ")
}

// next returns the placeholder index for the argument appended after args.
func (b *setBuilder) next() int {
	return len(b.args) + 1
}
