package store

type Op int

const (
	OpEqual Op = iota
	OpArrayContains
	OpArrayContainsAny
)

type Filter struct {
	Field string
	Op    Op
	Value any
}

type Order struct {
	Field string
	Desc  bool
}

// Query selects documents whose fields satisfy every filter.
type Query struct {
	Filters []Filter
	OrderBy []Order
	Limit   int
}

func Where(field string, value any) Filter {
	return Filter{Field: field, Op: OpEqual, Value: value}
}

func ArrayContains(field string, value any) Filter {
	return Filter{Field: field, Op: OpArrayContains, Value: value}
}

func ArrayContainsAny(field string, values ...any) Filter {
	return Filter{Field: field, Op: OpArrayContainsAny, Value: values}
}

func Asc(field string) Order  { return Order{Field: field} }
func Desc(field string) Order { return Order{Field: field, Desc: true} }

// NewQuery builds a query from filters. OrderBy and Limit can be set on the result.
func NewQuery(filters ...Filter) Query {
	return Query{Filters: filters}
}

func (q Query) Sort(orders ...Order) Query {
	q.OrderBy = append(append([]Order(nil), q.OrderBy...), orders...)
	return q
}

func (q Query) Take(n int) Query {
	q.Limit = n
	return q
}
