package store

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// compareValues orders decoded BSON values for OrderBy. Missing and null
// values sort first; values of different kinds order by kind.
func compareValues(a, b any) int {
	ra, rb := kindRank(a), kindRank(b)
	if ra != rb {
		return ra - rb
	}

	switch av := a.(type) {
	case nil:
		return 0
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		}
		return 1
	case string:
		return strings.Compare(av, b.(string))
	case primitive.DateTime:
		return compareTimes(av.Time(), b.(primitive.DateTime).Time())
	case primitive.Timestamp:
		bv := b.(primitive.Timestamp)
		return compareTimes(time.Unix(int64(av.T), 0), time.Unix(int64(bv.T), 0))
	}

	af, _ := number(a)
	bf, _ := number(b)
	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	}
	return 0
}

func kindRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case int32, int64, float64:
		return 1
	case string:
		return 2
	case bool:
		return 3
	case primitive.DateTime, primitive.Timestamp:
		return 4
	}
	return 5
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}
