package models

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/supakorn-kn/go-book-store/errors"
	"go.mongodb.org/mongo-driver/bson"
)

type AggregatedResult[T any] struct {
	Total int `bson:"total"`
	Data  []T `bson:"data"`
}

type MatchType uint8

const (
	EqualMatchType     MatchType = 0
	PartialMatchType   MatchType = 1
	StartWithMatchType MatchType = 2
	EndWithMatchType   MatchType = 3
)

var matchTypeNames = map[string]MatchType{
	"exact":   EqualMatchType,
	"partial": PartialMatchType,
	"prefix":  StartWithMatchType,
	"suffix":  EndWithMatchType,
}

// ParseMatchType resolves match type from its query name (exact, partial, prefix, suffix).
func ParseMatchType(name string) (MatchType, error) {

	matchType, ok := matchTypeNames[strings.ToLower(name)]
	if !ok {
		return 0, errors.MatchTypeInvalidError.New(name)
	}

	return matchType, nil
}

type MatchOption struct {
	MatchType MatchType `json:"match_type"`
	Value     string    `json:"value"`
}

func (opt MatchOption) IsNil() bool {
	return reflect.ValueOf(opt).IsZero()
}

func CreateMatchBson(key string, value any, matchType MatchType) (bson.D, error) {

	switch matchType {

	case EqualMatchType:
		return EqualMatchBson(key, value), nil

	case PartialMatchType:
		return PartialMatchBson(key, fmt.Sprint(value)), nil

	case StartWithMatchType:
		return StartWithMatchBson(key, fmt.Sprint(value)), nil

	case EndWithMatchType:
		return EndWithMatchBson(key, fmt.Sprint(value)), nil

	default:
		return nil, errors.MatchTypeInvalidError.New(matchType)
	}
}

// EqualMatchBson creates BSON for equal search (Case-sensitive)
func EqualMatchBson(key string, value any) bson.D {
	return bson.D{{Key: key, Value: value}}
}

// PartialMatchBson creates BSON for partial search (Case-insensitive)
func PartialMatchBson(key string, value string) bson.D {
	return regexMatchBson(key, regexp.QuoteMeta(value))
}

// StartWithMatchBson creates BSON for start with keyword search (Case-insensitive)
func StartWithMatchBson(key string, value string) bson.D {
	return regexMatchBson(key, "^"+regexp.QuoteMeta(value))
}

// EndWithMatchBson creates BSON for end with keyword search (Case-insensitive)
func EndWithMatchBson(key string, value string) bson.D {
	return regexMatchBson(key, regexp.QuoteMeta(value)+"$")
}

func regexMatchBson(key string, pattern string) bson.D {
	return bson.D{{Key: key, Value: bson.M{"$regex": pattern, "$options": "i"}}}
}

// RangeMatchBson creates BSON for inclusive range search. Nil bound is left open, both nil gives nil.
func RangeMatchBson[N int | float64](key string, min, max *N) bson.D {

	var bounds bson.D
	if min != nil {
		bounds = append(bounds, bson.E{Key: "$gte", Value: *min})
	}

	if max != nil {
		bounds = append(bounds, bson.E{Key: "$lte", Value: *max})
	}

	if bounds == nil {
		return nil
	}

	return bson.D{{Key: key, Value: bounds}}
}

type SortField struct {
	Key        string
	Descending bool
}

// ParseSort parses comma separated field names where leading "-" means descending order.
// fields maps accepted names to the document keys they sort by.
func ParseSort(raw string, fields map[string]string) ([]SortField, error) {

	var sortFields []SortField
	var seen = map[string]bool{}

	for _, token := range strings.Split(raw, ",") {

		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		name, descending := strings.CutPrefix(token, "-")

		key, ok := fields[name]
		if !ok {
			return nil, errors.SortFieldInvalidError.New(name)
		}

		// first occurrence of a key decides its direction
		if seen[key] {
			continue
		}

		seen[key] = true
		sortFields = append(sortFields, SortField{Key: key, Descending: descending})
	}

	return sortFields, nil
}

// SortBson keeps the order of sortFields and appends tieBreakKey ascending unless it is already sorted.
func SortBson(sortFields []SortField, tieBreakKey string) bson.D {

	var sortBson bson.D
	var hasTieBreak bool

	for _, field := range sortFields {

		direction := 1
		if field.Descending {
			direction = -1
		}

		if field.Key == tieBreakKey {
			hasTieBreak = true
		}

		sortBson = append(sortBson, bson.E{Key: field.Key, Value: direction})
	}

	if !hasTieBreak && tieBreakKey != "" {
		sortBson = append(sortBson, bson.E{Key: tieBreakKey, Value: 1})
	}

	return sortBson
}
