package books

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/supakorn-kn/go-book-store/errors"
	"github.com/supakorn-kn/go-book-store/models"
	"github.com/supakorn-kn/go-book-store/objects"
	"go.mongodb.org/mongo-driver/bson"
)

// sortFields maps the names accepted in the sort parameter to document keys.
var sortFields = map[string]string{
	"id":                "_id",
	"name":              "name",
	"author":            "author",
	"yearOfPublication": "yearOfPublication",
	"price":             "price",
	"discount":          "discount",
	"numberOfPages":     "numberOfPages",
	"condition":         "condition",
}

type ListOption struct {
	CurrentPage int
	Limit       int
	Sort        []models.SortField

	Name              string
	AuthorName        models.MatchOption
	YearOfPublication *int
	MinPrice          *float64
	MaxPrice          *float64
	Condition         objects.Condition
}

// ParseListOption reads list parameters from the query string. Every supplied numeric value must be
// well formed, nothing is coerced.
func ParseListOption(values url.Values, pageSize, maxPageSize int) (opt ListOption, err error) {

	opt = ListOption{CurrentPage: 1, Limit: pageSize}

	if raw, ok := lookup(values, "page"); ok {

		if opt.CurrentPage, err = parseInt("page", raw); err != nil {
			return ListOption{}, err
		}

		if opt.CurrentPage < 1 {
			return ListOption{}, errors.CurrentPageInvalidError.New()
		}
	}

	if raw, ok := lookup(values, "limit"); ok {

		if opt.Limit, err = parseInt("limit", raw); err != nil {
			return ListOption{}, err
		}

		if opt.Limit < 1 || opt.Limit > maxPageSize {
			return ListOption{}, errors.PageSizeInvalidError.New(maxPageSize)
		}
	}

	if raw, ok := lookup(values, "sort"); ok {

		if opt.Sort, err = models.ParseSort(raw, sortFields); err != nil {
			return ListOption{}, err
		}
	}

	if raw, ok := lookup(values, "name"); ok {
		opt.Name = raw
	}

	if raw, ok := lookup(values, "authorName"); ok {

		opt.AuthorName = models.MatchOption{MatchType: models.PartialMatchType, Value: raw}

		if rawMatch, ok := lookup(values, "authorMatch"); ok {

			if opt.AuthorName.MatchType, err = models.ParseMatchType(rawMatch); err != nil {
				return ListOption{}, err
			}
		}
	}

	if raw, ok := lookup(values, "yearOfPublication"); ok {

		year, err := parseInt("yearOfPublication", raw)
		if err != nil {
			return ListOption{}, err
		}

		opt.YearOfPublication = &year
	}

	if raw, ok := lookup(values, "minPrice"); ok {

		minPrice, err := parsePrice("minPrice", raw)
		if err != nil {
			return ListOption{}, err
		}

		opt.MinPrice = &minPrice
	}

	if raw, ok := lookup(values, "maxPrice"); ok {

		maxPrice, err := parsePrice("maxPrice", raw)
		if err != nil {
			return ListOption{}, err
		}

		opt.MaxPrice = &maxPrice
	}

	if raw, ok := lookup(values, "condition"); ok {

		opt.Condition = objects.Condition(raw)
		if !opt.Condition.IsValid() {
			return ListOption{}, errors.QueryParameterInvalidError.New("condition", raw)
		}
	}

	return opt, nil
}

// Filter ANDs one condition per supplied option, no option matches every book.
func (opt ListOption) Filter() (bson.D, error) {

	matchConditions := bson.A{}

	if opt.Name != "" {
		matchConditions = append(matchConditions, models.PartialMatchBson("name", opt.Name))
	}

	if !opt.AuthorName.IsNil() && opt.AuthorName.Value != "" {

		matchBson, err := models.CreateMatchBson("author", opt.AuthorName.Value, opt.AuthorName.MatchType)
		if err != nil {
			return nil, err
		}

		matchConditions = append(matchConditions, matchBson)
	}

	if opt.YearOfPublication != nil {
		matchConditions = append(matchConditions, models.EqualMatchBson("yearOfPublication", *opt.YearOfPublication))
	}

	if priceRange := models.RangeMatchBson("price", opt.MinPrice, opt.MaxPrice); priceRange != nil {
		matchConditions = append(matchConditions, priceRange)
	}

	if opt.Condition != "" {
		matchConditions = append(matchConditions, models.EqualMatchBson("condition", opt.Condition))
	}

	if len(matchConditions) == 0 {
		matchConditions = append(matchConditions, bson.D{})
	}

	return bson.D{{Key: "$and", Value: matchConditions}}, nil
}

// SortBson orders by the requested keys and then by _id, which is creation order.
func (opt ListOption) SortBson() bson.D {
	return models.SortBson(opt.Sort, "_id")
}

// lookup returns the first value of key, treating blank values as absent.
func lookup(values url.Values, key string) (string, bool) {

	raw := strings.TrimSpace(values.Get(key))
	return raw, raw != ""
}

func parseInt(key string, raw string) (int, error) {

	parsed, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, errors.QueryParameterInvalidError.New(key, raw)
	}

	return int(parsed), nil
}

func parsePrice(key string, raw string) (float64, error) {

	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, errors.QueryParameterInvalidError.New(key, raw)
	}

	return parsed, nil
}
