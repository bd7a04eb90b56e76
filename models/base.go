package models

import (
	"context"
	"errors"

	serverError "github.com/supakorn-kn/go-book-store/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const documentValidationFailureCode = 121

type Item interface {
	GetID() string
}

type PaginationData[Data Item] struct {
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"total_pages"`
	Count      int    `json:"count"`
	Data       []Data `json:"data"`
}

type SearchOptions struct {
	CurrentPage int
	Limit       int
	Filter      bson.D
	Sort        bson.D
}

type BaseModel[T Item] struct {
	SearchLenLimit int

	Coll *mongo.Collection
}

func (m *BaseModel[T]) Inject(coll *mongo.Collection, searchLenLimit int) error {

	if searchLenLimit < 1 {
		return errors.New("PaginateSize value can be only positive integer")
	}

	m.Coll = coll
	m.SearchLenLimit = searchLenLimit

	return nil
}

func (m BaseModel[T]) Insert(ctx context.Context, item T) (primitive.ObjectID, error) {

	result, err := m.Coll.InsertOne(ctx, item)
	if err != nil {
		return primitive.NilObjectID, translateWriteError(err)
	}

	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("inserted ID is not an ObjectID")
	}

	return id, nil
}

func (m BaseModel[T]) GetByID(ctx context.Context, itemID string) (item T, err error) {

	objectID, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		err = serverError.ObjectIDNotFoundError.New(itemID)
		return
	}

	result := m.Coll.FindOne(ctx, bson.D{{Key: "_id", Value: objectID}})

	err = result.Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		err = serverError.ObjectIDNotFoundError.New(itemID)
		return
	}

	return
}

// Search runs the filter once and returns both the requested page and the total number of matches.
func (m BaseModel[T]) Search(ctx context.Context, opt SearchOptions) (paginationData PaginationData[T], paginateErr error) {

	var currentPage = opt.CurrentPage
	if currentPage < 1 {
		paginateErr = serverError.CurrentPageInvalidError.New()
		return
	}

	var limit = opt.Limit
	if limit < 1 {
		limit = m.SearchLenLimit
	}

	var filter = opt.Filter
	if filter == nil {
		filter = bson.D{}
	}

	paginateResultQuery := bson.A{}
	if len(opt.Sort) > 0 {
		paginateResultQuery = append(paginateResultQuery, bson.D{{Key: "$sort", Value: opt.Sort}})
	}

	paginateResultQuery = append(paginateResultQuery,
		bson.D{{Key: "$skip", Value: int64(currentPage-1) * int64(limit)}},
		bson.D{{Key: "$limit", Value: limit}},
	)

	matchResultQuery := bson.A{
		bson.D{{Key: "$count", Value: "total"}},
	}

	matchStage := bson.D{{Key: "$match", Value: filter}}

	facetStage := bson.D{
		{
			Key: "$facet", Value: bson.D{
				{Key: "paginate_result", Value: paginateResultQuery},
				{Key: "match_result", Value: matchResultQuery},
			},
		},
	}

	projectStage := bson.D{
		{
			Key: "$project", Value: bson.D{
				{Key: "total", Value: bson.D{{Key: "$first", Value: "$match_result.total"}}},
				{Key: "data", Value: "$paginate_result"},
			},
		},
	}

	pipeline := mongo.Pipeline{matchStage, facetStage, projectStage}

	var cur *mongo.Cursor
	cur, paginateErr = m.Coll.Aggregate(ctx, pipeline, options.Aggregate())
	if paginateErr != nil {
		return
	}

	var aggResultList []AggregatedResult[T]
	paginateErr = cur.All(ctx, &aggResultList)
	if paginateErr != nil {
		return
	}

	var aggResult AggregatedResult[T]
	if len(aggResultList) > 0 {
		aggResult = aggResultList[0]
	}

	if aggResult.Data == nil {
		aggResult.Data = []T{}
	}

	totalPages := aggResult.Total / limit
	if aggResult.Total%limit > 0 {
		totalPages++
	}

	paginationData = PaginationData[T]{
		Page:       currentPage,
		Limit:      limit,
		TotalPages: totalPages,
		Count:      aggResult.Total,
		Data:       aggResult.Data,
	}

	return
}

// UpdateFields sets the non-empty fields of update on the item and returns the item after the update.
func (m BaseModel[T]) UpdateFields(ctx context.Context, itemID string, update any) (item T, err error) {

	objectID, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		err = serverError.ObjectIDNotFoundError.New(itemID)
		return
	}

	filter := EqualMatchBson("_id", objectID)
	option := options.FindOneAndUpdate().SetReturnDocument(options.After)

	result := m.Coll.FindOneAndUpdate(ctx, filter, bson.D{{Key: "$set", Value: update}}, option)
	if err = result.Err(); err != nil {

		if errors.Is(err, mongo.ErrNoDocuments) {
			err = serverError.ObjectIDNotFoundError.New(itemID)
			return
		}

		err = translateWriteError(err)
		return
	}

	err = result.Decode(&item)
	return
}

// Delete removes the item permanently and returns it as it was before removal.
func (m BaseModel[T]) Delete(ctx context.Context, itemID string) (item T, err error) {

	objectID, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		err = serverError.ObjectIDNotFoundError.New(itemID)
		return
	}

	result := m.Coll.FindOneAndDelete(ctx, EqualMatchBson("_id", objectID), options.FindOneAndDelete())
	if err = result.Err(); err != nil {

		if errors.Is(err, mongo.ErrNoDocuments) {
			err = serverError.ObjectIDNotFoundError.New(itemID)
		}

		return
	}

	err = result.Decode(&item)
	return
}

func translateWriteError(err error) error {

	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) && serverErr.HasErrorCode(documentValidationFailureCode) {
		return serverError.FieldInvalidError.New("document failed validation")
	}

	return err
}
