package books

import (
	"context"
	"fmt"
	"slices"

	serverError "github.com/supakorn-kn/go-book-store/errors"
	"github.com/supakorn-kn/go-book-store/models"
	"github.com/supakorn-kn/go-book-store/mongodb"
	"github.com/supakorn-kn/go-book-store/objects"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "books"

var numberBsonTypes = []string{"int", "long", "double", "decimal"}

type BooksModel struct {
	models.BaseModel[objects.Book]
}

func NewBooksModel(ctx context.Context, conn *mongodb.MongoDBConn, paginateSize ...int) (*BooksModel, error) {

	paginateSizeLen := len(paginateSize)

	if paginateSizeLen > 1 {
		return nil, fmt.Errorf("PaginateSize can have only one elements")
	}

	var searchLenLimit = 10
	if paginateSizeLen == 1 {
		searchLenLimit = paginateSize[0]
	}

	booksModel := BooksModel{}

	err := booksModel.init(ctx, conn, searchLenLimit)
	if err != nil {
		return nil, err
	}

	return &booksModel, nil
}

func (m BooksModel) GetCollectionName() string {
	return collectionName
}

func (m *BooksModel) init(ctx context.Context, conn *mongodb.MongoDBConn, searchLenLimit int) error {

	err := m.initCollection(ctx, conn)
	if err != nil {
		return err
	}

	err = m.initIndexes(ctx, conn)
	if err != nil {
		return err
	}

	return m.Inject(conn.GetCollection(m.GetCollectionName()), searchLenLimit)
}

func (m BooksModel) initCollection(ctx context.Context, conn *mongodb.MongoDBConn) error {

	bookDB := conn.GetDatabase()
	collectionName := m.GetCollectionName()

	collectionNameList, err := bookDB.ListCollectionNames(ctx, bson.D{}, options.ListCollections())
	if err != nil {
		return err
	}

	validator := bson.D{
		{
			Key: "$jsonSchema", Value: bson.M{
				"bsonType": "object",
				"required": []string{"name", "author", "yearOfPublication", "price", "numberOfPages", "condition"},
				"properties": bson.M{
					"name": bson.M{
						"bsonType":    "string",
						"minLength":   1,
						"description": "Name must not be empty",
					},
					"author": bson.M{
						"bsonType":    "string",
						"minLength":   1,
						"description": "Author must not be empty",
					},
					"yearOfPublication": bson.M{
						"bsonType":    []string{"int", "long"},
						"description": "Year of publication must be an integer",
					},
					"price": bson.M{
						"bsonType":    numberBsonTypes,
						"minimum":     0,
						"description": "Price must be a non-negative number",
					},
					"discount": bson.M{
						"bsonType":    numberBsonTypes,
						"minimum":     0,
						"description": "Discount must be a non-negative number",
					},
					"numberOfPages": bson.M{
						"bsonType":    []string{"int", "long"},
						"minimum":     1,
						"description": "Number of pages must be a positive integer",
					},
					"condition": bson.M{
						"enum":        []string{string(objects.NewCondition), string(objects.UsedCondition)},
						"description": "Condition must be either new or used",
					},
					"description": bson.M{
						"bsonType":    "string",
						"description": "Description must be a string",
					},
				},
			},
		},
	}

	if slices.Contains(collectionNameList, collectionName) {

		cmd := bson.D{
			{Key: "collMod", Value: collectionName},
			{Key: "validator", Value: validator},
			{Key: "validationLevel", Value: "strict"},
		}

		result := bookDB.RunCommand(ctx, cmd, options.RunCmd())
		if err := result.Err(); err != nil {
			return err
		}

		return nil
	}

	collectionOption := options.CreateCollection()
	collectionOption.SetValidator(validator)
	collectionOption.SetValidationLevel("strict")

	return bookDB.CreateCollection(ctx, collectionName, collectionOption)
}

func (m BooksModel) initIndexes(ctx context.Context, conn *mongodb.MongoDBConn) error {

	coll := conn.GetCollection(m.GetCollectionName())
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return err
	}

	var indexes []bson.M
	err = cur.All(ctx, &indexes)
	if err != nil {
		return err
	}

	indexKeys := map[string]bson.D{
		"author_1_name_1":     {{Key: "author", Value: 1}, {Key: "name", Value: 1}},
		"price_1":             {{Key: "price", Value: 1}},
		"yearOfPublication_1": {{Key: "yearOfPublication", Value: 1}},
	}

	var indexModels []mongo.IndexModel
	for indexName, keys := range indexKeys {

		contains := slices.ContainsFunc(indexes, func(m primitive.M) bool {
			return m["name"] == indexName
		})

		if contains {
			continue
		}

		indexModels = append(indexModels, mongo.IndexModel{
			Keys:    keys,
			Options: options.Index().SetName(indexName),
		})
	}

	if len(indexModels) == 0 {
		return nil
	}

	_, err = coll.Indexes().CreateMany(ctx, indexModels, options.CreateIndexes())
	return err
}

func (m BooksModel) Insert(ctx context.Context, book objects.Book) (objects.Book, error) {

	if err := objects.Validate(book); err != nil {
		return objects.Book{}, err
	}

	book.ID = primitive.NilObjectID

	id, err := m.BaseModel.Insert(ctx, book)
	if err != nil {
		return objects.Book{}, err
	}

	book.ID = id

	return book, nil
}

func (m BooksModel) Search(ctx context.Context, opt ListOption) (models.PaginationData[objects.Book], error) {

	filter, err := opt.Filter()
	if err != nil {
		return models.PaginationData[objects.Book]{}, err
	}

	return m.BaseModel.Search(ctx, models.SearchOptions{
		CurrentPage: opt.CurrentPage,
		Limit:       opt.Limit,
		Filter:      filter,
		Sort:        opt.SortBson(),
	})
}

// Update validates the book as it would look after the changes, then writes only the changed fields.
func (m BooksModel) Update(ctx context.Context, bookID string, changes objects.BookChanges) (objects.Book, error) {

	if changes.IsEmpty() {
		return objects.Book{}, serverError.NoUpdatableFieldError.New()
	}

	current, err := m.GetByID(ctx, bookID)
	if err != nil {
		return objects.Book{}, err
	}

	if err := objects.Validate(changes.Apply(current)); err != nil {
		return objects.Book{}, err
	}

	return m.UpdateFields(ctx, bookID, changes)
}
