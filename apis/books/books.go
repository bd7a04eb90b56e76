package books

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/supakorn-kn/go-book-store/apis"
	"github.com/supakorn-kn/go-book-store/errors"
	"github.com/supakorn-kn/go-book-store/models"
	"github.com/supakorn-kn/go-book-store/models/books"
	"github.com/supakorn-kn/go-book-store/objects"
)

var Routes = apis.CrudRoutes{
	ItemName:          "Book",
	IDParam:           "bookId",
	Read:              "/getAllBooks",
	Insert:            "/create",
	ReadOne:           "/getBookById/:bookId",
	Update:            "/update/:bookId",
	Delete:            "/deleteBookById/:bookId",
	LegacyDeleteByGET: true,
}

// BookStore is the record store the handlers work on. BooksModel implements it over MongoDB.
type BookStore interface {
	Insert(ctx context.Context, book objects.Book) (objects.Book, error)
	GetByID(ctx context.Context, bookID string) (objects.Book, error)
	Search(ctx context.Context, opt books.ListOption) (models.PaginationData[objects.Book], error)
	Update(ctx context.Context, bookID string, changes objects.BookChanges) (objects.Book, error)
	Delete(ctx context.Context, bookID string) (objects.Book, error)
}

type BooksPage struct {
	Books       []objects.Book `json:"books"`
	CurrentPage int            `json:"currentPage"`
	TotalPages  int            `json:"totalPages"`
	TotalBooks  int            `json:"totalBooks"`
}

type BooksCrudAPI struct {
	store       BookStore
	pageSize    int
	maxPageSize int
}

func NewBooksAPI(store BookStore, pageSize, maxPageSize int) *BooksCrudAPI {

	return &BooksCrudAPI{
		store:       store,
		pageSize:    pageSize,
		maxPageSize: maxPageSize,
	}
}

func (api BooksCrudAPI) Insert(ctx *gin.Context) (*objects.Book, error) {

	var input objects.BookInput
	if err := bindJSON(ctx, &input); err != nil {
		return nil, err
	}

	book, err := input.Book()
	if err != nil {
		return nil, err
	}

	book, err = api.store.Insert(ctx.Request.Context(), book)
	if err != nil {
		return nil, err
	}

	return &book, nil
}

func (api BooksCrudAPI) ReadOne(itemID string, ctx *gin.Context) (*objects.Book, error) {

	book, err := api.store.GetByID(ctx.Request.Context(), itemID)
	if err != nil {
		return nil, err
	}

	return &book, nil
}

func (api BooksCrudAPI) Read(ctx *gin.Context) (any, error) {

	opt, err := books.ParseListOption(ctx.Request.URL.Query(), api.pageSize, api.maxPageSize)
	if err != nil {
		return nil, err
	}

	paginationData, err := api.store.Search(ctx.Request.Context(), opt)
	if err != nil {
		return nil, err
	}

	return BooksPage{
		Books:       paginationData.Data,
		CurrentPage: paginationData.Page,
		TotalPages:  paginationData.TotalPages,
		TotalBooks:  paginationData.Count,
	}, nil
}

func (api BooksCrudAPI) Update(itemID string, ctx *gin.Context) (*objects.Book, error) {

	var changes objects.BookChanges
	if err := bindJSON(ctx, &changes); err != nil {
		return nil, err
	}

	if changes.IsEmpty() {
		return nil, errors.NoUpdatableFieldError.New()
	}

	book, err := api.store.Update(ctx.Request.Context(), itemID, changes)
	if err != nil {
		return nil, err
	}

	return &book, nil
}

func (api BooksCrudAPI) Delete(itemID string, ctx *gin.Context) (*objects.Book, error) {

	book, err := api.store.Delete(ctx.Request.Context(), itemID)
	if err != nil {
		return nil, err
	}

	return &book, nil
}

func bindJSON(ctx *gin.Context, obj any) error {

	err := ctx.ShouldBindJSON(obj)
	if err == nil {
		return nil
	}

	var maxBytesErr *http.MaxBytesError
	if stderrors.As(err, &maxBytesErr) {
		return err
	}

	return errors.RequestBodyInvalidError.New(err.Error())
}
