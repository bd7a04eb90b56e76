package apis

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/supakorn-kn/go-book-store/errors"
	"github.com/supakorn-kn/go-book-store/models"
)

// RequestIDContextKey is the gin context key holding the id of the current request.
const RequestIDContextKey = "request_id"

func RegisterCrudAPI[Item models.Item](api CrudAPI[Item], group *gin.RouterGroup, routes CrudRoutes) {

	group.GET(routes.Read, func(ctx *gin.Context) {

		paginateResult, err := api.Read(ctx)
		if err != nil {
			writeErrorJSON(ctx, err)
			return
		}

		writeJSON(ctx, http.StatusOK, paginateResult, fmt.Sprintf("%ss fetched successfully", routes.ItemName))
	})

	group.POST(routes.Insert, func(ctx *gin.Context) {

		item, err := api.Insert(ctx)
		if err != nil {
			writeErrorJSON(ctx, err)
			return
		}

		writeJSON(ctx, http.StatusCreated, item, fmt.Sprintf("%s created successfully", routes.ItemName))
	})

	group.GET(routes.ReadOne, withItemID(routes.IDParam, func(itemID string, ctx *gin.Context) {

		item, err := api.ReadOne(itemID, ctx)
		if err != nil {
			writeErrorJSON(ctx, err)
			return
		}

		writeJSON(ctx, http.StatusOK, item, fmt.Sprintf("%s fetched successfully", routes.ItemName))
	}))

	group.PUT(routes.Update, withItemID(routes.IDParam, func(itemID string, ctx *gin.Context) {

		item, err := api.Update(itemID, ctx)
		if err != nil {
			writeErrorJSON(ctx, err)
			return
		}

		writeJSON(ctx, http.StatusOK, item, fmt.Sprintf("%s updated successfully", routes.ItemName))
	}))

	deleteHandler := withItemID(routes.IDParam, func(itemID string, ctx *gin.Context) {

		item, err := api.Delete(itemID, ctx)
		if err != nil {
			writeErrorJSON(ctx, err)
			return
		}

		writeJSON(ctx, http.StatusOK, item, fmt.Sprintf("%s deleted successfully", routes.ItemName))
	})

	group.DELETE(routes.Delete, deleteHandler)
	if routes.LegacyDeleteByGET {
		group.GET(routes.Delete, deleteHandler)
	}
}

func withItemID(param string, handle func(itemID string, ctx *gin.Context)) gin.HandlerFunc {

	return func(ctx *gin.Context) {

		itemID := strings.TrimSpace(ctx.Param(param))
		if itemID == "" {
			writeErrorJSON(ctx, errors.ObjectIDRequiredError.New())
			return
		}

		handle(itemID, ctx)
	}
}

func writeJSON(ctx *gin.Context, statusCode int, data any, message string) {
	ctx.JSON(statusCode, NewAPIResponse(statusCode, data, message))
}

func writeErrorJSON(ctx *gin.Context, err error) {

	var maxBytesErr *http.MaxBytesError
	if stderrors.As(err, &maxBytesErr) {
		err = errors.RequestBodyTooLargeError.New(maxBytesErr.Limit)
	}

	assertedError, ok := errors.TryAssertError(err)
	if !ok {

		slog.Error("Request failed unexpectedly",
			"method", ctx.Request.Method,
			"path", ctx.FullPath(),
			"request_id", ctx.GetString(RequestIDContextKey),
			"error", err,
		)

		_ = ctx.Error(err)
		writeJSON(ctx, http.StatusInternalServerError, nil, errors.UnknownError.New().Message)
		return
	}

	writeJSON(ctx, StatusCode(assertedError), nil, assertedError.Message)
}

// StatusCode maps a server error to the HTTP status it is reported with.
func StatusCode(err errors.BaseError) int {

	switch err.Code {
	case errors.ObjectIDNotFoundErrorCode, errors.RouteNotFoundErrorCode:
		return http.StatusNotFound

	case errors.RequestBodyTooLargeErrorCode:
		return http.StatusRequestEntityTooLarge

	case errors.RateLimitExceededErrorCode:
		return http.StatusTooManyRequests

	case errors.UnknownErrorCode:
		return http.StatusInternalServerError

	default:
		return http.StatusBadRequest
	}
}

// AbortWithError writes the error envelope and stops the handler chain.
func AbortWithError(ctx *gin.Context, err error) {

	writeErrorJSON(ctx, err)
	ctx.Abort()
}
