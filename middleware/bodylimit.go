package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/supakorn-kn/go-book-store/apis"
	"github.com/supakorn-kn/go-book-store/errors"
)

// BodyLimit rejects bodies declared larger than limit up front and caps the rest while they are read.
func BodyLimit(limit int64) gin.HandlerFunc {

	return func(ctx *gin.Context) {

		if ctx.Request.ContentLength > limit {
			apis.AbortWithError(ctx, errors.RequestBodyTooLargeError.New(limit))
			return
		}

		if ctx.Request.Body != nil {
			ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, limit)
		}

		ctx.Next()
	}
}
