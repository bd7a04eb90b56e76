package apis

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/supakorn-kn/go-book-store/models"
)

// APIResponse is the envelope of every response body.
type APIResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func NewAPIResponse(statusCode int, data any, message string) APIResponse {

	return APIResponse{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
		Success:    statusCode < http.StatusBadRequest,
	}
}

type CrudAPI[Item models.Item] interface {
	Insert(ctx *gin.Context) (*Item, error)
	ReadOne(itemID string, ctx *gin.Context) (*Item, error)
	Read(ctx *gin.Context) (any, error)
	Update(itemID string, ctx *gin.Context) (*Item, error)
	Delete(itemID string, ctx *gin.Context) (*Item, error)
}

// CrudRoutes names the paths of a CRUD resource relative to its group. Item paths carry the
// IDParam path parameter.
type CrudRoutes struct {
	ItemName string
	IDParam  string
	Read     string
	Insert   string
	ReadOne  string
	Update   string
	Delete   string

	// LegacyDeleteByGET also serves Delete path with GET for old clients.
	LegacyDeleteByGET bool
}
