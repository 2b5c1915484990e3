package server

import (
	"context"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
)

// Prefixes the serverless deployment may put in front of the API routes.
var lambdaPathPrefixes = []string{"/.netlify/functions/api", "/api"}

// LambdaHandler serves API Gateway proxy events with the gin router.
type LambdaHandler struct {
	adapter *ginadapter.GinLambda
}

func NewLambdaHandler(r *gin.Engine) *LambdaHandler {
	return &LambdaHandler{adapter: ginadapter.New(r)}
}

func stripLambdaPrefix(path string) string {
	for _, prefix := range lambdaPathPrefixes {
		if path == prefix {
			return "/"
		}
		if strings.HasPrefix(path, prefix+"/") {
			return strings.TrimPrefix(path, prefix)
		}
	}
	return path
}

func (h *LambdaHandler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	event.Path = stripLambdaPrefix(event.Path)
	return h.adapter.ProxyWithContext(ctx, event)
}
