package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"cantinho/internal/config"
	"cantinho/internal/server"
)

func main() {
	cfg := config.Load()

	app, err := server.Bootstrap(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}
	defer app.Close(context.Background())

	r, err := server.NewRouter(app)
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	lambda.Start(server.NewLambdaHandler(r).Handle)
}
