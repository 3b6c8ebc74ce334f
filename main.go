package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	"github.com/example/chatroom-server/modules/api"
	"github.com/example/chatroom-server/modules/broadcast"
	"github.com/example/chatroom-server/modules/chat"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Chatroom Server ===")

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	chatModule := chat.NewModule()
	broadcastModule := broadcast.NewModule()
	apiModule := api.NewModule()

	// Inject the broadcast hub into the API module
	// (done manually because the hub is not exposed via ServiceContainer)
	apiModule.SetHub(broadcastModule.GetHub())

	// Register modules with the framework.
	// Order: independent modules first, then modules with dependencies
	// - chat: room coordinator + directory/membership/message log
	// - broadcast: event consumer delivering plans to WebSocket sessions
	// - api: Fiber HTTP/WebSocket server, depends on chat
	app.Register(chatModule)
	app.Register(broadcastModule)
	app.Register(apiModule)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("Architecture:")
	log.Println("  - HTTP Framework: Fiber with WebSocket support")
	log.Println("  - Event Bus: NATS JetStream (internal pubsub)")
	log.Printf("  - NATS URL: %s", natsURL)
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", port)
	log.Println("  GET    /health                    - Health check")
	log.Println("  POST   /api/v1/users              - Create a user")
	log.Println("  GET    /api/v1/users              - List all users")
	log.Println("  GET    /api/v1/users/:id          - Get user details")
	log.Println("  POST   /api/v1/rooms              - Create a room")
	log.Println("  GET    /api/v1/rooms              - List all rooms")
	log.Println("  GET    /api/v1/rooms/:id          - Get room details")
	log.Println("  GET    /api/v1/rooms/:id/members  - List room members")
	log.Println("  GET    /api/v1/rooms/:id/messages - Get message history")
	log.Println("")
	log.Printf("WebSocket Endpoint (ws://localhost:%s/ws):", port)
	log.Println("  Message types: join, leave, message")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
