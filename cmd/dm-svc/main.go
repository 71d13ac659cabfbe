package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"guysocial/internal/di"
	"guysocial/internal/realtime"
	"guysocial/internal/session"
)

func main() {
	log.Println("Starting DM Service...")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, cleanup, err := di.InitializeApplication(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize DM service: %v", err)
	}
	defer cleanup()

	// A session token is how this process learns who the viewer is.
	// Production clients receive it from the identity provider.
	var reconciler *realtime.Reconciler
	if token := os.Getenv("SESSION_TOKEN"); token != "" {
		user, err := app.Session.SignIn(token)
		if err != nil {
			log.Fatalf("Failed to sign in: %v", err)
		}
		log.Printf("Signed in as @%s (user %d)", user.Handle, user.ID)

		reconciler = realtime.NewReconciler(user.ID, app.Bus, app.Messages, app.Conversations, app.Notifier)
		if err := reconciler.Start(ctx); err != nil {
			log.Fatalf("Failed to start reconciler: %v", err)
		}
		log.Printf("Reconciler running, %d conversations derived", len(reconciler.Conversations()))
	} else {
		log.Println("No SESSION_TOKEN set, waiting for sign-in")
	}

	changes, cancelChanges := app.Session.Changes()
	defer cancelChanges()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case event := <-changes:
			reconciler = restartReconciler(ctx, app, reconciler, event)
		case <-quit:
			log.Println("Shutting down DM Service...")
			if reconciler != nil {
				reconciler.Stop()
			}
			log.Println("DM Service stopped")
			return
		}
	}
}

// restartReconciler tears down the old viewer's reconciler and starts
// one for the new viewer. One reconciler per signed-in session.
func restartReconciler(ctx context.Context, app *di.Application, current *realtime.Reconciler, event session.Event) *realtime.Reconciler {
	if current != nil {
		current.Stop()
	}
	if event.Kind != session.SignedIn {
		log.Println("Signed out, reconciler stopped")
		return nil
	}

	next := realtime.NewReconciler(event.User.ID, app.Bus, app.Messages, app.Conversations, app.Notifier)
	if err := next.Start(ctx); err != nil {
		log.Printf("Failed to start reconciler for user %d: %v", event.User.ID, err)
		return nil
	}
	log.Printf("Reconciler running for @%s", event.User.Handle)
	return next
}
