package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sujankapadia/snaplist/extraction"
	"github.com/sujankapadia/snaplist/handlers"
	"github.com/sujankapadia/snaplist/logging"
	"github.com/sujankapadia/snaplist/middleware"
	"github.com/sujankapadia/snaplist/repositories"
	"github.com/sujankapadia/snaplist/services"
	"github.com/sujankapadia/snaplist/utils"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	logging.InitLogger()

	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Snaplist service...")
	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_WARNING, Description: No .env file loaded: %v", err)
	}

	if err := utils.InitSecret(); err != nil {
		logging.Logger.Fatalf("Event ID: CONFIG_MISSING, Description: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	mongoDBName := os.Getenv("MONGO_DB_NAME")
	if mongoDBName == "" {
		mongoDBName = "snaplist"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(context.Background())

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

	db := client.Database(mongoDBName)
	tasksCollection := db.Collection("tasks")
	categoriesCollection := db.Collection("categories")

	taskRepo := repositories.NewTaskRepo(tasksCollection)
	categoryRepo, err := repositories.NewCategoryRepo(ctx, categoriesCollection)
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_INDEX_FAILED, Description: %v", err)
	}
	blobRepo, err := repositories.NewBlobRepo(db)
	if err != nil {
		logging.Logger.Fatalf("Event ID: BLOB_BUCKET_FAILED, Description: %v", err)
	}
	streamer := repositories.NewChangeStreamer(tasksCollection, categoriesCollection)

	notificationRepo, err := repositories.NewNotificationRepo()
	if err != nil {
		logging.Logger.Fatalf("Event ID: CASS_CONNECTION_FAILED, Description: Cassandra connection failed: %v", err)
	}
	defer notificationRepo.CloseSession()
	notificationRepo.CreateTable()

	extractionBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ExtractionServiceCB",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})

	extractor := extraction.NewClient(os.Getenv("EXTRACTION_API_URL"), os.Getenv("EXTRACTION_API_KEY"))

	notificationService := services.NewNotificationService(notificationRepo)
	categoryService := services.NewCategoryService(taskRepo, categoryRepo)
	taskService := services.NewTaskService(taskRepo, blobRepo)
	attachmentService := services.NewAttachmentService(taskRepo, blobRepo)
	captureService := services.NewCaptureService(extractor, extractionBreaker, taskRepo, categoryRepo, notificationService)
	syncService := services.NewSyncService(taskRepo, categoryService, streamer)
	defer syncService.Close()

	captureHandler := handlers.NewCaptureHandler(captureService)
	taskHandler := handlers.NewTaskHandler(taskService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	attachmentHandler := handlers.NewAttachmentHandler(attachmentService)
	viewHandler := handlers.NewViewHandler(syncService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Authenticate)

	api.HandleFunc("/capture", captureHandler.Capture).Methods(http.MethodPost)

	api.HandleFunc("/tasks", taskHandler.GetAllTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{taskID}", taskHandler.GetTask).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{taskID}", taskHandler.UpdateTask).Methods(http.MethodPatch)
	api.HandleFunc("/tasks/{taskID}", taskHandler.DeleteTask).Methods(http.MethodDelete)

	api.HandleFunc("/tasks/{taskID}/category/accept", categoryHandler.AcceptSuggestion).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{taskID}/category/dismiss", categoryHandler.DismissSuggestion).Methods(http.MethodPost)

	api.HandleFunc("/categories", categoryHandler.GetCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories", categoryHandler.CreateCategory).Methods(http.MethodPost)
	api.HandleFunc("/categories/{categoryID}", categoryHandler.UpdateCategory).Methods(http.MethodPut)
	api.HandleFunc("/categories/{categoryID}", categoryHandler.DeleteCategory).Methods(http.MethodDelete)

	api.HandleFunc("/view", viewHandler.GetView).Methods(http.MethodGet)
	api.HandleFunc("/view/stream", viewHandler.StreamView).Methods(http.MethodGet)

	api.HandleFunc("/tasks/{taskID}/attachments", attachmentHandler.Upload).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{taskID}/attachments/{attachmentID}", attachmentHandler.Download).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{taskID}/attachments/{attachmentID}", attachmentHandler.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/read", notificationHandler.MarkAsRead).Methods(http.MethodPatch)
	api.HandleFunc("/notifications/{notificationID}", notificationHandler.Dismiss).Methods(http.MethodDelete)

	corsRouter := enableCORS(r)

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	serverAddress := fmt.Sprintf(":%s", serverPort)
	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", serverAddress)

	if err := http.ListenAndServe(serverAddress, corsRouter); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}
