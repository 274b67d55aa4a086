package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/eduviz/eduviz-chat-api/api"
	"github.com/eduviz/eduviz-chat-api/api/realtime"
	"github.com/eduviz/eduviz-chat-api/config"
	"github.com/eduviz/eduviz-chat-api/databases"
	"github.com/eduviz/eduviz-chat-api/models"
)

// imagePath is where GridFS images are served from
const imagePath = "/api/v1/messages/images/"

// App stores the router, the live channel hub and the db connection, so they can be reused
type App struct {
	Router  *mux.Router
	Config  config.Config
	Hub     *realtime.Hub
	Metrics *api.Metrics

	registry *prometheus.Registry
	client   databases.ClientHelper
	dbHelper databases.DatabaseHelper
	messages databases.MessageDatabase
	images   ImageStore
	bucket   ImageReader
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	if a.registry == nil {
		a.registry = prometheus.NewRegistry()
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	if a.Metrics == nil {
		a.Metrics = api.NewMetrics(a.registry)
	}
	if a.Hub == nil {
		a.Hub = realtime.NewHub(a.Metrics)
	}

	m := Message{DB: a.messages, Live: a.Hub, Recorder: a.Metrics}
	img := Image{Store: a.images, Reader: a.bucket}
	sock := NewSocket(a.Hub, a.Config.AllowedOrigins)
	auth := api.NewAuthenticator(a.Config.JWTSecret)

	r := mux.NewRouter()
	r.Use(a.Metrics.Middleware)

	// healthchex
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})).Methods("GET")
	r.HandleFunc("/ws", sock.ServeHandler).Methods("GET")

	// images are loaded by <img src>, which cannot carry a bearer token
	r.Handle(imagePath+"{image_id}", api.TimeoutMiddleware(a.Config.RequestTimeout)(http.HandlerFunc(img.DownloadHandler))).Methods("GET")

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(a.Config.RequestTimeout), auth.Middleware)

	// fixed paths must be registered before the {conversation_id} patterns
	apiCreate.HandleFunc("/messages", m.RecentMessagesHandler).Methods("GET")
	apiCreate.HandleFunc("/messages", m.SendMessageHandler).Methods("POST")
	apiCreate.HandleFunc("/messages/conversations/all", m.ConversationsHandler).Methods("GET")
	apiCreate.HandleFunc("/messages/upload", img.UploadHandler).Methods("POST")
	apiCreate.HandleFunc("/messages/{conversation_id}", m.MessagesByConversationHandler).Methods("GET")
	apiCreate.HandleFunc("/messages/{conversation_id}", m.SendMessageHandler).Methods("POST")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize(ctx context.Context) error {
	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().Errorw("failed to create new client", "error", err)
		return err
	}
	a.client = client

	if err = client.Connect(ctx); err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().Errorw("failed to connect to database", "error", err)
		return err
	}
	pingCtx, cancel := api.WithQueryTimeout(ctx)
	defer cancel()
	if err = client.Ping(pingCtx); err != nil {
		zap.S().Errorw("failed to ping database", "error", err)
		return err
	}
	zap.S().Infow("eduviz-chat-api has connected to the database", "database", a.Config.DatabaseName)

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	a.messages = databases.NewMessageDatabase(a.dbHelper)

	idxCtx, cancelIdx := api.WithQueryTimeout(ctx)
	defer cancelIdx()
	if err = a.messages.EnsureIndexes(idxCtx); err != nil {
		// reads still work without the indexes, only slower
		zap.S().Warnw("failed to create message indexes", "error", err)
	}

	bucket, err := databases.NewImageBucket(a.dbHelper, strings.TrimRight(a.Config.BaseURL, "/")+imagePath)
	if err != nil {
		return err
	}
	a.bucket = bucket
	a.images = bucket
	if a.Config.CloudinaryURL != "" {
		store, err := NewCloudinaryImageStore(a.Config.CloudinaryURL)
		if err != nil {
			return fmt.Errorf("failed to configure cloudinary: %w", err)
		}
		a.images = store
		zap.S().Info("message images are stored in cloudinary")
	}

	// initialize api router
	a.initializeRoutes()
	return nil
}

// Close disconnects from the database
func (a *App) Close(ctx context.Context) error {
	if a.client == nil {
		return nil
	}
	return a.client.Disconnect(ctx)
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
