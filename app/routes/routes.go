package routes

import (
	"net/http"
	"strings"

	"photoshare/app/clients"
	"photoshare/app/controllers"
	"photoshare/app/middleware"
	"photoshare/app/repositories"
	"photoshare/app/search"
	"photoshare/app/services"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the services behind the HTTP surface.
type Dependencies struct {
	Posts           *services.PostService
	Comments        *services.CommentService
	Tags            *services.TagService
	Users           *services.UserService
	Folders         *services.FolderService
	Search          *services.SearchService
	Recommendations *services.RecommendationService
	UserLookup      middleware.UserLookup
	Paging          controllers.Paging
}

// NewDependencies wires the services over the two stores and the
// association collaborator.
func NewDependencies(repo *repositories.Repository, docs search.DocumentStore, associations clients.TagAssociationClient, paging controllers.Paging) Dependencies {
	posts := services.NewPostService(repo.Posts(), repo.Comments(), repo.Tags(), repo.Folders(), docs)
	return Dependencies{
		Posts:           posts,
		Comments:        services.NewCommentService(repo.Comments(), repo.Posts()),
		Tags:            services.NewTagService(repo.Tags()),
		Users:           services.NewUserService(repo.Users(), repo.Tags()),
		Folders:         services.NewFolderService(repo.Folders(), repo.Posts(), repo.Users()),
		Search:          services.NewSearchService(docs, posts),
		Recommendations: services.NewRecommendationService(posts, docs, associations),
		UserLookup:      repo.Users(),
		Paging:          paging,
	}
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(deps Dependencies) *mux.Router {
	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Metrics)

	postController := controllers.NewPostController(deps.Posts, deps.Search, deps.Paging)
	commentController := controllers.NewCommentController(deps.Comments)
	tagController := controllers.NewTagController(deps.Tags)
	userController := controllers.NewUserController(deps.Users)
	folderController := controllers.NewFolderController(deps.Folders)
	recommendationController := controllers.NewRecommendationController(deps.Recommendations, deps.Paging)

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.NotFoundHandler = http.HandlerFunc(notFound)

	// API routes
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ContentTypeJSON)
	api.Use(middleware.CurrentUser(deps.UserLookup))

	// Posts API endpoints
	posts := api.PathPrefix("/posts").Subrouter()
	posts.HandleFunc("", postController.Index).Methods("GET")
	posts.HandleFunc("", postController.Create).Methods("POST")
	posts.HandleFunc("/search", postController.Search).Methods("POST")
	posts.HandleFunc("/{id:[0-9]+}", postController.Show).Methods("GET")
	posts.HandleFunc("/{id:[0-9]+}", postController.Edit).Methods("PUT")
	posts.HandleFunc("/{id:[0-9]+}", postController.Delete).Methods("DELETE")

	// Comments API endpoints
	posts.HandleFunc("/{postId:[0-9]+}/comments", commentController.Index).Methods("GET")
	posts.HandleFunc("/{postId:[0-9]+}/comments", commentController.Create).Methods("POST")
	posts.HandleFunc("/{postId:[0-9]+}/comments/{commentId:[0-9]+}", commentController.Update).Methods("PUT")
	posts.HandleFunc("/{postId:[0-9]+}/comments/{commentId:[0-9]+}", commentController.Delete).Methods("DELETE")

	// Feeds
	recommendations := api.PathPrefix("/recommendations").Subrouter()
	recommendations.HandleFunc("/posts", recommendationController.Recommended).Methods("GET")
	recommendations.HandleFunc("/guest", recommendationController.Guest).Methods("GET")

	// Tags and users
	api.HandleFunc("/tags", tagController.Index).Methods("GET")
	api.HandleFunc("/tags", tagController.Create).Methods("POST")
	api.HandleFunc("/tags/{id:[0-9]+}", tagController.Show).Methods("GET")
	api.HandleFunc("/users", userController.Create).Methods("POST")
	api.HandleFunc("/users/{id:[0-9]+}", userController.Show).Methods("GET")
	api.HandleFunc("/users/{id:[0-9]+}/preferred-tags", userController.SetPreferredTags).Methods("PUT")
	api.HandleFunc("/users/{id:[0-9]+}/folders", folderController.UserFolders).Methods("GET")

	// Folders
	api.HandleFunc("/folders", folderController.Index).Methods("GET")
	api.HandleFunc("/folders", folderController.Create).Methods("POST")
	api.HandleFunc("/folders/{id:[0-9]+}", folderController.Show).Methods("GET")
	api.HandleFunc("/folders/{id:[0-9]+}", folderController.Update).Methods("PUT")
	api.HandleFunc("/folders/{id:[0-9]+}", folderController.Delete).Methods("DELETE")

	return router
}

func notFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}` + "\n"))
		return
	}
	http.NotFound(w, r)
}
