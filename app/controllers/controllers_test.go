package controllers

import (
	"time"

	"storyline/app/cache"
	"storyline/app/cms"
	"storyline/app/cms/mock"
	"storyline/app/form"
	"storyline/app/models"
	"storyline/app/render"
	"storyline/app/services"
	"storyline/app/views"

	"github.com/gorilla/mux"
)

func testPost() *models.Post {
	return &models.Post{
		ID:          "post-1",
		CreatedAt:   time.Date(2022, 3, 1, 9, 30, 0, 0, time.UTC),
		Title:       "Hello World",
		Slug:        models.Slug{Current: "hello"},
		Description: "First post",
		Author:      &models.Author{Name: "Ann"},
		Body: []models.Block{{
			Type:     models.TypeBlock,
			Children: []models.Span{{Type: "span", Text: "Body text"}},
		}},
		Comments: []*models.Comment{
			{ID: "c1", Type: models.TypeComment, Post: models.Reference{Type: models.TypeReference, Ref: "post-1"}, Name: "Alice", Comment: "Nice post", Approved: true},
		},
	}
}

type testApp struct {
	client *mock.Client
	cache  *cache.Cache
	router *mux.Router
}

func setupTestApp() *testApp {
	client := mock.NewClient()
	client.SetResultFor(cms.PostBySlugQuery, "hello", testPost())
	client.SetResult(cms.PostPathsQuery, []models.PostRef{{ID: "post-1", Slug: models.Slug{Current: "hello"}}})

	images := render.ImageURLBuilder{ProjectID: "proj", Dataset: "production"}
	pages := services.NewPageService(client, render.NewSerializer(images, nil), nil)
	comments := services.NewCommentService(client)
	pageCache := cache.New(cache.NewMemoryStore(), pages.Load, time.Minute)

	posts := NewPostController(pages, pageCache, &form.ServiceSubmitter{Comments: comments}, views.MustLoad(), nil)
	commentsController := NewCommentController(comments, nil)

	router := mux.NewRouter()
	router.HandleFunc("/post/{slug}", posts.Show).Methods("GET")
	router.HandleFunc("/post/{slug}", posts.Submit).Methods("POST")
	router.HandleFunc("/api/paths", posts.Paths).Methods("GET")
	router.HandleFunc("/api/createComment", commentsController.Create).Methods("POST")

	return &testApp{client: client, cache: pageCache, router: router}
}
