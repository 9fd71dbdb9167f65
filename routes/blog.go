package routes

import (
	"time"

	"github.com/kataras/iris/v12"

	"ghardwar-web/api"
	"ghardwar-web/models"
	"ghardwar-web/utils"
)

// Blog pages are read-heavy and rarely change; both use the revalidation
// cache so repeated renders inside the window skip the backend.
const blogRevalidate = 5 * time.Minute

func BlogList(ctx iris.Context) {
	raw := prefetcher.Prefetch(ctx.Request().Context(), "/api/blogs",
		api.PrefetchOptions{Revalidate: blogRevalidate})

	var payload struct {
		Blogs []models.BlogPost `json:"blogs"`
	}
	api.PrefetchInto(raw, &payload)

	ctx.ViewData("meta", meta.Default("Blog", "Guides and news for buyers, renters and owners", "/blog"))
	ctx.ViewData("posts", payload.Blogs)
	ctx.ViewData("session", currentSession(ctx))
	ctx.View("blog/list.html")
}

func BlogDetail(ctx iris.Context) {
	slug := ctx.Params().Get("slug")
	if slug == "" {
		utils.CreateNotFound(ctx)
		return
	}

	raw := prefetcher.Prefetch(ctx.Request().Context(), "/api/blogs/"+slug,
		api.PrefetchOptions{Revalidate: blogRevalidate})

	var post models.BlogPost
	if !api.PrefetchInto(raw, &post) || post.Slug == "" {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.ViewData("meta", meta.ForBlog(&post))
	ctx.ViewData("post", post)
	ctx.ViewData("session", currentSession(ctx))
	ctx.View("blog/detail.html")
}
