package routes

import (
	"time"

	"github.com/kataras/iris/v12"

	"ghardwar-web/api"
	"ghardwar-web/models"
	"ghardwar-web/utils"
)

// Home prefetches its sections in parallel; a slow or failing backend
// section renders as an empty block, never a failed page.
func Home(ctx iris.Context) {
	results := prefetcher.PrefetchAll(ctx.Request().Context(),
		[]string{"/properties?featured=true", "/api/blogs"},
		api.PrefetchOptions{Revalidate: 60 * time.Second})

	var featured struct {
		Properties []models.Property `json:"properties"`
	}
	api.PrefetchInto(results[0], &featured)

	// the grid only needs the card shape
	cards := make([]models.PropertyCard, 0, len(featured.Properties))
	for i := range featured.Properties {
		cards = append(cards, featured.Properties[i].Card())
	}

	var blogs struct {
		Blogs []models.BlogPost `json:"blogs"`
	}
	api.PrefetchInto(results[1], &blogs)

	ctx.ViewData("meta", meta.Default("", "Find your next home — buy, rent and chat with owners directly.", "/"))
	ctx.ViewData("featured", cards)
	ctx.ViewData("blogs", blogs.Blogs)
	ctx.ViewData("session", currentSession(ctx))
	ctx.View("home.html")
}

func ListProperties(ctx iris.Context) {
	filters := api.PropertyFilters{
		City:        ctx.URLParam("city"),
		ListingType: ctx.URLParam("listingType"),
		Bedrooms:    ctx.URLParamIntDefault("bedrooms", 0),
		Page:        ctx.URLParamIntDefault("page", 1),
	}
	if v, err := ctx.URLParamInt64("minPrice"); err == nil {
		filters.MinPrice = v
	}
	if v, err := ctx.URLParamInt64("maxPrice"); err == nil {
		filters.MaxPrice = v
	}

	properties, err := boundClient(ctx).ListProperties(ctx.Request().Context(), filters)
	if err != nil {
		logger.Warn("listing fetch failed")
		properties = nil
	}

	ctx.ViewData("meta", meta.Default("Properties", "Browse rental and sale listings", "/properties"))
	ctx.ViewData("properties", properties)
	ctx.ViewData("filters", filters)
	ctx.ViewData("session", currentSession(ctx))
	ctx.View("properties/list.html")
}

func PropertyDetail(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	property, err := boundClient(ctx).GetProperty(ctx.Request().Context(), id)
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.ViewData("meta", meta.ForProperty(property))
	ctx.ViewData("property", property)
	ctx.ViewData("session", currentSession(ctx))
	ctx.View("properties/detail.html")
}

func SavedProperties(ctx iris.Context) {
	properties, err := boundClient(ctx).SavedProperties(ctx.Request().Context())
	if err != nil {
		properties = nil
	}
	ctx.ViewData("meta", meta.Default("Saved properties", "Your shortlist", "/properties/saved"))
	ctx.ViewData("properties", properties)
	ctx.ViewData("session", currentSession(ctx))
	ctx.View("properties/saved.html")
}

// Static legal/content pages.

func Terms(ctx iris.Context) {
	ctx.ViewData("meta", meta.Default("Terms of Service", "Ghardwar terms of service", "/terms"))
	ctx.View("legal/terms.html")
}

func Privacy(ctx iris.Context) {
	ctx.ViewData("meta", meta.Default("Privacy Policy", "How Ghardwar handles your data", "/privacy"))
	ctx.View("legal/privacy.html")
}

func WhyUs(ctx iris.Context) {
	ctx.ViewData("meta", meta.Default("Why Ghardwar", "Zero brokerage, direct owner chat", "/why-us"))
	ctx.View("legal/why_us.html")
}
