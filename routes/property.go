package routes

import (
	"fmt"

	"github.com/kataras/iris/v12"

	"ghardwar-web/utils"
)

// ExpressInterest marks the viewer as an interested lead for the property.
func ExpressInterest(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if err := boundClient(ctx).ExpressInterest(ctx.Request().Context(), id); err != nil {
		utils.CreateError(iris.StatusBadGateway, "Interest Error", backendMessage(err, "Could not record your interest."), ctx)
		return
	}
	ctx.Redirect(fmt.Sprintf("/properties/%d", id), iris.StatusSeeOther)
}

func WithdrawInterest(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if err := boundClient(ctx).WithdrawInterest(ctx.Request().Context(), id); err != nil {
		utils.CreateError(iris.StatusBadGateway, "Interest Error", backendMessage(err, "Could not withdraw your interest."), ctx)
		return
	}
	ctx.Redirect(fmt.Sprintf("/properties/%d", id), iris.StatusSeeOther)
}

type ReportPropertyInput struct {
	Reason string `form:"reason" validate:"required,max=1024"`
}

func ReportProperty(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	var input ReportPropertyInput
	if err := ctx.ReadForm(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if err := boundClient(ctx).ReportProperty(ctx.Request().Context(), id, input.Reason); err != nil {
		utils.CreateError(iris.StatusBadGateway, "Report Error", backendMessage(err, "Could not submit the report."), ctx)
		return
	}
	ctx.Redirect(fmt.Sprintf("/properties/%d?reported=1", id), iris.StatusSeeOther)
}
