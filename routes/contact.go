package routes

import (
	"github.com/kataras/iris/v12"

	"ghardwar-web/api"
	"ghardwar-web/utils"
)

type ContactFormInput struct {
	Name    string `form:"name" validate:"required,max=256"`
	Email   string `form:"email" validate:"required,email"`
	Phone   string `form:"phone"`
	Message string `form:"message" validate:"required,max=5000"`
}

func ContactPage(ctx iris.Context) {
	ctx.ViewData("meta", meta.Default("Contact us", "Questions? We're listening.", "/contact"))
	ctx.ViewData("session", currentSession(ctx))
	ctx.View("contact.html")
}

func SubmitContact(ctx iris.Context) {
	var input ContactFormInput
	if err := ctx.ReadForm(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if input.Phone != "" && !utils.ValidatePhoneNumber(input.Phone) {
		ctx.ViewData("meta", meta.Default("Contact us", "Questions? We're listening.", "/contact"))
		ctx.ViewData("error", "Enter a valid 10-digit Indian mobile number or leave it blank.")
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.View("contact.html")
		return
	}

	err := boundClient(ctx).SubmitContact(ctx.Request().Context(), api.ContactInput{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   utils.NormalizePhoneNumber(input.Phone),
		Message: input.Message,
	})
	if err != nil {
		ctx.ViewData("meta", meta.Default("Contact us", "Questions? We're listening.", "/contact"))
		ctx.ViewData("error", backendMessage(err, "Could not send your message. Try again later."))
		ctx.StatusCode(iris.StatusBadGateway)
		ctx.View("contact.html")
		return
	}
	ctx.Redirect("/contact?sent=1", iris.StatusSeeOther)
}
