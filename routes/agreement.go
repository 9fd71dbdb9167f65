package routes

import (
	"github.com/kataras/iris/v12"

	"ghardwar-web/api"
	"ghardwar-web/utils"
)

type AgreementFormInput struct {
	Kind        string `form:"kind" validate:"required,oneof=rental sale"`
	OwnerName   string `form:"ownerName" validate:"required,max=256"`
	TenantName  string `form:"tenantName" validate:"required,max=256"`
	PropertyRef string `form:"propertyRef" validate:"required,max=512"`
	Rent        int64  `form:"rent" validate:"omitempty,gte=0"`
	Deposit     int64  `form:"deposit" validate:"omitempty,gte=0"`
	TermMonths  int    `form:"termMonths" validate:"omitempty,gte=1,lte=120"`
	City        string `form:"city" validate:"required,max=128"`
}

func AgreementPage(ctx iris.Context) {
	ctx.ViewData("meta", meta.Default("Rent agreement generator", "Generate a ready-to-stamp agreement", "/agreements"))
	ctx.ViewData("session", currentSession(ctx))
	ctx.View("agreements/form.html")
}

// GenerateAgreement posts the form to the backend generator and renders the
// returned clauses verbatim.
func GenerateAgreement(ctx iris.Context) {
	var input AgreementFormInput
	if err := ctx.ReadForm(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	agreement, err := boundClient(ctx).GenerateAgreement(ctx.Request().Context(), api.AgreementInput{
		Kind:        input.Kind,
		OwnerName:   input.OwnerName,
		TenantName:  input.TenantName,
		PropertyRef: input.PropertyRef,
		Rent:        input.Rent,
		Deposit:     input.Deposit,
		TermMonths:  input.TermMonths,
		City:        input.City,
	})
	if err != nil {
		ctx.ViewData("meta", meta.Default("Rent agreement generator", "Generate a ready-to-stamp agreement", "/agreements"))
		ctx.ViewData("error", backendMessage(err, "Agreement generation failed. Try again."))
		ctx.StatusCode(iris.StatusBadGateway)
		ctx.View("agreements/form.html")
		return
	}

	ctx.ViewData("meta", meta.Default(agreement.Title, "Generated agreement", "/agreements"))
	ctx.ViewData("agreement", agreement)
	ctx.ViewData("session", currentSession(ctx))
	ctx.View("agreements/result.html")
}
