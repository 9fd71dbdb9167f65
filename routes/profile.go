package routes

import (
	"io"

	"github.com/kataras/iris/v12"

	"ghardwar-web/api"
	"ghardwar-web/utils"
)

func ProfilePage(ctx iris.Context) {
	user, err := boundClient(ctx).GetProfile(ctx.Request().Context())
	if err != nil {
		utils.CreateError(iris.StatusBadGateway, "Profile Error", backendMessage(err, "Could not load your profile."), ctx)
		return
	}
	ctx.ViewData("meta", meta.Default("My profile", "Manage your Ghardwar account", "/profile"))
	ctx.ViewData("user", user)
	ctx.ViewData("session", currentSession(ctx))
	ctx.View("profile/show.html")
}

type ProfileUpdateInput struct {
	FirstName   string `form:"firstName" validate:"required,max=256"`
	LastName    string `form:"lastName" validate:"required,max=256"`
	PhoneNumber string `form:"phoneNumber" validate:"required"`
	DateOfBirth string `form:"dateOfBirth"`
}

func UpdateProfile(ctx iris.Context) {
	var input ProfileUpdateInput
	if err := ctx.ReadForm(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if !utils.ValidatePhoneNumber(input.PhoneNumber) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Enter a valid 10-digit Indian mobile number.", ctx)
		return
	}

	payload := api.UpdateProfileInput{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		PhoneNumber: utils.NormalizePhoneNumber(input.PhoneNumber),
		DateOfBirth: input.DateOfBirth,
	}

	// avatar is optional; when present it rides along as multipart
	var avatar io.Reader
	var avatarName string
	if file, header, ferr := ctx.FormFile("avatar"); ferr == nil && header != nil {
		defer file.Close()
		avatar = file
		avatarName = header.Filename
	}

	if _, err := boundClient(ctx).UpdateProfile(ctx.Request().Context(), payload, avatar, avatarName); err != nil {
		utils.CreateError(iris.StatusBadGateway, "Profile Error", backendMessage(err, "Could not save your profile."), ctx)
		return
	}
	ctx.Redirect("/profile?saved=1", iris.StatusSeeOther)
}

type ChangePasswordInput struct {
	CurrentPassword string `form:"currentPassword" validate:"required"`
	NewPassword     string `form:"newPassword" validate:"required,min=8,max=256"`
}

func ChangePassword(ctx iris.Context) {
	var input ChangePasswordInput
	if err := ctx.ReadForm(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if err := boundClient(ctx).ChangePassword(ctx.Request().Context(), input.CurrentPassword, input.NewPassword); err != nil {
		utils.CreateError(iris.StatusBadRequest, "Password Error", backendMessage(err, "Could not change your password."), ctx)
		return
	}
	ctx.Redirect("/profile?passwordChanged=1", iris.StatusSeeOther)
}
