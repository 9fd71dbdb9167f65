package routes

import (
	"errors"

	"github.com/kataras/iris/v12"

	"ghardwar-web/api"
	"ghardwar-web/session"
	"ghardwar-web/utils"
)

type LoginInput struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`
}

func LoginPage(ctx iris.Context) {
	sess := currentSession(ctx)
	if sess.IsAuthenticated() {
		ctx.Redirect("/", iris.StatusSeeOther)
		return
	}
	ctx.ViewData("meta", meta.Default("Login", "Sign in to Ghardwar", "/login"))
	ctx.ViewData("next", ctx.URLParam("next"))
	ctx.View("auth/login.html")
}

func Login(ctx iris.Context) {
	var input LoginInput
	if err := ctx.ReadForm(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	sess := currentSession(ctx)
	prevID := sess.ID
	err := sessions.Login(ctx.Request().Context(), sess, input.Email, input.Password)
	if err != nil {
		renderLoginError(ctx, err)
		return
	}
	if sess.ID != prevID {
		if err := issueSessionCookie(ctx, sess); err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	switch sess.State {
	case session.AwaitingMFA:
		ctx.Redirect("/login/mfa", iris.StatusSeeOther)
	case session.AwaitingPasswordChange:
		ctx.Redirect("/login/change-password", iris.StatusSeeOther)
	default:
		next := input.Next
		if next == "" || next[0] != '/' {
			next = "/"
		}
		ctx.Redirect(next, iris.StatusSeeOther)
	}
}

func renderLoginError(ctx iris.Context, err error) {
	var blocked *api.BlockedError
	if errors.As(err, &blocked) {
		// distinct from bad credentials: this account needs support, not
		// another attempt
		ctx.ViewData("blocked", iris.Map{
			"message":   blocked.Message,
			"reason":    blocked.Reason,
			"blockedAt": blocked.BlockedAt,
		})
	} else {
		ctx.ViewData("error", "Invalid email or password.")
	}
	ctx.ViewData("meta", meta.Default("Login", "Sign in to Ghardwar", "/login"))
	ctx.StatusCode(iris.StatusUnauthorized)
	ctx.View("auth/login.html")
}

type MFAInput struct {
	Code string `form:"code" validate:"required,len=6,numeric"`
}

func MFAPage(ctx iris.Context) {
	if currentSession(ctx).State != session.AwaitingMFA {
		ctx.Redirect("/login", iris.StatusSeeOther)
		return
	}
	ctx.ViewData("meta", meta.Default("Verify code", "Enter your 6-digit code", "/login/mfa"))
	ctx.View("auth/mfa.html")
}

func VerifyMFA(ctx iris.Context) {
	var input MFAInput
	if err := ctx.ReadForm(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	sess := currentSession(ctx)
	prevID := sess.ID
	if err := sessions.VerifyMFA(ctx.Request().Context(), sess, input.Code); err != nil {
		ctx.ViewData("meta", meta.Default("Verify code", "Enter your 6-digit code", "/login/mfa"))
		ctx.ViewData("error", "That code didn't match. Try again.")
		ctx.StatusCode(iris.StatusUnauthorized)
		ctx.View("auth/mfa.html")
		return
	}
	if sess.ID != prevID {
		if err := issueSessionCookie(ctx, sess); err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}
	ctx.Redirect("/", iris.StatusSeeOther)
}

type ForcedPasswordInput struct {
	NewPassword string `form:"newPassword" validate:"required,min=8,max=256"`
}

func ForcedPasswordPage(ctx iris.Context) {
	if currentSession(ctx).State != session.AwaitingPasswordChange {
		ctx.Redirect("/login", iris.StatusSeeOther)
		return
	}
	ctx.ViewData("meta", meta.Default("Set a new password", "Choose a new password to continue", "/login/change-password"))
	ctx.View("auth/forced_password.html")
}

func CompleteForcedPassword(ctx iris.Context) {
	var input ForcedPasswordInput
	if err := ctx.ReadForm(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	sess := currentSession(ctx)
	prevID := sess.ID
	if err := sessions.CompletePasswordChange(ctx.Request().Context(), sess, input.NewPassword); err != nil {
		ctx.ViewData("meta", meta.Default("Set a new password", "Choose a new password to continue", "/login/change-password"))
		ctx.ViewData("error", "Password change failed. Pick a different password.")
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.View("auth/forced_password.html")
		return
	}
	if sess.ID != prevID {
		if err := issueSessionCookie(ctx, sess); err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}
	ctx.Redirect("/", iris.StatusSeeOther)
}

// CancelPending abandons a half-finished MFA or password-change flow.
func CancelPending(ctx iris.Context) {
	sess := currentSession(ctx)
	if err := sessions.Cancel(ctx.Request().Context(), sess); err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.Redirect("/login", iris.StatusSeeOther)
}

func Logout(ctx iris.Context) {
	sess := currentSession(ctx)
	if err := sessions.Logout(ctx.Request().Context(), sess); err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.Redirect("/", iris.StatusSeeOther)
}

type RegisterBuyerInput struct {
	FirstName   string `form:"firstName" validate:"required,max=256"`
	LastName    string `form:"lastName" validate:"required,max=256"`
	Email       string `form:"email" validate:"required,email,max=256"`
	PhoneNumber string `form:"phoneNumber" validate:"required"`
	Password    string `form:"password" validate:"required,min=8,max=256"`
	DateOfBirth string `form:"dateOfBirth" validate:"required"`
}

func RegisterPage(ctx iris.Context) {
	ctx.ViewData("meta", meta.Default("Create account", "Join Ghardwar", "/register"))
	ctx.View("auth/register.html")
}

// RegisterBuyer is the immediate single-step registration.
func RegisterBuyer(ctx iris.Context) {
	var input RegisterBuyerInput
	if err := ctx.ReadForm(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	// client-side taxonomy: malformed phone/age never reaches the backend
	if !utils.ValidatePhoneNumber(input.PhoneNumber) {
		registerError(ctx, "Enter a valid 10-digit Indian mobile number.")
		return
	}
	if !utils.ValidateAge(input.DateOfBirth, 18) {
		registerError(ctx, "You must be at least 18 years old to register.")
		return
	}

	result, err := boundClient(ctx).RegisterBuyer(ctx.Request().Context(), api.RegisterInput{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		PhoneNumber: utils.NormalizePhoneNumber(input.PhoneNumber),
		Password:    input.Password,
		Role:        "buyer",
		DateOfBirth: input.DateOfBirth,
	})
	if err != nil {
		registerError(ctx, backendMessage(err, "Registration failed."))
		return
	}

	sess := currentSession(ctx)
	prevID := sess.ID
	if err := sessions.Adopt(ctx.Request().Context(), sess, result); err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if sess.ID != prevID {
		if err := issueSessionCookie(ctx, sess); err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}
	ctx.Redirect("/", iris.StatusSeeOther)
}

type RegisterOwnerInput struct {
	RegisterBuyerInput
	Aadhaar string `form:"aadhaar" validate:"required"`
}

// RegisterOwner starts the two-step owner flow; the account activates after
// OTP verification.
func RegisterOwner(ctx iris.Context) {
	var input RegisterOwnerInput
	if err := ctx.ReadForm(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if !utils.ValidatePhoneNumber(input.PhoneNumber) {
		registerError(ctx, "Enter a valid 10-digit Indian mobile number.")
		return
	}
	if !utils.ValidateAadhaar(input.Aadhaar) {
		registerError(ctx, "Enter a valid 12-digit Aadhaar number.")
		return
	}
	if !utils.ValidateAge(input.DateOfBirth, 18) {
		registerError(ctx, "You must be at least 18 years old to register.")
		return
	}

	phone := utils.NormalizePhoneNumber(input.PhoneNumber)
	err := boundClient(ctx).RegisterOwner(ctx.Request().Context(), api.RegisterInput{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		PhoneNumber: phone,
		Password:    input.Password,
		Role:        "owner",
		DateOfBirth: input.DateOfBirth,
		Aadhaar:     input.Aadhaar,
	})
	if err != nil {
		registerError(ctx, backendMessage(err, "Registration failed."))
		return
	}
	ctx.Redirect("/register/verify?phone="+phone, iris.StatusSeeOther)
}

func registerError(ctx iris.Context, message string) {
	ctx.ViewData("meta", meta.Default("Create account", "Join Ghardwar", "/register"))
	ctx.ViewData("error", message)
	ctx.StatusCode(iris.StatusBadRequest)
	ctx.View("auth/register.html")
}

type VerifyOTPInput struct {
	PhoneNumber string `form:"phone" validate:"required"`
	Code        string `form:"code" validate:"required,len=6,numeric"`
}

func VerifyOTPPage(ctx iris.Context) {
	ctx.ViewData("meta", meta.Default("Verify phone", "Enter the OTP we sent you", "/register/verify"))
	ctx.ViewData("phone", ctx.URLParam("phone"))
	ctx.View("auth/verify_otp.html")
}

func VerifyOTP(ctx iris.Context) {
	var input VerifyOTPInput
	if err := ctx.ReadForm(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	result, err := boundClient(ctx).VerifyOTP(ctx.Request().Context(), input.PhoneNumber, input.Code)
	if err != nil {
		ctx.ViewData("meta", meta.Default("Verify phone", "Enter the OTP we sent you", "/register/verify"))
		ctx.ViewData("phone", input.PhoneNumber)
		ctx.ViewData("error", "That OTP didn't match. Try again or resend.")
		ctx.StatusCode(iris.StatusUnauthorized)
		ctx.View("auth/verify_otp.html")
		return
	}

	sess := currentSession(ctx)
	prevID := sess.ID
	if err := sessions.Adopt(ctx.Request().Context(), sess, result); err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if sess.ID != prevID {
		if err := issueSessionCookie(ctx, sess); err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}
	ctx.Redirect("/", iris.StatusSeeOther)
}

func ResendOTP(ctx iris.Context) {
	phone := ctx.FormValue("phone")
	if phone == "" {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Phone number is required.", ctx)
		return
	}
	if err := boundClient(ctx).ResendOTP(ctx.Request().Context(), phone); err != nil {
		utils.CreateError(iris.StatusBadGateway, "OTP Error", backendMessage(err, "Could not resend OTP."), ctx)
		return
	}
	ctx.Redirect("/register/verify?phone="+phone+"&resent=1", iris.StatusSeeOther)
}

type ForgotPasswordInput struct {
	Email string `form:"email" validate:"required,email"`
}

func ForgotPasswordPage(ctx iris.Context) {
	ctx.ViewData("meta", meta.Default("Forgot password", "Reset your password", "/forgot-password"))
	ctx.View("auth/forgot_password.html")
}

func ForgotPassword(ctx iris.Context) {
	var input ForgotPasswordInput
	if err := ctx.ReadForm(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	// Always land on the reset page; whether the email exists is not
	// revealed here.
	boundClient(ctx).ForgotPassword(ctx.Request().Context(), input.Email)
	ctx.Redirect("/reset-password?email="+input.Email, iris.StatusSeeOther)
}

type ResetPasswordInput struct {
	Email       string `form:"email" validate:"required,email"`
	Code        string `form:"code" validate:"required,len=6,numeric"`
	NewPassword string `form:"newPassword" validate:"required,min=8,max=256"`
}

func ResetPasswordPage(ctx iris.Context) {
	ctx.ViewData("meta", meta.Default("Reset password", "Enter the OTP and a new password", "/reset-password"))
	ctx.ViewData("email", ctx.URLParam("email"))
	ctx.View("auth/reset_password.html")
}

func ResetPassword(ctx iris.Context) {
	var input ResetPasswordInput
	if err := ctx.ReadForm(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if err := boundClient(ctx).ResetPassword(ctx.Request().Context(), input.Email, input.Code, input.NewPassword); err != nil {
		ctx.ViewData("meta", meta.Default("Reset password", "Enter the OTP and a new password", "/reset-password"))
		ctx.ViewData("email", input.Email)
		ctx.ViewData("error", backendMessage(err, "Reset failed. Check the OTP and try again."))
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.View("auth/reset_password.html")
		return
	}
	ctx.Redirect("/login", iris.StatusSeeOther)
}

func backendMessage(err error, fallback string) string {
	var backendErr *api.BackendError
	if errors.As(err, &backendErr) && backendErr.Message != "" {
		return backendErr.Message
	}
	return fallback
}
