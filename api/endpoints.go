package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"ghardwar-web/models"
)

// LoginResult is what POST /users/login returns: either a fully authenticated
// user+token, or a marker demanding MFA / a forced password change before the
// session can be issued. PendingTicket identifies the half-open attempt on
// the backend for the follow-up call.
type LoginResult struct {
	User                   *models.User `json:"user"`
	AccessToken            string       `json:"accessToken"`
	MFARequired            bool         `json:"mfaRequired"`
	PasswordChangeRequired bool         `json:"passwordChangeRequired"`
	PendingTicket          string       `json:"pendingTicket"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var out LoginResult
	payload := map[string]string{"email": email, "password": password}
	if err := c.Do(ctx, http.MethodPost, "/users/login", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyMFA(ctx context.Context, ticket, code string) (*LoginResult, error) {
	var out LoginResult
	payload := map[string]string{"pendingTicket": ticket, "code": code}
	if err := c.Do(ctx, http.MethodPost, "/users/login/verify-mfa", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CompleteForcedPasswordChange(ctx context.Context, ticket, newPassword string) (*LoginResult, error) {
	var out LoginResult
	payload := map[string]string{"pendingTicket": ticket, "newPassword": newPassword}
	if err := c.Do(ctx, http.MethodPost, "/users/login/change-password", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type RegisterInput struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	DateOfBirth string `json:"dateOfBirth"`
	Aadhaar     string `json:"aadhaar,omitempty"`
}

// RegisterBuyer is the immediate, single-step registration.
func (c *Client) RegisterBuyer(ctx context.Context, input RegisterInput) (*LoginResult, error) {
	var out LoginResult
	if err := c.Do(ctx, http.MethodPost, "/users/register-direct", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterOwner starts the two-step owner registration; the account only
// activates after VerifyOTP.
func (c *Client) RegisterOwner(ctx context.Context, input RegisterInput) error {
	return c.Do(ctx, http.MethodPost, "/users/register", input, nil)
}

func (c *Client) ResendOTP(ctx context.Context, phoneNumber string) error {
	payload := map[string]string{"phoneNumber": phoneNumber}
	return c.Do(ctx, http.MethodPost, "/users/resend-otp", payload, nil)
}

func (c *Client) VerifyOTP(ctx context.Context, phoneNumber, code string) (*LoginResult, error) {
	var out LoginResult
	payload := map[string]string{"phoneNumber": phoneNumber, "code": code}
	if err := c.Do(ctx, http.MethodPost, "/users/verify-otp", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	payload := map[string]string{"email": email}
	return c.Do(ctx, http.MethodPost, "/users/forgot-password", payload, nil)
}

func (c *Client) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	payload := map[string]string{"email": email, "code": code, "newPassword": newPassword}
	return c.Do(ctx, http.MethodPost, "/users/reset-password", payload, nil)
}

func (c *Client) GetProfile(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.Do(ctx, http.MethodGet, "/users/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type UpdateProfileInput struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	DateOfBirth string `json:"dateOfBirth"`
}

func (c *Client) UpdateProfile(ctx context.Context, input UpdateProfileInput, image io.Reader, imageName string) (*models.User, error) {
	// Profile updates go up as multipart so the avatar can ride along.
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	form.WriteField("firstName", input.FirstName)
	form.WriteField("lastName", input.LastName)
	form.WriteField("phoneNumber", input.PhoneNumber)
	form.WriteField("dateOfBirth", input.DateOfBirth)
	if image != nil {
		part, err := form.CreateFormFile("avatar", imageName)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(part, image); err != nil {
			return nil, err
		}
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	var out models.User
	if err := c.DoMultipart(ctx, http.MethodPut, "/users/profile", &buf, form.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	payload := map[string]string{"currentPassword": current, "newPassword": next}
	return c.Do(ctx, http.MethodPut, "/users/change-password", payload, nil)
}

type PropertyFilters struct {
	City        string
	ListingType string
	MinPrice    int64
	MaxPrice    int64
	Bedrooms    int
	Page        int
}

func (f PropertyFilters) query() string {
	q := url.Values{}
	if f.City != "" {
		q.Set("city", f.City)
	}
	if f.ListingType != "" {
		q.Set("listingType", f.ListingType)
	}
	if f.MinPrice > 0 {
		q.Set("minPrice", fmt.Sprint(f.MinPrice))
	}
	if f.MaxPrice > 0 {
		q.Set("maxPrice", fmt.Sprint(f.MaxPrice))
	}
	if f.Bedrooms > 0 {
		q.Set("bedrooms", fmt.Sprint(f.Bedrooms))
	}
	if f.Page > 1 {
		q.Set("page", fmt.Sprint(f.Page))
	}
	if encoded := q.Encode(); encoded != "" {
		return "?" + encoded
	}
	return ""
}

func (c *Client) ListProperties(ctx context.Context, filters PropertyFilters) ([]models.Property, error) {
	var out struct {
		Properties []models.Property `json:"properties"`
	}
	if err := c.Do(ctx, http.MethodGet, "/properties"+filters.query(), nil, &out); err != nil {
		return nil, err
	}
	return out.Properties, nil
}

func (c *Client) GetProperty(ctx context.Context, id uint) (*models.Property, error) {
	var out models.Property
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/properties/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SavedProperties(ctx context.Context) ([]models.Property, error) {
	var out struct {
		Properties []models.Property `json:"properties"`
	}
	if err := c.Do(ctx, http.MethodGet, "/properties/saved", nil, &out); err != nil {
		return nil, err
	}
	return out.Properties, nil
}

func (c *Client) ExpressInterest(ctx context.Context, propertyID uint) error {
	return c.Do(ctx, http.MethodPost, fmt.Sprintf("/properties/interested/%d", propertyID), nil, nil)
}

func (c *Client) WithdrawInterest(ctx context.Context, propertyID uint) error {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("/properties/interested/%d", propertyID), nil, nil)
}

func (c *Client) ReportProperty(ctx context.Context, propertyID uint, reason string) error {
	payload := map[string]string{"reason": reason}
	return c.Do(ctx, http.MethodPost, fmt.Sprintf("/properties/%d/report", propertyID), payload, nil)
}

type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func (c *Client) SubmitContact(ctx context.Context, input ContactInput) error {
	return c.Do(ctx, http.MethodPost, "/contact", input, nil)
}

type AgreementInput struct {
	Kind        string `json:"kind"`
	OwnerName   string `json:"ownerName"`
	TenantName  string `json:"tenantName"`
	PropertyRef string `json:"propertyRef"`
	Rent        int64  `json:"rent"`
	Deposit     int64  `json:"deposit"`
	TermMonths  int    `json:"termMonths"`
	City        string `json:"city"`
}

func (c *Client) GenerateAgreement(ctx context.Context, input AgreementInput) (*models.Agreement, error) {
	var out models.Agreement
	if err := c.Do(ctx, http.MethodPost, "/agreements/generate", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListBlogs(ctx context.Context) ([]models.BlogPost, error) {
	var out struct {
		Blogs []models.BlogPost `json:"blogs"`
	}
	if err := c.Do(ctx, http.MethodGet, "/api/blogs", nil, &out); err != nil {
		return nil, err
	}
	return out.Blogs, nil
}

func (c *Client) GetBlog(ctx context.Context, slug string) (*models.BlogPost, error) {
	var out models.BlogPost
	if err := c.Do(ctx, http.MethodGet, "/api/blogs/"+url.PathEscape(slug), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SocketToken fetches the short-lived token presented to the live transport
// during its authenticate handshake. The socket itself carries no ambient
// identity.
func (c *Client) SocketToken(ctx context.Context) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.Do(ctx, http.MethodGet, "/chat/socket-token", nil, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *Client) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	var out struct {
		Conversations []models.Conversation `json:"conversations"`
	}
	if err := c.Do(ctx, http.MethodGet, "/chat/conversations", nil, &out); err != nil {
		return nil, err
	}
	return out.Conversations, nil
}

func (c *Client) ListMessages(ctx context.Context, conversationID uint) ([]models.Message, error) {
	var out struct {
		Messages []models.Message `json:"messages"`
	}
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/chat/messages/%d", conversationID), nil, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

type StartConversationInput struct {
	PropertyID uint `json:"propertyID"`
	OwnerID    uint `json:"ownerID"`
}

// StartConversation is get-or-create on the backend; calling it twice for
// the same pair returns the same conversation.
func (c *Client) StartConversation(ctx context.Context, input StartConversationInput) (*models.Conversation, error) {
	var out models.Conversation
	if err := c.Do(ctx, http.MethodPost, "/chat/conversations", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type SendMessageInput struct {
	ConversationID uint   `json:"conversationID"`
	Text           string `json:"text"`
	Type           string `json:"type,omitempty"`
}

// SendMessage persists the message; the returned copy carries the
// backend-assigned ID and timestamp and is the only version that may enter
// local state.
func (c *Client) SendMessage(ctx context.Context, input SendMessageInput) (*models.Message, error) {
	var out models.Message
	if err := c.Do(ctx, http.MethodPost, "/chat/message/send", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ReportMessage(ctx context.Context, messageID uint, reason string) error {
	payload := map[string]interface{}{"messageID": messageID, "reason": reason}
	return c.Do(ctx, http.MethodPost, "/chat/message/report", payload, nil)
}

func (c *Client) MarkConversationRead(ctx context.Context, conversationID uint) error {
	payload := map[string]uint{"conversationID": conversationID}
	return c.Do(ctx, http.MethodPost, "/chat/conversations/mark-read", payload, nil)
}
