package routes

import (
	"github.com/kataras/iris/v12"

	"ghardwar-web/chat"
	"ghardwar-web/models"
	"ghardwar-web/utils"
)

func coordinator(ctx iris.Context) *chat.Coordinator {
	sess := currentSession(ctx)
	if sess == nil || !sess.IsAuthenticated() {
		return nil
	}
	return hub.EnsureSession(sess)
}

// ChatState backs the widget header: connection state, conversation list,
// presence and the single current typing indicator.
func ChatState(ctx iris.Context) {
	coord := coordinator(ctx)
	if coord == nil {
		utils.CreateError(iris.StatusUnauthorized, "Unauthorized", "Sign in to use chat.", ctx)
		return
	}
	onlineSet := make(map[uint]bool)
	for _, id := range coord.Online() {
		onlineSet[id] = true
	}
	convs := coord.Conversations()
	viewerID := currentSession(ctx).User.ID
	peersOnline := make(map[uint]bool, len(convs))
	for _, conv := range convs {
		peersOnline[conv.ID] = onlineSet[conv.PeerID(viewerID)]
	}

	ctx.JSON(iris.Map{
		"connState":     coord.ConnState(),
		"conversations": convs,
		"online":        coord.Online(),
		"peersOnline":   peersOnline,
		"typing":        coord.Typing(),
	})
}

func ChatConversations(ctx iris.Context) {
	coord := coordinator(ctx)
	if coord == nil {
		utils.CreateError(iris.StatusUnauthorized, "Unauthorized", "Sign in to use chat.", ctx)
		return
	}
	ctx.JSON(iris.Map{"conversations": coord.LoadConversations(ctx.Request().Context())})
}

type StartChatInput struct {
	PropertyID uint `json:"propertyID" validate:"required"`
	OwnerID    uint `json:"ownerID" validate:"required"`
}

func StartChat(ctx iris.Context) {
	coord := coordinator(ctx)
	if coord == nil {
		utils.CreateError(iris.StatusUnauthorized, "Unauthorized", "Sign in to chat with the owner.", ctx)
		return
	}
	var input StartChatInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	conv, err := coord.StartConversation(ctx.Request().Context(), input.PropertyID, input.OwnerID)
	if err != nil {
		utils.CreateError(iris.StatusBadGateway, "Chat Error", backendMessage(err, "Could not start the conversation."), ctx)
		return
	}
	ctx.JSON(conv)
}

func OpenChatConversation(ctx iris.Context) {
	coord := coordinator(ctx)
	if coord == nil {
		utils.CreateError(iris.StatusUnauthorized, "Unauthorized", "Sign in to use chat.", ctx)
		return
	}
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	msgs, err := coord.OpenConversation(ctx.Request().Context(), id)
	if err != nil {
		utils.CreateError(iris.StatusBadGateway, "Chat Error", backendMessage(err, "Could not load messages."), ctx)
		return
	}
	ctx.JSON(iris.Map{"messages": msgs})
}

type SendChatInput struct {
	ConversationID uint   `json:"conversationID" validate:"required"`
	Text           string `json:"text" validate:"required,max=5000"`
	Type           string `json:"type"`
}

func SendChatMessage(ctx iris.Context) {
	coord := coordinator(ctx)
	if coord == nil {
		utils.CreateError(iris.StatusUnauthorized, "Unauthorized", "Sign in to use chat.", ctx)
		return
	}
	var input SendChatInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	switch input.Type {
	case "":
		input.Type = models.MessageTypeText
	case models.MessageTypeText, models.MessageTypeVisitRequest, models.MessageTypeVisitConfirmation:
	default:
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Unknown message type.", ctx)
		return
	}
	msg, err := coord.SendMessage(ctx.Request().Context(), input.ConversationID, input.Text, input.Type)
	if err != nil {
		utils.CreateError(iris.StatusBadGateway, "Chat Error", backendMessage(err, "Message not sent. Try again."), ctx)
		return
	}
	ctx.JSON(msg)
}

type ReportChatInput struct {
	MessageID uint   `json:"messageID" validate:"required"`
	Reason    string `json:"reason" validate:"required,max=1024"`
}

func ReportChatMessage(ctx iris.Context) {
	coord := coordinator(ctx)
	if coord == nil {
		utils.CreateError(iris.StatusUnauthorized, "Unauthorized", "Sign in to use chat.", ctx)
		return
	}
	var input ReportChatInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	ok := coord.ReportMessage(ctx.Request().Context(), input.MessageID, input.Reason)
	ctx.JSON(iris.Map{"success": ok})
}

type TypingInput struct {
	ConversationID uint `json:"conversationID" validate:"required"`
}

// ChatTyping is called by the widget on keystrokes; the coordinator's
// debounce decides what actually goes over the wire.
func ChatTyping(ctx iris.Context) {
	coord := coordinator(ctx)
	if coord == nil {
		utils.CreateError(iris.StatusUnauthorized, "Unauthorized", "Sign in to use chat.", ctx)
		return
	}
	var input TypingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	coord.Keystroke(input.ConversationID)
	ctx.JSON(iris.Map{"success": true})
}

// ChatSocket upgrades the widget's live relay.
func ChatSocket(ctx iris.Context) {
	coord := coordinator(ctx)
	if coord == nil {
		ctx.StatusCode(iris.StatusUnauthorized)
		return
	}
	chat.ServeWidget(ctx.ResponseWriter(), ctx.Request(), coord, logger)
}
