// Package docs EduViz Chat API.
//
// Documentation of the EduViz course chat API.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//
//     Consumes:
//     - application/json
//     - multipart/form-data
//
//     Produces:
//     - application/json
//
//     Security:
//     - bearer
//
//    SecurityDefinitions:
//    bearer:
//      type: apiKey
//      name: Authorization
//      in: header
//
// swagger:meta
package docs

import (
	"github.com/eduviz/eduviz-chat-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route GET /api/v1/messages messages recentMessages
// Gets the newest messages across all conversations, oldest first.
// responses:
//   200: messagesResponse
//   400: errorResponse

// swagger:parameters recentMessages
type recentMessagesParams struct {
	// how many messages to return, 100 by default and at most 1000
	// in:query
	Limit int `json:"limit"`
}

// swagger:route GET /api/v1/messages/{conversation_id} messages messagesByConversation
// Gets every message of one conversation, oldest first.
// responses:
//   200: messagesResponse

// swagger:parameters messagesByConversation sendMessageToConversation
type conversationIDParam struct {
	// in:path
	// required: true
	ConversationID string `json:"conversation_id"`
}

// A list of messages
// swagger:response messagesResponse
type messagesResponseWrapper struct {
	// in:body
	Body []models.Message
}

// swagger:route POST /api/v1/messages messages sendMessage
// Sends a message to direct-messaging, or to the conversation named in the body.
// responses:
//   201: messageResponse
//   400: errorResponse
//   500: errorResponse

// swagger:route POST /api/v1/messages/{conversation_id} messages sendMessageToConversation
// Sends a message to a conversation. The path id wins over one in the body.
// responses:
//   201: messageResponse
//   400: errorResponse
//   500: errorResponse

// swagger:parameters sendMessage sendMessageToConversation
type sendMessageParams struct {
	// in:body
	Body models.SendMessageRequest
}

// The stored message
// swagger:response messageResponse
type messageResponseWrapper struct {
	// in:body
	Body models.Message
}

// swagger:route GET /api/v1/messages/conversations/all messages conversations
// Summarises every conversation.
// responses:
//   200: conversationsResponse

// swagger:response conversationsResponse
type conversationsResponseWrapper struct {
	// in:body
	Body []models.ConversationSummary
}

// swagger:route POST /api/v1/messages/upload messages uploadImage
// Uploads a message image of at most 5 MiB.
// responses:
//   200: uploadResponse
//   400: errorResponse
//   413: errorResponse

// swagger:response uploadResponse
type uploadResponseWrapper struct {
	// in:body
	Body models.UploadResponse
}

// swagger:response errorResponse
type errorResponseWrapper struct {
	// in:body
	Body models.ErrorMessageResponse
}
