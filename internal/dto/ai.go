package dto

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ChatMessage is one turn of the conversation sent to the language model.
type ChatMessage struct {
	Role    string
	Content string
}
