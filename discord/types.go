// Package discord models the slice of the Discord interactions wire
// format this bot speaks, routes inbound interactions to handlers and
// talks back to the platform REST API.
package discord

// InteractionType tags the inbound event envelope.
type InteractionType int

const (
	InteractionTypePing               InteractionType = 1
	InteractionTypeApplicationCommand InteractionType = 2
	InteractionTypeMessageComponent   InteractionType = 3
)

// ComponentType is the Discord message-component kind.
type ComponentType int

const (
	ComponentTypeActionRow ComponentType = 1
	ComponentTypeButton    ComponentType = 2
)

// ButtonStyle selects the button rendering.
type ButtonStyle int

const ButtonStylePrimary ButtonStyle = 1

// User identifies a Discord user.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
}

// Member wraps the user for guild-scoped interactions.
type Member struct {
	User *User `json:"user,omitempty"`
}

// Message is the message an interaction component lives on.
type Message struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	Content   string `json:"content,omitempty"`
}

// InteractionData carries the event-specific payload: the command name
// for command invocations, the custom id for component activations.
type InteractionData struct {
	Name          string        `json:"name,omitempty"`
	CustomID      string        `json:"custom_id,omitempty"`
	ComponentType ComponentType `json:"component_type,omitempty"`
}

// Interaction is the inbound event envelope shared by the webhook and
// the gateway transports.
type Interaction struct {
	ID            string           `json:"id"`
	ApplicationID string           `json:"application_id,omitempty"`
	Type          InteractionType  `json:"type"`
	Data          *InteractionData `json:"data,omitempty"`
	GuildID       string           `json:"guild_id,omitempty"`
	ChannelID     string           `json:"channel_id,omitempty"`
	Member        *Member          `json:"member,omitempty"`
	User          *User            `json:"user,omitempty"`
	Token         string           `json:"token,omitempty"`
	Message       *Message         `json:"message,omitempty"`
}

// ActorID returns the id of the user behind the interaction. Guild
// interactions carry it under member, direct ones under user.
func (i *Interaction) ActorID() string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// ResponseType tags the outbound interaction response.
type ResponseType int

const (
	ResponseTypePong           ResponseType = 1
	ResponseTypeChannelMessage ResponseType = 4
)

// MessageFlagEphemeral makes a reply visible only to the actor.
const MessageFlagEphemeral = 1 << 6

// InteractionResponse is the single response object every handled
// interaction produces, serialized by the active transport.
type InteractionResponse struct {
	Type ResponseType  `json:"type"`
	Data *ResponseData `json:"data,omitempty"`
}

// ResponseData is the message payload of a response.
type ResponseData struct {
	Content    string      `json:"content,omitempty"`
	Flags      int         `json:"flags,omitempty"`
	Components []Component `json:"components,omitempty"`
}

// Component is a message component: an action row or a button.
type Component struct {
	Type       ComponentType `json:"type"`
	Style      ButtonStyle   `json:"style,omitempty"`
	Label      string        `json:"label,omitempty"`
	CustomID   string        `json:"custom_id,omitempty"`
	Disabled   bool          `json:"disabled,omitempty"`
	Components []Component   `json:"components,omitempty"`
}

// ApplicationCommand is the metadata registered with Discord per guild.
type ApplicationCommand struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Guild is the subset of guild metadata the bot needs.
type Guild struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Pong answers a liveness ping.
func Pong() *InteractionResponse {
	return &InteractionResponse{Type: ResponseTypePong}
}

// MessageResponse builds a plain channel-message response.
func MessageResponse(content string) *InteractionResponse {
	return &InteractionResponse{
		Type: ResponseTypeChannelMessage,
		Data: &ResponseData{Content: content},
	}
}

// EphemeralResponse builds a reply visible only to the actor.
func EphemeralResponse(content string) *InteractionResponse {
	resp := MessageResponse(content)
	resp.Data.Flags = MessageFlagEphemeral
	return resp
}

// ErrorResponse wraps a localized error text in the standard error
// formatting, always ephemeral.
func ErrorResponse(message string) *InteractionResponse {
	return EphemeralResponse("**Ошибка:**\n" + message)
}

// InfluenceButton is the "influence the sign" button attached to a
// freshly rolled sign message.
func InfluenceButton(disabled bool) Component {
	return Component{
		Type:     ComponentTypeButton,
		Style:    ButtonStylePrimary,
		Label:    "Повлиять на знамение",
		CustomID: ComponentChangeSign,
		Disabled: disabled,
	}
}

// ButtonRow wraps buttons into the action row Discord requires.
func ButtonRow(buttons ...Component) []Component {
	return []Component{{Type: ComponentTypeActionRow, Components: buttons}}
}
