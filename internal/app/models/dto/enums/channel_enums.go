package enums

// Channel is a chat channel name.
type Channel string

const (
	ChannelIntra      Channel = "intra"
	ChannelEncadreurs Channel = "encadreurs"
)

// Channels is the fixed set of chat channels.
var Channels = []Channel{ChannelIntra, ChannelEncadreurs}

// Valid reports whether c is one of Channels.
func (c Channel) Valid() bool {
	return c == ChannelIntra || c == ChannelEncadreurs
}

// ChatEvent is the "type" carried by a chat stream frame.
type ChatEvent string

const (
	ChatEventNew    ChatEvent = "message:new"
	ChatEventUpdate ChatEvent = "message:update"
	ChatEventDelete ChatEvent = "message:delete"
)
