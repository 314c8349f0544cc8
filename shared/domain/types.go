package domain

type (
	Email      = string
	ChannelKey = string
	PeerId     = Email

	MsgId   = int64
	ReplyId = string
	MsgText = string
)

// GuestAuthor is the author recorded for items sent without a signed-in user.
const GuestAuthor = "you"
