package api

import "github.com/itchan-dev/aurum/shared/domain"

// Request DTOs

type SendMessageRequest struct {
	Text string `json:"text" validate:"required"`
}

// Response DTOs

type ChannelResponse struct {
	Key      domain.ChannelKey `json:"key"`
	Label    string            `json:"label"`
	Messages int               `json:"messages"`
}

type ChannelListResponse struct {
	Channels []ChannelResponse `json:"channels"`
}

type MessagesResponse struct {
	Key      string           `json:"key"`
	Messages []domain.Message `json:"messages"`
}

type MessageResponse struct {
	domain.Message
}

type ReplyResponse struct {
	Parent domain.MsgId `json:"parent"`
	domain.Reply
}

type DmListResponse struct {
	Peers []domain.PeerId `json:"peers"`
}

// UploadResponse pairs the stored file with the message that references it
type UploadResponse struct {
	Message domain.Message `json:"message"`
	Blob    BlobResponse   `json:"blob"`
}

type BlobResponse struct {
	URL      string `json:"url"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
	Width    *int   `json:"width,omitempty"`
	Height   *int   `json:"height,omitempty"`
}

type MemberListResponse struct {
	Members []domain.User `json:"members"`
}
