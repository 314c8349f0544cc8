package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Payload is what the composer hands to the store. Both fields are optional
// and may coexist; the store does not enforce exclusivity.
type Payload struct {
	Content MsgText `json:"content"`
	Image   string  `json:"image,omitempty"`
}

// Upload is a picked file already turned into a local URI reference.
type Upload struct {
	URL      string `json:"url" validate:"required"`
	MimeType string `json:"mime_type"`
	Name     string `json:"name,omitempty"`
}

func (u Upload) IsImage() bool {
	return strings.HasPrefix(u.MimeType, "image/")
}

// Payload derives the message body for an upload. Images render inline with no
// text; anything else also carries its URI as content so it stays visible as a link.
func (u Upload) Payload() Payload {
	if u.IsImage() {
		return Payload{Content: "", Image: u.URL}
	}
	return Payload{Content: u.URL, Image: u.URL}
}

type Message struct {
	Id      MsgId   `json:"id"`
	Author  Email   `json:"author"`
	Content MsgText `json:"content"`
	Image   string  `json:"image,omitempty"`
	Replies []Reply `json:"replies"`
}

// Reply is owned by its parent Message and has no lifecycle of its own.
type Reply struct {
	Id      ReplyId `json:"id"`
	Author  Email   `json:"author"`
	Content MsgText `json:"content"`
	Image   string  `json:"image,omitempty"`
}

func NewReplyId(parent MsgId, seq int) ReplyId {
	return fmt.Sprintf("%d-%d", parent, seq)
}

// Clone returns a copy that shares no reply storage with m.
func (m Message) Clone() Message {
	c := m
	c.Replies = make([]Reply, len(m.Replies))
	copy(c.Replies, m.Replies)
	return c
}

// for debug
func (m *Message) String() string {
	return fmt.Sprintf("[id:%d, author:%s, content:%q, image:%q, replies:%d]", m.Id, m.Author, m.Content, m.Image, len(m.Replies))
}

// Displayable is the common shape of everything that renders in a message list.
// Messages and replies both satisfy it so views can recurse over one contract.
type Displayable interface {
	ItemId() string
	ItemAuthor() Email
	ItemContent() MsgText
	ItemImage() string
	ItemChildren() []Displayable
}

func (m Message) ItemId() string       { return strconv.FormatInt(m.Id, 10) }
func (m Message) ItemAuthor() Email    { return m.Author }
func (m Message) ItemContent() MsgText { return m.Content }
func (m Message) ItemImage() string    { return m.Image }

func (m Message) ItemChildren() []Displayable {
	children := make([]Displayable, len(m.Replies))
	for i, r := range m.Replies {
		children[i] = r
	}
	return children
}

func (r Reply) ItemId() string              { return r.Id }
func (r Reply) ItemAuthor() Email           { return r.Author }
func (r Reply) ItemContent() MsgText        { return r.Content }
func (r Reply) ItemImage() string           { return r.Image }
func (r Reply) ItemChildren() []Displayable { return nil }
