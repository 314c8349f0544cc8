package service

import (
	"strings"

	"github.com/itchan-dev/aurum/internal/session"
	"github.com/itchan-dev/aurum/shared/domain"
	"github.com/itchan-dev/aurum/shared/logger"
)

type ChatService interface {
	Compose(s *session.Session, text string) (*Sent, error)
	Upload(s *session.Session, upload domain.Upload) Sent
	SendToChannel(s *session.Session, key domain.ChannelKey, text string) (*domain.Message, error)
	UploadToChannel(s *session.Session, key domain.ChannelKey, upload domain.Upload) domain.Message
	SendDm(s *session.Session, peer domain.PeerId, text string) (*domain.Message, error)
	UploadToDm(s *session.Session, peer domain.PeerId, upload domain.Upload) domain.Message
	Reply(s *session.Session, key domain.ChannelKey, parent domain.MsgId, text string) (*domain.Reply, error)
}

type MessageValidator interface {
	Text(text string) error
}

type Target string

const (
	TargetChannel Target = "channel"
	TargetDm      Target = "dm"
	TargetReply   Target = "reply"
)

// Sent describes what a compose or upload appended. Exactly one of Message and Reply is set.
type Sent struct {
	Target  Target
	Key     string
	Message *domain.Message
	Reply   *domain.Reply
}

type Chat struct {
	validator MessageValidator
}

func NewChat(validator MessageValidator) ChatService {
	return &Chat{validator}
}

// Compose sends text to wherever the session is looking: the open DM thread,
// the armed reply target, or the active channel. Blank text is dropped and
// returns nil without error.
func (c *Chat) Compose(s *session.Session, text string) (*Sent, error) {
	text, ok, err := c.prepare(text)
	if err != nil || !ok {
		return nil, err
	}

	v := s.View()
	switch {
	case v.IsDM():
		msg := s.Store.SendDm(v.ActiveDm, s.Author(), domain.Payload{Content: text})
		record(TargetDm, kindText)
		return &Sent{Target: TargetDm, Key: v.ActiveDm, Message: &msg}, nil
	case v.ReplyTarget != nil:
		reply, err := s.Store.Reply(v.ActiveChannel, *v.ReplyTarget, s.Author(), domain.Payload{Content: text})
		s.ClearReply()
		if err != nil {
			return nil, err
		}
		record(TargetReply, kindText)
		return &Sent{Target: TargetReply, Key: v.ActiveChannel, Reply: &reply}, nil
	default:
		msg := s.Store.SendToChannel(v.ActiveChannel, s.Author(), domain.Payload{Content: text})
		record(TargetChannel, kindText)
		return &Sent{Target: TargetChannel, Key: v.ActiveChannel, Message: &msg}, nil
	}
}

// Upload routes an upload to the open DM thread or the active channel.
func (c *Chat) Upload(s *session.Session, upload domain.Upload) Sent {
	v := s.View()
	if v.IsDM() {
		msg := c.UploadToDm(s, v.ActiveDm, upload)
		return Sent{Target: TargetDm, Key: v.ActiveDm, Message: &msg}
	}
	msg := c.UploadToChannel(s, v.ActiveChannel, upload)
	return Sent{Target: TargetChannel, Key: v.ActiveChannel, Message: &msg}
}

func (c *Chat) SendToChannel(s *session.Session, key domain.ChannelKey, text string) (*domain.Message, error) {
	text, ok, err := c.prepare(text)
	if err != nil || !ok {
		return nil, err
	}
	msg := s.Store.SendToChannel(key, s.Author(), domain.Payload{Content: text})
	record(TargetChannel, kindText)
	return &msg, nil
}

func (c *Chat) UploadToChannel(s *session.Session, key domain.ChannelKey, upload domain.Upload) domain.Message {
	msg := s.Store.UploadToChannel(key, s.Author(), upload)
	record(TargetChannel, kindUpload)
	return msg
}

// SendDm appends to the thread with peer and switches the view to it.
func (c *Chat) SendDm(s *session.Session, peer domain.PeerId, text string) (*domain.Message, error) {
	text, ok, err := c.prepare(text)
	if err != nil || !ok {
		return nil, err
	}
	msg := s.Store.SendDm(peer, s.Author(), domain.Payload{Content: text})
	s.OpenDm(peer)
	record(TargetDm, kindText)
	return &msg, nil
}

func (c *Chat) UploadToDm(s *session.Session, peer domain.PeerId, upload domain.Upload) domain.Message {
	msg := s.Store.UploadToDm(peer, s.Author(), upload)
	s.OpenDm(peer)
	record(TargetDm, kindUpload)
	return msg
}

func (c *Chat) Reply(s *session.Session, key domain.ChannelKey, parent domain.MsgId, text string) (*domain.Reply, error) {
	text, ok, err := c.prepare(text)
	if err != nil || !ok {
		return nil, err
	}
	reply, err := s.Store.Reply(key, parent, s.Author(), domain.Payload{Content: text})
	if err != nil {
		return nil, err
	}
	record(TargetReply, kindText)
	return &reply, nil
}

// prepare trims text. ok is false for blank text.
func (c *Chat) prepare(text string) (string, bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false, nil
	}
	if err := c.validator.Text(text); err != nil {
		return "", false, err
	}
	return text, true, nil
}

func record(target Target, kind string) {
	messagesTotal.WithLabelValues(string(target), kind).Inc()
	logger.Log.Debug("message appended", "target", target, "kind", kind)
}
