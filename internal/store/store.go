// Package store holds the conversation state of one session: channel message
// lists, DM threads and the replies hanging off channel messages.
package store

import (
	"sync"

	"github.com/samber/lo"

	"github.com/itchan-dev/aurum/shared/domain"
	"github.com/itchan-dev/aurum/shared/errors"
)

var ErrMessageNotFound = errors.NotFound("Message not found")

type EventKind string

const (
	EventChannelMessage EventKind = "channel_message"
	EventDmMessage      EventKind = "dm_message"
	EventReply          EventKind = "reply"
)

// Event describes one mutation. For replies Message is the parent after the append.
type Event struct {
	Kind    EventKind      `json:"kind"`
	Key     string         `json:"key"`
	Message domain.Message `json:"message"`
}

// Store is append-only: lists and keys are created on first write and never
// removed. Reads return copies so callers can't reach into the store.
type Store struct {
	mu  sync.RWMutex
	ids IdGenerator

	channels     map[domain.ChannelKey][]domain.Message
	channelOrder []domain.ChannelKey
	dms          map[domain.PeerId][]domain.Message
	dmOrder      []domain.PeerId

	subscribers map[int]chan Event
	nextSub     int
}

func New(ids IdGenerator) *Store {
	return &Store{
		ids:         ids,
		channels:    make(map[domain.ChannelKey][]domain.Message),
		dms:         make(map[domain.PeerId][]domain.Message),
		subscribers: make(map[int]chan Event),
	}
}

// SeedChannel creates the channel with the given history. Seeded messages keep their ids.
func (s *Store) SeedChannel(key domain.ChannelKey, messages []domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureChannel(key)
	s.channels[key] = append(s.channels[key], cloneAll(messages)...)
}

func (s *Store) SeedDm(peer domain.PeerId, messages []domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureDm(peer)
	s.dms[peer] = append(s.dms[peer], cloneAll(messages)...)
}

// SendToChannel appends a new message, creating the channel if needed.
// Empty payloads are stored as-is; the composer is the one that filters them.
func (s *Store) SendToChannel(key domain.ChannelKey, author domain.Email, payload domain.Payload) domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureChannel(key)
	msg := s.newMessage(author, payload)
	s.channels[key] = append(s.channels[key], msg)
	s.publish(Event{Kind: EventChannelMessage, Key: key, Message: msg.Clone()})
	return msg.Clone()
}

func (s *Store) UploadToChannel(key domain.ChannelKey, author domain.Email, upload domain.Upload) domain.Message {
	return s.SendToChannel(key, author, upload.Payload())
}

// SendDm appends to the thread with peer, creating the thread on first send.
func (s *Store) SendDm(peer domain.PeerId, author domain.Email, payload domain.Payload) domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureDm(peer)
	msg := s.newMessage(author, payload)
	s.dms[peer] = append(s.dms[peer], msg)
	s.publish(Event{Kind: EventDmMessage, Key: peer, Message: msg.Clone()})
	return msg.Clone()
}

func (s *Store) UploadToDm(peer domain.PeerId, author domain.Email, upload domain.Upload) domain.Message {
	return s.SendDm(peer, author, upload.Payload())
}

// Reply appends to the replies of one channel message and touches nothing else.
func (s *Store) Reply(key domain.ChannelKey, parent domain.MsgId, author domain.Email, payload domain.Payload) (domain.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := s.channels[key]
	idx := -1
	for i := range messages {
		if messages[i].Id == parent {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.Reply{}, ErrMessageNotFound
	}

	msg := &messages[idx]
	reply := domain.Reply{
		Id:      nextReplyId(*msg),
		Author:  author,
		Content: payload.Content,
		Image:   payload.Image,
	}
	msg.Replies = append(msg.Replies, reply)
	s.publish(Event{Kind: EventReply, Key: key, Message: msg.Clone()})
	return reply, nil
}

// ChannelMessages returns the channel in insertion order, empty if it doesn't exist.
func (s *Store) ChannelMessages(key domain.ChannelKey) []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.channels[key])
}

func (s *Store) DmThread(peer domain.PeerId) []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.dms[peer])
}

// Channels lists channel keys in creation order.
func (s *Store) Channels() []domain.ChannelKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ChannelKey{}, s.channelOrder...)
}

// DmPeers lists peers with an open thread in creation order.
func (s *Store) DmPeers() []domain.PeerId {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.PeerId{}, s.dmOrder...)
}

// ChannelLen counts a channel's messages without copying them.
func (s *Store) ChannelLen(key domain.ChannelKey) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.channels[key])
}

// Subscribe registers for mutation events. Slow subscribers miss events
// rather than block writers. The returned func unsubscribes and closes the channel.
func (s *Store) Subscribe(buffer int) (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Event, buffer)
	s.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
			close(ch)
		})
	}
}

// must hold s.mu
func (s *Store) publish(e Event) {
	for _, ch := range s.subscribers {
		select {
		case ch <- e:
		default:
		}
	}
}

// must hold s.mu
func (s *Store) ensureChannel(key domain.ChannelKey) {
	if _, ok := s.channels[key]; !ok {
		s.channels[key] = []domain.Message{}
		s.channelOrder = append(s.channelOrder, key)
	}
}

// must hold s.mu
func (s *Store) ensureDm(peer domain.PeerId) {
	if _, ok := s.dms[peer]; !ok {
		s.dms[peer] = []domain.Message{}
		s.dmOrder = append(s.dmOrder, peer)
	}
}

func (s *Store) newMessage(author domain.Email, payload domain.Payload) domain.Message {
	return domain.Message{
		Id:      s.ids.Next(),
		Author:  author,
		Content: payload.Content,
		Image:   payload.Image,
		Replies: []domain.Reply{},
	}
}

// nextReplyId is "<parent>-<n>" with n one past the reply count, skipping
// any suffix already taken by seeded replies.
func nextReplyId(parent domain.Message) domain.ReplyId {
	taken := lo.SliceToMap(parent.Replies, func(r domain.Reply) (domain.ReplyId, bool) { return r.Id, true })
	seq := len(parent.Replies) + 1
	for taken[domain.NewReplyId(parent.Id, seq)] {
		seq++
	}
	return domain.NewReplyId(parent.Id, seq)
}

func cloneAll(messages []domain.Message) []domain.Message {
	return lo.Map(messages, func(m domain.Message, _ int) domain.Message { return m.Clone() })
}
