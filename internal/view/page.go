package view

import (
	"github.com/samber/lo"

	"github.com/itchan-dev/aurum/internal/session"
	"github.com/itchan-dev/aurum/shared/domain"
)

type ChannelLink struct {
	Key    domain.ChannelKey
	Label  string
	Active bool
}

type PeerLink struct {
	Peer     domain.PeerId
	Initials string
	Active   bool
}

type Member struct {
	domain.User
	Initials string
	Color    string
}

// Page is everything the main template needs for one session.
type Page struct {
	User        *domain.Identity
	View        session.View
	Channels    []ChannelLink
	Peers       []PeerLink
	Members     []Member
	Title       string
	Placeholder string
	Items       []*Node
	Replying    *Node
	CSRFToken   string
	MaxUploadMB float64
	Tabs        []session.Tab
}

// Labeler resolves display labels for channel keys.
type Labeler interface {
	ChannelLabel(key domain.ChannelKey) string
}

// BuildPage snapshots the session into a page model.
func (r *Renderer) BuildPage(s *session.Session, labels Labeler, members []domain.User) *Page {
	v := s.View()
	p := &Page{
		User:        s.User(),
		View:        v,
		CSRFToken:   s.CSRFToken,
		MaxUploadMB: r.maxUploadMB,
		Tabs:        []session.Tab{session.TabChannels, session.TabMessages, session.TabMembers, session.TabApps},
	}

	p.Channels = lo.Map(s.Store.Channels(), func(key domain.ChannelKey, _ int) ChannelLink {
		return ChannelLink{Key: key, Label: labels.ChannelLabel(key), Active: !v.IsDM() && key == v.ActiveChannel}
	})
	p.Peers = lo.Map(s.Store.DmPeers(), func(peer domain.PeerId, _ int) PeerLink {
		return PeerLink{Peer: peer, Initials: Initials(peer), Active: v.ActiveDm == peer}
	})
	p.Members = lo.Map(members, func(u domain.User, _ int) Member {
		return Member{User: u, Initials: Initials(u.Name), Color: PresenceColor(u.Presence)}
	})

	if v.IsDM() {
		p.Title = "@" + v.ActiveDm
		p.Placeholder = "Message @" + v.ActiveDm
		p.Items = r.BuildList(s.Store.DmThread(v.ActiveDm), false)
		return p
	}

	p.Title = labels.ChannelLabel(v.ActiveChannel)
	p.Placeholder = "Message…"
	p.Items = r.BuildList(s.Store.ChannelMessages(v.ActiveChannel), true)
	if v.ReplyTarget != nil {
		p.Replying, _ = lo.Find(p.Items, func(n *Node) bool {
			return n.ReplyTo != nil && *n.ReplyTo == *v.ReplyTarget
		})
		if p.Replying != nil {
			p.Placeholder = "Reply to " + p.Replying.Author
		}
	}
	return p
}
