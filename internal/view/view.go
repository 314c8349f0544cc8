// Package view builds the page model and renders it with the embedded templates.
package view

import (
	"html/template"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/itchan-dev/aurum/shared/domain"
)

// Node is one rendered item. Messages and replies share it; Depth tells the
// template how far down the tree the node sits.
type Node struct {
	Id       string
	Author   domain.Email
	Initials string
	Content  template.HTML
	// Link is set when the content is just the file reference of a non-image upload.
	Link     string
	Image    string
	Depth    int
	ReplyTo  *domain.MsgId
	Children []*Node
}

func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// AvatarSize shrinks avatars for nested items.
func (n *Node) AvatarSize() int {
	if n.Depth > 0 {
		return 18
	}
	return 28
}

// Build renders item and its children. replyTo is the message that a reply
// control on this node targets, nil where replying isn't offered.
func (r *Renderer) Build(item domain.Displayable, depth int, replyTo *domain.MsgId) *Node {
	n := &Node{
		Id:       item.ItemId(),
		Author:   item.ItemAuthor(),
		Initials: Initials(item.ItemAuthor()),
		Depth:    depth,
		ReplyTo:  replyTo,
	}

	content, image := item.ItemContent(), item.ItemImage()
	switch {
	case image != "" && content == image:
		n.Link = image
	case image != "":
		n.Image = image
		n.Content = r.text.Render(content)
	default:
		n.Content = r.text.Render(content)
	}

	for _, child := range item.ItemChildren() {
		n.Children = append(n.Children, r.Build(child, depth+1, replyTo))
	}
	return n
}

// BuildList renders a message list. Channel messages get reply controls
// pointing at themselves; replies inherit their parent's target.
func (r *Renderer) BuildList(messages []domain.Message, replies bool) []*Node {
	nodes := make([]*Node, len(messages))
	for i, m := range messages {
		var target *domain.MsgId
		if replies {
			id := m.Id
			target = &id
		}
		nodes[i] = r.Build(m, 0, target)
	}
	return nodes
}

// Initials takes the first letter of the first two words, upper-cased.
func Initials(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		words = []string{"U"}
	}
	var b strings.Builder
	for _, w := range words[:min(2, len(words))] {
		r, _ := utf8.DecodeRuneInString(w)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

var presenceColors = map[domain.Presence]string{
	domain.PresenceOnline:  "#22c55e",
	domain.PresenceAway:    "#f59e0b",
	domain.PresenceOffline: "#64748b",
}

func PresenceColor(p domain.Presence) string {
	if c, ok := presenceColors[p]; ok {
		return c
	}
	return presenceColors[domain.PresenceOffline]
}
