// Package session owns the per-browser state of the preview: one conversation
// store plus the UI state that used to live in the page (active channel,
// open DM, panels, current user and a pending sign-in).
package session

import (
	"sync"
	"time"

	"github.com/itchan-dev/aurum/internal/store"
	"github.com/itchan-dev/aurum/shared/domain"
)

type Tab string

const (
	TabNone     Tab = ""
	TabChannels Tab = "channels"
	TabMessages Tab = "messages"
	TabMembers  Tab = "members"
	TabApps     Tab = "apps"
)

func ParseTab(s string) (Tab, bool) {
	switch t := Tab(s); t {
	case TabChannels, TabMessages, TabMembers, TabApps:
		return t, true
	}
	return TabNone, false
}

// PendingSignIn is a sign-in that has not resolved yet.
type PendingSignIn interface {
	// Cancel stops the sign-in. Returns false if it already resolved or was cancelled.
	Cancel() bool
}

// View is a snapshot of the UI state.
type View struct {
	ActiveChannel domain.ChannelKey `json:"active_channel"`
	ActiveDm      domain.PeerId     `json:"active_dm,omitempty"`
	LeftTab       Tab               `json:"left_tab"`
	ReplyTarget   *domain.MsgId     `json:"reply_target,omitempty"`

	ShowLogin    bool `json:"show_login"`
	SignInSent   bool `json:"sign_in_sent"`
	ShowSettings bool `json:"show_settings"`

	Notifications bool `json:"notifications"`
	Compact       bool `json:"compact"`
}

func (v View) IsDM() bool {
	return v.ActiveDm != ""
}

type Session struct {
	Id    string
	Store *store.Store
	// CSRFToken guards the HTML forms of this session.
	CSRFToken string

	mu       sync.Mutex
	user     *domain.Identity
	view     View
	pending  PendingSignIn
	lastSeen time.Time
}

func New(id string, st *store.Store, defaultChannel domain.ChannelKey, now time.Time) *Session {
	return &Session{
		Id:    id,
		Store: st,
		view: View{
			ActiveChannel: defaultChannel,
			LeftTab:       TabChannels,
			ShowLogin:     true,
			Notifications: true,
		},
		lastSeen: now,
	}
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.view
	if v.ReplyTarget != nil {
		target := *v.ReplyTarget
		v.ReplyTarget = &target
	}
	return v
}

func (s *Session) User() *domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Author is the identifier stamped on sent items.
func (s *Session) Author() domain.Email {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil || s.user.Email == "" {
		return domain.GuestAuthor
	}
	return s.user.Email
}

// SelectChannel switches to a channel and leaves any DM view.
func (s *Session) SelectChannel(key domain.ChannelKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.ActiveChannel = key
	s.view.ActiveDm = ""
	s.view.ReplyTarget = nil
}

// OpenDm shows the thread with peer. The thread itself is created on first send.
func (s *Session) OpenDm(peer domain.PeerId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.ActiveDm = peer
	s.view.ReplyTarget = nil
}

// ToggleTab opens tab, or collapses the panel if it is already open.
func (s *Session) ToggleTab(tab Tab) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view.LeftTab == tab {
		s.view.LeftTab = TabNone
		return
	}
	s.view.LeftTab = tab
}

func (s *Session) ArmReply(id domain.MsgId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.ReplyTarget = &id
}

func (s *Session) ClearReply() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.ReplyTarget = nil
}

func (s *Session) OpenLogin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.ShowLogin = true
}

// DismissLogin closes the modal and cancels a sign-in still in flight,
// so a dismissed modal never assigns an identity.
func (s *Session) DismissLogin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropPending()
	s.view.ShowLogin = false
}

// BeginSignIn records p as the sign-in in flight, cancelling any earlier one.
func (s *Session) BeginSignIn(p PendingSignIn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropPending()
	s.pending = p
	s.view.SignInSent = true
}

// CompleteSignIn applies the identity if p is still the sign-in in flight.
func (s *Session) CompleteSignIn(p PendingSignIn, identity domain.Identity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil || s.pending != p {
		return false
	}
	s.pending = nil
	s.user = &identity
	s.view.SignInSent = false
	s.view.ShowLogin = false
	return true
}

// SignOut forgets the user and brings the login modal back.
func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropPending()
	s.user = nil
	s.view.ShowLogin = true
	s.view.ShowSettings = false
}

func (s *Session) OpenSettings() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.ShowSettings = true
}

func (s *Session) CloseSettings() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.ShowSettings = false
}

func (s *Session) ToggleNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Notifications = !s.view.Notifications
}

func (s *Session) ToggleCompact() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Compact = !s.view.Compact
}

// Close cancels background work tied to the session.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropPending()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// must hold s.mu
func (s *Session) dropPending() {
	if s.pending != nil {
		s.pending.Cancel()
		s.pending = nil
	}
	s.view.SignInSent = false
}
