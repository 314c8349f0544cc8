package service

import (
	"github.com/samber/lo"

	"github.com/itchan-dev/aurum/internal/store"
	"github.com/itchan-dev/aurum/shared/config"
	"github.com/itchan-dev/aurum/shared/domain"
	"github.com/itchan-dev/aurum/shared/errors"
)

var ErrMemberNotFound = errors.NotFound("Member not found")

type DirectoryService interface {
	Members() []domain.User
	Member(email domain.Email) (domain.User, error)
	ChannelLabel(key domain.ChannelKey) string
}

// Directory serves the static community data from config: members and channel labels.
type Directory struct {
	public *config.Public
}

func NewDirectory(public *config.Public) DirectoryService {
	return &Directory{public}
}

func (d *Directory) Members() []domain.User {
	return append([]domain.User(nil), d.public.Members...)
}

func (d *Directory) Member(email domain.Email) (domain.User, error) {
	user, ok := lo.Find(d.public.Members, func(u domain.User) bool { return u.Email == email })
	if !ok {
		return domain.User{}, ErrMemberNotFound
	}
	return user, nil
}

func (d *Directory) ChannelLabel(key domain.ChannelKey) string {
	return d.public.ChannelLabel(key)
}

// Seeder fills every new session's store with the configured conversations.
func Seeder(public *config.Public) func(*store.Store) {
	return func(st *store.Store) {
		for _, c := range public.Channels {
			st.SeedChannel(c.Key, c.Messages)
		}
		for _, t := range public.DmThreads {
			st.SeedDm(t.Peer, t.Messages)
		}
	}
}
