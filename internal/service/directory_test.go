package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itchan-dev/aurum/internal/store"
	"github.com/itchan-dev/aurum/shared/errors"
)

func TestDirectory(t *testing.T) {
	d := NewDirectory(testPublic)

	members := d.Members()
	require.Len(t, members, 2)
	members[0].Name = "tampered"
	assert.Equal(t, "Alice", d.Members()[0].Name)

	bob, err := d.Member("bob@you")
	require.NoError(t, err)
	assert.Equal(t, "Bob", bob.Name)

	_, err = d.Member("nobody@you")
	assert.ErrorIs(t, err, ErrMemberNotFound)
	assert.True(t, errors.IsNotFound(err))

	assert.Equal(t, "# media", d.ChannelLabel("media"))
	assert.Equal(t, "# random", d.ChannelLabel("random"))
}

func TestSeeder(t *testing.T) {
	st := store.New(store.NewClockIds(nil))
	Seeder(testPublic)(st)

	assert.Equal(t, []string{"general", "announcements", "media"}, st.Channels())
	assert.Equal(t, []string{"alice@you"}, st.DmPeers())

	general := st.ChannelMessages("general")
	require.Len(t, general, 2)
	assert.Equal(t, "2-1", general[1].Replies[0].Id)
	assert.Empty(t, st.ChannelMessages("media"))
	assert.Len(t, st.DmThread("alice@you"), 2)
}
