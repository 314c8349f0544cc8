package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/itchan-dev/aurum/shared/config"
)

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "print the seed data every new session starts from",
		Action: func(c *cli.Context) error {
			cfg := config.MustLoad(c.String("config"))
			printSeed(c.App.Writer, &cfg.Public)
			return nil
		},
	}
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	return table
}

func printSeed(w io.Writer, public *config.Public) {
	fmt.Fprintln(w, "Channels")
	channels := newTable(w, "Key", "Label", "Messages", "Default")
	for _, c := range public.Channels {
		def := ""
		if c.Key == public.DefaultChannel {
			def = "*"
		}
		channels.Append([]string{c.Key, c.Label, strconv.Itoa(len(c.Messages)), def})
	}
	channels.Render()

	if len(public.DmThreads) > 0 {
		fmt.Fprintln(w, "\nDirect messages")
		dms := newTable(w, "Peer", "Messages")
		for _, d := range public.DmThreads {
			dms.Append([]string{d.Peer, strconv.Itoa(len(d.Messages))})
		}
		dms.Render()
	}

	fmt.Fprintln(w, "\nMembers")
	members := newTable(w, "Email", "Name", "Presence")
	for _, m := range public.Members {
		members.Append([]string{m.Email, m.Name, string(m.Presence)})
	}
	members.Render()
}
