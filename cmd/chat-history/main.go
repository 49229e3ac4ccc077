package main

import (
	"context"
	"flag"
	"os"

	"demochat/chat-widget/internal/bootstrap"
	"demochat/chat-widget/internal/config"
	"demochat/chat-widget/internal/models"
	"demochat/chat-widget/internal/view"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

func main() {
	as := flag.String("as", "", "participant id to view the history as (default: first participant)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		color.Error.Println("Config error:", err)
		os.Exit(1)
	}
	cfg.Logging.File = ""
	logger, _, err := config.NewLogger(cfg.Logging)
	if err != nil {
		color.Error.Println(err)
		os.Exit(1)
	}

	activeID := cfg.Chat.Participants[0].ID
	if *as != "" {
		activeID = *as
	}

	store, err := bootstrap.OpenStore(cfg, logger)
	if err != nil {
		color.Error.Println("Failed to open store:", err)
		os.Exit(1)
	}
	defer store.Close()

	messages, err := store.Load(context.Background())
	if err != nil {
		color.Error.Println("Failed to load messages:", err)
		_ = store.Close()
		os.Exit(1)
	}

	names := lo.SliceToMap(cfg.Chat.Participants, func(u models.User) (string, string) {
		return u.ID, u.DisplayName()
	})
	rows := view.Build(messages, activeID, "", view.NewAvatarCache(cfg.Chat.Participants, ""))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Sent", "Sender", "Message", "Side", "ID", "Avatar"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("\t")

	for _, row := range rows {
		sender, ok := names[row.Message.SenderID]
		if !ok {
			sender = row.Message.SenderID
		}
		side := "them"
		if row.Own {
			side = color.Cyan.Sprint("me")
		}
		table.Append([]string{row.Time, sender, row.Message.Content, side, row.Message.ID, row.Avatar})
	}
	table.Render()

	color.Gray.Printf("%d message(s) in chat %s, viewed as %s\n", len(rows), cfg.Chat.ID, activeID)
}
