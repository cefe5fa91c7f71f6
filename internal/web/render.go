package web

import (
	"html/template"
	"strings"

	"github.com/docchat/frontend/internal/models"
	"github.com/docchat/frontend/internal/session"
)

// MessageView is one rendered chat bubble.
type MessageView struct {
	ID     string
	Class  string
	HTML   template.HTML
	Typing bool
}

// PageData is everything the page template needs.
type PageData struct {
	ShowUpload  bool
	ShowChat    bool
	Progress    models.Progress
	Status      models.StatusLabel
	Header      string
	Messages    []MessageView
	Notices     []string
	SendEnabled bool
	Autofocus   bool
	Version     uint64
}

// Project maps a snapshot and the notices to show onto page data. It is a
// pure function of its arguments.
func Project(snap models.Snapshot, notices []models.Notice) PageData {
	page := PageData{
		ShowUpload:  snap.View == models.ViewAwaitingUpload,
		ShowChat:    snap.View == models.ViewChatActive,
		Progress:    snap.Progress,
		Status:      snap.Status,
		Header:      snap.Header,
		Messages:    make([]MessageView, 0, len(snap.Messages)),
		SendEnabled: snap.Composer.SendEnabled,
		Autofocus:   snap.Composer.Focused,
		Version:     snap.Version,
	}
	for _, m := range snap.Messages {
		page.Messages = append(page.Messages, RenderMessage(m))
	}
	for _, n := range notices {
		page.Notices = append(page.Notices, n.Message)
	}
	return page
}

// formatBot escapes and formats bot text. The subject's **name** span is
// bolded as a whole so markup inside the name is shown literally.
func formatBot(m models.Message) string {
	format := func(s string) string {
		return session.FormatText(template.HTMLEscapeString(s))
	}
	if m.Subject != "" {
		if before, after, ok := strings.Cut(m.Text, "**"+m.Subject+"**"); ok {
			return format(before) + "<b>" + template.HTMLEscapeString(m.Subject) + "</b>" + format(after)
		}
	}
	return format(m.Text)
}

// RenderMessage turns a message into a bubble. All text is escaped; bot
// text then goes through session.FormatText, so the only markup that can
// reach the page is <br> and <b>.
func RenderMessage(m models.Message) MessageView {
	if m.IsTyping() {
		return MessageView{ID: m.ID, Class: "typing", Typing: true}
	}

	view := MessageView{ID: m.ID, Class: "msg " + string(m.Role)}
	switch m.Role {
	case models.RoleBot:
		view.HTML = template.HTML(formatBot(m))
	default:
		view.HTML = template.HTML(template.HTMLEscapeString(m.Text))
	}
	if m.Kind == models.MessageKindError {
		view.Class += " error"
	}
	return view
}
