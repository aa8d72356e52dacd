package tui

import (
	"github.com/charmbracelet/bubbles/list"
)

// LoadRecords builds the inbox list items from the visible records,
// newest first.
func (m *Model) LoadRecords() []list.Item {
	records := m.Inbox.Records()

	items := make([]list.Item, len(records))
	for i, rec := range records {
		items[len(records)-1-i] = RecordItem{
			Record: rec,
			Unread: m.Inbox.IsUnread(rec),
		}
	}
	return items
}

// refreshInbox reloads the inbox list.
func (m *Model) refreshInbox() {
	m.InboxList.SetItems(m.LoadRecords())
}
