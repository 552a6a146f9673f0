package views

import (
	"time"

	"github.com/proptrack/proptrack/platform/go/derive"
	"github.com/proptrack/proptrack/platform/go/entity"
)

type ThreadSummary struct {
	ID            string     `json:"id"`
	PropertyID    string     `json:"propertyId"`
	PropertyName  string     `json:"propertyName"`
	Counterpart   string     `json:"counterpart"`
	LastMessage   string     `json:"lastMessage"`
	LastMessageAt *time.Time `json:"lastMessageAt"`
}

type MessageRow struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
	Mine       bool      `json:"mine"`
}

type Thread struct {
	ID           string           `json:"id"`
	PropertyName string           `json:"propertyName"`
	Counterpart  string           `json:"counterpart"`
	Messages     List[MessageRow] `json:"messages"`
}

type Communications struct {
	Threads List[ThreadSummary] `json:"threads"`
	Active  *Thread             `json:"active"`
}

// ComposeCommunications lists visible threads and expands one: the requested thread when it is
// visible, otherwise the first visible thread. "Mine" is judged against the request principal.
func ComposeCommunications(scope Scope, threadID string) Communications {
	threads := scope.Caps.Communications(scope.Store, scope.Principal.ID)

	summaries := make([]ThreadSummary, 0, len(threads))
	for _, c := range threads {
		summary := ThreadSummary{
			ID:           c.ID,
			PropertyID:   c.PropertyID,
			PropertyName: derive.PropertyNameOf(scope.Store, c.PropertyID),
			Counterpart:  counterpartName(scope, c),
		}
		if ordered := derive.SortMessages(c.Messages); len(ordered) > 0 {
			last := ordered[len(ordered)-1]
			summary.LastMessage = last.Text
			ts := last.Timestamp
			summary.LastMessageAt = &ts
		}
		summaries = append(summaries, summary)
	}

	out := Communications{Threads: newList(summaries, EmptyThreads)}

	var active *entity.Communication
	for i := range threads {
		if threads[i].ID == threadID {
			active = &threads[i]
			break
		}
	}
	if active == nil && len(threads) > 0 {
		active = &threads[0]
	}
	if active != nil {
		thread := composeThread(scope, *active)
		out.Active = &thread
	}

	return out
}

func composeThread(scope Scope, c entity.Communication) Thread {
	ordered := derive.SortMessages(c.Messages)
	rows := make([]MessageRow, 0, len(ordered))
	for _, m := range ordered {
		rows = append(rows, MessageRow{
			ID:         m.ID,
			AuthorID:   m.UserID,
			AuthorName: derive.UserNameOf(scope.Store, m.UserID),
			Text:       m.Text,
			Timestamp:  m.Timestamp,
			Mine:       m.UserID == scope.Principal.ID,
		})
	}

	return Thread{
		ID:           c.ID,
		PropertyName: derive.PropertyNameOf(scope.Store, c.PropertyID),
		Counterpart:  counterpartName(scope, c),
		Messages:     newList(rows, EmptyMessages),
	}
}

// counterpartName is the first listed participant other than the principal. Admins viewing a
// thread they are not part of therefore see the first participant.
func counterpartName(scope Scope, c entity.Communication) string {
	for _, id := range c.Users {
		if id != scope.Principal.ID {
			return derive.UserNameOf(scope.Store, id)
		}
	}
	return derive.Unknown
}
