package model

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// notificationOffsets are how long before the target time each delivery happens
var notificationOffsets = []time.Duration{
	time.Hour,
	24 * time.Hour,
}

// Notification is a confirmed reminder waiting for delivery.
// NotificationTimes is ascending and shrinks from the front.
type Notification struct {
	ID                string      `json:"id" firestore:"id"`
	Content           string      `json:"content" firestore:"content"`
	Notify            []string    `json:"notify" firestore:"notify"`
	NotificationTimes []time.Time `json:"notification_times" firestore:"notification_times"`
	Channel           string      `json:"channel" firestore:"channel"`
}

// NewNotificationID returns a fresh notification id
func NewNotificationID() string {
	return uuid.NewString()
}

// NotificationTimes derives the delivery schedule for target. Times before
// createdAt are dropped and the result is sorted ascending.
func NotificationTimes(target, createdAt time.Time) []time.Time {
	times := make([]time.Time, 0, len(notificationOffsets))
	for _, offset := range notificationOffsets {
		t := target.Add(-offset)
		if !t.Before(target) {
			// overflow
			continue
		}
		if t.Before(createdAt) {
			continue
		}
		times = append(times, t)
	}
	slices.SortFunc(times, func(a, b time.Time) int { return a.Compare(b) })
	return times
}

// ParseRecipients splits a comma separated list of user ids
func ParseRecipients(csv string) []string {
	var recipients []string
	for _, r := range strings.Split(csv, ",") {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		recipients = append(recipients, r)
	}
	return recipients
}

// NextTime returns the earliest pending delivery time
func (n *Notification) NextTime() (time.Time, bool) {
	if len(n.NotificationTimes) == 0 {
		return time.Time{}, false
	}
	return n.NotificationTimes[0], true
}

// EventTime returns the last scheduled delivery time
func (n *Notification) EventTime() (time.Time, bool) {
	if len(n.NotificationTimes) == 0 {
		return time.Time{}, false
	}
	return n.NotificationTimes[len(n.NotificationTimes)-1], true
}

// IsDue reports whether the earliest delivery time has been reached
func (n *Notification) IsDue(now time.Time) bool {
	next, ok := n.NextTime()
	return ok && !next.After(now)
}

// PopNext removes the earliest delivery time
func (n *Notification) PopNext() {
	if len(n.NotificationTimes) > 0 {
		n.NotificationTimes = n.NotificationTimes[1:]
	}
}

// IsExhausted reports whether no delivery remains
func (n *Notification) IsExhausted() bool {
	return len(n.NotificationTimes) == 0
}

// Mentions returns Slack mention markup for every recipient
func (n *Notification) Mentions() string {
	mentions := make([]string, 0, len(n.Notify))
	for _, id := range n.Notify {
		id = strings.TrimPrefix(strings.Trim(id, "<>"), "@")
		if id == "" {
			continue
		}
		mentions = append(mentions, "<@"+id+">")
	}
	return strings.Join(mentions, " ")
}

func (n *Notification) Clone() *Notification {
	if n == nil {
		return nil
	}
	c := *n
	c.Notify = slices.Clone(n.Notify)
	c.NotificationTimes = slices.Clone(n.NotificationTimes)
	return &c
}
