package engagement

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/frahmantamala/hrms-portal/internal"
	model "github.com/frahmantamala/hrms-portal/internal/core/datamodel/engagement"
)

const minPollOptions = 2

var Visibilities = []string{model.VisibilityAll, model.VisibilityDepartment}

// Visible drops expired announcements and lists pinned ones first, keeping
// backend order otherwise.
func Visible(list []model.Announcement, now time.Time) []model.Announcement {
	out := make([]model.Announcement, 0, len(list))
	for _, a := range list {
		if !a.Expired(now) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IsPinned && !out[j].IsPinned
	})
	return out
}

type OptionView struct {
	Index   int     `json:"index"`
	Text    string  `json:"text"`
	Votes   int     `json:"votes"`
	Percent float64 `json:"percent"`
}

type PollView struct {
	ID         string       `json:"id"`
	Question   string       `json:"question"`
	Options    []OptionView `json:"options"`
	TotalVotes int          `json:"totalVotes"`
	HasVoted   bool         `json:"hasVoted"`
	Expired    bool         `json:"expired"`
	Deadline   time.Time    `json:"deadline,omitempty"`
	Visibility string       `json:"visibility"`
}

// Interactive reports polls the user can still vote on.
func (p PollView) Interactive() bool {
	return !p.HasVoted && !p.Expired
}

// Percent is votes/total as a percentage rounded to one decimal.
func Percent(votes, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(votes)*1000/float64(total)) / 10
}

func HasVoted(p model.Poll, userID string) bool {
	if userID == "" {
		return false
	}
	for _, o := range p.Options {
		for _, v := range o.Votes {
			if v == userID {
				return true
			}
		}
	}
	return false
}

func NewPollView(p model.Poll, userID string, now time.Time) PollView {
	view := PollView{
		ID:         p.ID,
		Question:   p.Question,
		HasVoted:   HasVoted(p, userID),
		Expired:    !p.Deadline.IsZero() && p.Deadline.Before(now),
		Deadline:   p.Deadline.Time,
		Visibility: p.Visibility,
	}
	for _, o := range p.Options {
		view.TotalVotes += len(o.Votes)
	}
	for i, o := range p.Options {
		view.Options = append(view.Options, OptionView{
			Index:   i,
			Text:    o.Text,
			Votes:   len(o.Votes),
			Percent: Percent(len(o.Votes), view.TotalVotes),
		})
	}
	return view
}

// PollDraft is the poll form being edited before submission.
type PollDraft struct {
	Question   string   `json:"question"`
	Options    []string `json:"options"`
	Deadline   string   `json:"deadline,omitempty"`
	Visibility string   `json:"visibility,omitempty"`
}

func NewPollDraft() PollDraft {
	return PollDraft{Options: make([]string, minPollOptions), Visibility: model.VisibilityAll}
}

func (d *PollDraft) AddOption() {
	d.Options = append(d.Options, "")
}

// RemoveOption drops option i. A poll keeps at least two options.
func (d *PollDraft) RemoveOption(i int) error {
	if len(d.Options) <= minPollOptions {
		return internal.NewValidationFieldError("options", "A poll needs at least two options", internal.ErrCodeInsufficientOptions)
	}
	if i < 0 || i >= len(d.Options) {
		return internal.NewValidationFieldError("options", "Unknown poll option", internal.ErrCodeInvalidOption)
	}
	d.Options = append(d.Options[:i], d.Options[i+1:]...)
	return nil
}

// FilledOptions returns the trimmed non-empty options.
func FilledOptions(options []string) []string {
	out := make([]string, 0, len(options))
	for _, o := range options {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
