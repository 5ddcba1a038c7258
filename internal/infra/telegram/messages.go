package telegram

import (
	"fmt"
	"math"
	"strings"
	"time"

	"iss-aprs-tracker/internal/domain/model"
)

// Notification texts are MarkdownV2; everything interpolated from the feed
// or from times goes through EscapeMarkdown.

const newActivityHeader = "🛰️ New activity detected\\!\n\n"

// mdV2Escaper escapes the characters MarkdownV2 treats as syntax.
var mdV2Escaper = strings.NewReplacer(
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(", ")", "\\)",
	"~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#", "+", "\\+", "-", "\\-",
	"=", "\\=", "|", "\\|", "{", "\\{", "}", "\\}", ".", "\\.", "!", "\\!",
)

func EscapeMarkdown(s string) string { return mdV2Escaper.Replace(s) }

// HumanizeElapsed renders a duration as "1 second", "10 minutes", "8 days".
func HumanizeElapsed(d time.Duration) string {
	sec := d.Seconds()
	switch {
	case sec < 2:
		return "1 second"
	case sec < 60:
		return fmt.Sprintf("%d seconds", int(math.Round(sec)))
	}

	min := math.Round(sec / 60)
	if sec < 3600 {
		if min == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", int(min))
	}

	hours := math.Round(sec / 3600)
	if sec < 86400 {
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", int(hours))
	}

	days := math.Round(sec / 86400)
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", int(days))
}

// LastHeardText renders the "last station heard" line with a findu.com link.
func LastHeardText(st model.Station, now time.Time) string {
	text := fmt.Sprintf("The last station heard was *%s, %s ago*\\.",
		EscapeMarkdown(st.Callsign),
		EscapeMarkdown(HumanizeElapsed(now.Sub(st.HeardAt))))
	if st.Link != "" {
		text += fmt.Sprintf(" See details at [findu\\.com](%s)\\.", st.Link)
	}
	return text
}

// ActivityText renders the gate's notification for an ON event. When the
// notification was gated by a predicted pass, the pass summary is appended.
func ActivityText(e *model.ActivityEvent, pass *model.PassWindow, now time.Time) string {
	text := newActivityHeader + LastHeardText(e.Station, now)
	if pass != nil {
		text += fmt.Sprintf("\n\n📡 Next pass over your location starts in *%s* and peaks at *%s°* elevation\\.",
			EscapeMarkdown(HumanizeElapsed(pass.Start.Sub(now))),
			EscapeMarkdown(fmt.Sprintf("%.0f", pass.MaxElevation)))
	}
	return text
}

// WatchText renders the callsign-watch notification.
func WatchText(e *model.ActivityEvent) string {
	return newActivityHeader +
		"*" + EscapeMarkdown(e.Station.Callsign) + "* has just been digipeated by the ISS\\!"
}
