// Package reminder produces the periodic check-in lines shown in the
// status bar while a user is logged in.
package reminder

import (
	"math/rand/v2"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	// FirstDelay is the wait before the first reminder after login.
	FirstDelay = 3 * time.Second

	// DefaultInterval separates later reminders.
	DefaultInterval = 5 * time.Minute
)

// TickMsg asks the app to show a reminder for session Seq.
type TickMsg struct {
	Seq uint64
	At  time.Time
}

// TimeOfDay names the part of the day for hour.
func TimeOfDay(hour int) string {
	switch {
	case hour < 12:
		return "pagi"
	case hour < 17:
		return "siang"
	default:
		return "malam"
	}
}

// Messages returns every check-in line for name at now.
func Messages(name string, now time.Time) []string {
	tod := TimeOfDay(now.Hour())
	return []string{
		"Hari ini " + name + " sudah minum berapa gelas? 💧",
		"Sudah aktivitas apa saja " + tod + " ini " + name + "? 🌟",
		"Jangan lupa istirahat ya " + name + "! 😊",
		name + ", sudah makan yang bergizi hari ini? 🥗",
		"Yuk " + name + ", cek progress harian kamu! 📈",
		"Semangat " + name + "! Kamu bisa! 💪",
		name + ", jangan lupa gerak ringan hari ini ya! 🚶‍♀️",
		"Sudah tulis jurnal hari ini belum " + name + "? ✍️",
	}
}

// Pick returns one of the check-in lines. intn is rand.IntN in production.
func Pick(name string, now time.Time, intn func(int) int) string {
	msgs := Messages(name, now)
	if intn == nil {
		intn = rand.IntN
	}
	return msgs[intn(len(msgs))]
}

// Schedule returns a command that delivers a TickMsg for seq after d.
func Schedule(seq uint64, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg{Seq: seq, At: t}
	})
}
