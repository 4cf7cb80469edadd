package model

import (
	"strings"
	"time"
)

// DefaultStaleAfter はactiveなスクリムを自動回収するまでの期間。
const DefaultStaleAfter = 7 * 24 * time.Hour

const (
	scheduleDateLayout = "02/01/2006"
)

var scheduleTimeLayouts = []string{
	"3:04 PM",
	"3:04PM",
	"15:04",
}

// zoneOffsets はユーザーが入力しがちなタイムゾーン略称とUTCオフセット（秒）。
// 略称は地域によって重複するため、ここにないものは解釈しない。
var zoneOffsets = map[string]int{
	"UTC":  0,
	"GMT":  0,
	"AWST": 8 * 3600,
	"ACST": 9*3600 + 1800,
	"ACDT": 10*3600 + 1800,
	"AEST": 10 * 3600,
	"AEDT": 11 * 3600,
	"NZST": 12 * 3600,
	"NZDT": 13 * 3600,
	"JST":  9 * 3600,
	"SGT":  8 * 3600,
	"CET":  1 * 3600,
	"CEST": 2 * 3600,
	"BST":  1 * 3600,
}

// ParseSchedule は自由入力の日付と時刻をベストエフォートで解釈する。
// 日付は DD/MM/YYYY、時刻は "7:00 PM" / "19:00" に任意のタイムゾーン略称を続けた形式のみ受け付ける。
// 略称がない場合はUTCとみなす。解釈できない場合はokがfalseになる。
func ParseSchedule(date, clock string) (t time.Time, ok bool) {
	d, err := time.Parse(scheduleDateLayout, strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, false
	}

	fields := strings.Fields(strings.ToUpper(clock))
	if len(fields) == 0 {
		return time.Time{}, false
	}

	loc := time.UTC
	if last := fields[len(fields)-1]; len(fields) > 1 && isZoneAbbrev(last) {
		offset, known := zoneOffsets[last]
		if !known {
			return time.Time{}, false
		}
		loc = time.FixedZone(last, offset)
		fields = fields[:len(fields)-1]
	}

	clockText := strings.Join(fields, " ")
	for _, layout := range scheduleTimeLayouts {
		c, err := time.Parse(layout, clockText)
		if err != nil {
			continue
		}
		return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), 0, 0, loc), true
	}
	return time.Time{}, false
}

func isZoneAbbrev(s string) bool {
	if s == "AM" || s == "PM" || len(s) < 2 || len(s) > 5 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// IsExpired はスクリムが自動回収対象かどうかを判定する。
// 主たる規則は作成からstaleAfterの経過。予定日時が解釈できて既に過ぎている場合も対象とする。
// active以外のスクリムは常に対象外。
func IsExpired(s *Scrim, now time.Time, staleAfter time.Duration) bool {
	if s.Status != ScrimStatusActive {
		return false
	}
	if s.CreatedAt.Before(now.Add(-staleAfter)) {
		return true
	}
	if at, ok := ParseSchedule(s.ScheduledDate, s.ScheduledTime); ok && at.Before(now) {
		return true
	}
	return false
}
