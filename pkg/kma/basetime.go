package kma

import "time"

// PublishLatency is how far behind the hour the nowcast becomes available.
const PublishLatency = 45 * time.Minute

var kst = time.FixedZone("KST", 9*60*60)

// BaseTime identifies a nowcast publication in Korea Standard Time.
type BaseTime struct {
	Date string `json:"baseDate"`
	Time string `json:"baseTime"`
}

// BaseTimeAt returns the latest publication available at now: now minus
// PublishLatency in KST, truncated to the hour.
func BaseTimeAt(now time.Time) BaseTime {
	t := now.In(kst).Add(-PublishLatency)
	return BaseTime{
		Date: t.Format("20060102"),
		Time: t.Format("15") + "00",
	}
}

// PrecipLabel describes a PTY precipitation type code.
func PrecipLabel(code int) string {
	switch code {
	case 0:
		return "없음"
	case 1:
		return "비"
	case 2:
		return "비/눈"
	case 3:
		return "눈"
	case 5:
		return "빗방울"
	case 6:
		return "빗방울/눈날림"
	case 7:
		return "눈날림"
	default:
		return "알 수 없음"
	}
}
