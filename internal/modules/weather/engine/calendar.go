package engine

import "time"

func ymd(t time.Time, loc *time.Location) int {
	lt := t.In(loc)
	return lt.Year()*10000 + int(lt.Month())*100 + lt.Day()
}

func ym(t time.Time, loc *time.Location) int {
	lt := t.In(loc)
	return lt.Year()*100 + int(lt.Month())
}

func year(t time.Time, loc *time.Location) int {
	return t.In(loc).Year()
}

// dayStart returns local midnight of the day containing t.
func dayStart(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// daysBetween counts calendar days from one YYYYMMDD key to another.
// Dates are compared in UTC so DST transitions never shorten a week.
func daysBetween(fromYMD, toYMD int) int {
	from := dateOf(fromYMD)
	to := dateOf(toYMD)
	return int(to.Sub(from).Hours() / 24)
}

func dateOf(key int) time.Time {
	return time.Date(key/10000, time.Month(key/100%100), key%100, 0, 0, 0, 0, time.UTC)
}
