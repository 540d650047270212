package movies

import (
	"time"

	"github.com/Domenick1991/cinemabooking/internal/domain"
)

const (
	upcomingWindowMonths = 1
	showingWindowMonths  = 4
)

// Classify derives a movie's lifecycle status from its release date and the
// evaluation date. Both are compared as calendar dates; the time of day is
// ignored. Month arithmetic follows time.AddDate, so Jan 31 + 1 month
// normalizes to Mar 3 (Mar 2 in leap years).
//
// ok is false when no rule applies, which happens for releases more than one
// month after the evaluation date.
func Classify(releaseDate, evaluationDate time.Time) (status domain.MovieStatus, ok bool) {
	release := civilDate(releaseDate)
	eval := civilDate(evaluationDate)

	oneMonthFromEvaluation := eval.AddDate(0, upcomingWindowMonths, 0)
	fourMonthsFromRelease := release.AddDate(0, showingWindowMonths, 0)

	switch {
	case release.After(eval) && !release.After(oneMonthFromEvaluation):
		return domain.MovieStatusUpcoming, true
	case !release.After(eval) && !eval.After(fourMonthsFromRelease):
		return domain.MovieStatusNowShowing, true
	case eval.After(fourMonthsFromRelease):
		return domain.MovieStatusEnded, true
	}
	return "", false
}

// Resolve is Classify with the fall-through case keeping current.
func Resolve(releaseDate, evaluationDate time.Time, current domain.MovieStatus) domain.MovieStatus {
	if status, ok := Classify(releaseDate, evaluationDate); ok {
		return status
	}
	return current
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
