package application

import "time"

// Task is a pending one-shot callback.
type Task interface {
	Stop() bool
}

type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Task
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, f func()) Task {
	return time.AfterFunc(d, f)
}

// DefaultScheduler runs tasks on runtime timers.
var DefaultScheduler Scheduler = timerScheduler{}
