// Package clock отделяет код от пакета time, чтобы тесты управляли временем явно.
package clock

import "time"

// Clock - источник времени и отложенных вызовов.
// В проде используется Real(), в тестах Fake().
type Clock interface {
	Now() time.Time
	// AfterFunc вызывает f через d. Возвращённый Timer позволяет отменить вызов.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer - отменяемый отложенный вызов
type Timer interface {
	// Stop возвращает true, если вызов был отменён до срабатывания
	Stop() bool
}

// Real возвращает Clock поверх пакета time
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
